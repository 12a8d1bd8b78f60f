package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// schemaDoc is the subset of a reflected json schema used for verification
type schemaDoc struct {
	Defs map[string]struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	} `json:"$defs"`
}

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema schemaDoc
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	// every key of the config must be known to the schema, otherwise schema.json is stale
	root, ok := schema.Defs["Config"]
	if !ok {
		return fmt.Errorf("embedded schema has no Config definition")
	}
	for key := range configMap {
		if _, ok := root.Properties[key]; !ok {
			return fmt.Errorf("config key %q is missing in schema, regenerate schema.json", key)
		}
	}

	if err := validateRequiredFields(cfg, schema); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// validateRequiredFields checks fields marked as required by the schema
func validateRequiredFields(cfg *Config, schema schemaDoc) error {
	feedDef := schema.Defs["Feed"]
	for i, f := range cfg.Feeds {
		values := map[string]string{"url": f.URL, "classifier": f.Classifier, "name": f.Name}
		for _, req := range feedDef.Required {
			if v, ok := values[req]; ok && v == "" {
				return fmt.Errorf("feeds[%d].%s is required", i, req)
			}
		}
	}

	ruleDef := schema.Defs["RuleConfig"]
	for name, c := range cfg.Classifiers {
		for i, r := range c.Rules {
			for _, req := range ruleDef.Required {
				if req == "category" && r.Category == "" {
					return fmt.Errorf("classifiers.%s.rules[%d].category is required", name, i)
				}
			}
		}
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
