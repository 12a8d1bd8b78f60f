// Package classifier assigns a category label to an article using an ordered keyword rule table.
// Matching is done in a single pass over the text with an Aho-Corasick automaton built once
// per classifier; the winner is the earliest rule with any trigger present.
package classifier

import (
	"fmt"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// DefaultFallback is the label returned when no rule matches
const DefaultFallback = "Other"

// Rule maps a category to its trigger substrings
type Rule struct {
	Category string
	Triggers []string
}

// Classifier is an immutable ordered rule table. It holds no per-call state
// and is safe for concurrent use without locking.
type Classifier struct {
	name     string
	fallback string
	rules    []Rule // frozen copy, lowercased triggers
	matcher  *ahocorasick.Matcher
	ruleOf   []int // trigger index in matcher -> rule index
}

// New builds a classifier from rules evaluated in the given order.
// Empty fallback defaults to DefaultFallback.
func New(name string, rules []Rule, fallback string) (*Classifier, error) {
	if fallback == "" {
		fallback = DefaultFallback
	}

	c := &Classifier{name: name, fallback: fallback, rules: make([]Rule, 0, len(rules))}
	seen := make(map[string]bool, len(rules))
	known := make(map[string]bool)
	var triggers []string

	for i, r := range rules {
		category := strings.TrimSpace(r.Category)
		if category == "" {
			return nil, fmt.Errorf("classifier %s: rule %d has empty category", name, i)
		}
		if seen[strings.ToLower(category)] {
			return nil, fmt.Errorf("classifier %s: duplicate category %q", name, category)
		}
		seen[strings.ToLower(category)] = true

		frozen := Rule{Category: category}
		for _, trig := range r.Triggers {
			trig = strings.ToLower(strings.TrimSpace(trig))
			if trig == "" {
				continue
			}
			frozen.Triggers = append(frozen.Triggers, trig)
			if known[trig] {
				continue // already owned by an earlier rule, which always wins
			}
			known[trig] = true
			triggers = append(triggers, trig)
			c.ruleOf = append(c.ruleOf, len(c.rules))
		}
		c.rules = append(c.rules, frozen)
	}

	if len(triggers) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(triggers)
	}
	return c, nil
}

// Classify returns the category of the first rule with a trigger present in the lowercased
// title and description, or the fallback label if nothing matches
func (c *Classifier) Classify(title, description string) string {
	if c.matcher == nil {
		return c.fallback
	}

	text := strings.ToLower(title + " " + description)
	best := -1
	for _, hit := range c.matcher.MatchThreadSafe([]byte(text)) {
		if hit < 0 || hit >= len(c.ruleOf) {
			continue
		}
		if idx := c.ruleOf[hit]; best == -1 || idx < best {
			best = idx
		}
	}

	if best == -1 {
		return c.fallback
	}
	return c.rules[best].Category
}

// Name returns the classifier name
func (c *Classifier) Name() string { return c.name }

// Fallback returns the label used when no rule matches
func (c *Classifier) Fallback() string { return c.fallback }

// Rules returns a copy of the ordered rule table
func (c *Classifier) Rules() []Rule {
	res := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		res[i] = Rule{Category: r.Category, Triggers: append([]string(nil), r.Triggers...)}
	}
	return res
}
