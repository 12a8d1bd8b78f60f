package classifier

import (
	"fmt"
	"maps"
	"sort"
)

// Set is an immutable collection of classifiers keyed by name
type Set struct {
	byName map[string]*Classifier
}

// NewSet creates a set from classifiers, later entries with the same name replace earlier ones
func NewSet(classifiers ...*Classifier) Set {
	s := Set{byName: make(map[string]*Classifier, len(classifiers))}
	for _, c := range classifiers {
		if c == nil {
			continue
		}
		s.byName[c.Name()] = c
	}
	return s
}

// Get returns the classifier registered under name
func (s Set) Get(name string) (*Classifier, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Names returns sorted classifier names
func (s Set) Names() []string {
	res := make([]string, 0, len(s.byName))
	for name := range s.byName {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// Len returns the number of classifiers in the set
func (s Set) Len() int { return len(s.byName) }

// Builtin returns the set of built-in rule tables. Topic names used by older configs
// (finance, politics and so on) resolve to the portuguese table.
func Builtin() Set {
	res := make([]*Classifier, 0, len(builtinTables))
	for _, t := range builtinTables {
		c, err := New(t.name, t.rules, t.fallback)
		if err != nil {
			panic(fmt.Sprintf("invalid builtin classifier %s: %v", t.name, err))
		}
		res = append(res, c)
	}
	s := NewSet(res...)
	for alias, target := range builtinAliases {
		s.byName[alias] = s.byName[target]
	}
	return s
}

// With returns a new set containing classifiers of s plus extra, extra wins on name collision
func (s Set) With(extra ...*Classifier) Set {
	res := Set{byName: make(map[string]*Classifier, len(s.byName)+len(extra))}
	maps.Copy(res.byName, s.byName)
	for _, c := range extra {
		if c == nil {
			continue
		}
		res.byName[c.Name()] = c
	}
	return res
}
