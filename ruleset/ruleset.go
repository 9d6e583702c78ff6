// Package ruleset loads named record queries from YAML and compiles them
// into pica map rules, so applications can keep their extraction logic in
// declarative files instead of code.
//
//	version: "1"
//	fields:
//	  title:
//	    locator: "021A"
//	    subfield: a
//	    cardinality: "!"
//	    filters:
//	      - pattern: "^(.+?)\\s*$"
//	  ddc: "045F$a"   # shorthand: bare locator string
package ruleset

import (
	"fmt"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"pica-query/errors"
	"pica-query/filter"
	"pica-query/locator"
	"pica-query/pica"
)

// File is a parsed ruleset document.
type File struct {
	Version string          `yaml:"version"`
	Fields  map[string]Rule `yaml:"fields"`
}

// Rule is one named query. In YAML it is either a bare locator string or an
// object carrying locator, subfield, cardinality, and filters.
type Rule struct {
	Locator     string      `yaml:"locator"`
	Subfield    string      `yaml:"subfield"`
	Cardinality string      `yaml:"cardinality"`
	Filters     []FilterDef `yaml:"filters"`
}

// UnmarshalYAML accepts the string shorthand or the object form.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string

		err := node.Decode(&s)
		if err != nil {
			return err
		}

		r.Locator = s

		return nil

	case yaml.MappingNode:
		type plain Rule

		var p plain

		err := node.Decode(&p)
		if err != nil {
			return err
		}

		*r = Rule(p)

		return nil

	default:
		return fmt.Errorf("expected locator string or rule object, got %v", node.Kind)
	}
}

// FilterDef is one filter step; exactly one of Pattern and Format must be
// set.
type FilterDef struct {
	Pattern string `yaml:"pattern"`
	Format  string `yaml:"format"`
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ruleset YAML: %w", err)
	}

	if f.Version == "" {
		f.Version = "1"
	}

	return &f, nil
}

// LoadFile loads and parses a YAML ruleset file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset file %s: %w", path, err)
	}

	return Parse(data)
}

var validCards = []string{"", "!", "?", "+", "*"}

// Validate checks every rule and reports all problems at once rather than
// stopping at the first.
func (f *File) Validate() error {
	var errs []error

	for _, name := range f.names() {
		rule := f.Fields[name]

		if rule.Locator == "" {
			errs = append(errs, fmt.Errorf("%s: missing locator", name))

			continue
		}

		if !slices.Contains(validCards, rule.Cardinality) {
			errs = append(errs, fmt.Errorf("%s: invalid cardinality %q, want one of '!', '?', '+', '*'",
				name, rule.Cardinality))

			continue
		}

		l, err := locator.Parse(rule.Cardinality + rule.Locator)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))

			continue
		}

		_, err = l.WithSubfield(rule.Subfield)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}

		for i, fd := range rule.Filters {
			if (fd.Pattern == "") == (fd.Format == "") {
				errs = append(errs, fmt.Errorf("%s: filter %d: exactly one of pattern or format must be set", name, i))

				continue
			}

			if fd.Pattern != "" {
				_, err := regexp.Compile(fd.Pattern)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: filter %d: %w", name, i, err))
				}
			}
		}
	}

	return errors.Combine(errs...)
}

// Compile validates the file and builds map rules ready for Record.Map.
func (f *File) Compile() (map[string]pica.Rule, error) {
	err := f.Validate()
	if err != nil {
		return nil, err
	}

	rules := make(map[string]pica.Rule, len(f.Fields))

	for name, rule := range f.Fields {
		steps := make([]filter.Step, 0, len(rule.Filters))

		for _, fd := range rule.Filters {
			if fd.Pattern != "" {
				steps = append(steps, filter.Pattern(fd.Pattern))
			} else {
				steps = append(steps, filter.Format(fd.Format))
			}
		}

		rules[name] = pica.Rule{
			Card:     rule.Cardinality,
			Locator:  rule.Locator,
			Subfield: rule.Subfield,
			Filters:  steps,
		}
	}

	return rules, nil
}

// names returns the rule names sorted, for deterministic validation output.
func (f *File) names() []string {
	names := make([]string, 0, len(f.Fields))
	for name := range f.Fields {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
