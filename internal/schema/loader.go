package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	CaseRequired []FieldName `yaml:"case_required"`
	Forms        []struct {
		Type      FormType    `yaml:"type"`
		Mandatory []FieldName `yaml:"mandatory"`
		Optional  []FieldName `yaml:"optional"`
		Rules     []struct {
			Kind  string    `yaml:"kind"`
			Field FieldName `yaml:"field"`
		} `yaml:"rules"`
	} `yaml:"forms"`
}

// LoadFile reads a registry from a YAML document on disk.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Registry, error) {
	var doc fileDocument
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	schemas := make([]FormSchema, 0, len(doc.Forms))
	for _, f := range doc.Forms {
		s := FormSchema{Type: f.Type, Mandatory: f.Mandatory, Optional: f.Optional}
		for _, r := range f.Rules {
			rule, err := newRule(r.Kind, r.Field)
			if err != nil {
				return nil, err
			}
			s.Rules = append(s.Rules, rule)
		}
		schemas = append(schemas, s)
	}
	return NewRegistry(schemas, WithCaseRequired(doc.CaseRequired...))
}
