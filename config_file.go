package translator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML form of a configuration. Types maps destination
// type names, as printed by reflect.Type.String() ("views.OrderView"), to
// field settings, so that types can be mapped without struct tags:
//
//	defensiveCopies: true
//	sourcePropertyRequired: false
//	accessMode: property
//	extensions: [expr]
//	types:
//	  views.OrderView:
//	    fields:
//	      Total:    {source: "expr:Quantity * UnitPrice", optionality: required}
//	      Customer: {translate: true}
//	      Lines:    {itemSource: Line}
//	      Internal: {ignore: true}
type FileConfig struct {
	Version                string                 `yaml:"version,omitempty"`
	DefensiveCopies        *bool                  `yaml:"defensiveCopies,omitempty"`
	SourcePropertyRequired *bool                  `yaml:"sourcePropertyRequired,omitempty"`
	AccessMode             string                 `yaml:"accessMode,omitempty"`
	Extensions             []string               `yaml:"extensions,omitempty"`
	Types                  map[string]TypeMapping `yaml:"types,omitempty"`
}

// TypeMapping holds the field settings of one destination type.
type TypeMapping struct {
	Fields map[string]FieldMapping `yaml:"fields"`
}

// FieldMapping is the YAML form of a FieldDescriptor.
type FieldMapping struct {
	Source      string `yaml:"source,omitempty"`
	Translate   bool   `yaml:"translate,omitempty"`
	Update      bool   `yaml:"update,omitempty"`
	Optionality string `yaml:"optionality,omitempty"`
	Access      string `yaml:"access,omitempty"`
	Ignore      bool   `yaml:"ignore,omitempty"`
	ItemSource  string `yaml:"itemSource,omitempty"`
}

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	return ParseFile(data)
}

// ParseFile parses YAML data into a FileConfig.
func ParseFile(data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse configuration YAML: %w", err)
	}
	applyDefaults(&fc)
	return &fc, nil
}

// Marshal serializes a FileConfig to YAML.
func (fc *FileConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(fc)
}

func applyDefaults(fc *FileConfig) {
	if fc.Version == "" {
		fc.Version = "1"
	}
	if fc.Types == nil {
		fc.Types = make(map[string]TypeMapping)
	}
}

func (tm TypeMapping) descriptors() ([]FieldDescriptor, error) {
	out := make([]FieldDescriptor, 0, len(tm.Fields))
	for name, fm := range tm.Fields {
		opt, err := parseOptionality(fm.Optionality)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		access, err := parseAccessMode(fm.Access)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		out = append(out, FieldDescriptor{
			Name:        name,
			Source:      fm.Source,
			Translate:   fm.Translate,
			Update:      fm.Update,
			Optionality: opt,
			Access:      access,
			Ignore:      fm.Ignore,
			Item: CollectionDescriptor{
				TranslateItems: fm.Translate,
				ItemSource:     fm.ItemSource,
			},
		})
	}
	return out, nil
}
