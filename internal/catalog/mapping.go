package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind tells the serializer how to interpret a raw attribute's text.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
	KindCustom  Kind = "custom"
)

func (k Kind) valid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindEnum, KindCustom:
		return true
	}
	return false
}

// FieldMapping says which output field a raw attribute label feeds and
// how its text is serialized.
type FieldMapping struct {
	Field string
	Kind  Kind
}

// MappingTable translates raw human-readable attribute labels into typed
// output fields, per category. It is loaded once at startup and shared
// read-only by all workers; no locking required.
type MappingTable struct {
	categories map[Category]map[string]FieldMapping
}

// mappingFile mirrors the YAML layout: category -> raw label -> [field, kind].
type mappingFile map[string]map[string][2]string

// LoadMappingTable reads the mapping configuration from a YAML file.
// A raw label appearing twice within one category is a load error, as is
// an unknown serialization kind.
func LoadMappingTable(path string) (*MappingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return ParseMappingTable(data)
}

// ParseMappingTable parses mapping configuration from raw YAML bytes.
func ParseMappingTable(data []byte) (*MappingTable, error) {
	var raw mappingFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse mapping file: %w", err)
	}

	table := &MappingTable{categories: make(map[Category]map[string]FieldMapping, len(raw))}
	for catName, labels := range raw {
		cat, err := ParseCategory(catName)
		if err != nil {
			return nil, fmt.Errorf("mapping file: %w", err)
		}
		if _, exists := table.categories[cat]; exists {
			return nil, fmt.Errorf("mapping file: duplicate category %q", catName)
		}

		section := make(map[string]FieldMapping, len(labels))
		for label, entry := range labels {
			kind := Kind(entry[1])
			if !kind.valid() {
				return nil, fmt.Errorf("mapping file: category %q label %q: unknown kind %q", catName, label, entry[1])
			}
			if entry[0] == "" {
				return nil, fmt.Errorf("mapping file: category %q label %q: empty field name", catName, label)
			}
			section[label] = FieldMapping{Field: entry[0], Kind: kind}
		}
		table.categories[cat] = section
	}

	return table, nil
}

// Resolve looks up the mapping for a raw attribute label. A missing
// entry is a data-quality gap, not an error: callers log and leave the
// field absent from the Record.
func (t *MappingTable) Resolve(cat Category, rawLabel string) (FieldMapping, bool) {
	section, ok := t.categories[cat]
	if !ok {
		return FieldMapping{}, false
	}
	m, ok := section[rawLabel]
	return m, ok
}

// Labels returns how many labels are mapped for a category. Used for
// startup sanity logging.
func (t *MappingTable) Labels(cat Category) int {
	return len(t.categories[cat])
}
