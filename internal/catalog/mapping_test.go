package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMapping = `
cpu:
  "Core Count": [core_count, number]
  "SMT": [smt, boolean]
memory:
  "Speed": [speed_mhz, custom]
`

func TestParseMappingTable(t *testing.T) {
	table, err := ParseMappingTable([]byte(sampleMapping))
	require.NoError(t, err)

	m, ok := table.Resolve(CategoryCPU, "Core Count")
	require.True(t, ok)
	assert.Equal(t, "core_count", m.Field)
	assert.Equal(t, KindNumber, m.Kind)

	m, ok = table.Resolve(CategoryMemory, "Speed")
	require.True(t, ok)
	assert.Equal(t, KindCustom, m.Kind)

	assert.Equal(t, 2, table.Labels(CategoryCPU))
	assert.Equal(t, 0, table.Labels(CategoryStorage))
}

func TestParseMappingTableErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown category",
			yaml: `gpu: {"Memory": [memory_gb, number]}`,
		},
		{
			name: "unknown kind",
			yaml: `cpu: {"Core Count": [core_count, integer]}`,
		},
		{
			name: "empty field name",
			yaml: `cpu: {"Core Count": ["", number]}`,
		},
		{
			name: "malformed yaml",
			yaml: `cpu: [not, a, mapping`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMappingTable([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestResolveUnknownLabel(t *testing.T) {
	table, err := ParseMappingTable([]byte(sampleMapping))
	require.NoError(t, err)

	_, ok := table.Resolve(CategoryCPU, "Mystery Spec")
	assert.False(t, ok)

	_, ok = table.Resolve(CategoryCase, "Color")
	assert.False(t, ok)
}

func TestParseCategory(t *testing.T) {
	cat, err := ParseCategory("CPU")
	require.NoError(t, err)
	assert.Equal(t, CategoryCPU, cat)

	cat, err = ParseCategory(" power-supply ")
	require.NoError(t, err)
	assert.Equal(t, CategoryPowerSupply, cat)

	_, err = ParseCategory("keyboard")
	assert.Error(t, err)
}

func TestListingPath(t *testing.T) {
	assert.Equal(t, "/products/video-card/", CategoryVideoCard.ListingPath())
}
