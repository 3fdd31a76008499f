package catalog

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"$129.99", 129.99, true},
		{"129.99", 129.99, true},
		{"$1,079.00", 1079.00, true},
		{"64 GB", 64, true},
		{"3.7 GHz", 3.7, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"free", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			result, ok := ParseNumber(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, result)
			}
		})
	}
}

func TestSerializeGeneric(t *testing.T) {
	logger := discardLogger()

	tests := []struct {
		name     string
		raw      string
		kind     Kind
		expected any
	}{
		{"number with currency", "$129.99", KindNumber, 129.99},
		{"plain integer", "8", KindNumber, 8.0},
		{"number empty", "", KindNumber, nil},
		{"number non-numeric", "None", KindNumber, nil},
		{"string trims", "  ATX Mid Tower  ", KindString, "ATX Mid Tower"},
		{"string collapses newlines", "Radeon\nRX 6600", KindString, "Radeon RX 6600"},
		{"string empty", "   ", KindString, nil},
		{"boolean yes", "Yes", KindBoolean, true},
		{"boolean no", "No", KindBoolean, false},
		{"boolean none token", "None", KindBoolean, false},
		{"boolean unknown", "maybe", KindBoolean, nil},
		{"enum trims", " ATX ", KindEnum, "ATX"},
		{"enum empty", "", KindEnum, nil},
		{"unrecognized kind", "anything", Kind("mystery"), nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SerializeGeneric(tc.raw, tc.kind, logger))
		})
	}
}

func TestCustomSerialize(t *testing.T) {
	logger := discardLogger()

	t.Run("memory speed", func(t *testing.T) {
		assert.Equal(t, 3200.0, CustomSerialize(CategoryMemory, "speed_mhz", "DDR4-3200", logger))
		assert.Equal(t, 6000.0, CustomSerialize(CategoryMemory, "speed_mhz", "DDR5-6000", logger))
		assert.Nil(t, CustomSerialize(CategoryMemory, "speed_mhz", "fast", logger))
	})

	t.Run("storage capacity normalized to GB", func(t *testing.T) {
		assert.Equal(t, 500.0, CustomSerialize(CategoryStorage, "capacity_gb", "500 GB", logger))
		assert.Equal(t, 2000.0, CustomSerialize(CategoryStorage, "capacity_gb", "2 TB", logger))
		assert.Equal(t, 0.256, CustomSerialize(CategoryStorage, "capacity_gb", "256 MB", logger))
		assert.Nil(t, CustomSerialize(CategoryStorage, "capacity_gb", "", logger))
	})

	t.Run("missing registry entry resolves to nil", func(t *testing.T) {
		assert.Nil(t, CustomSerialize(CategoryCase, "no_such_field", "whatever", logger))
	})
}
