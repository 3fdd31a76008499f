package catalog

import (
	"log/slog"
	"regexp"
	"strings"
)

// SerializerFunc parses one category-specific attribute. A nil result
// means the text was unparseable.
type SerializerFunc func(raw string) any

type customKey struct {
	cat   Category
	field string
}

// customSerializers is populated at init and read-only afterwards, so it
// is safely shared across workers. Mapping entries tagged "custom" with
// no registry entry here resolve to nil at extraction time; that is a
// data-quality gap, not a fatal condition.
var customSerializers = map[customKey]SerializerFunc{
	{CategoryMemory, "speed_mhz"}:    parseMemorySpeed,
	{CategoryStorage, "capacity_gb"}: parseStorageCapacity,
}

// CustomSerialize dispatches to the registry for custom-kind attributes.
// A missing entry is equivalent to an unparseable value: nil, logged,
// never an error.
func CustomSerialize(cat Category, field, raw string, logger *slog.Logger) any {
	fn, ok := customSerializers[customKey{cat, field}]
	if !ok {
		logger.Warn("no custom serializer registered",
			"category", cat.String(), "field", field)
		return nil
	}
	return fn(raw)
}

var memorySpeedRe = regexp.MustCompile(`(?i)DDR\d[A-Z]?-(\d+)`)

// parseMemorySpeed turns "DDR4-3200" style text into the transfer rate
// as a number (3200).
func parseMemorySpeed(raw string) any {
	m := memorySpeedRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	f, ok := ParseNumber(m[1])
	if !ok {
		return nil
	}
	return f
}

// parseStorageCapacity normalizes "500 GB" / "2 TB" to gigabytes.
func parseStorageCapacity(raw string) any {
	f, ok := ParseNumber(raw)
	if !ok {
		return nil
	}
	switch {
	case strings.Contains(strings.ToUpper(raw), "TB"):
		return f * 1000
	case strings.Contains(strings.ToUpper(raw), "MB"):
		return f / 1000
	default:
		return f
	}
}
