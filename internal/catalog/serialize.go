package catalog

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// numberRe finds the first number-like run in a string, tolerating
// thousand separators and decimals ("1,079", "129.99").
var numberRe = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// ParseNumber extracts a numeric value from raw attribute text,
// discarding currency symbols and other decoration. Returns false when
// nothing numeric is found.
func ParseNumber(raw string) (float64, bool) {
	match := numberRe.FindString(raw)
	if match == "" {
		return 0, false
	}
	cleaned := strings.ReplaceAll(match, ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// affirmative / negative vocabulary for boolean-kind attributes.
var boolTokens = map[string]bool{
	"yes":   true,
	"true":  true,
	"y":     true,
	"no":    false,
	"false": false,
	"n":     false,
	"none":  false,
}

// SerializeGeneric converts raw attribute text into a typed value
// according to kind. A nil result means "present but empty/unparseable";
// unrecognized kinds also resolve to nil with a logged warning rather
// than an error, so mapping-table gaps never abort extraction.
func SerializeGeneric(raw string, kind Kind, logger *slog.Logger) any {
	switch kind {
	case KindString:
		s := strings.TrimSpace(raw)
		s = whitespaceRe.ReplaceAllString(s, " ")
		if s == "" {
			return nil
		}
		return s
	case KindNumber:
		f, ok := ParseNumber(raw)
		if !ok {
			return nil
		}
		return f
	case KindBoolean:
		b, ok := boolTokens[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			return nil
		}
		return b
	case KindEnum:
		s := strings.TrimSpace(raw)
		if s == "" {
			return nil
		}
		return s
	default:
		logger.Warn("unrecognized serialization kind", "kind", string(kind))
		return nil
	}
}
