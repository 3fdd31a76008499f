package catalog

// Record is the normalized output for one catalog item. Values are
// string, float64, bool or nil; the field set depends on which mapped
// attributes are present on the item's page. "name" is always set and
// "price" is always present (nil when the raw price was unparseable).
// A Record is never mutated after being appended to its PageBatch.
type Record map[string]any

// Name returns the item name, or "" when missing.
func (r Record) Name() string {
	if s, ok := r["name"].(string); ok {
		return s
	}
	return ""
}

// Price returns the parsed price and whether a numeric price is present.
func (r Record) Price() (float64, bool) {
	f, ok := r["price"].(float64)
	return f, ok
}

// PageBatch is the ordered set of Records extracted from one results
// page. Batches are ephemeral and consumed by the result sink as they
// are produced.
type PageBatch struct {
	Page    int
	Records []Record
}
