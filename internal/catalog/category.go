package catalog

import (
	"fmt"
	"strings"
)

// Category identifies one section of the catalog site. The set is closed:
// every category has its own attribute schema, mapping-table section and
// listing endpoint.
type Category string

const (
	CategoryCPU         Category = "cpu"
	CategoryCPUCooler   Category = "cpu-cooler"
	CategoryMotherboard Category = "motherboard"
	CategoryMemory      Category = "memory"
	CategoryStorage     Category = "storage"
	CategoryVideoCard   Category = "video-card"
	CategoryCase        Category = "case"
	CategoryPowerSupply Category = "power-supply"
)

// AllCategories returns the full category list in the order jobs are
// queued when no explicit selection is given.
func AllCategories() []Category {
	return []Category{
		CategoryCPU,
		CategoryCPUCooler,
		CategoryMotherboard,
		CategoryMemory,
		CategoryStorage,
		CategoryVideoCard,
		CategoryCase,
		CategoryPowerSupply,
	}
}

// ParseCategory validates a command-line token against the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCategories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// ListingPath returns the site path of the category's paginated product
// listing. Page numbers past the first are appended as a URL fragment by
// the caller.
func (c Category) ListingPath() string {
	return "/products/" + string(c) + "/"
}

func (c Category) String() string {
	return string(c)
}
