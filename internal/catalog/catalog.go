package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"kiosk/internal/domain"
)

const categoryDessert = "dessert"

// Preferred defaults when an item declares the matching variant.
const (
	defaultSize        = "medium"
	defaultTemperature = "iced"
)

// Catalog is the immutable-per-session menu view. All lookups are read-only;
// administrative updates land in the store and take effect next session.
type Catalog struct {
	items    []domain.CatalogItem
	byID     map[string]int
	byName   map[string]int
	collator *collate.Collator
}

// New builds a catalog over items. The locale tag drives the name collation
// used as the listing tiebreaker.
func New(items []domain.CatalogItem, locale language.Tag) *Catalog {
	c := &Catalog{
		items:    append([]domain.CatalogItem{}, items...),
		byID:     make(map[string]int, len(items)),
		byName:   make(map[string]int, len(items)),
		collator: collate.New(locale),
	}
	for i, item := range c.items {
		c.byID[item.ID] = i
		c.byName[strings.ToLower(item.Name)] = i
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// FindByName resolves a menu name with a case-insensitive exact match.
func (c *Catalog) FindByName(name string) (domain.CatalogItem, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return domain.CatalogItem{}, false
	}
	return c.items[i], true
}

func (c *Catalog) FindByID(id string) (domain.CatalogItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.CatalogItem{}, false
	}
	return c.items[i], true
}

// ListSorted returns the display order: adminPriority ascending with unset
// values last, then popularity descending, then name ascending under the
// catalog's collation. An empty category matches everything.
func (c *Catalog) ListSorted(category string) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(c.items))
	for _, item := range c.items {
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		out = append(out, item)
	}
	SortItems(out, c.collator)
	return out
}

// SortItems orders items in place per the listing rule.
func SortItems(items []domain.CatalogItem, collator *collate.Collator) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.AdminPriority != nil && b.AdminPriority == nil:
			return true
		case a.AdminPriority == nil && b.AdminPriority != nil:
			return false
		case a.AdminPriority != nil && b.AdminPriority != nil && *a.AdminPriority != *b.AdminPriority:
			return *a.AdminPriority < *b.AdminPriority
		}
		if a.PopularityScore != b.PopularityScore {
			return a.PopularityScore > b.PopularityScore
		}
		return collator.CompareString(a.Name, b.Name) < 0
	})
}

// DefaultOptions derives the option set used when an order does not specify
// one: medium if declared else the first declared size, iced if declared else
// the first declared temperature. Desserts never carry options.
func DefaultOptions(item domain.CatalogItem) domain.OptionSet {
	if strings.EqualFold(item.Category, categoryDessert) {
		return domain.OptionSet{}
	}
	return domain.OptionSet{
		Size:        pickDefault(item.SizeVariants, defaultSize),
		Temperature: pickDefault(item.TemperatureVariants, defaultTemperature),
	}
}

func pickDefault(variants []string, preferred string) string {
	if len(variants) == 0 {
		return ""
	}
	for _, v := range variants {
		if v == preferred {
			return v
		}
	}
	return variants[0]
}

// HasVariant reports whether value is one of the declared variants.
func HasVariant(variants []string, value string) bool {
	for _, v := range variants {
		if v == value {
			return true
		}
	}
	return false
}
