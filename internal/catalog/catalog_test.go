package catalog

import (
	"testing"

	"golang.org/x/text/language"

	"kiosk/internal/domain"
)

func intPtr(v int) *int { return &v }

func testItems() []domain.CatalogItem {
	return []domain.CatalogItem{
		{ID: "m1", Name: "Americano", Category: "coffee", BasePrice: 3500,
			SizeVariants: []string{"small", "medium", "large"}, TemperatureVariants: []string{"hot", "iced"}, PopularityScore: 10},
		{ID: "m2", Name: "Cold Brew", Category: "coffee", BasePrice: 4500,
			SizeVariants: []string{"small", "large"}, TemperatureVariants: []string{"iced"}, PopularityScore: 30},
		{ID: "m3", Name: "Cheesecake", Category: "dessert", BasePrice: 5500,
			SizeVariants: []string{"small", "large"}, TemperatureVariants: []string{"hot"}, PopularityScore: 5},
		{ID: "m4", Name: "Lemonade", Category: "ade", BasePrice: 4500, PopularityScore: 30},
	}
}

func TestFindByNameCaseInsensitive(t *testing.T) {
	c := New(testItems(), language.English)
	item, ok := c.FindByName("  americano ")
	if !ok {
		t.Fatalf("expected a match")
	}
	if item.ID != "m1" {
		t.Fatalf("id=%s, want m1", item.ID)
	}
	if _, ok := c.FindByName("Flat White"); ok {
		t.Fatalf("unexpected match for unknown name")
	}
}

func TestDefaultOptionsPrefersMediumAndIced(t *testing.T) {
	c := New(testItems(), language.English)
	item, _ := c.FindByID("m1")
	got := DefaultOptions(item)
	if got.Size != "medium" || got.Temperature != "iced" {
		t.Fatalf("defaults=%+v, want medium/iced", got)
	}
}

func TestDefaultOptionsFallsBackToFirstVariant(t *testing.T) {
	c := New(testItems(), language.English)
	item, _ := c.FindByID("m2")
	got := DefaultOptions(item)
	if got.Size != "small" {
		t.Fatalf("size=%q, want first declared variant small", got.Size)
	}
	if got.Temperature != "iced" {
		t.Fatalf("temperature=%q, want iced", got.Temperature)
	}
}

func TestDefaultOptionsEmptyVariants(t *testing.T) {
	c := New(testItems(), language.English)
	item, _ := c.FindByID("m4")
	got := DefaultOptions(item)
	if got.Size != "" || got.Temperature != "" {
		t.Fatalf("defaults=%+v, want empty options", got)
	}
}

func TestDefaultOptionsDessertForcesNull(t *testing.T) {
	c := New(testItems(), language.English)
	item, _ := c.FindByID("m3")
	got := DefaultOptions(item)
	if got.Size != "" || got.Temperature != "" {
		t.Fatalf("dessert defaults=%+v, want empty options despite declared variants", got)
	}
}

func TestListSortedOrder(t *testing.T) {
	items := []domain.CatalogItem{
		{ID: "a", Name: "Banana Juice", PopularityScore: 50},
		{ID: "b", Name: "Apple Juice", PopularityScore: 50},
		{ID: "c", Name: "Citrus Punch", PopularityScore: 90},
		{ID: "d", Name: "Decaf Latte", PopularityScore: 1, AdminPriority: intPtr(2)},
		{ID: "e", Name: "Espresso", PopularityScore: 1, AdminPriority: intPtr(1)},
	}
	c := New(items, language.English)

	got := c.ListSorted("")
	want := []string{"e", "d", "c", "b", "a"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s, want %s (order %v)", i, got[i].ID, id, ids(got))
		}
	}
}

func TestListSortedCategoryFilter(t *testing.T) {
	c := New(testItems(), language.English)
	got := c.ListSorted("coffee")
	if len(got) != 2 {
		t.Fatalf("len=%d, want 2", len(got))
	}
	for _, item := range got {
		if item.Category != "coffee" {
			t.Fatalf("unexpected category %q", item.Category)
		}
	}
}

func ids(items []domain.CatalogItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
