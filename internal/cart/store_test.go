package cart

import (
	"errors"
	"testing"

	"kiosk/internal/domain"
)

func lineItem(id string, options domain.OptionSet, unitPrice, quantity int) domain.LineItem {
	li := domain.LineItem{
		CatalogID:   id,
		DisplayName: "item-" + id,
		Category:    "coffee",
		UnitPrice:   unitPrice,
		Options:     options,
		Quantity:    quantity,
	}
	li.Recalc()
	return li
}

func TestAddMergesSameKey(t *testing.T) {
	s := NewStore()
	iced := domain.OptionSet{Size: "medium", Temperature: "iced"}

	s.Add(lineItem("m1", iced, 3500, 2))
	got := s.Add(lineItem("m1", iced, 3500, 3))

	if s.Len() != 1 {
		t.Fatalf("entries=%d, want 1", s.Len())
	}
	if got.Quantity != 5 {
		t.Fatalf("quantity=%d, want 5", got.Quantity)
	}
	if got.LineTotal != 3500*5 {
		t.Fatalf("lineTotal=%d, want %d", got.LineTotal, 3500*5)
	}
}

func TestAddKeepsDistinctOptionsSeparate(t *testing.T) {
	s := NewStore()
	s.Add(lineItem("m1", domain.OptionSet{Size: "medium", Temperature: "iced"}, 3500, 1))
	s.Add(lineItem("m1", domain.OptionSet{Size: "large", Temperature: "iced"}, 4000, 1))

	if s.Len() != 2 {
		t.Fatalf("entries=%d, want 2", s.Len())
	}
	if s.Total() != 7500 {
		t.Fatalf("total=%d, want 7500", s.Total())
	}
}

func TestUpdateQuantityRecomputesTotal(t *testing.T) {
	s := NewStore()
	iced := domain.OptionSet{Size: "medium", Temperature: "iced"}
	s.Add(lineItem("m1", iced, 3500, 1))

	got, err := s.UpdateQuantity("m1", iced, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Quantity != 4 || got.LineTotal != 14000 {
		t.Fatalf("quantity=%d lineTotal=%d, want 4 / 14000", got.Quantity, got.LineTotal)
	}
}

func TestUpdateQuantityNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.UpdateQuantity("missing", domain.OptionSet{}, 2)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestUpdateQuantityRejectsNonPositive(t *testing.T) {
	s := NewStore()
	iced := domain.OptionSet{Temperature: "iced"}
	s.Add(lineItem("m1", iced, 3500, 1))

	if _, err := s.UpdateQuantity("m1", iced, 0); !errors.Is(err, ErrNonPositiveQuantity) {
		t.Fatalf("err=%v, want ErrNonPositiveQuantity", err)
	}
	if s.Len() != 1 {
		t.Fatalf("store deleted implicitly, entries=%d, want 1", s.Len())
	}
}

func TestChangeOptionsRoundTrip(t *testing.T) {
	s := NewStore()
	old := domain.OptionSet{Size: "medium", Temperature: "iced"}
	newOpts := domain.OptionSet{Size: "large", Temperature: "hot"}
	s.Add(lineItem("m1", old, 3500, 2))

	got, err := s.ChangeOptions("m1", old, newOpts, 3, 4000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Quantity != 3 || got.UnitPrice != 4000 || got.LineTotal != 12000 {
		t.Fatalf("entry=%+v, want quantity 3 price 4000 total 12000", got)
	}

	if _, ok := s.Get("m1", old); ok {
		t.Fatalf("old key still present after change")
	}
	entry, ok := s.Get("m1", newOpts)
	if !ok {
		t.Fatalf("new key absent after change")
	}
	if entry.Quantity != 3 {
		t.Fatalf("quantity=%d, want 3", entry.Quantity)
	}
}

func TestChangeOptionsMergesOnCollision(t *testing.T) {
	s := NewStore()
	iced := domain.OptionSet{Size: "medium", Temperature: "iced"}
	hot := domain.OptionSet{Size: "medium", Temperature: "hot"}
	s.Add(lineItem("m1", iced, 3500, 2))
	s.Add(lineItem("m1", hot, 3500, 1))

	got, err := s.ChangeOptions("m1", iced, hot, 2, 3500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("entries=%d, want 1 after merge", s.Len())
	}
	if got.Quantity != 3 {
		t.Fatalf("quantity=%d, want 3 (no quantity lost)", got.Quantity)
	}
	if got.LineTotal != 3500*3 {
		t.Fatalf("lineTotal=%d, want %d", got.LineTotal, 3500*3)
	}
}

func TestChangeOptionsNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.ChangeOptions("m1", domain.OptionSet{}, domain.OptionSet{Size: "large"}, 1, 4000)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestRemoveIsNoOpWhenAbsent(t *testing.T) {
	s := NewStore()
	s.Add(lineItem("m1", domain.OptionSet{Temperature: "iced"}, 3500, 1))

	s.Remove("m1", domain.OptionSet{Temperature: "hot"})
	if s.Len() != 1 {
		t.Fatalf("entries=%d, want 1", s.Len())
	}

	s.Remove("m1", domain.OptionSet{Temperature: "iced"})
	if s.Len() != 0 {
		t.Fatalf("entries=%d, want 0", s.Len())
	}
}

func TestClearAndTotal(t *testing.T) {
	s := NewStore()
	s.Add(lineItem("m1", domain.OptionSet{Temperature: "iced"}, 3500, 2))
	s.Add(lineItem("m2", domain.OptionSet{}, 5500, 1))

	if s.Total() != 12500 {
		t.Fatalf("total=%d, want 12500", s.Total())
	}

	s.Clear()
	if s.Len() != 0 || s.Total() != 0 {
		t.Fatalf("after clear entries=%d total=%d, want 0/0", s.Len(), s.Total())
	}
}

func TestUniquenessInvariantUnderMixedOps(t *testing.T) {
	s := NewStore()
	iced := domain.OptionSet{Size: "medium", Temperature: "iced"}
	hot := domain.OptionSet{Size: "medium", Temperature: "hot"}
	large := domain.OptionSet{Size: "large", Temperature: "iced"}

	s.Add(lineItem("m1", iced, 3500, 1))
	s.Add(lineItem("m1", hot, 3500, 2))
	s.Add(lineItem("m1", iced, 3500, 1))
	if _, err := s.ChangeOptions("m1", hot, large, 2, 4000); err != nil {
		t.Fatalf("changeOptions failed: %v", err)
	}
	s.Add(lineItem("m1", large, 4000, 1))

	seen := map[domain.MergeKey]bool{}
	for _, item := range s.Items() {
		if seen[item.Key()] {
			t.Fatalf("duplicate merge key %+v", item.Key())
		}
		seen[item.Key()] = true
		if item.LineTotal != item.UnitPrice*item.Quantity {
			t.Fatalf("lineTotal invariant broken: %+v", item)
		}
	}
}
