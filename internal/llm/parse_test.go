package llm

import (
	"errors"
	"testing"

	"kiosk/internal/domain"
)

func TestParseIntentValid(t *testing.T) {
	raw := `{"action":"add","items":[{"menu_name":"Americano","quantity":2,"size":"large"}],"response":"Added two americanos."}`
	got, err := ParseIntent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Action != domain.ActionAdd {
		t.Fatalf("action=%q, want add", got.Action)
	}
	if len(got.Items) != 1 || got.Items[0].MenuName != "Americano" {
		t.Fatalf("items=%+v, want one Americano", got.Items)
	}
	if got.Items[0].Quantity == nil || *got.Items[0].Quantity != 2 {
		t.Fatalf("quantity=%v, want 2", got.Items[0].Quantity)
	}
	if got.Items[0].Temperature != nil {
		t.Fatalf("temperature=%v, want unspecified", got.Items[0].Temperature)
	}
}

func TestParseIntentStripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"action\":\"query\",\"items\":[],\"response\":\"Here is your cart.\"}\n```"
	got, err := ParseIntent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Action != domain.ActionQuery {
		t.Fatalf("action=%q, want query", got.Action)
	}
}

func TestParseIntentRejectsNonJSON(t *testing.T) {
	_, err := ParseIntent("Sorry, I could not understand the request.")
	if !errors.Is(err, domain.ErrMalformedIntent) {
		t.Fatalf("err=%v, want ErrMalformedIntent", err)
	}
}

func TestParseIntentRejectsMissingAction(t *testing.T) {
	_, err := ParseIntent(`{"items":[],"response":"hi"}`)
	if !errors.Is(err, domain.ErrMalformedIntent) {
		t.Fatalf("err=%v, want ErrMalformedIntent", err)
	}
}

func TestParseIntentRejectsUnknownAction(t *testing.T) {
	_, err := ParseIntent(`{"action":"teleport","items":[],"response":"zap"}`)
	if !errors.Is(err, domain.ErrMalformedIntent) {
		t.Fatalf("err=%v, want ErrMalformedIntent", err)
	}
}

func TestParseIntentRejectsNonListItems(t *testing.T) {
	_, err := ParseIntent(`{"action":"add","items":{"menu_name":"Americano"}}`)
	if !errors.Is(err, domain.ErrMalformedIntent) {
		t.Fatalf("err=%v, want ErrMalformedIntent", err)
	}
}

func TestParseIntentNormalizesActionCase(t *testing.T) {
	got, err := ParseIntent(`{"action":" Remove ","items":[]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Action != domain.ActionRemove {
		t.Fatalf("action=%q, want remove", got.Action)
	}
}
