package llm

import (
	"encoding/json"
	"strings"

	"kiosk/internal/domain"
)

// BuildOrderPrompt is the system prompt given to the intent model. It pins the
// JSON contract and embeds the menu and the current cart so the model can fill
// original_options when the user changes an existing entry.
func BuildOrderPrompt(cartItems []domain.LineItem, menu []domain.CatalogItem) string {
	var sb strings.Builder
	sb.WriteString(`You are the ordering assistant of a cafe kiosk.
Convert the user's spoken or typed request into STRICT JSON:

{
  "action": "add | update | remove | query | recommend | error",
  "items": [
    {
      "menu_name": "exact menu name from the menu below",
      "temperature": "hot | iced",
      "size": "small | medium | large",
      "quantity": 1,
      "original_options": {"size": "...", "temperature": "..."}
    }
  ],
  "response": "short, friendly sentence to speak back to the user",
  "error_details": "only for action=error"
}

Rules:
- Output MUST be valid JSON and contain ONLY JSON. No markdown, no comments.
- Omit temperature/size/quantity when the user did not mention them.
- "original_options" is required only for action=update: copy the options of
  the cart entry the user wants to change, taken from the cart below.
- action=remove with an empty items list means "empty the whole cart".
- If the request is not about ordering, use action=error with a short
  explanation in error_details.
`)

	sb.WriteString("\nMenu:\n")
	type promptMenu struct {
		Name         string   `json:"name"`
		Category     string   `json:"category"`
		Price        int      `json:"price"`
		Sizes        []string `json:"sizes,omitempty"`
		Temperatures []string `json:"temperatures,omitempty"`
	}
	menuOut := make([]promptMenu, 0, len(menu))
	for _, m := range menu {
		menuOut = append(menuOut, promptMenu{
			Name:         m.Name,
			Category:     m.Category,
			Price:        m.BasePrice,
			Sizes:        m.SizeVariants,
			Temperatures: m.TemperatureVariants,
		})
	}
	writeJSONLine(&sb, menuOut)

	sb.WriteString("\nCurrent cart:\n")
	type promptCart struct {
		Name     string           `json:"name"`
		Options  domain.OptionSet `json:"options"`
		Quantity int              `json:"quantity"`
	}
	cartOut := make([]promptCart, 0, len(cartItems))
	for _, item := range cartItems {
		cartOut = append(cartOut, promptCart{Name: item.DisplayName, Options: item.Options, Quantity: item.Quantity})
	}
	writeJSONLine(&sb, cartOut)

	return sb.String()
}

func writeJSONLine(sb *strings.Builder, v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		sb.WriteString("[]\n")
		return
	}
	sb.Write(buf)
	sb.WriteString("\n")
}
