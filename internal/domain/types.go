package domain

// CatalogItem is one menu entry. Loaded once per session from the menu store
// and treated as read-only by the ordering core.
type CatalogItem struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	BasePrice           int      `json:"base_price"`
	SizeVariants        []string `json:"size_variants,omitempty"`
	TemperatureVariants []string `json:"temperature_variants,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	PopularityScore     int      `json:"popularity_score"`
	AdminPriority       *int     `json:"admin_priority,omitempty"`
	ImageURL            string   `json:"image_url,omitempty"`
}

// OptionSet is the size/temperature selection distinguishing otherwise
// identical catalog items. An empty string means the option does not apply.
type OptionSet struct {
	Size        string `json:"size"`
	Temperature string `json:"temperature"`
}

// Equal compares both fields structurally. This is the merge key comparison;
// never compare option sets through serialization.
func (o OptionSet) Equal(other OptionSet) bool {
	return o.Size == other.Size && o.Temperature == other.Temperature
}

// MergeKey identifies a cart entry: two line items with the same key are the
// same entry and must be merged, never duplicated.
type MergeKey struct {
	CatalogID string
	Options   OptionSet
}

// LineItem is one priced, quantified entry in the cart.
type LineItem struct {
	CatalogID   string    `json:"catalog_id"`
	DisplayName string    `json:"display_name"`
	Category    string    `json:"category"`
	UnitPrice   int       `json:"unit_price"`
	Options     OptionSet `json:"options"`
	Quantity    int       `json:"quantity"`
	LineTotal   int       `json:"line_total"`
}

func (li LineItem) Key() MergeKey {
	return MergeKey{CatalogID: li.CatalogID, Options: li.Options}
}

// Recalc restores the lineTotal invariant after any quantity or price change.
func (li *LineItem) Recalc() {
	li.LineTotal = li.UnitPrice * li.Quantity
}

// Intent actions the external language model may return.
const (
	ActionAdd       = "add"
	ActionUpdate    = "update"
	ActionRemove    = "remove"
	ActionQuery     = "query"
	ActionRecommend = "recommend"
	ActionError     = "error"
)

// Intent is the structured interpretation of one utterance, produced by the
// external intent service.
type Intent struct {
	Action       string       `json:"action"`
	Items        []IntentItem `json:"items"`
	Response     string       `json:"response"`
	ErrorDetails string       `json:"error_details,omitempty"`
}

// IntentItem references a menu entry by name. Pointer fields distinguish
// "not mentioned" from an explicit value, which matters for update requests
// where unspecified fields retain the existing entry's value.
type IntentItem struct {
	MenuName        string     `json:"menu_name"`
	Temperature     *string    `json:"temperature,omitempty"`
	Size            *string    `json:"size,omitempty"`
	Quantity        *int       `json:"quantity,omitempty"`
	OriginalOptions *OptionSet `json:"original_options,omitempty"`
}

// Order is a recorded checkout.
type Order struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	Total     int        `json:"total"`
	OrderedAt string     `json:"ordered_at"`
}
