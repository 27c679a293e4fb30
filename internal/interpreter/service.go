// Package interpreter dispatches structured order intents onto the cart.
// It owns the user-facing confirmation text: every branch returns a non-empty
// message, and per-item failures never block the remaining items.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kiosk/internal/cart"
	"kiosk/internal/catalog"
	"kiosk/internal/domain"
	"kiosk/internal/llm"
	"kiosk/internal/normalize"
)

const fallbackMessage = "Sorry, I could not process that order. Please try again."

// Result is what the session layer speaks and displays after a command.
type Result struct {
	Action          string               `json:"action"`
	Message         string               `json:"message"`
	CartItems       []domain.LineItem    `json:"cart_items"`
	Total           int                  `json:"total"`
	Recommendations []domain.CatalogItem `json:"recommendations,omitempty"`
	ItemErrors      []string             `json:"item_errors,omitempty"`
}

type Service struct {
	provider llm.Provider
	catalog  *catalog.Catalog
	cart     *cart.Store
	logger   *slog.Logger
}

func New(provider llm.Provider, cat *catalog.Catalog, store *cart.Store, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		catalog:  cat,
		cart:     store,
		logger:   logger,
	}
}

// Cart exposes the session cart for the HTTP layer.
func (s *Service) Cart() *cart.Store {
	return s.cart
}

// Catalog exposes the session catalog view.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// HandleUtterance sends the utterance with the current cart and catalog to the
// intent service and dispatches the returned intent. Transport failures and
// unusable intents abort the whole command with a single generic fallback
// message; the returned Result is always speakable.
func (s *Service) HandleUtterance(ctx context.Context, utterance string) (Result, error) {
	intent, err := s.provider.Infer(ctx, utterance, s.cart.Items(), s.catalog.ListSorted(""))
	if err != nil {
		s.logger.Warn("intent inference failed", "error", err)
		return s.fallbackResult(), err
	}
	return s.Dispatch(ctx, intent)
}

// Dispatch routes a validated intent to the matching cart operation.
func (s *Service) Dispatch(_ context.Context, intent domain.Intent) (Result, error) {
	action := strings.ToLower(strings.TrimSpace(intent.Action))
	switch action {
	case domain.ActionAdd:
		return s.handleAdd(intent), nil
	case domain.ActionUpdate:
		return s.handleUpdate(intent), nil
	case domain.ActionRemove:
		return s.handleRemove(intent), nil
	case domain.ActionQuery:
		return s.handleQuery(intent), nil
	case domain.ActionRecommend:
		return s.handleRecommend(intent), nil
	case domain.ActionError:
		return s.handleError(intent), nil
	default:
		return s.fallbackResult(), fmt.Errorf("%w: unknown action %q", domain.ErrMalformedIntent, intent.Action)
	}
}

func (s *Service) handleAdd(intent domain.Intent) Result {
	var added []string
	var itemErrors []string
	for _, item := range intent.Items {
		line, err := normalize.LineItem(s.catalog, item)
		if err != nil {
			itemErrors = append(itemErrors, itemErrorMessage(err))
			continue
		}
		entry := s.cart.Add(line)
		added = append(added, fmt.Sprintf("%d x %s%s", line.Quantity, entry.DisplayName, formatOptions(entry.Options)))
	}

	message := intent.Response
	if message == "" || len(itemErrors) > 0 {
		var parts []string
		if len(added) > 0 {
			parts = append(parts, "Added "+strings.Join(added, ", ")+".")
		}
		parts = append(parts, itemErrors...)
		message = strings.Join(parts, " ")
	}
	if message == "" {
		message = "Nothing was added to the cart."
	}
	return s.result(domain.ActionAdd, message, itemErrors)
}

func (s *Service) handleUpdate(intent domain.Intent) Result {
	var changed []string
	var itemErrors []string
	for _, item := range intent.Items {
		menu, ok := s.catalog.FindByName(item.MenuName)
		if !ok {
			itemErrors = append(itemErrors, itemErrorMessage(&domain.MenuNotResolvedError{MenuName: item.MenuName}))
			continue
		}

		var original domain.OptionSet
		if item.OriginalOptions != nil {
			original = *item.OriginalOptions
		}
		existing, ok := s.cart.Get(menu.ID, original)
		if !ok {
			itemErrors = append(itemErrors, itemErrorMessage(&domain.ItemNotInCartError{MenuName: menu.Name, Options: original}))
			continue
		}

		line, err := normalize.FromCatalogItem(menu, mergeWithExisting(item, existing))
		if err != nil {
			itemErrors = append(itemErrors, itemErrorMessage(err))
			continue
		}

		if _, err := s.cart.ChangeOptions(menu.ID, original, line.Options, line.Quantity, line.UnitPrice); err != nil {
			// Existence was checked above, so this is a programming-contract
			// violation, not a user mistake.
			s.logger.Error("cart changeOptions failed after lookup", "menu", menu.Name, "error", err)
			itemErrors = append(itemErrors, fmt.Sprintf("Could not complete the change for %s.", menu.Name))
			continue
		}
		changed = append(changed, fmt.Sprintf("%d x %s%s", line.Quantity, menu.Name, formatOptions(line.Options)))
	}

	message := intent.Response
	if message == "" || len(itemErrors) > 0 {
		var parts []string
		if len(changed) > 0 {
			parts = append(parts, "Updated "+strings.Join(changed, ", ")+".")
		}
		parts = append(parts, itemErrors...)
		message = strings.Join(parts, " ")
	}
	if message == "" {
		message = "Nothing in the cart was changed."
	}
	return s.result(domain.ActionUpdate, message, itemErrors)
}

func (s *Service) handleRemove(intent domain.Intent) Result {
	if len(intent.Items) == 0 {
		s.cart.Clear()
		message := intent.Response
		if message == "" {
			message = "Emptied the cart."
		}
		return s.result(domain.ActionRemove, message, nil)
	}

	var removed []string
	var itemErrors []string
	for _, item := range intent.Items {
		menu, ok := s.catalog.FindByName(item.MenuName)
		if !ok {
			itemErrors = append(itemErrors, itemErrorMessage(&domain.MenuNotResolvedError{MenuName: item.MenuName}))
			continue
		}

		entry, ok := s.locateRemovalTarget(menu, item)
		if !ok {
			itemErrors = append(itemErrors, itemErrorMessage(&domain.ItemNotInCartError{MenuName: menu.Name}))
			continue
		}
		s.cart.Remove(entry.CatalogID, entry.Options)
		removed = append(removed, entry.DisplayName+formatOptions(entry.Options))
	}

	message := intent.Response
	if message == "" || len(itemErrors) > 0 {
		var parts []string
		if len(removed) > 0 {
			parts = append(parts, "Removed "+strings.Join(removed, ", ")+".")
		}
		parts = append(parts, itemErrors...)
		message = strings.Join(parts, " ")
	}
	if message == "" {
		message = "Nothing was removed from the cart."
	}
	return s.result(domain.ActionRemove, message, itemErrors)
}

// locateRemovalTarget matches a cart entry by catalog id, narrowed by options
// when the request carries them; otherwise the first entry for the item wins.
func (s *Service) locateRemovalTarget(menu domain.CatalogItem, item domain.IntentItem) (domain.LineItem, bool) {
	if options, ok := requestedOptions(item); ok {
		return s.cart.Get(menu.ID, options)
	}
	for _, entry := range s.cart.Items() {
		if entry.CatalogID == menu.ID {
			return entry, true
		}
	}
	return domain.LineItem{}, false
}

func (s *Service) handleQuery(intent domain.Intent) Result {
	items := s.cart.Items()
	message := intent.Response
	if message == "" {
		if len(items) == 0 {
			message = "Your cart is empty."
		} else {
			var parts []string
			for _, item := range items {
				parts = append(parts, fmt.Sprintf("%d x %s%s", item.Quantity, item.DisplayName, formatOptions(item.Options)))
			}
			message = fmt.Sprintf("Your cart has %s. Total %d.", strings.Join(parts, ", "), s.cart.Total())
		}
	}
	return s.result(domain.ActionQuery, message, nil)
}

// handleRecommend maps referenced names to catalog entries for navigation.
// Recommendation is best effort: unresolved names are skipped silently and the
// cart is never touched.
func (s *Service) handleRecommend(intent domain.Intent) Result {
	var recs []domain.CatalogItem
	for _, item := range intent.Items {
		if menu, ok := s.catalog.FindByName(item.MenuName); ok {
			recs = append(recs, menu)
		}
	}

	message := intent.Response
	if message == "" {
		if len(recs) == 0 {
			message = "I have no recommendation right now."
		} else {
			names := make([]string, 0, len(recs))
			for _, menu := range recs {
				names = append(names, menu.Name)
			}
			message = "How about " + strings.Join(names, ", ") + "?"
		}
	}
	out := s.result(domain.ActionRecommend, message, nil)
	out.Recommendations = recs
	return out
}

func (s *Service) handleError(intent domain.Intent) Result {
	message := intent.Response
	if message == "" {
		message = intent.ErrorDetails
	}
	if message == "" {
		message = "Sorry, I did not understand that request."
	}
	return s.result(domain.ActionError, message, nil)
}

func (s *Service) result(action, message string, itemErrors []string) Result {
	return Result{
		Action:     action,
		Message:    message,
		CartItems:  s.cart.Items(),
		Total:      s.cart.Total(),
		ItemErrors: itemErrors,
	}
}

func (s *Service) fallbackResult() Result {
	return s.result(domain.ActionError, fallbackMessage, nil)
}

// mergeWithExisting fills the fields the update request left unspecified with
// the existing entry's values, so normalization sees a complete item.
func mergeWithExisting(item domain.IntentItem, existing domain.LineItem) domain.IntentItem {
	merged := item
	if merged.Temperature == nil && existing.Options.Temperature != "" {
		temperature := existing.Options.Temperature
		merged.Temperature = &temperature
	}
	if merged.Size == nil && existing.Options.Size != "" {
		size := existing.Options.Size
		merged.Size = &size
	}
	if merged.Quantity == nil {
		quantity := existing.Quantity
		merged.Quantity = &quantity
	}
	return merged
}

// requestedOptions reconstructs the option set a removal request points at.
func requestedOptions(item domain.IntentItem) (domain.OptionSet, bool) {
	if item.OriginalOptions != nil {
		return *item.OriginalOptions, true
	}
	if item.Size == nil && item.Temperature == nil {
		return domain.OptionSet{}, false
	}
	var options domain.OptionSet
	if item.Size != nil {
		options.Size = *item.Size
	}
	if item.Temperature != nil {
		options.Temperature = *item.Temperature
	}
	return options, true
}

func formatOptions(options domain.OptionSet) string {
	var parts []string
	if options.Temperature != "" {
		parts = append(parts, options.Temperature)
	}
	if options.Size != "" {
		parts = append(parts, options.Size)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func itemErrorMessage(err error) string {
	var notResolved *domain.MenuNotResolvedError
	if errors.As(err, &notResolved) {
		return fmt.Sprintf("Sorry, I could not find %q on the menu.", notResolved.MenuName)
	}
	var invalidOption *domain.InvalidOptionError
	if errors.As(err, &invalidOption) {
		return fmt.Sprintf("%s is not available as %s %s.", invalidOption.MenuName, invalidOption.Value, invalidOption.Field)
	}
	var invalidQuantity *domain.InvalidQuantityError
	if errors.As(err, &invalidQuantity) {
		return fmt.Sprintf("The quantity for %s must be at least 1.", invalidQuantity.MenuName)
	}
	var notInCart *domain.ItemNotInCartError
	if errors.As(err, &notInCart) {
		return fmt.Sprintf("%s is not in your cart.", notInCart.MenuName)
	}
	return "Sorry, one of the requested items could not be processed."
}
