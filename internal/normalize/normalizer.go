// Package normalize turns a loosely specified order item from the intent
// service into a fully specified line item, applying catalog-driven defaults
// and validating requested options against the declared variants.
package normalize

import (
	"strings"

	"kiosk/internal/catalog"
	"kiosk/internal/domain"
)

const (
	sizeSmall = "small"
	sizeLarge = "large"

	// Fixed price band: small subtracts, large adds, medium leaves unchanged.
	sizeAdjustment = 500
)

// LineItem resolves the intent item's menu name against the catalog and fills
// unspecified fields with the catalog defaults.
func LineItem(c *catalog.Catalog, item domain.IntentItem) (domain.LineItem, error) {
	menu, ok := c.FindByName(item.MenuName)
	if !ok {
		return domain.LineItem{}, &domain.MenuNotResolvedError{MenuName: item.MenuName}
	}
	return FromCatalogItem(menu, item)
}

// FromCatalogItem normalizes against an already resolved catalog entry.
func FromCatalogItem(menu domain.CatalogItem, item domain.IntentItem) (domain.LineItem, error) {
	defaults := catalog.DefaultOptions(menu)
	options := defaults

	dessert := strings.EqualFold(menu.Category, "dessert")
	if !dessert {
		if item.Temperature != nil {
			if len(menu.TemperatureVariants) == 0 {
				options.Temperature = ""
			} else if !catalog.HasVariant(menu.TemperatureVariants, *item.Temperature) {
				return domain.LineItem{}, &domain.InvalidOptionError{MenuName: menu.Name, Field: "temperature", Value: *item.Temperature}
			} else {
				options.Temperature = *item.Temperature
			}
		}
		if item.Size != nil {
			if len(menu.SizeVariants) == 0 {
				options.Size = ""
			} else if !catalog.HasVariant(menu.SizeVariants, *item.Size) {
				return domain.LineItem{}, &domain.InvalidOptionError{MenuName: menu.Name, Field: "size", Value: *item.Size}
			} else {
				options.Size = *item.Size
			}
		}
	}

	quantity := 1
	if item.Quantity != nil {
		if *item.Quantity <= 0 {
			return domain.LineItem{}, &domain.InvalidQuantityError{MenuName: menu.Name, Quantity: *item.Quantity}
		}
		quantity = *item.Quantity
	}

	line := domain.LineItem{
		CatalogID:   menu.ID,
		DisplayName: menu.Name,
		Category:    menu.Category,
		UnitPrice:   menu.BasePrice + SizeAdjustment(menu, options.Size),
		Options:     options,
		Quantity:    quantity,
	}
	line.Recalc()
	return line, nil
}

// SizeAdjustment returns the price delta for the chosen size. It applies only
// when the item declares size variants.
func SizeAdjustment(menu domain.CatalogItem, size string) int {
	if len(menu.SizeVariants) == 0 {
		return 0
	}
	switch size {
	case sizeSmall:
		return -sizeAdjustment
	case sizeLarge:
		return sizeAdjustment
	default:
		return 0
	}
}
