package db

import "kiosk/internal/domain"

// DefaultMenu bootstraps an empty database with the stock cafe menu.
func DefaultMenu() []domain.CatalogItem {
	sizes := []string{"small", "medium", "large"}
	hotIced := []string{"hot", "iced"}

	return []domain.CatalogItem{
		{Name: "Americano", Category: "coffee", BasePrice: 3500, SizeVariants: sizes, TemperatureVariants: hotIced, Tags: []string{"espresso"}},
		{Name: "Cafe Latte", Category: "coffee", BasePrice: 4200, SizeVariants: sizes, TemperatureVariants: hotIced, Tags: []string{"espresso", "milk"}},
		{Name: "Vanilla Latte", Category: "coffee", BasePrice: 4700, SizeVariants: sizes, TemperatureVariants: hotIced, Tags: []string{"espresso", "milk", "sweet"}},
		{Name: "Cappuccino", Category: "coffee", BasePrice: 4200, SizeVariants: sizes, TemperatureVariants: []string{"hot"}, Tags: []string{"espresso", "milk"}},
		{Name: "Cold Brew", Category: "coffee", BasePrice: 4500, SizeVariants: sizes, TemperatureVariants: []string{"iced"}, Tags: []string{"brew"}},
		{Name: "Green Tea Latte", Category: "tea", BasePrice: 4800, SizeVariants: sizes, TemperatureVariants: hotIced, Tags: []string{"tea", "milk"}},
		{Name: "Chamomile Tea", Category: "tea", BasePrice: 4000, TemperatureVariants: []string{"hot"}, Tags: []string{"tea", "caffeine-free"}},
		{Name: "Lemonade", Category: "ade", BasePrice: 4500, SizeVariants: sizes, TemperatureVariants: []string{"iced"}, Tags: []string{"fruit"}},
		{Name: "Grapefruit Ade", Category: "ade", BasePrice: 4800, SizeVariants: sizes, TemperatureVariants: []string{"iced"}, Tags: []string{"fruit"}},
		{Name: "Cheesecake", Category: "dessert", BasePrice: 5500, Tags: []string{"cake"}},
		{Name: "Chocolate Cake", Category: "dessert", BasePrice: 5800, Tags: []string{"cake"}},
		{Name: "Croissant", Category: "dessert", BasePrice: 3800, Tags: []string{"bakery"}},
	}
}
