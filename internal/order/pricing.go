package order

import (
	"fmt"

	"mealmart-be/internal/restaurant"
)

// BuildLineItems prices every cart entry against the restaurant's live menu.
// The price always comes from the menu, never from the client. A cart entry
// referencing a menu item that no longer exists aborts the whole checkout;
// partial orders are never produced.
func BuildLineItems(cartItems []CartItem, menuItems []restaurant.MenuItem) ([]LineItem, error) {
	menu := make(map[string]restaurant.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		menu[mi.ID.String()] = mi
	}

	lineItems := make([]LineItem, 0, len(cartItems))
	for _, ci := range cartItems {
		mi, ok := menu[ci.MenuItemID.String()]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMenuItem, ci.MenuItemID)
		}

		lineItems = append(lineItems, LineItem{
			ProductName: mi.Name,
			UnitPrice:   mi.Price,
			Quantity:    ci.Quantity,
		})
	}

	return lineItems, nil
}

// LineItemsTotal sums unit price times quantity over the priced items.
func LineItemsTotal(items []LineItem) int64 {
	var total int64
	for _, li := range items {
		total += li.UnitPrice * int64(li.Quantity)
	}
	return total
}
