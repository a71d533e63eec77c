package whsync

import "github.com/tjwells85/whs_backend/models"

// OrderTypeOf classifies an order by the first character of its id.
// Unknown prefixes (and empty ids) fall back to SaleOrder.
func OrderTypeOf(orderId string) models.OrderType {
	if orderId == "" {
		return models.OrderTypeSale
	}
	switch orderId[0] {
	case 'S':
		return models.OrderTypeSale
	case 'T':
		return models.OrderTypeTransfer
	case 'P':
		return models.OrderTypePurchase
	case 'W':
		return models.OrderTypeWork
	default:
		return models.OrderTypeSale
	}
}
