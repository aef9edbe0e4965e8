package domain

// OutOfStockOption tells the backend how to treat shortages when shipping
type OutOfStockOption string

const (
	OutOfStockIgnore OutOfStockOption = "IGNORE_STOCK"
)

// Warehouse is reference data fetched once per session
type Warehouse struct {
	ID               int              `json:"id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	KanaName         string           `json:"kanaName"`
	OutOfStockOption OutOfStockOption `json:"outOfStockOption"`
}

// FindWarehouse returns the warehouse with the given id
func FindWarehouse(warehouses []Warehouse, id int) (Warehouse, bool) {
	for _, w := range warehouses {
		if w.ID == id {
			return w, true
		}
	}
	return Warehouse{}, false
}
