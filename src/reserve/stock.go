package reserve

import (
	"campusbites/src/config"
	"campusbites/src/types"
)

type StockState int

const (
	// SoldOut only ever derives from an exact quantity of zero.
	SoldOut StockState = iota
	// CountedAvailable carries the remaining exact count.
	CountedAvailable
	// BulkAvailable carries the coarse level for items without exact counts.
	// The level is a hint; it never blocks a reservation on its own.
	BulkAvailable
)

type StockView struct {
	State StockState
	Count int
	Level types.StockLevel
}

// Stock derives the presentable state of an item from its raw inventory
// fields. Pure; recomputed whenever quantities or the item list change.
func Stock(quantity *int, level types.StockLevel) StockView {
	if quantity != nil {
		if *quantity == 0 {
			return StockView{State: SoldOut}
		}
		return StockView{State: CountedAvailable, Count: *quantity}
	}
	return StockView{State: BulkAvailable, Level: level}
}

// BandFor maps an exact count back onto the coarse bands used for bulk
// display. Zero lands in the low band; sold-out detection goes through
// Stock, which checks the quantity first.
func BandFor(n int) types.StockLevel {
	if n > config.MediumStockCeiling() {
		return types.STOCK_HIGH
	}
	if n > config.LowStockCeiling() {
		return types.STOCK_MEDIUM
	}
	return types.STOCK_LOW
}
