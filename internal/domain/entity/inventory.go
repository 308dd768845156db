package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem artículo de catálogo. QuantityInStock NULL significa que el
// artículo no controla existencias; el motor lo trata como 0 al ajustar.
type InventoryItem struct {
	ID                string
	ItemName          string
	Brand             string
	ItemType          string
	BuyingPrice       decimal.Decimal
	SellingPrice      decimal.Decimal
	QuantityInStock   *int64
	LowStockThreshold *int64
	SupplierInfo      string
	Barcode           string
	CreatedAt         time.Time
}

// Eventos del historial de inventario.
const (
	StockEventSold       = "Sold"
	StockEventPurchased  = "Purchased"
	StockEventAdjustment = "Adjustment"
)

// InventoryHistory movimiento de existencias (append-only). RelatedID
// referencia el documento que originó el movimiento.
type InventoryHistory struct {
	ID             string
	ItemID         string
	Date           time.Time
	EventType      string
	QuantityChange int64
	Notes          string
	RelatedID      string
}
