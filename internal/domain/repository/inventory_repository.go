package repository

import (
	"context"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
)

// InventoryRepository ajustes de existencias del catálogo. El motor solo
// necesita mutar cantidades y dejar rastro; el CRUD de artículos es externo.
type InventoryRepository interface {
	GetByID(ctx context.Context, itemID string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila del artículo (SELECT ... FOR UPDATE) para
	// verificar existencias antes de descontarlas en la misma transacción.
	GetForUpdate(ctx context.Context, itemID string) (*entity.InventoryItem, error)
	// AdjustStock suma delta a quantity_in_stock (NULL cuenta como 0) y
	// registra el movimiento en el historial.
	AdjustStock(ctx context.Context, itemID string, delta int64, eventType, notes, relatedID string) error
	GetHistory(ctx context.Context, itemID string) ([]entity.InventoryHistory, error)
}
