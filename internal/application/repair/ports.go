package repair

import (
	"context"

	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

// TxRunner unidad atómica de las mutaciones de reparaciones: repuestos e
// inventario se mueven juntos o no se mueve nada.
type TxRunner interface {
	RunRepair(ctx context.Context, fn func(
		repairRepo repository.RepairRepository,
		invRepo repository.InventoryRepository,
	) error) error
}
