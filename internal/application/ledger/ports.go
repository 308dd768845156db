package ledger

import (
	"context"

	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repos de documentos, inventario y contrapartes. Toda operación del motor
// que emite más de una sentencia corre dentro de Run: o se aplica completa
// o no deja rastro.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		invRepo repository.InventoryRepository,
		partyRepo repository.PartyRepository,
	) error) error
}
