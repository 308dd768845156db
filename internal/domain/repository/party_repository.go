package repository

import (
	"context"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PartyRepository contrapartes (clientes y proveedores). El motor muta el
// balance de crédito y agrega historial; GetByID devuelve (nil, nil) si no
// existe.
type PartyRepository interface {
	GetByID(ctx context.Context, kind entity.PartyKind, id string) (*entity.Party, error)
	// AdjustBalance suma delta a credit_balance (NULL cuenta como 0).
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) error
	AddHistory(ctx context.Context, h *entity.PartyHistory) error
	GetHistory(ctx context.Context, partyID string) ([]entity.PartyHistory, error)
}
