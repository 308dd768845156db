package repository

import (
	"context"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
)

// SessionRepository sesiones de caja. GetOpen devuelve (nil, nil) si no hay
// sesión abierta.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	GetOpen(ctx context.Context) (*entity.CashSession, error)
	// GetLastClosed devuelve la sesión cerrada más reciente, o (nil, nil).
	GetLastClosed(ctx context.Context) (*entity.CashSession, error)
	GetAll(ctx context.Context, limit, offset int) ([]entity.CashSession, error)
	Close(ctx context.Context, s *entity.CashSession) error
}
