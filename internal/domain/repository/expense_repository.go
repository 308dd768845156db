package repository

import (
	"context"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
)

// ExpenseRepository persistencia de gastos de caja.
type ExpenseRepository interface {
	Create(ctx context.Context, e *entity.Expense) error
	GetBySession(ctx context.Context, sessionID string) ([]entity.Expense, error)
	// GetUnlinked gastos aún sin sesión asignada.
	GetUnlinked(ctx context.Context) ([]entity.Expense, error)
	// LinkOrphanExpenses asigna sessionID a los gastos sin sesión y devuelve
	// cuántos vinculó.
	LinkOrphanExpenses(ctx context.Context, sessionID string) (int64, error)
}
