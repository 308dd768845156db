package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

var _ repository.ExpenseRepository = (*ExpenseRepo)(nil)

// ExpenseRepo implementación de ExpenseRepository sobre PostgreSQL
// (usable con pool o tx).
type ExpenseRepo struct {
	q Querier
}

// NewExpenseRepository construye el adaptador de gastos. Pasar pool o tx (Querier).
func NewExpenseRepository(q Querier) *ExpenseRepo {
	return &ExpenseRepo{q: q}
}

// Create inserta un gasto.
func (r *ExpenseRepo) Create(ctx context.Context, e *entity.Expense) error {
	query := `
		INSERT INTO expenses (id, amount, reason, date, session_id, category, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Amount, e.Reason, e.Date,
		nullIfEmpty(e.SessionID), nullIfEmpty(e.Category), nullIfEmpty(e.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("crear gasto: %w", err)
	}
	return nil
}

// GetBySession gastos vinculados a una sesión, en orden cronológico.
func (r *ExpenseRepo) GetBySession(ctx context.Context, sessionID string) ([]entity.Expense, error) {
	query := `
		SELECT id, amount, reason, date, COALESCE(session_id, ''), COALESCE(category, ''), COALESCE(created_by, '')
		FROM expenses WHERE session_id = $1 ORDER BY date`
	return r.queryExpenses(ctx, query, sessionID)
}

// GetUnlinked gastos aún sin sesión asignada.
func (r *ExpenseRepo) GetUnlinked(ctx context.Context) ([]entity.Expense, error) {
	query := `
		SELECT id, amount, reason, date, COALESCE(session_id, ''), COALESCE(category, ''), COALESCE(created_by, '')
		FROM expenses WHERE session_id IS NULL ORDER BY date`
	return r.queryExpenses(ctx, query)
}

// LinkOrphanExpenses asigna la sesión a los gastos sin sesión.
func (r *ExpenseRepo) LinkOrphanExpenses(ctx context.Context, sessionID string) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE expenses SET session_id = $1 WHERE session_id IS NULL`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("vincular gastos: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ExpenseRepo) queryExpenses(ctx context.Context, query string, args ...any) ([]entity.Expense, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar gastos: %w", err)
	}
	defer rows.Close()

	var expenses []entity.Expense
	for rows.Next() {
		var e entity.Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Reason, &e.Date, &e.SessionID, &e.Category, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("escanear gasto: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
