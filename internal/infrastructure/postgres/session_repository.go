package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo implementación de SessionRepository sobre PostgreSQL
// (usable con pool o tx).
type SessionRepo struct {
	q Querier
}

// NewSessionRepository construye el adaptador de sesiones. Pasar pool o tx (Querier).
func NewSessionRepository(q Querier) *SessionRepo {
	return &SessionRepo{q: q}
}

const sessionColumns = `
	id, start_time, end_time, opening_balance, closing_balance,
	counted_amount, withdrawal_amount, status, COALESCE(notes, ''),
	COALESCE(created_by, '')`

func scanSession(row pgx.Row) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(
		&s.ID, &s.StartTime, &s.EndTime, &s.OpeningBalance, &s.ClosingBalance,
		&s.CountedAmount, &s.WithdrawalAmount, &s.Status, &s.Notes, &s.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Create inserta una sesión de caja.
func (r *SessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	query := `
		INSERT INTO cash_sessions (
			id, start_time, end_time, opening_balance, closing_balance,
			counted_amount, withdrawal_amount, status, notes, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.StartTime, s.EndTime, s.OpeningBalance, s.ClosingBalance,
		s.CountedAmount, s.WithdrawalAmount, s.Status,
		nullIfEmpty(s.Notes), nullIfEmpty(s.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("crear sesión: %w", err)
	}
	return nil
}

// GetByID obtiene una sesión; (nil, nil) si no existe.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	query := `SELECT` + sessionColumns + ` FROM cash_sessions WHERE id = $1`
	s, err := scanSession(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("obtener sesión: %w", err)
	}
	return s, nil
}

// GetOpen sesión abierta actual; (nil, nil) si no hay ninguna.
func (r *SessionRepo) GetOpen(ctx context.Context) (*entity.CashSession, error) {
	query := `SELECT` + sessionColumns + ` FROM cash_sessions WHERE status = 'open' ORDER BY start_time DESC LIMIT 1`
	s, err := scanSession(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("obtener sesión abierta: %w", err)
	}
	return s, nil
}

// GetLastClosed sesión cerrada más reciente; (nil, nil) si no hay ninguna.
func (r *SessionRepo) GetLastClosed(ctx context.Context) (*entity.CashSession, error) {
	query := `SELECT` + sessionColumns + ` FROM cash_sessions WHERE status = 'closed' ORDER BY end_time DESC LIMIT 1`
	s, err := scanSession(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("obtener última sesión cerrada: %w", err)
	}
	return s, nil
}

// GetAll sesiones ordenadas de la más reciente a la más antigua.
func (r *SessionRepo) GetAll(ctx context.Context, limit, offset int) ([]entity.CashSession, error) {
	query := `SELECT` + sessionColumns + ` FROM cash_sessions ORDER BY start_time DESC`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar sesiones: %w", err)
	}
	defer rows.Close()

	var sessions []entity.CashSession
	for rows.Next() {
		var s entity.CashSession
		if err := rows.Scan(
			&s.ID, &s.StartTime, &s.EndTime, &s.OpeningBalance, &s.ClosingBalance,
			&s.CountedAmount, &s.WithdrawalAmount, &s.Status, &s.Notes, &s.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("escanear sesión: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Close persiste el cierre de la sesión.
func (r *SessionRepo) Close(ctx context.Context, s *entity.CashSession) error {
	query := `
		UPDATE cash_sessions
		SET end_time = $2, closing_balance = $3, counted_amount = $4,
		    withdrawal_amount = $5, status = $6, notes = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.EndTime, s.ClosingBalance, s.CountedAmount,
		s.WithdrawalAmount, s.Status, nullIfEmpty(s.Notes),
	)
	if err != nil {
		return fmt.Errorf("cerrar sesión: %w", err)
	}
	return nil
}
