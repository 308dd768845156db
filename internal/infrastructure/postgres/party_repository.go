package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercio-api/internal/domain"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo implementación de PartyRepository sobre PostgreSQL
// (usable con pool o tx).
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador de contrapartes. Pasar pool o tx (Querier).
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

// GetByID obtiene una contraparte por id dentro de un kind; (nil, nil) si no existe.
func (r *PartyRepo) GetByID(ctx context.Context, kind entity.PartyKind, id string) (*entity.Party, error) {
	query := `
		SELECT id, party_kind, name, COALESCE(contact_name, ''), COALESCE(email, ''),
		       COALESCE(phone, ''), COALESCE(address, ''), COALESCE(notes, ''),
		       credit_balance, active, created_at, updated_at
		FROM parties WHERE id = $1 AND party_kind = $2`
	var p entity.Party
	err := r.q.QueryRow(ctx, query, id, kind).Scan(
		&p.ID, &p.Kind, &p.Name, &p.ContactName, &p.Email,
		&p.Phone, &p.Address, &p.Notes,
		&p.CreditBalance, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("obtener contraparte: %w", err)
	}
	return &p, nil
}

// AdjustBalance suma delta a credit_balance (NULL cuenta como 0) en una sola sentencia.
func (r *PartyRepo) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE parties SET credit_balance = COALESCE(credit_balance, 0) + $2, updated_at = now() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("ajustar balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ajustar balance %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AddHistory agrega un movimiento de balance.
func (r *PartyRepo) AddHistory(ctx context.Context, h *entity.PartyHistory) error {
	query := `
		INSERT INTO party_history (id, party_id, date, type, notes, amount, changed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.q.Exec(ctx, query,
		h.ID, h.PartyID, h.Date, h.Type, nullIfEmpty(h.Notes), h.Amount, nullIfEmpty(h.ChangedBy),
	)
	if err != nil {
		return fmt.Errorf("historial de contraparte: %w", err)
	}
	return nil
}

// GetHistory movimientos de una contraparte, más recientes primero.
func (r *PartyRepo) GetHistory(ctx context.Context, partyID string) ([]entity.PartyHistory, error) {
	query := `
		SELECT id, party_id, date, type, COALESCE(notes, ''), amount, COALESCE(changed_by, '')
		FROM party_history WHERE party_id = $1 ORDER BY date DESC`
	rows, err := r.q.Query(ctx, query, partyID)
	if err != nil {
		return nil, fmt.Errorf("listar historial de contraparte: %w", err)
	}
	defer rows.Close()

	var hs []entity.PartyHistory
	for rows.Next() {
		var h entity.PartyHistory
		if err := rows.Scan(&h.ID, &h.PartyID, &h.Date, &h.Type, &h.Notes, &h.Amount, &h.ChangedBy); err != nil {
			return nil, fmt.Errorf("escanear historial de contraparte: %w", err)
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}
