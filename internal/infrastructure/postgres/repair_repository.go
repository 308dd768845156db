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

var _ repository.RepairRepository = (*RepairRepo)(nil)

// RepairRepo implementación de RepairRepository sobre PostgreSQL
// (usable con pool o tx).
type RepairRepo struct {
	q Querier
}

// NewRepairRepository construye el adaptador de reparaciones. Pasar pool o tx (Querier).
func NewRepairRepository(q Querier) *RepairRepo {
	return &RepairRepo{q: q}
}

const repairColumns = `
	id, code, customer_name, COALESCE(customer_phone, ''), device_brand,
	device_model, issue_description, estimated_cost, status, payment_status,
	created_at, updated_at`

func scanRepair(row pgx.Row) (*entity.Repair, error) {
	var r entity.Repair
	err := row.Scan(
		&r.ID, &r.Code, &r.CustomerName, &r.CustomerPhone, &r.DeviceBrand,
		&r.DeviceModel, &r.IssueDescription, &r.EstimatedCost, &r.Status,
		&r.PaymentStatus, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// Create inserta la cabecera de una reparación.
func (r *RepairRepo) Create(ctx context.Context, rep *entity.Repair) error {
	query := `
		INSERT INTO repairs (
			id, code, customer_name, customer_phone, device_brand, device_model,
			issue_description, estimated_cost, status, payment_status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.q.Exec(ctx, query,
		rep.ID, rep.Code, rep.CustomerName, nullIfEmpty(rep.CustomerPhone),
		rep.DeviceBrand, rep.DeviceModel, rep.IssueDescription,
		rep.EstimatedCost, rep.Status, rep.PaymentStatus,
		rep.CreatedAt, rep.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("crear reparación: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por id; (nil, nil) si no existe.
func (r *RepairRepo) GetByID(ctx context.Context, id string) (*entity.Repair, error) {
	query := `SELECT` + repairColumns + ` FROM repairs WHERE id = $1`
	rep, err := scanRepair(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("obtener reparación: %w", err)
	}
	return rep, nil
}

// GetForUpdate obtiene la cabecera y bloquea la fila (SELECT FOR UPDATE).
func (r *RepairRepo) GetForUpdate(ctx context.Context, id string) (*entity.Repair, error) {
	query := `SELECT` + repairColumns + ` FROM repairs WHERE id = $1 FOR UPDATE`
	rep, err := scanRepair(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("obtener reparación for update: %w", err)
	}
	return rep, nil
}

// GetAll lista reparaciones, más recientes primero.
func (r *RepairRepo) GetAll(ctx context.Context) ([]entity.Repair, error) {
	query := `SELECT` + repairColumns + ` FROM repairs ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listar reparaciones: %w", err)
	}
	defer rows.Close()

	var repairs []entity.Repair
	for rows.Next() {
		var rep entity.Repair
		if err := rows.Scan(
			&rep.ID, &rep.Code, &rep.CustomerName, &rep.CustomerPhone, &rep.DeviceBrand,
			&rep.DeviceModel, &rep.IssueDescription, &rep.EstimatedCost, &rep.Status,
			&rep.PaymentStatus, &rep.CreatedAt, &rep.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("escanear reparación: %w", err)
		}
		repairs = append(repairs, rep)
	}
	return repairs, rows.Err()
}

// UpdateHeader actualiza los datos de la cabecera (el código no cambia).
func (r *RepairRepo) UpdateHeader(ctx context.Context, rep *entity.Repair) error {
	query := `
		UPDATE repairs
		SET customer_name = $2, customer_phone = $3, device_brand = $4,
		    device_model = $5, issue_description = $6, estimated_cost = $7,
		    payment_status = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		rep.ID, rep.CustomerName, nullIfEmpty(rep.CustomerPhone),
		rep.DeviceBrand, rep.DeviceModel, rep.IssueDescription,
		rep.EstimatedCost, rep.PaymentStatus, rep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("actualizar reparación: %w", err)
	}
	return nil
}

// UpdateStatus cambia el estado del ciclo de vida.
func (r *RepairRepo) UpdateStatus(ctx context.Context, id string, status entity.RepairStatus) error {
	query := `UPDATE repairs SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("actualizar estado de reparación: %w", err)
	}
	return nil
}

// UpdatePaymentStatus persiste el estado de pago derivado.
func (r *RepairRepo) UpdatePaymentStatus(ctx context.Context, id string, ps entity.PaymentStatus) error {
	query := `UPDATE repairs SET payment_status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, ps)
	if err != nil {
		return fmt.Errorf("actualizar estado de pago: %w", err)
	}
	return nil
}

// Delete elimina la reparación; los hijos caen en cascada. Reporta si existía.
func (r *RepairRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM repairs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("eliminar reparación: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GreatestCode mayor código existente (REP###). Ordena por longitud y luego
// lexicográficamente para que "REP1000" gane a "REP999".
func (r *RepairRepo) GreatestCode(ctx context.Context) (string, error) {
	query := `
		SELECT code FROM repairs
		ORDER BY length(code) DESC, code DESC
		LIMIT 1`
	var code string
	err := r.q.QueryRow(ctx, query).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("obtener mayor código: %w", err)
	}
	return code, nil
}

// AddUsedPart inserta un repuesto consumido.
func (r *RepairRepo) AddUsedPart(ctx context.Context, p *entity.RepairUsedPart) error {
	query := `
		INSERT INTO repair_used_parts (id, repair_id, part_id, part_name, quantity, unit_price)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.RepairID, nullIfEmpty(p.PartID), p.PartName, p.Quantity, p.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("agregar repuesto: %w", err)
	}
	return nil
}

// GetUsedParts repuestos de una reparación.
func (r *RepairRepo) GetUsedParts(ctx context.Context, repairID string) ([]entity.RepairUsedPart, error) {
	query := `
		SELECT id, repair_id, COALESCE(part_id, ''), part_name, quantity, unit_price
		FROM repair_used_parts WHERE repair_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, repairID)
	if err != nil {
		return nil, fmt.Errorf("listar repuestos: %w", err)
	}
	defer rows.Close()

	var parts []entity.RepairUsedPart
	for rows.Next() {
		var p entity.RepairUsedPart
		if err := rows.Scan(&p.ID, &p.RepairID, &p.PartID, &p.PartName, &p.Quantity, &p.UnitPrice); err != nil {
			return nil, fmt.Errorf("escanear repuesto: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// GetUsedPart repuesto por id dentro de la reparación; (nil, nil) si no existe.
func (r *RepairRepo) GetUsedPart(ctx context.Context, repairID, partRowID string) (*entity.RepairUsedPart, error) {
	query := `
		SELECT id, repair_id, COALESCE(part_id, ''), part_name, quantity, unit_price
		FROM repair_used_parts WHERE id = $1 AND repair_id = $2`
	var p entity.RepairUsedPart
	err := r.q.QueryRow(ctx, query, partRowID, repairID).Scan(
		&p.ID, &p.RepairID, &p.PartID, &p.PartName, &p.Quantity, &p.UnitPrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("obtener repuesto: %w", err)
	}
	return &p, nil
}

// RemoveUsedPart elimina un repuesto; reporta si existía.
func (r *RepairRepo) RemoveUsedPart(ctx context.Context, repairID, partRowID string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM repair_used_parts WHERE id = $1 AND repair_id = $2`, partRowID, repairID)
	if err != nil {
		return false, fmt.Errorf("eliminar repuesto: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddPayment inserta un pago de reparación.
func (r *RepairRepo) AddPayment(ctx context.Context, p *entity.RepairPayment) error {
	query := `
		INSERT INTO repair_payments (id, repair_id, amount, method, date, received_by, session_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.RepairID, p.Amount, p.Method, p.Date,
		nullIfEmpty(p.ReceivedBy), nullIfEmpty(p.SessionID),
	)
	if err != nil {
		return fmt.Errorf("agregar pago de reparación: %w", err)
	}
	return nil
}

// GetPayments pagos de una reparación en orden cronológico.
func (r *RepairRepo) GetPayments(ctx context.Context, repairID string) ([]entity.RepairPayment, error) {
	query := `
		SELECT id, repair_id, amount, method, date, COALESCE(received_by, ''), COALESCE(session_id, '')
		FROM repair_payments WHERE repair_id = $1 ORDER BY date`
	rows, err := r.q.Query(ctx, query, repairID)
	if err != nil {
		return nil, fmt.Errorf("listar pagos de reparación: %w", err)
	}
	defer rows.Close()

	var payments []entity.RepairPayment
	for rows.Next() {
		var p entity.RepairPayment
		if err := rows.Scan(&p.ID, &p.RepairID, &p.Amount, &p.Method, &p.Date, &p.ReceivedBy, &p.SessionID); err != nil {
			return nil, fmt.Errorf("escanear pago de reparación: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SumPayments total pagado de la reparación.
func (r *RepairRepo) SumPayments(ctx context.Context, repairID string) (decimal.Decimal, error) {
	var paid decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM repair_payments WHERE repair_id = $1`,
		repairID,
	).Scan(&paid)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sumar pagos de reparación: %w", err)
	}
	return paid, nil
}

// LinkOrphanPayments asigna la sesión a los pagos de reparación sin sesión.
func (r *RepairRepo) LinkOrphanPayments(ctx context.Context, sessionID string) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE repair_payments SET session_id = $1 WHERE session_id IS NULL`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("vincular pagos de reparación: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AddHistory agrega un evento de auditoría de la reparación.
func (r *RepairRepo) AddHistory(ctx context.Context, h *entity.RepairHistory) error {
	query := `
		INSERT INTO repair_history (id, repair_id, date, event_type, details, changed_by)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.q.Exec(ctx, query,
		h.ID, h.RepairID, h.Date, h.EventType,
		nullIfEmpty(h.Details), nullIfEmpty(h.ChangedBy),
	)
	if err != nil {
		return fmt.Errorf("agregar historial de reparación: %w", err)
	}
	return nil
}

// GetHistory eventos de la reparación, más recientes primero.
func (r *RepairRepo) GetHistory(ctx context.Context, repairID string) ([]entity.RepairHistory, error) {
	query := `
		SELECT id, repair_id, date, event_type, COALESCE(details, ''), COALESCE(changed_by, '')
		FROM repair_history WHERE repair_id = $1 ORDER BY date DESC`
	rows, err := r.q.Query(ctx, query, repairID)
	if err != nil {
		return nil, fmt.Errorf("listar historial de reparación: %w", err)
	}
	defer rows.Close()

	var hs []entity.RepairHistory
	for rows.Next() {
		var h entity.RepairHistory
		if err := rows.Scan(&h.ID, &h.RepairID, &h.Date, &h.EventType, &h.Details, &h.ChangedBy); err != nil {
			return nil, fmt.Errorf("escanear historial de reparación: %w", err)
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}
