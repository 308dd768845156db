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

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository sobre PostgreSQL
// (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador de documentos. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `
	id, number, kind, doc_type, party_id, party_kind, status, payment_status,
	total_amount, paid_amount, COALESCE(notes, ''), created_at, updated_at,
	COALESCE(created_by, '')`

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	err := row.Scan(
		&d.ID, &d.Number, &d.Kind, &d.Type, &d.PartyID, &d.PartyKind,
		&d.Status, &d.PaymentStatus, &d.TotalAmount, &d.PaidAmount,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt, &d.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// Create inserta la cabecera de un documento.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (
			id, number, kind, doc_type, party_id, party_kind, status,
			payment_status, total_amount, paid_amount, notes, created_at,
			updated_at, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.Number, doc.Kind, doc.Type, doc.PartyID, doc.PartyKind,
		doc.Status, doc.PaymentStatus, doc.TotalAmount, doc.PaidAmount,
		nullIfEmpty(doc.Notes), doc.CreatedAt, doc.UpdatedAt,
		nullIfEmpty(doc.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("crear documento: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por id dentro de un kind; (nil, nil) si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	query := `SELECT` + documentColumns + ` FROM documents WHERE id = $1 AND kind = $2`
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id, kind))
	if err != nil {
		return nil, fmt.Errorf("obtener documento: %w", err)
	}
	return doc, nil
}

// GetForUpdate obtiene la cabecera y bloquea la fila (SELECT FOR UPDATE).
func (r *DocumentRepo) GetForUpdate(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	query := `SELECT` + documentColumns + ` FROM documents WHERE id = $1 AND kind = $2 FOR UPDATE`
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id, kind))
	if err != nil {
		return nil, fmt.Errorf("obtener documento for update: %w", err)
	}
	return doc, nil
}

// GetAll lista documentos de un kind con filtros opcionales, más recientes primero.
func (r *DocumentRepo) GetAll(ctx context.Context, kind entity.DocumentKind, filter repository.DocumentFilter) ([]entity.Document, error) {
	query := `SELECT` + documentColumns + ` FROM documents WHERE kind = $1`
	args := []any{kind}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		query += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}
	if filter.PartyID != "" {
		args = append(args, filter.PartyID)
		query += fmt.Sprintf(" AND party_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (number ILIKE $%d OR notes ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar documentos: %w", err)
	}
	defer rows.Close()

	var docs []entity.Document
	for rows.Next() {
		var d entity.Document
		if err := rows.Scan(
			&d.ID, &d.Number, &d.Kind, &d.Type, &d.PartyID, &d.PartyKind,
			&d.Status, &d.PaymentStatus, &d.TotalAmount, &d.PaidAmount,
			&d.Notes, &d.CreatedAt, &d.UpdatedAt, &d.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("escanear documento: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// UpdateHeader actualiza contraparte y notas de la cabecera.
func (r *DocumentRepo) UpdateHeader(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents
		SET party_id = $2, notes = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, doc.ID, doc.PartyID, nullIfEmpty(doc.Notes), doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("actualizar cabecera: %w", err)
	}
	return nil
}

// UpdateStatus cambia el estado del documento.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id string, status entity.DocumentStatus) error {
	query := `UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("actualizar estado: %w", err)
	}
	return nil
}

// UpdateTotals persiste los montos derivados y el estado de pago.
func (r *DocumentRepo) UpdateTotals(ctx context.Context, id string, total, paid decimal.Decimal, ps entity.PaymentStatus) error {
	query := `
		UPDATE documents
		SET total_amount = $2, paid_amount = $3, payment_status = $4, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, total, paid, ps)
	if err != nil {
		return fmt.Errorf("actualizar totales: %w", err)
	}
	return nil
}

// GreatestNumber mayor número existente para prefix-year. Ordena por
// longitud y luego lexicográficamente para que "PREFIX-2025-1000" gane a
// "PREFIX-2025-999".
func (r *DocumentRepo) GreatestNumber(ctx context.Context, prefix string, year int) (string, error) {
	query := `
		SELECT number FROM documents
		WHERE number LIKE $1
		ORDER BY length(number) DESC, number DESC
		LIMIT 1`
	var number string
	err := r.q.QueryRow(ctx, query, fmt.Sprintf("%s-%d-%%", prefix, year)).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("obtener mayor número: %w", err)
	}
	return number, nil
}

// AddItem inserta una línea.
func (r *DocumentRepo) AddItem(ctx context.Context, item *entity.DocumentItem) error {
	query := `
		INSERT INTO document_items (id, document_id, item_id, item_name, quantity, unit_price, total_price, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.DocumentID, nullIfEmpty(item.ItemID), item.ItemName,
		item.Quantity, item.UnitPrice, item.TotalPrice, nullIfEmpty(item.Notes),
	)
	if err != nil {
		return fmt.Errorf("agregar línea: %w", err)
	}
	return nil
}

// UpdateItem actualiza una línea existente.
func (r *DocumentRepo) UpdateItem(ctx context.Context, item *entity.DocumentItem) error {
	query := `
		UPDATE document_items
		SET item_id = $3, item_name = $4, quantity = $5, unit_price = $6, total_price = $7, notes = $8
		WHERE id = $1 AND document_id = $2`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.DocumentID, nullIfEmpty(item.ItemID), item.ItemName,
		item.Quantity, item.UnitPrice, item.TotalPrice, nullIfEmpty(item.Notes),
	)
	if err != nil {
		return fmt.Errorf("actualizar línea: %w", err)
	}
	return nil
}

// RemoveItem elimina una línea; reporta si existía.
func (r *DocumentRepo) RemoveItem(ctx context.Context, documentID, itemRowID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM document_items WHERE id = $1 AND document_id = $2`, itemRowID, documentID)
	if err != nil {
		return false, fmt.Errorf("eliminar línea: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetItems líneas de un documento.
func (r *DocumentRepo) GetItems(ctx context.Context, documentID string) ([]entity.DocumentItem, error) {
	query := `
		SELECT id, document_id, COALESCE(item_id, ''), item_name, quantity, unit_price, total_price, COALESCE(notes, '')
		FROM document_items WHERE document_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("listar líneas: %w", err)
	}
	defer rows.Close()

	var items []entity.DocumentItem
	for rows.Next() {
		var it entity.DocumentItem
		if err := rows.Scan(&it.ID, &it.DocumentID, &it.ItemID, &it.ItemName,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Notes); err != nil {
			return nil, fmt.Errorf("escanear línea: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetItem línea por id dentro del documento; (nil, nil) si no existe.
func (r *DocumentRepo) GetItem(ctx context.Context, documentID, itemRowID string) (*entity.DocumentItem, error) {
	query := `
		SELECT id, document_id, COALESCE(item_id, ''), item_name, quantity, unit_price, total_price, COALESCE(notes, '')
		FROM document_items WHERE id = $1 AND document_id = $2`
	var it entity.DocumentItem
	err := r.q.QueryRow(ctx, query, itemRowID, documentID).Scan(
		&it.ID, &it.DocumentID, &it.ItemID, &it.ItemName,
		&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("obtener línea: %w", err)
	}
	return &it, nil
}

// SumItems total de líneas del documento.
func (r *DocumentRepo) SumItems(ctx context.Context, documentID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM document_items WHERE document_id = $1`,
		documentID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sumar líneas: %w", err)
	}
	return total, nil
}

// AddPayment inserta un pago.
func (r *DocumentRepo) AddPayment(ctx context.Context, p *entity.DocumentPayment) error {
	query := `
		INSERT INTO document_payments (id, document_id, amount, method, date, received_by, notes, session_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.DocumentID, p.Amount, p.Method, p.Date,
		nullIfEmpty(p.ReceivedBy), nullIfEmpty(p.Notes), nullIfEmpty(p.SessionID),
	)
	if err != nil {
		return fmt.Errorf("agregar pago: %w", err)
	}
	return nil
}

// GetPayments pagos de un documento en orden cronológico.
func (r *DocumentRepo) GetPayments(ctx context.Context, documentID string) ([]entity.DocumentPayment, error) {
	query := `
		SELECT id, document_id, amount, method, date, COALESCE(received_by, ''), COALESCE(notes, ''), COALESCE(session_id, '')
		FROM document_payments WHERE document_id = $1 ORDER BY date`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("listar pagos: %w", err)
	}
	defer rows.Close()

	var payments []entity.DocumentPayment
	for rows.Next() {
		var p entity.DocumentPayment
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.Amount, &p.Method, &p.Date,
			&p.ReceivedBy, &p.Notes, &p.SessionID); err != nil {
			return nil, fmt.Errorf("escanear pago: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SumPayments total pagado del documento.
func (r *DocumentRepo) SumPayments(ctx context.Context, documentID string) (decimal.Decimal, error) {
	var paid decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM document_payments WHERE document_id = $1`,
		documentID,
	).Scan(&paid)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sumar pagos: %w", err)
	}
	return paid, nil
}

// LinkOrphanPayments asigna la sesión a los pagos sin sesión.
func (r *DocumentRepo) LinkOrphanPayments(ctx context.Context, sessionID string) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE document_payments SET session_id = $1 WHERE session_id IS NULL`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("vincular pagos: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AddHistory agrega un evento de auditoría del documento.
func (r *DocumentRepo) AddHistory(ctx context.Context, h *entity.DocumentHistory) error {
	query := `
		INSERT INTO document_history (id, document_id, date, event_type, details, changed_by)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.q.Exec(ctx, query,
		h.ID, h.DocumentID, h.Date, h.EventType,
		nullIfEmpty(h.Details), nullIfEmpty(h.ChangedBy),
	)
	if err != nil {
		return fmt.Errorf("agregar historial: %w", err)
	}
	return nil
}

// GetHistory eventos del documento, más recientes primero.
func (r *DocumentRepo) GetHistory(ctx context.Context, documentID string) ([]entity.DocumentHistory, error) {
	query := `
		SELECT id, document_id, date, event_type, COALESCE(details, ''), COALESCE(changed_by, '')
		FROM document_history WHERE document_id = $1 ORDER BY date DESC`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("listar historial: %w", err)
	}
	defer rows.Close()

	var hs []entity.DocumentHistory
	for rows.Next() {
		var h entity.DocumentHistory
		if err := rows.Scan(&h.ID, &h.DocumentID, &h.Date, &h.EventType, &h.Details, &h.ChangedBy); err != nil {
			return nil, fmt.Errorf("escanear historial: %w", err)
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}
