package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/comercio-api/internal/domain"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL
// (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `
	id, item_name, COALESCE(brand, ''), COALESCE(item_type, ''),
	buying_price, selling_price, quantity_in_stock, low_stock_threshold,
	COALESCE(supplier_info, ''), COALESCE(barcode, ''), created_at`

func scanInventoryItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(
		&it.ID, &it.ItemName, &it.Brand, &it.ItemType,
		&it.BuyingPrice, &it.SellingPrice, &it.QuantityInStock, &it.LowStockThreshold,
		&it.SupplierInfo, &it.Barcode, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

// GetByID obtiene un artículo de catálogo; (nil, nil) si no existe.
func (r *InventoryRepo) GetByID(ctx context.Context, itemID string) (*entity.InventoryItem, error) {
	query := `SELECT` + inventoryColumns + ` FROM inventory_items WHERE id = $1`
	it, err := scanInventoryItem(r.q.QueryRow(ctx, query, itemID))
	if err != nil {
		return nil, fmt.Errorf("obtener artículo: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el artículo y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, itemID string) (*entity.InventoryItem, error) {
	query := `SELECT` + inventoryColumns + ` FROM inventory_items WHERE id = $1 FOR UPDATE`
	it, err := scanInventoryItem(r.q.QueryRow(ctx, query, itemID))
	if err != nil {
		return nil, fmt.Errorf("obtener artículo for update: %w", err)
	}
	return it, nil
}

// AdjustStock suma delta a quantity_in_stock (NULL cuenta como 0) y registra
// el movimiento. El UPDATE es una sola sentencia, sin read-modify-write en
// el cliente.
func (r *InventoryRepo) AdjustStock(ctx context.Context, itemID string, delta int64, eventType, notes, relatedID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET quantity_in_stock = COALESCE(quantity_in_stock, 0) + $2 WHERE id = $1`,
		itemID, delta,
	)
	if err != nil {
		return fmt.Errorf("ajustar stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ajustar stock %s: %w", itemID, domain.ErrNotFound)
	}

	query := `
		INSERT INTO inventory_history (id, item_id, date, event_type, quantity_change, notes, related_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err = r.q.Exec(ctx, query,
		uuid.New().String(), itemID, time.Now(), eventType, delta,
		nullIfEmpty(notes), nullIfEmpty(relatedID),
	)
	if err != nil {
		return fmt.Errorf("historial de stock: %w", err)
	}
	return nil
}

// GetHistory movimientos de un artículo, más recientes primero.
func (r *InventoryRepo) GetHistory(ctx context.Context, itemID string) ([]entity.InventoryHistory, error) {
	query := `
		SELECT id, item_id, date, event_type, quantity_change, COALESCE(notes, ''), COALESCE(related_id, '')
		FROM inventory_history WHERE item_id = $1 ORDER BY date DESC`
	rows, err := r.q.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("listar historial de stock: %w", err)
	}
	defer rows.Close()

	var hs []entity.InventoryHistory
	for rows.Next() {
		var h entity.InventoryHistory
		if err := rows.Scan(&h.ID, &h.ItemID, &h.Date, &h.EventType, &h.QuantityChange, &h.Notes, &h.RelatedID); err != nil {
			return nil, fmt.Errorf("escanear historial de stock: %w", err)
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}
