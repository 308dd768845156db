package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/comercio-api/internal/application/ledger"
	"github.com/jhoicas/comercio-api/internal/application/repair"
	"github.com/jhoicas/comercio-api/internal/application/session"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

// Ensure TxRunner implements the application-layer runners.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ session.TxRunner = (*TxRunner)(nil)
var _ repair.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos del motor atados a
// la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	invRepo repository.InventoryRepository,
	partyRepo repository.PartyRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	docRepo := NewDocumentRepository(tx)
	invRepo := NewInventoryRepository(tx)
	partyRepo := NewPartyRepository(tx)

	if err := fn(docRepo, invRepo, partyRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSession inicia una transacción con los repos que toca el cierre de
// caja: vincula pagos de documentos y reparaciones, y gastos huérfanos.
func (r *TxRunner) RunSession(ctx context.Context, fn func(
	sessionRepo repository.SessionRepository,
	docRepo repository.DocumentRepository,
	repairRepo repository.RepairRepository,
	expenseRepo repository.ExpenseRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sessionRepo := NewSessionRepository(tx)
	docRepo := NewDocumentRepository(tx)
	repairRepo := NewRepairRepository(tx)
	expenseRepo := NewExpenseRepository(tx)

	if err := fn(sessionRepo, docRepo, repairRepo, expenseRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunRepair inicia una transacción con los repos de reparaciones e
// inventario (los repuestos descuentan stock en la misma transacción).
func (r *TxRunner) RunRepair(ctx context.Context, fn func(
	repairRepo repository.RepairRepository,
	invRepo repository.InventoryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repairRepo := NewRepairRepository(tx)
	invRepo := NewInventoryRepository(tx)

	if err := fn(repairRepo, invRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
