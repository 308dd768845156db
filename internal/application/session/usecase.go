// Package session maneja las sesiones de caja: apertura, cierre con
// conteo/retiro y vinculación de pagos huérfanos a la sesión cerrada.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercio-api/internal/application/dto"
	"github.com/jhoicas/comercio-api/internal/domain"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
	"github.com/jhoicas/comercio-api/pkg/logger"
)

// TxRunner transacción que incluye todo lo que toca el cierre de caja:
// pagos de documentos, pagos de reparaciones y gastos deben vincularse de
// forma atómica con el cierre.
type TxRunner interface {
	RunSession(ctx context.Context, fn func(
		sessionRepo repository.SessionRepository,
		docRepo repository.DocumentRepository,
		repairRepo repository.RepairRepository,
		expenseRepo repository.ExpenseRepository,
	) error) error
}

// UseCase casos de uso de sesiones de caja.
type UseCase struct {
	txRunner    TxRunner
	sessionRepo repository.SessionRepository
	expenseRepo repository.ExpenseRepository
	log         *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, sessionRepo repository.SessionRepository, expenseRepo repository.ExpenseRepository, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, sessionRepo: sessionRepo, expenseRepo: expenseRepo, log: log}
}

// Start abre una sesión de caja. Falla con ErrSessionOpen si ya hay una
// abierta: solo puede existir una sesión abierta a la vez.
func (uc *UseCase) Start(ctx context.Context, in dto.StartSessionRequest) (*dto.SessionResponse, error) {
	if in.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	s := &entity.CashSession{
		ID:             uuid.New().String(),
		StartTime:      time.Now(),
		OpeningBalance: in.OpeningBalance,
		Status:         entity.SessionOpen,
		Notes:          in.Notes,
		CreatedBy:      in.CreatedBy,
	}
	err := uc.txRunner.RunSession(ctx, func(
		sessionRepo repository.SessionRepository,
		_ repository.DocumentRepository,
		_ repository.RepairRepository,
		_ repository.ExpenseRepository,
	) error {
		open, err := sessionRepo.GetOpen(ctx)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.ErrSessionOpen
		}
		return sessionRepo.Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("session_id", s.ID).Msg("sesión de caja abierta")
	resp := dto.ToSessionResponse(s)
	return &resp, nil
}

// GetCurrent sesión abierta actual, o ErrNotFound si no hay ninguna.
func (uc *UseCase) GetCurrent(ctx context.Context) (*dto.SessionResponse, error) {
	open, err := uc.sessionRepo.GetOpen(ctx)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.ToSessionResponse(open)
	return &resp, nil
}

// GetAll sesiones ordenadas de la más reciente a la más antigua.
func (uc *UseCase) GetAll(ctx context.Context, limit, offset int) ([]dto.SessionResponse, error) {
	sessions, err := uc.sessionRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, dto.ToSessionResponse(&sessions[i]))
	}
	return out, nil
}

// Close cierra la sesión: closing_balance = contado − retiro, y los pagos
// de documentos y reparaciones y los gastos sin sesión asignada quedan
// vinculados a la sesión cerrada. Todo en una transacción.
func (uc *UseCase) Close(ctx context.Context, id string, in dto.CloseSessionRequest) (*dto.SessionResponse, error) {
	if in.CountedAmount.IsNegative() || in.WithdrawalAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var closed *entity.CashSession
	err := uc.txRunner.RunSession(ctx, func(
		sessionRepo repository.SessionRepository,
		docRepo repository.DocumentRepository,
		repairRepo repository.RepairRepository,
		expenseRepo repository.ExpenseRepository,
	) error {
		s, err := sessionRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if s.Status != entity.SessionOpen {
			return domain.ErrConflict
		}

		now := time.Now()
		s.EndTime = &now
		s.CountedAmount = decimal.NewNullDecimal(in.CountedAmount)
		s.WithdrawalAmount = decimal.NewNullDecimal(in.WithdrawalAmount)
		s.ClosingBalance = decimal.NewNullDecimal(in.CountedAmount.Sub(in.WithdrawalAmount))
		s.Status = entity.SessionClosed
		if in.Notes != "" {
			s.Notes = in.Notes
		}
		if err := sessionRepo.Close(ctx, s); err != nil {
			return err
		}

		linkedDocs, err := docRepo.LinkOrphanPayments(ctx, s.ID)
		if err != nil {
			return err
		}
		linkedRepairs, err := repairRepo.LinkOrphanPayments(ctx, s.ID)
		if err != nil {
			return err
		}
		linkedExpenses, err := expenseRepo.LinkOrphanExpenses(ctx, s.ID)
		if err != nil {
			return err
		}
		uc.log.Info().
			Str("session_id", s.ID).
			Int64("linked_payments", linkedDocs).
			Int64("linked_repair_payments", linkedRepairs).
			Int64("linked_expenses", linkedExpenses).
			Msg("sesión de caja cerrada")

		closed = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToSessionResponse(closed)
	return &resp, nil
}

// AddExpense registra un gasto de caja. El gasto nace sin sesión asignada;
// el cierre de caja lo vincula a la sesión que se cierra.
func (uc *UseCase) AddExpense(ctx context.Context, in dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	if !in.Amount.GreaterThan(decimal.Zero) || in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	e := &entity.Expense{
		ID:        uuid.New().String(),
		Amount:    in.Amount,
		Reason:    in.Reason,
		Date:      time.Now(),
		Category:  in.Category,
		CreatedBy: in.CreatedBy,
	}
	if err := uc.expenseRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("expense_id", e.ID).
		Str("amount", e.Amount.StringFixed(2)).
		Msg("gasto registrado")
	resp := dto.ToExpenseResponse(e)
	return &resp, nil
}

// GetExpenses gastos vinculados a una sesión; con sessionID vacío devuelve
// los gastos aún sin vincular.
func (uc *UseCase) GetExpenses(ctx context.Context, sessionID string) ([]dto.ExpenseResponse, error) {
	var (
		expenses []entity.Expense
		err      error
	)
	if sessionID == "" {
		expenses, err = uc.expenseRepo.GetUnlinked(ctx)
	} else {
		expenses, err = uc.expenseRepo.GetBySession(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, dto.ToExpenseResponse(&expenses[i]))
	}
	return out, nil
}

// LastClosingBalance balance de cierre de la última sesión cerrada, o 0 si
// no hay sesiones cerradas. Se usa como sugerencia de apertura.
func (uc *UseCase) LastClosingBalance(ctx context.Context) (decimal.Decimal, error) {
	last, err := uc.sessionRepo.GetLastClosed(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if last == nil || !last.ClosingBalance.Valid {
		return decimal.Zero, nil
	}
	return last.ClosingBalance.Decimal, nil
}
