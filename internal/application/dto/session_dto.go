package dto

import (
	"time"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StartSessionRequest apertura de sesión de caja.
type StartSessionRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes"`
	CreatedBy      string          `json:"created_by"`
}

// CloseSessionRequest cierre de sesión: se cuenta el efectivo y se declara
// el retiro; el balance de cierre se deriva de ambos.
type CloseSessionRequest struct {
	CountedAmount    decimal.Decimal `json:"counted_amount" validate:"required"`
	WithdrawalAmount decimal.Decimal `json:"withdrawal_amount"`
	Notes            string          `json:"notes"`
}

// ExpenseRequest alta de un gasto de caja.
type ExpenseRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Reason    string          `json:"reason" validate:"required"`
	Category  string          `json:"category"`
	CreatedBy string          `json:"created_by"`
}

// ExpenseResponse gasto de caja en respuestas.
type ExpenseResponse struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	Date      time.Time       `json:"date"`
	SessionID string          `json:"session_id,omitempty"`
	Category  string          `json:"category,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
}

// ToExpenseResponse mapea la entidad a su proyección pública.
func ToExpenseResponse(e *entity.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID,
		Amount:    e.Amount,
		Reason:    e.Reason,
		Date:      e.Date,
		SessionID: e.SessionID,
		Category:  e.Category,
		CreatedBy: e.CreatedBy,
	}
}

// SessionResponse proyección pública de una sesión de caja.
type SessionResponse struct {
	ID               string           `json:"id"`
	StartTime        time.Time        `json:"start_time"`
	EndTime          *time.Time       `json:"end_time,omitempty"`
	OpeningBalance   decimal.Decimal  `json:"opening_balance"`
	ClosingBalance   *decimal.Decimal `json:"closing_balance,omitempty"`
	CountedAmount    *decimal.Decimal `json:"counted_amount,omitempty"`
	WithdrawalAmount *decimal.Decimal `json:"withdrawal_amount,omitempty"`
	Status           string           `json:"status"`
	Notes            string           `json:"notes,omitempty"`
	CreatedBy        string           `json:"created_by,omitempty"`
}

// ToSessionResponse mapea la entidad a su proyección pública.
func ToSessionResponse(s *entity.CashSession) SessionResponse {
	resp := SessionResponse{
		ID:             s.ID,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		OpeningBalance: s.OpeningBalance,
		Status:         string(s.Status),
		Notes:          s.Notes,
		CreatedBy:      s.CreatedBy,
	}
	if s.ClosingBalance.Valid {
		v := s.ClosingBalance.Decimal
		resp.ClosingBalance = &v
	}
	if s.CountedAmount.Valid {
		v := s.CountedAmount.Decimal
		resp.CountedAmount = &v
	}
	if s.WithdrawalAmount.Valid {
		v := s.WithdrawalAmount.Decimal
		resp.WithdrawalAmount = &v
	}
	return resp
}
