package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus estado de una sesión de caja.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// CashSession sesión de caja diaria. Solo puede existir una sesión abierta
// a la vez; al cerrar, los pagos sin sesión asignada se vinculan a ella.
type CashSession struct {
	ID               string
	StartTime        time.Time
	EndTime          *time.Time
	OpeningBalance   decimal.Decimal
	ClosingBalance   decimal.NullDecimal
	CountedAmount    decimal.NullDecimal
	WithdrawalAmount decimal.NullDecimal
	Status           SessionStatus
	Notes            string
	CreatedBy        string
}
