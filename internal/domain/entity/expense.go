package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense gasto de caja. SessionID vacío = gasto aún no vinculado a una
// sesión; el cierre de sesión vincula los huérfanos.
type Expense struct {
	ID        string
	Amount    decimal.Decimal
	Reason    string
	Date      time.Time
	SessionID string
	Category  string
	CreatedBy string
}
