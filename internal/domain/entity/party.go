package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party contraparte comercial: cliente o proveedor, discriminados por Kind.
// El motor solo muta CreditBalance y agrega historial; el resto de campos
// pertenecen al CRUD externo.
//
// Convención de signo de CreditBalance:
//   - cliente: balance > 0 => el cliente le debe al negocio
//   - proveedor: balance > 0 => el negocio le debe al proveedor
type Party struct {
	ID            string
	Kind          PartyKind
	Name          string
	ContactName   string
	Email         string
	Phone         string
	Address       string
	Notes         string
	CreditBalance decimal.NullDecimal // NULL se trata como 0 al ajustar
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Eventos del historial de contrapartes.
const (
	PartyEventSaleCompleted   = "Sale Completed"
	PartyEventOrderCompleted  = "Purchase Order Completed"
	PartyEventReverted        = "Reverted to Draft"
	PartyEventPaymentReceived = "Payment Received" // cliente paga al negocio
	PartyEventPaymentMade     = "Payment Made"     // el negocio paga al proveedor
	PartyEventBalanceAdjusted = "Balance Adjusted"
	PartyEventPartyReassigned = "Party Reassigned"
)

// PartyHistory movimiento del balance de una contraparte (append-only).
type PartyHistory struct {
	ID        string
	PartyID   string
	Date      time.Time
	Type      string
	Notes     string
	Amount    decimal.Decimal
	ChangedBy string
}
