package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepairStatus estados del ciclo de vida de una reparación.
type RepairStatus string

const (
	RepairPending    RepairStatus = "pending"
	RepairInProgress RepairStatus = "in_progress"
	RepairCompleted  RepairStatus = "completed"
	RepairDelivered  RepairStatus = "delivered"
)

// Valid reporta si el estado es uno de los soportados.
func (s RepairStatus) Valid() bool {
	switch s {
	case RepairPending, RepairInProgress, RepairCompleted, RepairDelivered:
		return true
	}
	return false
}

// Repair orden de reparación de un dispositivo. El costo estimado hace de
// total; el estado de pago se deriva de los pagos contra ese costo (sin
// pagos la reparación queda unpaid aunque el costo sea 0).
type Repair struct {
	ID               string
	Code             string
	CustomerName     string
	CustomerPhone    string
	DeviceBrand      string
	DeviceModel      string
	IssueDescription string
	EstimatedCost    decimal.Decimal
	Status           RepairStatus
	PaymentStatus    PaymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RepairUsedPart repuesto consumido por una reparación. PartID vacío indica
// un repuesto externo que no descuenta inventario.
type RepairUsedPart struct {
	ID        string
	RepairID  string
	PartID    string
	PartName  string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// RepairPayment pago parcial o total de una reparación.
type RepairPayment struct {
	ID         string
	RepairID   string
	Amount     decimal.Decimal
	Method     string
	Date       time.Time
	ReceivedBy string
	SessionID  string
}

// Eventos del historial de reparaciones.
const (
	RepairEventStatusChange = "status_change"
	RepairEventPaymentAdded = "payment_added"
	RepairEventPartAdded    = "part_added"
	RepairEventNote         = "note"
)

// Eventos de inventario originados por reparaciones.
const (
	StockEventUsedInRepair     = "Used in Repair"
	StockEventReturnFromRepair = "Return from Repair"
)

// RepairHistory evento de auditoría de una reparación (append-only).
type RepairHistory struct {
	ID        string
	RepairID  string
	Date      time.Time
	EventType string
	Details   string
	ChangedBy string
}

// RepairWithDetails reparación con repuestos, pagos, historial y montos
// computados.
type RepairWithDetails struct {
	Repair
	UsedParts        []RepairUsedPart
	Payments         []RepairPayment
	History          []RepairHistory
	TotalPaid        decimal.Decimal
	RemainingBalance decimal.Decimal
}
