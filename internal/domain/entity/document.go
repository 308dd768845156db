package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind discrimina las tres familias de documentos comerciales.
// Las tres comparten la misma estructura y máquina de estados; el motor
// se instancia una vez por kind con su convención de signo y contraparte.
type DocumentKind string

const (
	KindOrder       DocumentKind = "order"       // orden de compra a proveedor
	KindSale        DocumentKind = "sale"        // venta a cliente
	KindTransaction DocumentKind = "transaction" // transacción genérica (venta o compra)
)

// DocumentType define la dirección comercial y con ella el signo del
// movimiento de inventario: una venta descuenta stock, una compra lo suma.
type DocumentType string

const (
	TypeSale     DocumentType = "sale"
	TypePurchase DocumentType = "purchase"
)

// PartyKind tipo de contraparte de un documento.
type PartyKind string

const (
	PartyClient   PartyKind = "client"
	PartySupplier PartyKind = "supplier"
)

// DocumentStatus estados del ciclo de vida.
// cancelled solo es alcanzable para KindTransaction, desde draft.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusCompleted DocumentStatus = "completed"
	StatusCancelled DocumentStatus = "cancelled"
)

// PaymentStatus estado de pago derivado de (paid_amount, total_amount).
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Valid reporta si el kind es uno de los tres soportados.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindOrder, KindSale, KindTransaction:
		return true
	}
	return false
}

// NumberPrefix prefijo del número humano-legible (PREFIX-YYYY-NNN) por kind.
func (k DocumentKind) NumberPrefix() string {
	switch k {
	case KindOrder:
		return "ORD"
	case KindSale:
		return "SALE"
	default:
		return "TX"
	}
}

// FixedType devuelve la dirección fija del kind, o "" si la elige el caller
// (solo KindTransaction admite ambas direcciones).
func (k DocumentKind) FixedType() DocumentType {
	switch k {
	case KindOrder:
		return TypePurchase
	case KindSale:
		return TypeSale
	}
	return ""
}

// FixedPartyKind devuelve la contraparte fija del kind, o "" si la elige el caller.
func (k DocumentKind) FixedPartyKind() PartyKind {
	switch k {
	case KindOrder:
		return PartySupplier
	case KindSale:
		return PartyClient
	}
	return ""
}

// StockSign signo del delta de inventario al completar: -1 para venta, +1 para compra.
func (t DocumentType) StockSign() int64 {
	if t == TypeSale {
		return -1
	}
	return 1
}

// DerivePaymentStatus es la función pura que deriva el estado de pago:
// paid si paid >= total, partial si 0 < paid < total, unpaid si paid == 0.
// Con total 0 y paid 0 el documento se considera pagado (no hay deuda).
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return PaymentPaid
	case paid.GreaterThan(decimal.Zero):
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// Document cabecera de un documento comercial (orden / venta / transacción).
// total_amount y paid_amount son valores derivados: se recalculan siempre
// desde los ítems y pagos dentro de la misma transacción SQL que los muta.
type Document struct {
	ID            string
	Number        string
	Kind          DocumentKind
	Type          DocumentType
	PartyID       string
	PartyKind     PartyKind
	Status        DocumentStatus
	PaymentStatus PaymentStatus
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     string
}

// DocumentItem línea de un documento. ItemID vacío = línea ad-hoc sin
// referencia de catálogo (nunca toca inventario).
type DocumentItem struct {
	ID         string
	DocumentID string
	ItemID     string
	ItemName   string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Notes      string
}

// DocumentPayment pago parcial o total de un documento. Los pagos nunca se
// eliminan; una corrección se registra como documento inverso.
type DocumentPayment struct {
	ID         string
	DocumentID string
	Amount     decimal.Decimal
	Method     string
	Date       time.Time
	ReceivedBy string
	Notes      string
	SessionID  string
}

// Eventos del historial de documentos.
const (
	EventCreated      = "created"
	EventCreatedDraft = "created_draft"
	EventCompleted    = "completed"
	EventReverted     = "reverted_to_draft"
	EventCancelled    = "cancelled"
	EventUpdated      = "updated"
	EventItemAdded    = "item_added"
	EventItemRemoved  = "item_removed"
	EventPaymentAdded = "payment_added"
)

// DocumentHistory evento de auditoría de un documento (append-only).
type DocumentHistory struct {
	ID         string
	DocumentID string
	Date       time.Time
	EventType  string
	Details    string
	ChangedBy  string
}

// DocumentWithDetails documento con sus líneas, pagos y nombre de contraparte.
type DocumentWithDetails struct {
	Document  Document
	Items     []DocumentItem
	Payments  []DocumentPayment
	PartyName string
}
