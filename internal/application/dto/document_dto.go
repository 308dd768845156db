package dto

import (
	"time"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ItemInput línea de documento recibida al crear o agregar ítems.
// ItemID vacío indica línea ad-hoc sin referencia de catálogo.
type ItemInput struct {
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes"`
}

// PaymentInput pago recibido vía API.
type PaymentInput struct {
	Amount     decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method     string          `json:"method" validate:"required"`
	ReceivedBy string          `json:"received_by"`
	Notes      string          `json:"notes"`
}

// CreateDocumentRequest creación de un documento. Type solo aplica a
// transacciones genéricas; para órdenes y ventas lo fija el kind.
type CreateDocumentRequest struct {
	PartyID   string         `json:"party_id" validate:"required"`
	Type      string         `json:"type"`
	Status    string         `json:"status"` // draft (default) o completed
	Notes     string         `json:"notes"`
	CreatedBy string         `json:"created_by"`
	Items     []ItemInput    `json:"items"`
	Payments  []PaymentInput `json:"payments"`
}

// UpdateHeaderRequest actualización de cabecera de un documento.
// Los punteros distinguen "no enviado" de "vaciar". Status solo admite
// draft o completed; la transición se aplica con todos sus efectos.
type UpdateHeaderRequest struct {
	PartyID *string `json:"party_id"`
	Notes   *string `json:"notes"`
	Status  *string `json:"status"`
}

// DocumentResponse proyección pública de un documento.
type DocumentResponse struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	Kind          string          `json:"kind"`
	Type          string          `json:"type"`
	PartyID       string          `json:"party_id"`
	PartyName     string          `json:"party_name,omitempty"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// ItemResponse línea de documento en respuestas.
type ItemResponse struct {
	ID         string          `json:"id"`
	ItemID     string          `json:"item_id,omitempty"`
	ItemName   string          `json:"item_name"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Notes      string          `json:"notes,omitempty"`
}

// PaymentResponse pago en respuestas.
type PaymentResponse struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Date       time.Time       `json:"date"`
	ReceivedBy string          `json:"received_by,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
}

// DocumentDetailResponse documento con líneas y pagos.
type DocumentDetailResponse struct {
	DocumentResponse
	Items    []ItemResponse    `json:"items"`
	Payments []PaymentResponse `json:"payments"`
}

// HistoryResponse evento de auditoría de un documento.
type HistoryResponse struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details,omitempty"`
	ChangedBy string    `json:"changed_by,omitempty"`
}

// ToDocumentResponse mapea la entidad a su proyección pública.
func ToDocumentResponse(d *entity.Document, partyName string) DocumentResponse {
	return DocumentResponse{
		ID:            d.ID,
		Number:        d.Number,
		Kind:          string(d.Kind),
		Type:          string(d.Type),
		PartyID:       d.PartyID,
		PartyName:     partyName,
		Status:        string(d.Status),
		PaymentStatus: string(d.PaymentStatus),
		TotalAmount:   d.TotalAmount,
		PaidAmount:    d.PaidAmount,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		CreatedBy:     d.CreatedBy,
	}
}

// ToDetailResponse mapea el agregado completo.
func ToDetailResponse(d *entity.DocumentWithDetails) DocumentDetailResponse {
	resp := DocumentDetailResponse{
		DocumentResponse: ToDocumentResponse(&d.Document, d.PartyName),
		Items:            make([]ItemResponse, 0, len(d.Items)),
		Payments:         make([]PaymentResponse, 0, len(d.Payments)),
	}
	for _, it := range d.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ID:         it.ID,
			ItemID:     it.ItemID,
			ItemName:   it.ItemName,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
			Notes:      it.Notes,
		})
	}
	for _, p := range d.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Date:       p.Date,
			ReceivedBy: p.ReceivedBy,
			Notes:      p.Notes,
			SessionID:  p.SessionID,
		})
	}
	return resp
}

// ToHistoryResponses mapea el historial de un documento.
func ToHistoryResponses(hs []entity.DocumentHistory) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(hs))
	for _, h := range hs {
		out = append(out, HistoryResponse{
			ID:        h.ID,
			Date:      h.Date,
			EventType: h.EventType,
			Details:   h.Details,
			ChangedBy: h.ChangedBy,
		})
	}
	return out
}
