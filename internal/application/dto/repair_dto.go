package dto

import (
	"time"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateRepairRequest alta de una orden de reparación.
type CreateRepairRequest struct {
	CustomerName     string          `json:"customer_name" validate:"required"`
	CustomerPhone    string          `json:"customer_phone" validate:"required"`
	DeviceBrand      string          `json:"device_brand" validate:"required"`
	DeviceModel      string          `json:"device_model" validate:"required"`
	IssueDescription string          `json:"issue_description" validate:"required"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
}

// UpdateRepairRequest actualización de cabecera de una reparación.
// Los punteros distinguen "no enviado" de "vaciar".
type UpdateRepairRequest struct {
	CustomerName     *string          `json:"customer_name"`
	CustomerPhone    *string          `json:"customer_phone"`
	DeviceBrand      *string          `json:"device_brand"`
	DeviceModel      *string          `json:"device_model"`
	IssueDescription *string          `json:"issue_description"`
	EstimatedCost    *decimal.Decimal `json:"estimated_cost"`
}

// UpdateRepairStatusRequest cambio de estado de una reparación.
type UpdateRepairStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UsedPartInput repuesto a consumir. PartID vacío = repuesto externo sin
// descuento de inventario.
type UsedPartInput struct {
	PartID    string          `json:"part_id"`
	PartName  string          `json:"part_name" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RepairPaymentInput pago de reparación recibido vía API.
type RepairPaymentInput struct {
	Amount     decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method     string          `json:"method" validate:"required"`
	ReceivedBy string          `json:"received_by"`
}

// RepairResponse proyección pública de una reparación.
type RepairResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	DeviceBrand      string          `json:"device_brand"`
	DeviceModel      string          `json:"device_model"`
	IssueDescription string          `json:"issue_description"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// UsedPartResponse repuesto consumido en respuestas.
type UsedPartResponse struct {
	ID        string          `json:"id"`
	PartID    string          `json:"part_id,omitempty"`
	PartName  string          `json:"part_name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RepairPaymentResponse pago de reparación en respuestas.
type RepairPaymentResponse struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Date       time.Time       `json:"date"`
	ReceivedBy string          `json:"received_by,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
}

// RepairDetailResponse reparación con repuestos, pagos, historial y montos
// computados.
type RepairDetailResponse struct {
	RepairResponse
	UsedParts        []UsedPartResponse      `json:"used_parts"`
	Payments         []RepairPaymentResponse `json:"payments"`
	History          []HistoryResponse       `json:"history"`
	TotalPaid        decimal.Decimal         `json:"total_paid"`
	RemainingBalance decimal.Decimal         `json:"remaining_balance"`
}

// ToRepairResponse mapea la entidad a su proyección pública.
func ToRepairResponse(r *entity.Repair) RepairResponse {
	return RepairResponse{
		ID:               r.ID,
		Code:             r.Code,
		CustomerName:     r.CustomerName,
		CustomerPhone:    r.CustomerPhone,
		DeviceBrand:      r.DeviceBrand,
		DeviceModel:      r.DeviceModel,
		IssueDescription: r.IssueDescription,
		EstimatedCost:    r.EstimatedCost,
		Status:           string(r.Status),
		PaymentStatus:    string(r.PaymentStatus),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToRepairDetailResponse mapea el agregado completo.
func ToRepairDetailResponse(d *entity.RepairWithDetails) RepairDetailResponse {
	resp := RepairDetailResponse{
		RepairResponse:   ToRepairResponse(&d.Repair),
		UsedParts:        make([]UsedPartResponse, 0, len(d.UsedParts)),
		Payments:         make([]RepairPaymentResponse, 0, len(d.Payments)),
		History:          make([]HistoryResponse, 0, len(d.History)),
		TotalPaid:        d.TotalPaid,
		RemainingBalance: d.RemainingBalance,
	}
	for _, p := range d.UsedParts {
		resp.UsedParts = append(resp.UsedParts, UsedPartResponse{
			ID:        p.ID,
			PartID:    p.PartID,
			PartName:  p.PartName,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
		})
	}
	for _, p := range d.Payments {
		resp.Payments = append(resp.Payments, RepairPaymentResponse{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Date:       p.Date,
			ReceivedBy: p.ReceivedBy,
			SessionID:  p.SessionID,
		})
	}
	for _, h := range d.History {
		resp.History = append(resp.History, HistoryResponse{
			ID:        h.ID,
			Date:      h.Date,
			EventType: h.EventType,
			Details:   h.Details,
			ChangedBy: h.ChangedBy,
		})
	}
	return resp
}
