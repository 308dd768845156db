// Package repair implementa las órdenes de reparación de dispositivos:
// cabecera con costo estimado, repuestos que descuentan inventario con
// verificación de existencias, pagos parciales contra el costo y un
// historial de auditoría propio.
package repair

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercio-api/internal/application/dto"
	"github.com/jhoicas/comercio-api/internal/domain"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/numbering"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
	"github.com/jhoicas/comercio-api/pkg/logger"
)

const codePrefix = "REP"

// UseCase casos de uso de reparaciones. repairRepo atado al pool se usa
// solo para lecturas; toda mutación pasa por txRunner.
type UseCase struct {
	txRunner   TxRunner
	repairRepo repository.RepairRepository
	log        *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, repairRepo repository.RepairRepository, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, repairRepo: repairRepo, log: log}
}

// derivePaymentStatus regla de estado de pago de reparaciones: sin pagos la
// reparación está unpaid aunque el costo estimado sea 0 (a diferencia de los
// documentos comerciales, el costo es un estimado y no una deuda liquidada).
func derivePaymentStatus(paid, cost decimal.Decimal) entity.PaymentStatus {
	switch {
	case paid.IsZero():
		return entity.PaymentUnpaid
	case paid.GreaterThanOrEqual(cost):
		return entity.PaymentPaid
	default:
		return entity.PaymentPartial
	}
}

// Create registra una reparación con código REP### consecutivo.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateRepairRequest) (*dto.RepairDetailResponse, error) {
	if in.CustomerName == "" || in.DeviceBrand == "" || in.DeviceModel == "" ||
		in.IssueDescription == "" || in.EstimatedCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	r := &entity.Repair{
		ID:               uuid.New().String(),
		CustomerName:     in.CustomerName,
		CustomerPhone:    in.CustomerPhone,
		DeviceBrand:      in.DeviceBrand,
		DeviceModel:      in.DeviceModel,
		IssueDescription: in.IssueDescription,
		EstimatedCost:    in.EstimatedCost,
		Status:           entity.RepairPending,
		PaymentStatus:    entity.PaymentUnpaid,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var detail *entity.RepairWithDetails
	err := uc.txRunner.RunRepair(ctx, func(
		repairRepo repository.RepairRepository,
		_ repository.InventoryRepository,
	) error {
		last, err := repairRepo.GreatestCode(ctx)
		if err != nil {
			return err
		}
		r.Code = numbering.NextCode(codePrefix, last)
		if err := repairRepo.Create(ctx, r); err != nil {
			return err
		}
		detail, err = loadDetails(ctx, repairRepo, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("code", r.Code).
		Str("device", r.DeviceBrand+" "+r.DeviceModel).
		Msg("reparación registrada")

	resp := dto.ToRepairDetailResponse(detail)
	return &resp, nil
}

// GetAll lista reparaciones, más recientes primero.
func (uc *UseCase) GetAll(ctx context.Context) ([]dto.RepairResponse, error) {
	repairs, err := uc.repairRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RepairResponse, 0, len(repairs))
	for i := range repairs {
		out = append(out, dto.ToRepairResponse(&repairs[i]))
	}
	return out, nil
}

// GetByID reparación con repuestos, pagos, historial y montos computados.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.RepairDetailResponse, error) {
	detail, err := loadDetails(ctx, uc.repairRepo, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToRepairDetailResponse(detail)
	return &resp, nil
}

// Update actualiza la cabecera. Si cambia el costo estimado, el estado de
// pago se recalcula contra los pagos ya registrados.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateRepairRequest) (*dto.RepairDetailResponse, error) {
	var detail *entity.RepairWithDetails
	err := uc.txRunner.RunRepair(ctx, func(
		repairRepo repository.RepairRepository,
		_ repository.InventoryRepository,
	) error {
		r, err := repairRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if in.CustomerName != nil {
			r.CustomerName = *in.CustomerName
		}
		if in.CustomerPhone != nil {
			r.CustomerPhone = *in.CustomerPhone
		}
		if in.DeviceBrand != nil {
			r.DeviceBrand = *in.DeviceBrand
		}
		if in.DeviceModel != nil {
			r.DeviceModel = *in.DeviceModel
		}
		if in.IssueDescription != nil {
			r.IssueDescription = *in.IssueDescription
		}
		if in.EstimatedCost != nil && !in.EstimatedCost.Equal(r.EstimatedCost) {
			if in.EstimatedCost.IsNegative() {
				return domain.ErrInvalidInput
			}
			r.EstimatedCost = *in.EstimatedCost
			paid, err := repairRepo.SumPayments(ctx, r.ID)
			if err != nil {
				return err
			}
			r.PaymentStatus = derivePaymentStatus(paid, r.EstimatedCost)
		}
		r.UpdatedAt = time.Now()
		if err := repairRepo.UpdateHeader(ctx, r); err != nil {
			return err
		}
		detail, err = loadDetails(ctx, repairRepo, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToRepairDetailResponse(detail)
	return &resp, nil
}

// UpdateStatus cambia el estado del ciclo de vida y deja rastro del cambio.
func (uc *UseCase) UpdateStatus(ctx context.Context, id, newStatus, changedBy string) (*dto.RepairDetailResponse, error) {
	status := entity.RepairStatus(newStatus)
	if !status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	var detail *entity.RepairWithDetails
	err := uc.txRunner.RunRepair(ctx, func(
		repairRepo repository.RepairRepository,
		_ repository.InventoryRepository,
	) error {
		r, err := repairRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if r.Status != status {
			old := r.Status
			if err := repairRepo.UpdateStatus(ctx, r.ID, status); err != nil {
				return err
			}
			if err := appendHistory(ctx, repairRepo, r.ID, entity.RepairEventStatusChange,
				fmt.Sprintf("Estado cambiado de %s a %s", old, status), changedBy); err != nil {
				return err
			}
		}
		detail, err = loadDetails(ctx, repairRepo, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToRepairDetailResponse(detail)
	return &resp, nil
}

// Delete elimina la reparación; repuestos, pagos e historial caen en
// cascada. El inventario consumido no se restituye: una reparación borrada
// ya entregó sus repuestos.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.RunRepair(ctx, func(
		repairRepo repository.RepairRepository,
		_ repository.InventoryRepository,
	) error {
		deleted, err := repairRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound
		}
		return nil
	})
}

// GetHistory historial de auditoría de la reparación.
func (uc *UseCase) GetHistory(ctx context.Context, id string) ([]dto.HistoryResponse, error) {
	r, err := uc.repairRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	hs, err := uc.repairRepo.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryResponse, 0, len(hs))
	for _, h := range hs {
		out = append(out, dto.HistoryResponse{
			ID:        h.ID,
			Date:      h.Date,
			EventType: h.EventType,
			Details:   h.Details,
			ChangedBy: h.ChangedBy,
		})
	}
	return out, nil
}

// loadDetails arma el agregado completo con los montos computados.
func loadDetails(ctx context.Context, repairRepo repository.RepairRepository, id string) (*entity.RepairWithDetails, error) {
	r, err := repairRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	parts, err := repairRepo.GetUsedParts(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := repairRepo.GetPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := repairRepo.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return &entity.RepairWithDetails{
		Repair:           *r,
		UsedParts:        parts,
		Payments:         payments,
		History:          history,
		TotalPaid:        paid,
		RemainingBalance: r.EstimatedCost.Sub(paid),
	}, nil
}

// appendHistory registra un evento de auditoría de la reparación.
func appendHistory(ctx context.Context, repairRepo repository.RepairRepository, repairID, eventType, details, by string) error {
	return repairRepo.AddHistory(ctx, &entity.RepairHistory{
		ID:        uuid.New().String(),
		RepairID:  repairID,
		Date:      time.Now(),
		EventType: eventType,
		Details:   details,
		ChangedBy: by,
	})
}
