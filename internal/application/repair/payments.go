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
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

// AddPayment registra un pago y recalcula el estado de pago contra el costo
// estimado en la misma transacción. Los pagos quedan sin sesión asignada; el
// cierre de caja los vincula.
func (uc *UseCase) AddPayment(ctx context.Context, repairID string, in dto.RepairPaymentInput, changedBy string) (*dto.RepairDetailResponse, error) {
	if !in.Amount.GreaterThan(decimal.Zero) || in.Method == "" {
		return nil, domain.ErrInvalidInput
	}
	receivedBy := in.ReceivedBy
	if receivedBy == "" {
		receivedBy = changedBy
	}

	var detail *entity.RepairWithDetails
	err := uc.txRunner.RunRepair(ctx, func(
		repairRepo repository.RepairRepository,
		_ repository.InventoryRepository,
	) error {
		r, err := repairRepo.GetForUpdate(ctx, repairID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}

		pay := &entity.RepairPayment{
			ID:         uuid.New().String(),
			RepairID:   r.ID,
			Amount:     in.Amount,
			Method:     in.Method,
			Date:       time.Now(),
			ReceivedBy: receivedBy,
		}
		if err := repairRepo.AddPayment(ctx, pay); err != nil {
			return err
		}
		paid, err := repairRepo.SumPayments(ctx, r.ID)
		if err != nil {
			return err
		}
		if err := repairRepo.UpdatePaymentStatus(ctx, r.ID, derivePaymentStatus(paid, r.EstimatedCost)); err != nil {
			return err
		}
		if err := appendHistory(ctx, repairRepo, r.ID, entity.RepairEventPaymentAdded,
			fmt.Sprintf("Pago de %s vía %s", in.Amount.StringFixed(2), in.Method), changedBy); err != nil {
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

// GetPayments pagos de una reparación en orden cronológico.
func (uc *UseCase) GetPayments(ctx context.Context, repairID string) ([]dto.RepairPaymentResponse, error) {
	r, err := uc.repairRepo.GetByID(ctx, repairID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	payments, err := uc.repairRepo.GetPayments(ctx, repairID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RepairPaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, dto.RepairPaymentResponse{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Date:       p.Date,
			ReceivedBy: p.ReceivedBy,
			SessionID:  p.SessionID,
		})
	}
	return out, nil
}
