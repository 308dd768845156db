package repair

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/comercio-api/internal/application/dto"
	"github.com/jhoicas/comercio-api/internal/domain"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

// AddUsedPart consume un repuesto: si referencia un artículo de catálogo con
// control de existencias, verifica el stock bajo bloqueo de fila y lo
// descuenta en la misma transacción. Un repuesto sin referencia de catálogo
// (o cuyo artículo no existe) se registra sin tocar inventario.
func (uc *UseCase) AddUsedPart(ctx context.Context, repairID string, in dto.UsedPartInput, changedBy string) (*dto.RepairDetailResponse, error) {
	if in.PartName == "" || in.Quantity <= 0 || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var detail *entity.RepairWithDetails
	err := uc.txRunner.RunRepair(ctx, func(
		repairRepo repository.RepairRepository,
		invRepo repository.InventoryRepository,
	) error {
		r, err := repairRepo.GetForUpdate(ctx, repairID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}

		if in.PartID != "" {
			item, err := invRepo.GetForUpdate(ctx, in.PartID)
			if err != nil {
				return err
			}
			if item != nil {
				if item.QuantityInStock != nil && *item.QuantityInStock < in.Quantity {
					return fmt.Errorf("repuesto %q (disponible %d, pedido %d): %w",
						in.PartName, *item.QuantityInStock, in.Quantity, domain.ErrInsufficientStock)
				}
				if err := invRepo.AdjustStock(ctx, in.PartID, -in.Quantity,
					entity.StockEventUsedInRepair,
					fmt.Sprintf("Consumido en reparación %s", r.Code), r.ID); err != nil {
					return err
				}
			}
		}

		part := &entity.RepairUsedPart{
			ID:        uuid.New().String(),
			RepairID:  r.ID,
			PartID:    in.PartID,
			PartName:  in.PartName,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		}
		if err := repairRepo.AddUsedPart(ctx, part); err != nil {
			return err
		}
		if err := appendHistory(ctx, repairRepo, r.ID, entity.RepairEventPartAdded,
			fmt.Sprintf("Repuesto %q x%d agregado", in.PartName, in.Quantity), changedBy); err != nil {
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

// RemoveUsedPart quita un repuesto y restituye el inventario que había
// descontado.
func (uc *UseCase) RemoveUsedPart(ctx context.Context, repairID, partRowID, changedBy string) (*dto.RepairDetailResponse, error) {
	var detail *entity.RepairWithDetails
	err := uc.txRunner.RunRepair(ctx, func(
		repairRepo repository.RepairRepository,
		invRepo repository.InventoryRepository,
	) error {
		r, err := repairRepo.GetForUpdate(ctx, repairID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		part, err := repairRepo.GetUsedPart(ctx, r.ID, partRowID)
		if err != nil {
			return err
		}
		if part == nil {
			return domain.ErrNotFound
		}

		if part.PartID != "" {
			item, err := invRepo.GetForUpdate(ctx, part.PartID)
			if err != nil {
				return err
			}
			if item != nil {
				if err := invRepo.AdjustStock(ctx, part.PartID, part.Quantity,
					entity.StockEventReturnFromRepair,
					fmt.Sprintf("Restituido de reparación %s", r.Code), r.ID); err != nil {
					return err
				}
			}
		}

		if _, err := repairRepo.RemoveUsedPart(ctx, r.ID, partRowID); err != nil {
			return err
		}
		if err := appendHistory(ctx, repairRepo, r.ID, entity.RepairEventNote,
			fmt.Sprintf("Repuesto %q x%d eliminado", part.PartName, part.Quantity), changedBy); err != nil {
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
