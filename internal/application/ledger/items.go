package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercio-api/internal/application/dto"
	"github.com/jhoicas/comercio-api/internal/domain"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

// AddItem agrega una línea al documento y recalcula los montos derivados.
// Si el documento está completed, el inventario se ajusta de inmediato y el
// delta del total se aplica al balance de la contraparte.
func (uc *DocumentUseCase) AddItem(ctx context.Context, docID string, in dto.ItemInput, changedBy string) (*dto.DocumentDetailResponse, error) {
	if in.ItemName == "" || in.Quantity <= 0 || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	return uc.mutateItems(ctx, docID, changedBy, func(
		docRepo repository.DocumentRepository,
		invRepo repository.InventoryRepository,
		doc *entity.Document,
	) (string, string, error) {
		item := &entity.DocumentItem{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			ItemID:     in.ItemID,
			ItemName:   in.ItemName,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity)),
			Notes:      in.Notes,
		}
		if err := docRepo.AddItem(ctx, item); err != nil {
			return "", "", err
		}
		if doc.Status == entity.StatusCompleted && item.ItemID != "" {
			stockEvent := entity.StockEventPurchased
			if doc.Type == entity.TypeSale {
				stockEvent = entity.StockEventSold
			}
			delta := doc.Type.StockSign() * item.Quantity
			if err := invRepo.AdjustStock(ctx, item.ItemID, delta, stockEvent,
				fmt.Sprintf("Línea agregada a documento %s", doc.Number), doc.ID); err != nil {
				return "", "", err
			}
		}
		return entity.EventItemAdded, fmt.Sprintf("Línea %q x%d agregada", in.ItemName, in.Quantity), nil
	})
}

// UpdateItem reemplaza cantidad/precio de una línea. Sobre un documento
// completed primero revierte el efecto de inventario viejo y luego aplica
// el nuevo. Una línea inexistente no toca inventario ni balance, pero los
// totales se recalculan igual.
func (uc *DocumentUseCase) UpdateItem(ctx context.Context, docID, itemRowID string, in dto.ItemInput, changedBy string) (*dto.DocumentDetailResponse, error) {
	if in.ItemName == "" || in.Quantity <= 0 || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	return uc.mutateItems(ctx, docID, changedBy, func(
		docRepo repository.DocumentRepository,
		invRepo repository.InventoryRepository,
		doc *entity.Document,
	) (string, string, error) {
		old, err := docRepo.GetItem(ctx, doc.ID, itemRowID)
		if err != nil {
			return "", "", err
		}
		if old == nil {
			// nada que revertir ni actualizar; el recálculo corre igual
			return entity.EventUpdated, "Actualización de línea inexistente", nil
		}
		completed := doc.Status == entity.StatusCompleted
		if completed && old.ItemID != "" {
			if err := invRepo.AdjustStock(ctx, old.ItemID, -doc.Type.StockSign()*old.Quantity,
				entity.StockEventAdjustment,
				fmt.Sprintf("Reversión de línea en documento %s", doc.Number), doc.ID); err != nil {
				return "", "", err
			}
		}
		old.ItemID = in.ItemID
		old.ItemName = in.ItemName
		old.Quantity = in.Quantity
		old.UnitPrice = in.UnitPrice
		old.TotalPrice = in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity))
		old.Notes = in.Notes
		if err := docRepo.UpdateItem(ctx, old); err != nil {
			return "", "", err
		}
		if completed && old.ItemID != "" {
			stockEvent := entity.StockEventPurchased
			if doc.Type == entity.TypeSale {
				stockEvent = entity.StockEventSold
			}
			if err := invRepo.AdjustStock(ctx, old.ItemID, doc.Type.StockSign()*old.Quantity,
				stockEvent,
				fmt.Sprintf("Línea actualizada en documento %s", doc.Number), doc.ID); err != nil {
				return "", "", err
			}
		}
		return entity.EventUpdated, fmt.Sprintf("Línea %q actualizada", in.ItemName), nil
	})
}

// RemoveItem elimina una línea. Sobre un documento completed revierte el
// inventario de la línea; una línea inexistente no revierte nada pero el
// recálculo de totales corre igual.
func (uc *DocumentUseCase) RemoveItem(ctx context.Context, docID, itemRowID, changedBy string) (*dto.DocumentDetailResponse, error) {
	return uc.mutateItems(ctx, docID, changedBy, func(
		docRepo repository.DocumentRepository,
		invRepo repository.InventoryRepository,
		doc *entity.Document,
	) (string, string, error) {
		old, err := docRepo.GetItem(ctx, doc.ID, itemRowID)
		if err != nil {
			return "", "", err
		}
		if old == nil {
			return entity.EventItemRemoved, "Eliminación de línea inexistente", nil
		}
		if _, err := docRepo.RemoveItem(ctx, doc.ID, itemRowID); err != nil {
			return "", "", err
		}
		if doc.Status == entity.StatusCompleted && old.ItemID != "" {
			if err := invRepo.AdjustStock(ctx, old.ItemID, -doc.Type.StockSign()*old.Quantity,
				entity.StockEventAdjustment,
				fmt.Sprintf("Línea eliminada de documento %s", doc.Number), doc.ID); err != nil {
				return "", "", err
			}
		}
		return entity.EventItemRemoved, fmt.Sprintf("Línea %q eliminada", old.ItemName), nil
	})
}

// mutateItems esqueleto común de las mutaciones de líneas: bloquea la
// cabecera, ejecuta la mutación, recalcula totales y estado de pago, aplica
// el delta del total al balance si el documento está completed y registra
// historial. Todo en una transacción.
func (uc *DocumentUseCase) mutateItems(
	ctx context.Context,
	docID, changedBy string,
	mutate func(repository.DocumentRepository, repository.InventoryRepository, *entity.Document) (event, details string, err error),
) (*dto.DocumentDetailResponse, error) {
	var detail *entity.DocumentWithDetails
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		invRepo repository.InventoryRepository,
		partyRepo repository.PartyRepository,
	) error {
		doc, err := docRepo.GetForUpdate(ctx, uc.kind, docID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if doc.Status == entity.StatusCancelled {
			return domain.ErrConflict
		}

		event, details, err := mutate(docRepo, invRepo, doc)
		if err != nil {
			return err
		}

		oldTotal, err := recalcTotals(ctx, docRepo, doc)
		if err != nil {
			return err
		}
		if doc.Status == entity.StatusCompleted {
			totalDelta := doc.TotalAmount.Sub(oldTotal)
			if !totalDelta.IsZero() {
				if err := adjustPartyBalance(ctx, partyRepo, uc.log, doc.PartyID, totalDelta,
					entity.PartyEventBalanceAdjusted,
					fmt.Sprintf("Total de documento %s recalculado", doc.Number), changedBy); err != nil {
					return err
				}
			}
		}

		if err := appendDocHistory(ctx, docRepo, doc.ID, event, details, changedBy); err != nil {
			return err
		}

		detail, err = loadDetails(ctx, docRepo, partyRepo, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToDetailResponse(detail)
	return &resp, nil
}
