package ledger

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
	"github.com/jhoicas/comercio-api/pkg/logger"
)

// balanceEpsilon umbral bajo el cual un ajuste de balance no genera
// historial (el balance sí se escribe).
var balanceEpsilon = decimal.RequireFromString("0.001")

// Complete transiciona draft -> completed: aplica el delta de inventario de
// cada línea con referencia de catálogo, suma el total al balance de la
// contraparte y deja historial. Idempotente: sobre un documento ya
// completado no repite efectos.
func (uc *DocumentUseCase) Complete(ctx context.Context, id, changedBy string) (*dto.DocumentDetailResponse, error) {
	var detail *entity.DocumentWithDetails
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		invRepo repository.InventoryRepository,
		partyRepo repository.PartyRepository,
	) error {
		doc, err := docRepo.GetForUpdate(ctx, uc.kind, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		switch doc.Status {
		case entity.StatusCancelled:
			return domain.ErrInvalidTransition
		case entity.StatusCompleted:
			// ya aplicado
		default:
			if err := uc.applyCompletion(ctx, docRepo, invRepo, partyRepo, doc, changedBy); err != nil {
				return err
			}
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

// Cancel transiciona draft -> cancelled. Solo el kind de transacciones
// genéricas admite la cancelación, sin efectos financieros. Idempotente
// sobre un documento ya cancelado.
func (uc *DocumentUseCase) Cancel(ctx context.Context, id, changedBy string) (*dto.DocumentDetailResponse, error) {
	if uc.kind != entity.KindTransaction {
		return nil, domain.ErrInvalidTransition
	}
	var detail *entity.DocumentWithDetails
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		invRepo repository.InventoryRepository,
		partyRepo repository.PartyRepository,
	) error {
		doc, err := docRepo.GetForUpdate(ctx, uc.kind, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		switch doc.Status {
		case entity.StatusCompleted:
			return domain.ErrInvalidTransition
		case entity.StatusDraft:
			if err := docRepo.UpdateStatus(ctx, doc.ID, entity.StatusCancelled); err != nil {
				return err
			}
			doc.Status = entity.StatusCancelled
			if err := appendDocHistory(ctx, docRepo, doc.ID, entity.EventCancelled,
				fmt.Sprintf("Documento %s cancelado", doc.Number), changedBy); err != nil {
				return err
			}
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

// applyCompletion efectos de la completación: inventario por línea, total
// al balance, pagos ya registrados descontados del balance y cambio de
// estado. Los pagos hechos en borrador se descuentan acá: el balance de la
// contraparte siempre queda en total - pagado, sin importar en qué orden se
// registraron pagos y completación. Siempre dentro de la transacción del
// caller.
func (uc *DocumentUseCase) applyCompletion(
	ctx context.Context,
	docRepo repository.DocumentRepository,
	invRepo repository.InventoryRepository,
	partyRepo repository.PartyRepository,
	doc *entity.Document,
	changedBy string,
) error {
	items, err := docRepo.GetItems(ctx, doc.ID)
	if err != nil {
		return err
	}
	stockEvent := entity.StockEventPurchased
	partyEvent := entity.PartyEventOrderCompleted
	if doc.Type == entity.TypeSale {
		stockEvent = entity.StockEventSold
		partyEvent = entity.PartyEventSaleCompleted
	}
	for _, it := range items {
		if it.ItemID == "" {
			continue
		}
		delta := doc.Type.StockSign() * it.Quantity
		if err := invRepo.AdjustStock(ctx, it.ItemID, delta, stockEvent,
			fmt.Sprintf("Documento %s", doc.Number), doc.ID); err != nil {
			return err
		}
	}
	if err := adjustPartyBalance(ctx, partyRepo, uc.log, doc.PartyID, doc.TotalAmount,
		partyEvent, fmt.Sprintf("Documento %s completado", doc.Number), changedBy); err != nil {
		return err
	}
	payments, err := docRepo.GetPayments(ctx, doc.ID)
	if err != nil {
		return err
	}
	paymentEvent := entity.PartyEventPaymentMade
	if doc.PartyKind == entity.PartyClient {
		paymentEvent = entity.PartyEventPaymentReceived
	}
	for _, p := range payments {
		if err := adjustPartyBalance(ctx, partyRepo, uc.log, doc.PartyID, p.Amount.Neg(),
			paymentEvent, fmt.Sprintf("Pago de documento %s (%s)", doc.Number, p.Method), changedBy); err != nil {
			return err
		}
	}
	if err := docRepo.UpdateStatus(ctx, doc.ID, entity.StatusCompleted); err != nil {
		return err
	}
	doc.Status = entity.StatusCompleted
	return appendDocHistory(ctx, docRepo, doc.ID, entity.EventCompleted,
		fmt.Sprintf("Documento %s completado", doc.Number), changedBy)
}

// revertCompletion reversión simétrica de applyCompletion: inventario y
// balance (total y pagos descontados incluidos) vuelven a sus valores
// previos a la completación.
func (uc *DocumentUseCase) revertCompletion(
	ctx context.Context,
	docRepo repository.DocumentRepository,
	invRepo repository.InventoryRepository,
	partyRepo repository.PartyRepository,
	doc *entity.Document,
	changedBy string,
) error {
	items, err := docRepo.GetItems(ctx, doc.ID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.ItemID == "" {
			continue
		}
		delta := -doc.Type.StockSign() * it.Quantity
		if err := invRepo.AdjustStock(ctx, it.ItemID, delta, entity.StockEventAdjustment,
			fmt.Sprintf("Reversión de documento %s", doc.Number), doc.ID); err != nil {
			return err
		}
	}
	if err := adjustPartyBalance(ctx, partyRepo, uc.log, doc.PartyID, doc.TotalAmount.Neg(),
		entity.PartyEventReverted, fmt.Sprintf("Documento %s revertido a borrador", doc.Number), changedBy); err != nil {
		return err
	}
	payments, err := docRepo.GetPayments(ctx, doc.ID)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if err := adjustPartyBalance(ctx, partyRepo, uc.log, doc.PartyID, p.Amount,
			entity.PartyEventReverted,
			fmt.Sprintf("Pago de documento %s restituido al balance (%s)", doc.Number, p.Method), changedBy); err != nil {
			return err
		}
	}
	if err := docRepo.UpdateStatus(ctx, doc.ID, entity.StatusDraft); err != nil {
		return err
	}
	doc.Status = entity.StatusDraft
	return appendDocHistory(ctx, docRepo, doc.ID, entity.EventReverted,
		fmt.Sprintf("Documento %s revertido a borrador", doc.Number), changedBy)
}

// recalcTotals recalcula total, pagado y estado de pago desde las filas
// fuente y los persiste. Devuelve el total previo para que el caller pueda
// aplicar el delta al balance. Actualiza doc en memoria.
func recalcTotals(ctx context.Context, docRepo repository.DocumentRepository, doc *entity.Document) (decimal.Decimal, error) {
	oldTotal := doc.TotalAmount
	total, err := docRepo.SumItems(ctx, doc.ID)
	if err != nil {
		return oldTotal, err
	}
	paid, err := docRepo.SumPayments(ctx, doc.ID)
	if err != nil {
		return oldTotal, err
	}
	ps := entity.DerivePaymentStatus(paid, total)
	if err := docRepo.UpdateTotals(ctx, doc.ID, total, paid, ps); err != nil {
		return oldTotal, err
	}
	doc.TotalAmount = total
	doc.PaidAmount = paid
	doc.PaymentStatus = ps
	return oldTotal, nil
}

// adjustPartyBalance suma delta al balance de la contraparte. Por debajo de
// balanceEpsilon el balance se escribe igual pero no se agrega historial,
// para no llenar la auditoría de movimientos de cero.
func adjustPartyBalance(
	ctx context.Context,
	partyRepo repository.PartyRepository,
	log *logger.Logger,
	partyID string,
	delta decimal.Decimal,
	eventType, notes, changedBy string,
) error {
	if err := partyRepo.AdjustBalance(ctx, partyID, delta); err != nil {
		return err
	}
	if delta.Abs().LessThan(balanceEpsilon) {
		log.Debug().
			Str("party_id", partyID).
			Str("delta", delta.String()).
			Msg("ajuste de balance bajo el umbral, sin historial")
		return nil
	}
	return partyRepo.AddHistory(ctx, &entity.PartyHistory{
		ID:        uuid.New().String(),
		PartyID:   partyID,
		Date:      time.Now(),
		Type:      eventType,
		Notes:     notes,
		Amount:    delta,
		ChangedBy: changedBy,
	})
}
