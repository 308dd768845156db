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
)

// AddPayment registra un pago, recalcula pagado y estado de pago, y — si el
// documento está completed — aplica el monto con signo opuesto al balance
// de la contraparte: un pago reduce lo adeudado. Los pagos nunca se
// eliminan; una corrección se registra como documento inverso.
func (uc *DocumentUseCase) AddPayment(ctx context.Context, docID string, in dto.PaymentInput, changedBy string) (*dto.DocumentDetailResponse, error) {
	if !in.Amount.GreaterThan(decimal.Zero) || in.Method == "" {
		return nil, domain.ErrInvalidInput
	}
	receivedBy := in.ReceivedBy
	if receivedBy == "" {
		receivedBy = changedBy
	}

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

		pay := &entity.DocumentPayment{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Amount:     in.Amount,
			Method:     in.Method,
			Date:       time.Now(),
			ReceivedBy: receivedBy,
			Notes:      in.Notes,
		}
		if err := docRepo.AddPayment(ctx, pay); err != nil {
			return err
		}
		if _, err := recalcTotals(ctx, docRepo, doc); err != nil {
			return err
		}

		if doc.Status == entity.StatusCompleted {
			partyEvent := entity.PartyEventPaymentMade
			if doc.PartyKind == entity.PartyClient {
				partyEvent = entity.PartyEventPaymentReceived
			}
			if err := adjustPartyBalance(ctx, partyRepo, uc.log, doc.PartyID, in.Amount.Neg(),
				partyEvent, fmt.Sprintf("Pago de documento %s (%s)", doc.Number, in.Method), changedBy); err != nil {
				return err
			}
		}

		if err := appendDocHistory(ctx, docRepo, doc.ID, entity.EventPaymentAdded,
			fmt.Sprintf("Pago de %s vía %s", in.Amount.StringFixed(2), in.Method), changedBy); err != nil {
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

// GetPayments pagos de un documento en orden cronológico.
func (uc *DocumentUseCase) GetPayments(ctx context.Context, docID string) ([]dto.PaymentResponse, error) {
	doc, err := uc.docRepo.GetByID(ctx, uc.kind, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	payments, err := uc.docRepo.GetPayments(ctx, docID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, dto.PaymentResponse{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Date:       p.Date,
			ReceivedBy: p.ReceivedBy,
			Notes:      p.Notes,
			SessionID:  p.SessionID,
		})
	}
	return out, nil
}
