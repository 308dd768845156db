// Package ledger implementa el motor de consistencia entre documentos
// comerciales, sus líneas y pagos, el balance de la contraparte y las
// existencias de inventario. Un único caso de uso genérico se instancia
// tres veces (órdenes de compra, ventas, transacciones); la convención de
// signo y la contraparte las aporta el kind.
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
	"github.com/jhoicas/comercio-api/internal/domain/numbering"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
	"github.com/jhoicas/comercio-api/pkg/logger"
)

// DocumentUseCase motor de ciclo de vida de documentos de un kind.
type DocumentUseCase struct {
	kind      entity.DocumentKind
	txRunner  TxRunner
	docRepo   repository.DocumentRepository
	partyRepo repository.PartyRepository
	log       *logger.Logger
}

// NewDocumentUseCase construye el caso de uso para un kind. docRepo y
// partyRepo atados al pool se usan solo para lecturas; toda mutación pasa
// por txRunner.
func NewDocumentUseCase(
	kind entity.DocumentKind,
	txRunner TxRunner,
	docRepo repository.DocumentRepository,
	partyRepo repository.PartyRepository,
	log *logger.Logger,
) *DocumentUseCase {
	return &DocumentUseCase{
		kind:      kind,
		txRunner:  txRunner,
		docRepo:   docRepo,
		partyRepo: partyRepo,
		log:       log,
	}
}

// resolveType dirección comercial del documento: fija por kind, o elegida
// por el caller para transacciones genéricas.
func (uc *DocumentUseCase) resolveType(requested string) (entity.DocumentType, error) {
	if fixed := uc.kind.FixedType(); fixed != "" {
		if requested != "" && requested != string(fixed) {
			return "", domain.ErrInvalidInput
		}
		return fixed, nil
	}
	switch entity.DocumentType(requested) {
	case entity.TypeSale:
		return entity.TypeSale, nil
	case entity.TypePurchase:
		return entity.TypePurchase, nil
	}
	return "", domain.ErrInvalidInput
}

// partyKindFor contraparte del documento: fija por kind, o derivada de la
// dirección (venta -> cliente, compra -> proveedor).
func (uc *DocumentUseCase) partyKindFor(docType entity.DocumentType) entity.PartyKind {
	if fixed := uc.kind.FixedPartyKind(); fixed != "" {
		return fixed
	}
	if docType == entity.TypeSale {
		return entity.PartyClient
	}
	return entity.PartySupplier
}

// Create crea un documento con sus líneas y pagos iniciales en una sola
// transacción. El número se genera cuando no hay documentos previos del
// prefijo/año o continúa la secuencia existente. Si el caller pide estado
// completed, los efectos de inventario y balance se aplican en la misma
// unidad atómica.
func (uc *DocumentUseCase) Create(ctx context.Context, in dto.CreateDocumentRequest) (*dto.DocumentDetailResponse, error) {
	if in.PartyID == "" {
		return nil, domain.ErrInvalidInput
	}
	docType, err := uc.resolveType(in.Type)
	if err != nil {
		return nil, err
	}
	status := entity.StatusDraft
	switch in.Status {
	case "", string(entity.StatusDraft):
	case string(entity.StatusCompleted):
		status = entity.StatusCompleted
	default:
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ItemName == "" || it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}
	for _, p := range in.Payments {
		if !p.Amount.GreaterThan(decimal.Zero) || p.Method == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	partyKind := uc.partyKindFor(docType)
	now := time.Now()
	doc := &entity.Document{
		ID:            uuid.New().String(),
		Kind:          uc.kind,
		Type:          docType,
		PartyID:       in.PartyID,
		PartyKind:     partyKind,
		Status:        entity.StatusDraft,
		PaymentStatus: entity.PaymentUnpaid, // recalculado en la misma tx
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     in.CreatedBy,
	}

	var detail *entity.DocumentWithDetails
	err = uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		invRepo repository.InventoryRepository,
		partyRepo repository.PartyRepository,
	) error {
		party, err := partyRepo.GetByID(ctx, partyKind, in.PartyID)
		if err != nil {
			return err
		}
		if party == nil {
			return domain.ErrNotFound
		}

		prefix := uc.kind.NumberPrefix()
		last, err := docRepo.GreatestNumber(ctx, prefix, now.Year())
		if err != nil {
			return err
		}
		doc.Number = numbering.Next(prefix, now.Year(), last)

		if err := docRepo.Create(ctx, doc); err != nil {
			return err
		}

		for _, it := range in.Items {
			item := &entity.DocumentItem{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				ItemID:     it.ItemID,
				ItemName:   it.ItemName,
				Quantity:   it.Quantity,
				UnitPrice:  it.UnitPrice,
				TotalPrice: it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)),
				Notes:      it.Notes,
			}
			if err := docRepo.AddItem(ctx, item); err != nil {
				return err
			}
		}
		for _, p := range in.Payments {
			pay := &entity.DocumentPayment{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Amount:     p.Amount,
				Method:     p.Method,
				Date:       now,
				ReceivedBy: p.ReceivedBy,
				Notes:      p.Notes,
			}
			if err := docRepo.AddPayment(ctx, pay); err != nil {
				return err
			}
		}

		if _, err := recalcTotals(ctx, docRepo, doc); err != nil {
			return err
		}

		event := entity.EventCreatedDraft
		if status == entity.StatusCompleted {
			event = entity.EventCreated
		}
		if err := appendDocHistory(ctx, docRepo, doc.ID, event,
			fmt.Sprintf("Documento %s creado", doc.Number), in.CreatedBy); err != nil {
			return err
		}

		if status == entity.StatusCompleted {
			// applyCompletion descuenta también los pagos iniciales recién
			// insertados: el balance queda en total - pagado
			if err := uc.applyCompletion(ctx, docRepo, invRepo, partyRepo, doc, in.CreatedBy); err != nil {
				return err
			}
		}

		detail, err = loadDetails(ctx, docRepo, partyRepo, doc)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("kind", string(uc.kind)).
		Str("number", doc.Number).
		Str("status", string(doc.Status)).
		Msg("documento creado")

	resp := dto.ToDetailResponse(detail)
	return &resp, nil
}

// GetAll lista documentos del kind con filtros opcionales.
func (uc *DocumentUseCase) GetAll(ctx context.Context, filter repository.DocumentFilter) ([]dto.DocumentResponse, error) {
	docs, err := uc.docRepo.GetAll(ctx, uc.kind, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, dto.ToDocumentResponse(&docs[i], ""))
	}
	return out, nil
}

// GetByID documento con líneas, pagos y nombre de contraparte.
func (uc *DocumentUseCase) GetByID(ctx context.Context, id string) (*dto.DocumentDetailResponse, error) {
	doc, err := uc.docRepo.GetByID(ctx, uc.kind, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	detail, err := loadDetails(ctx, uc.docRepo, uc.partyRepo, doc)
	if err != nil {
		return nil, err
	}
	resp := dto.ToDetailResponse(detail)
	return &resp, nil
}

// GetHistory historial de auditoría del documento.
func (uc *DocumentUseCase) GetHistory(ctx context.Context, id string) ([]dto.HistoryResponse, error) {
	doc, err := uc.docRepo.GetByID(ctx, uc.kind, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	hs, err := uc.docRepo.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToHistoryResponses(hs), nil
}

// UpdateHeader actualiza cabecera de un documento: notas, contraparte y
// transiciones de estado draft<->completed. Una reasignación de contraparte
// en estado completed mueve el total entre la contraparte vieja y la nueva;
// completed->draft revierte inventario y balance de forma simétrica.
func (uc *DocumentUseCase) UpdateHeader(ctx context.Context, id string, in dto.UpdateHeaderRequest, changedBy string) (*dto.DocumentDetailResponse, error) {
	if in.Status != nil {
		switch entity.DocumentStatus(*in.Status) {
		case entity.StatusDraft, entity.StatusCompleted:
		default:
			return nil, domain.ErrInvalidTransition
		}
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
		if doc.Status == entity.StatusCancelled {
			return domain.ErrConflict
		}

		newPartyID := doc.PartyID
		if in.PartyID != nil && *in.PartyID != doc.PartyID {
			if *in.PartyID == "" {
				return domain.ErrInvalidInput
			}
			party, err := partyRepo.GetByID(ctx, doc.PartyKind, *in.PartyID)
			if err != nil {
				return err
			}
			if party == nil {
				return domain.ErrNotFound
			}
			newPartyID = *in.PartyID
		}

		newStatus := doc.Status
		if in.Status != nil {
			newStatus = entity.DocumentStatus(*in.Status)
		}

		switch {
		case doc.Status == entity.StatusCompleted && newStatus == entity.StatusDraft:
			// Reversión completa: inventario y balance vuelven al estado
			// previo a la completación; la contraparte se cambia después,
			// ya sin efectos pendientes.
			if err := uc.revertCompletion(ctx, docRepo, invRepo, partyRepo, doc, changedBy); err != nil {
				return err
			}
			doc.PartyID = newPartyID

		case doc.Status == entity.StatusDraft && newStatus == entity.StatusCompleted:
			doc.PartyID = newPartyID
			if err := uc.applyCompletion(ctx, docRepo, invRepo, partyRepo, doc, changedBy); err != nil {
				return err
			}

		case doc.Status == entity.StatusCompleted && newPartyID != doc.PartyID:
			// Reasignación en completed: el total se mueve entre
			// contrapartes como dos ajustes simétricos.
			if err := adjustPartyBalance(ctx, partyRepo, uc.log, doc.PartyID, doc.TotalAmount.Neg(),
				entity.PartyEventPartyReassigned,
				fmt.Sprintf("Documento %s reasignado a otra contraparte", doc.Number), changedBy); err != nil {
				return err
			}
			if err := adjustPartyBalance(ctx, partyRepo, uc.log, newPartyID, doc.TotalAmount,
				entity.PartyEventPartyReassigned,
				fmt.Sprintf("Documento %s recibido de otra contraparte", doc.Number), changedBy); err != nil {
				return err
			}
			doc.PartyID = newPartyID

		default:
			doc.PartyID = newPartyID
		}

		if in.Notes != nil {
			doc.Notes = *in.Notes
		}
		doc.UpdatedAt = time.Now()
		if err := docRepo.UpdateHeader(ctx, doc); err != nil {
			return err
		}
		if err := appendDocHistory(ctx, docRepo, doc.ID, entity.EventUpdated,
			"Cabecera actualizada", changedBy); err != nil {
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

// loadDetails arma el agregado completo releyendo la cabecera ya mutada.
func loadDetails(ctx context.Context, docRepo repository.DocumentRepository, partyRepo repository.PartyRepository, doc *entity.Document) (*entity.DocumentWithDetails, error) {
	fresh, err := docRepo.GetByID(ctx, doc.Kind, doc.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, domain.ErrNotFound
	}
	items, err := docRepo.GetItems(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	payments, err := docRepo.GetPayments(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	partyName := ""
	if party, err := partyRepo.GetByID(ctx, fresh.PartyKind, fresh.PartyID); err == nil && party != nil {
		partyName = party.Name
	}
	return &entity.DocumentWithDetails{
		Document:  *fresh,
		Items:     items,
		Payments:  payments,
		PartyName: partyName,
	}, nil
}

// appendDocHistory registra un evento de auditoría del documento.
func appendDocHistory(ctx context.Context, docRepo repository.DocumentRepository, docID, eventType, details, by string) error {
	return docRepo.AddHistory(ctx, &entity.DocumentHistory{
		ID:         uuid.New().String(),
		DocumentID: docID,
		Date:       time.Now(),
		EventType:  eventType,
		Details:    details,
		ChangedBy:  by,
	})
}
