package ledger_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercio-api/internal/application/ledger"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria para los tests del motor: implementa los puertos de
// repositorio sobre mapas. Sin transaccionalidad real; el TxRunner de test
// solo pasa los repos atados al mismo almacén.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	docs         map[string]*entity.Document
	items        map[string]*entity.DocumentItem
	payments     map[string]*entity.DocumentPayment
	docHistory   []entity.DocumentHistory
	parties      map[string]*entity.Party
	partyHistory []entity.PartyHistory
	invItems     map[string]*entity.InventoryItem
	invHistory   []entity.InventoryHistory
}

func newMemStore() *memStore {
	return &memStore{
		docs:     make(map[string]*entity.Document),
		items:    make(map[string]*entity.DocumentItem),
		payments: make(map[string]*entity.DocumentPayment),
		parties:  make(map[string]*entity.Party),
		invItems: make(map[string]*entity.InventoryItem),
	}
}

func (s *memStore) addParty(id string, kind entity.PartyKind, name string) {
	s.parties[id] = &entity.Party{ID: id, Kind: kind, Name: name, Active: true}
}

func (s *memStore) addInvItem(id string, stock int64) {
	s.invItems[id] = &entity.InventoryItem{ID: id, ItemName: id, QuantityInStock: &stock}
}

func (s *memStore) stock(id string) int64 {
	it := s.invItems[id]
	if it == nil || it.QuantityInStock == nil {
		return 0
	}
	return *it.QuantityInStock
}

func (s *memStore) balance(id string) decimal.Decimal {
	p := s.parties[id]
	if p == nil || !p.CreditBalance.Valid {
		return decimal.Zero
	}
	return p.CreditBalance.Decimal
}

// memTxRunner implementa ledger.TxRunner sin transacción real.
type memTxRunner struct{ s *memStore }

func (r *memTxRunner) Run(_ context.Context, fn func(
	docRepo repository.DocumentRepository,
	invRepo repository.InventoryRepository,
	partyRepo repository.PartyRepository,
) error) error {
	return fn(&memDocRepo{r.s}, &memInvRepo{r.s}, &memPartyRepo{r.s})
}

var _ ledger.TxRunner = (*memTxRunner)(nil)

// ──────────────────────────────────────────────────────────────────────────────
// DocumentRepository en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memDocRepo struct{ s *memStore }

var _ repository.DocumentRepository = (*memDocRepo)(nil)

func (r *memDocRepo) Create(_ context.Context, doc *entity.Document) error {
	for _, d := range r.s.docs {
		if d.Number == doc.Number {
			return fmt.Errorf("número duplicado %s", doc.Number)
		}
	}
	cp := *doc
	r.s.docs[doc.ID] = &cp
	return nil
}

func (r *memDocRepo) GetByID(_ context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	d, ok := r.s.docs[id]
	if !ok || d.Kind != kind {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDocRepo) GetForUpdate(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	return r.GetByID(ctx, kind, id)
}

func (r *memDocRepo) GetAll(_ context.Context, kind entity.DocumentKind, filter repository.DocumentFilter) ([]entity.Document, error) {
	var out []entity.Document
	for _, d := range r.s.docs {
		if d.Kind != kind {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && d.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.PartyID != "" && d.PartyID != filter.PartyID {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *memDocRepo) UpdateHeader(_ context.Context, doc *entity.Document) error {
	d, ok := r.s.docs[doc.ID]
	if !ok {
		return fmt.Errorf("documento %s no existe", doc.ID)
	}
	d.PartyID = doc.PartyID
	d.Notes = doc.Notes
	d.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *memDocRepo) UpdateStatus(_ context.Context, id string, status entity.DocumentStatus) error {
	d, ok := r.s.docs[id]
	if !ok {
		return fmt.Errorf("documento %s no existe", id)
	}
	d.Status = status
	return nil
}

func (r *memDocRepo) UpdateTotals(_ context.Context, id string, total, paid decimal.Decimal, ps entity.PaymentStatus) error {
	d, ok := r.s.docs[id]
	if !ok {
		return fmt.Errorf("documento %s no existe", id)
	}
	d.TotalAmount = total
	d.PaidAmount = paid
	d.PaymentStatus = ps
	return nil
}

func (r *memDocRepo) GreatestNumber(_ context.Context, prefix string, year int) (string, error) {
	head := fmt.Sprintf("%s-%d-", prefix, year)
	best := ""
	for _, d := range r.s.docs {
		n := d.Number
		if len(n) < len(head) || n[:len(head)] != head {
			continue
		}
		if len(n) > len(best) || (len(n) == len(best) && n > best) {
			best = n
		}
	}
	return best, nil
}

func (r *memDocRepo) AddItem(_ context.Context, item *entity.DocumentItem) error {
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *memDocRepo) UpdateItem(_ context.Context, item *entity.DocumentItem) error {
	if _, ok := r.s.items[item.ID]; !ok {
		return fmt.Errorf("línea %s no existe", item.ID)
	}
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *memDocRepo) RemoveItem(_ context.Context, documentID, itemRowID string) (bool, error) {
	it, ok := r.s.items[itemRowID]
	if !ok || it.DocumentID != documentID {
		return false, nil
	}
	delete(r.s.items, itemRowID)
	return true, nil
}

func (r *memDocRepo) GetItems(_ context.Context, documentID string) ([]entity.DocumentItem, error) {
	var out []entity.DocumentItem
	for _, it := range r.s.items {
		if it.DocumentID == documentID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memDocRepo) GetItem(_ context.Context, documentID, itemRowID string) (*entity.DocumentItem, error) {
	it, ok := r.s.items[itemRowID]
	if !ok || it.DocumentID != documentID {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *memDocRepo) SumItems(_ context.Context, documentID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, it := range r.s.items {
		if it.DocumentID == documentID {
			total = total.Add(it.TotalPrice)
		}
	}
	return total, nil
}

func (r *memDocRepo) AddPayment(_ context.Context, p *entity.DocumentPayment) error {
	cp := *p
	r.s.payments[p.ID] = &cp
	return nil
}

func (r *memDocRepo) GetPayments(_ context.Context, documentID string) ([]entity.DocumentPayment, error) {
	var out []entity.DocumentPayment
	for _, p := range r.s.payments {
		if p.DocumentID == documentID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memDocRepo) SumPayments(_ context.Context, documentID string) (decimal.Decimal, error) {
	paid := decimal.Zero
	for _, p := range r.s.payments {
		if p.DocumentID == documentID {
			paid = paid.Add(p.Amount)
		}
	}
	return paid, nil
}

func (r *memDocRepo) LinkOrphanPayments(_ context.Context, sessionID string) (int64, error) {
	var n int64
	for _, p := range r.s.payments {
		if p.SessionID == "" {
			p.SessionID = sessionID
			n++
		}
	}
	return n, nil
}

func (r *memDocRepo) AddHistory(_ context.Context, h *entity.DocumentHistory) error {
	r.s.docHistory = append(r.s.docHistory, *h)
	return nil
}

func (r *memDocRepo) GetHistory(_ context.Context, documentID string) ([]entity.DocumentHistory, error) {
	var out []entity.DocumentHistory
	for _, h := range r.s.docHistory {
		if h.DocumentID == documentID {
			out = append(out, h)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// InventoryRepository y PartyRepository en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memInvRepo struct{ s *memStore }

var _ repository.InventoryRepository = (*memInvRepo)(nil)

func (r *memInvRepo) GetByID(_ context.Context, itemID string) (*entity.InventoryItem, error) {
	it, ok := r.s.invItems[itemID]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *memInvRepo) GetForUpdate(ctx context.Context, itemID string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, itemID)
}

func (r *memInvRepo) AdjustStock(_ context.Context, itemID string, delta int64, eventType, notes, relatedID string) error {
	it, ok := r.s.invItems[itemID]
	if !ok {
		return fmt.Errorf("artículo %s no existe", itemID)
	}
	var cur int64
	if it.QuantityInStock != nil {
		cur = *it.QuantityInStock
	}
	next := cur + delta
	it.QuantityInStock = &next
	r.s.invHistory = append(r.s.invHistory, entity.InventoryHistory{
		ItemID: itemID, EventType: eventType, QuantityChange: delta,
		Notes: notes, RelatedID: relatedID,
	})
	return nil
}

func (r *memInvRepo) GetHistory(_ context.Context, itemID string) ([]entity.InventoryHistory, error) {
	var out []entity.InventoryHistory
	for _, h := range r.s.invHistory {
		if h.ItemID == itemID {
			out = append(out, h)
		}
	}
	return out, nil
}

type memPartyRepo struct{ s *memStore }

var _ repository.PartyRepository = (*memPartyRepo)(nil)

func (r *memPartyRepo) GetByID(_ context.Context, kind entity.PartyKind, id string) (*entity.Party, error) {
	p, ok := r.s.parties[id]
	if !ok || p.Kind != kind {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPartyRepo) AdjustBalance(_ context.Context, id string, delta decimal.Decimal) error {
	p, ok := r.s.parties[id]
	if !ok {
		return fmt.Errorf("contraparte %s no existe", id)
	}
	cur := decimal.Zero
	if p.CreditBalance.Valid {
		cur = p.CreditBalance.Decimal
	}
	p.CreditBalance = decimal.NewNullDecimal(cur.Add(delta))
	return nil
}

func (r *memPartyRepo) AddHistory(_ context.Context, h *entity.PartyHistory) error {
	r.s.partyHistory = append(r.s.partyHistory, *h)
	return nil
}

func (r *memPartyRepo) GetHistory(_ context.Context, partyID string) ([]entity.PartyHistory, error) {
	var out []entity.PartyHistory
	for _, h := range r.s.partyHistory {
		if h.PartyID == partyID {
			out = append(out, h)
		}
	}
	return out, nil
}
