package repair_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/comercio-api/internal/application/repair"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memRepairStore struct {
	repairs    map[string]*entity.Repair
	parts      map[string]*entity.RepairUsedPart
	payments   map[string]*entity.RepairPayment
	history    []entity.RepairHistory
	invItems   map[string]*entity.InventoryItem
	invHistory []entity.InventoryHistory
}

func newRepairStore() *memRepairStore {
	return &memRepairStore{
		repairs:  make(map[string]*entity.Repair),
		parts:    make(map[string]*entity.RepairUsedPart),
		payments: make(map[string]*entity.RepairPayment),
		invItems: make(map[string]*entity.InventoryItem),
	}
}

type memRepairRepo struct{ s *memRepairStore }

var _ repository.RepairRepository = (*memRepairRepo)(nil)

func (r *memRepairRepo) Create(_ context.Context, rep *entity.Repair) error {
	cp := *rep
	r.s.repairs[rep.ID] = &cp
	return nil
}

func (r *memRepairRepo) GetByID(_ context.Context, id string) (*entity.Repair, error) {
	rep, ok := r.s.repairs[id]
	if !ok {
		return nil, nil
	}
	cp := *rep
	return &cp, nil
}

func (r *memRepairRepo) GetForUpdate(ctx context.Context, id string) (*entity.Repair, error) {
	return r.GetByID(ctx, id)
}

func (r *memRepairRepo) GetAll(_ context.Context) ([]entity.Repair, error) {
	var out []entity.Repair
	for _, rep := range r.s.repairs {
		out = append(out, *rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepairRepo) UpdateHeader(_ context.Context, rep *entity.Repair) error {
	cp := *rep
	r.s.repairs[rep.ID] = &cp
	return nil
}

func (r *memRepairRepo) UpdateStatus(_ context.Context, id string, status entity.RepairStatus) error {
	rep, ok := r.s.repairs[id]
	if !ok {
		return fmt.Errorf("reparación %s no existe", id)
	}
	rep.Status = status
	return nil
}

func (r *memRepairRepo) UpdatePaymentStatus(_ context.Context, id string, ps entity.PaymentStatus) error {
	rep, ok := r.s.repairs[id]
	if !ok {
		return fmt.Errorf("reparación %s no existe", id)
	}
	rep.PaymentStatus = ps
	return nil
}

func (r *memRepairRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.s.repairs[id]; !ok {
		return false, nil
	}
	delete(r.s.repairs, id)
	for pid, p := range r.s.parts {
		if p.RepairID == id {
			delete(r.s.parts, pid)
		}
	}
	for pid, p := range r.s.payments {
		if p.RepairID == id {
			delete(r.s.payments, pid)
		}
	}
	return true, nil
}

func (r *memRepairRepo) GreatestCode(_ context.Context) (string, error) {
	var best string
	for _, rep := range r.s.repairs {
		if len(rep.Code) > len(best) || (len(rep.Code) == len(best) && rep.Code > best) {
			best = rep.Code
		}
	}
	return best, nil
}

func (r *memRepairRepo) AddUsedPart(_ context.Context, p *entity.RepairUsedPart) error {
	cp := *p
	r.s.parts[p.ID] = &cp
	return nil
}

func (r *memRepairRepo) GetUsedParts(_ context.Context, repairID string) ([]entity.RepairUsedPart, error) {
	var out []entity.RepairUsedPart
	for _, p := range r.s.parts {
		if p.RepairID == repairID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memRepairRepo) GetUsedPart(_ context.Context, repairID, partRowID string) (*entity.RepairUsedPart, error) {
	p, ok := r.s.parts[partRowID]
	if !ok || p.RepairID != repairID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memRepairRepo) RemoveUsedPart(_ context.Context, repairID, partRowID string) (bool, error) {
	p, ok := r.s.parts[partRowID]
	if !ok || p.RepairID != repairID {
		return false, nil
	}
	delete(r.s.parts, partRowID)
	return true, nil
}

func (r *memRepairRepo) AddPayment(_ context.Context, p *entity.RepairPayment) error {
	cp := *p
	r.s.payments[p.ID] = &cp
	return nil
}

func (r *memRepairRepo) GetPayments(_ context.Context, repairID string) ([]entity.RepairPayment, error) {
	var out []entity.RepairPayment
	for _, p := range r.s.payments {
		if p.RepairID == repairID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memRepairRepo) SumPayments(_ context.Context, repairID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.s.payments {
		if p.RepairID == repairID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r *memRepairRepo) LinkOrphanPayments(_ context.Context, sessionID string) (int64, error) {
	var n int64
	for _, p := range r.s.payments {
		if p.SessionID == "" {
			p.SessionID = sessionID
			n++
		}
	}
	return n, nil
}

func (r *memRepairRepo) AddHistory(_ context.Context, h *entity.RepairHistory) error {
	r.s.history = append(r.s.history, *h)
	return nil
}

func (r *memRepairRepo) GetHistory(_ context.Context, repairID string) ([]entity.RepairHistory, error) {
	var out []entity.RepairHistory
	for _, h := range r.s.history {
		if h.RepairID == repairID {
			out = append(out, h)
		}
	}
	return out, nil
}

type memInvRepo struct{ s *memRepairStore }

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
	cur += delta
	it.QuantityInStock = &cur
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

type memRepairTxRunner struct{ s *memRepairStore }

var _ repair.TxRunner = (*memRepairTxRunner)(nil)

func (r *memRepairTxRunner) RunRepair(_ context.Context, fn func(
	repairRepo repository.RepairRepository,
	invRepo repository.InventoryRepository,
) error) error {
	return fn(&memRepairRepo{r.s}, &memInvRepo{r.s})
}

func (s *memRepairStore) addItem(name string, stock int64) string {
	id := uuid.New().String()
	s.invItems[id] = &entity.InventoryItem{
		ID:              id,
		ItemName:        name,
		QuantityInStock: &stock,
	}
	return id
}
