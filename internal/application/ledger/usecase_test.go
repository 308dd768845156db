package ledger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/comercio-api/internal/application/dto"
	"github.com/jhoicas/comercio-api/internal/application/ledger"
	"github.com/jhoicas/comercio-api/internal/domain"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/pkg/logger"
)

func newUC(s *memStore, kind entity.DocumentKind) *ledger.DocumentUseCase {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return ledger.NewDocumentUseCase(kind, &memTxRunner{s}, &memDocRepo{s}, &memPartyRepo{s}, log)
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// crea una orden de compra en borrador para el proveedor "S", sin líneas.
func draftOrder(t *testing.T, s *memStore, uc *ledger.DocumentUseCase) *dto.DocumentDetailResponse {
	t.Helper()
	doc, err := uc.Create(context.Background(), dto.CreateDocumentRequest{
		PartyID:   "S",
		CreatedBy: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, "draft", doc.Status)
	return doc
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios del ciclo orden de compra → completación → pago / reversión
// ──────────────────────────────────────────────────────────────────────────────

func TestOrdenDeCompra_CompletarAplicaInventarioYBalance(t *testing.T) {
	s := newMemStore()
	s.addParty("S", entity.PartySupplier, "Proveedor Uno")
	s.addInvItem("ITEM1", 0)
	uc := newUC(s, entity.KindOrder)
	ctx := context.Background()

	doc := draftOrder(t, s, uc)

	doc, err := uc.AddItem(ctx, doc.ID, dto.ItemInput{
		ItemID:    "ITEM1",
		ItemName:  "Repuesto",
		Quantity:  10,
		UnitPrice: dec("2.00"),
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "20.00", doc.TotalAmount.StringFixed(2))
	assert.Equal(t, "unpaid", doc.PaymentStatus)
	// en borrador no hay efectos
	assert.EqualValues(t, 0, s.stock("ITEM1"))
	assert.Equal(t, "0.00", s.balance("S").StringFixed(2))

	doc, err = uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, "completed", doc.Status)
	assert.EqualValues(t, 10, s.stock("ITEM1"))
	assert.Equal(t, "20.00", s.balance("S").StringFixed(2))
}

func TestOrdenCompletada_PagoReduceBalance(t *testing.T) {
	s := newMemStore()
	s.addParty("S", entity.PartySupplier, "Proveedor Uno")
	s.addInvItem("ITEM1", 0)
	uc := newUC(s, entity.KindOrder)
	ctx := context.Background()

	doc := draftOrder(t, s, uc)
	doc, err := uc.AddItem(ctx, doc.ID, dto.ItemInput{ItemID: "ITEM1", ItemName: "Repuesto", Quantity: 10, UnitPrice: dec("2.00")}, "tester")
	require.NoError(t, err)
	doc, err = uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)

	doc, err = uc.AddPayment(ctx, doc.ID, dto.PaymentInput{Amount: dec("20.00"), Method: "cash"}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "20.00", doc.PaidAmount.StringFixed(2))
	assert.Equal(t, "paid", doc.PaymentStatus)
	// se debía 20, se pagó 20: el balance vuelve al estado previo a la orden
	assert.Equal(t, "0.00", s.balance("S").StringFixed(2))
}

func TestOrdenCompletada_EliminarLineaRevierteTodo(t *testing.T) {
	s := newMemStore()
	s.addParty("S", entity.PartySupplier, "Proveedor Uno")
	s.addInvItem("ITEM1", 0)
	uc := newUC(s, entity.KindOrder)
	ctx := context.Background()

	doc := draftOrder(t, s, uc)
	doc, err := uc.AddItem(ctx, doc.ID, dto.ItemInput{ItemID: "ITEM1", ItemName: "Repuesto", Quantity: 10, UnitPrice: dec("2.00")}, "tester")
	require.NoError(t, err)
	doc, err = uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)

	doc, err = uc.RemoveItem(ctx, doc.ID, doc.Items[0].ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, "0.00", doc.TotalAmount.StringFixed(2))
	assert.EqualValues(t, 0, s.stock("ITEM1"))
	assert.Equal(t, "0.00", s.balance("S").StringFixed(2))
	// total 0 y pagado 0: el documento no debe nada
	assert.Equal(t, "paid", doc.PaymentStatus)
}

func TestNumeracion_SecuenciaPorKind(t *testing.T) {
	s := newMemStore()
	s.addParty("S", entity.PartySupplier, "Proveedor Uno")
	uc := newUC(s, entity.KindOrder)
	ctx := context.Background()

	year := time.Now().Year()
	for i := 1; i <= 3; i++ {
		doc, err := uc.Create(ctx, dto.CreateDocumentRequest{PartyID: "S"})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-%03d", year, i), doc.Number)
	}
}

func TestComplete_Idempotente(t *testing.T) {
	s := newMemStore()
	s.addParty("S", entity.PartySupplier, "Proveedor Uno")
	s.addInvItem("ITEM1", 3)
	uc := newUC(s, entity.KindOrder)
	ctx := context.Background()

	doc := draftOrder(t, s, uc)
	_, err := uc.AddItem(ctx, doc.ID, dto.ItemInput{ItemID: "ITEM1", ItemName: "Repuesto", Quantity: 5, UnitPrice: dec("4.00")}, "tester")
	require.NoError(t, err)

	_, err = uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)
	stockAfter := s.stock("ITEM1")
	balanceAfter := s.balance("S")

	// segunda completación: mismo estado, sin efectos duplicados
	resp, err := uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.EqualValues(t, stockAfter, s.stock("ITEM1"))
	assert.True(t, balanceAfter.Equal(s.balance("S")),
		"balance %s != %s", balanceAfter, s.balance("S"))
}

func TestReversionADraft_RestauraInventarioYBalance(t *testing.T) {
	s := newMemStore()
	s.addParty("C", entity.PartyClient, "Cliente Uno")
	s.addInvItem("ITEM1", 8)
	uc := newUC(s, entity.KindSale)
	ctx := context.Background()

	doc, err := uc.Create(ctx, dto.CreateDocumentRequest{PartyID: "C"})
	require.NoError(t, err)
	doc, err = uc.AddItem(ctx, doc.ID, dto.ItemInput{ItemID: "ITEM1", ItemName: "Repuesto", Quantity: 3, UnitPrice: dec("10.00")}, "tester")
	require.NoError(t, err)

	doc, err = uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)
	// venta: el stock baja y el cliente debe el total
	assert.EqualValues(t, 5, s.stock("ITEM1"))
	assert.Equal(t, "30.00", s.balance("C").StringFixed(2))

	doc, err = uc.UpdateHeader(ctx, doc.ID, dto.UpdateHeaderRequest{Status: strPtr("draft")}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "draft", doc.Status)
	assert.EqualValues(t, 8, s.stock("ITEM1"))
	assert.Equal(t, "0.00", s.balance("C").StringFixed(2))
}

func TestAjusteBajoUmbral_EscribeBalanceSinHistorial(t *testing.T) {
	s := newMemStore()
	s.addParty("S", entity.PartySupplier, "Proveedor Uno")
	s.addInvItem("ITEM1", 0)
	uc := newUC(s, entity.KindOrder)
	ctx := context.Background()

	doc := draftOrder(t, s, uc)
	doc, err := uc.AddItem(ctx, doc.ID, dto.ItemInput{ItemID: "ITEM1", ItemName: "Repuesto", Quantity: 1, UnitPrice: dec("2.0000")}, "tester")
	require.NoError(t, err)
	doc, err = uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)

	historyBefore, err := (&memPartyRepo{s}).GetHistory(ctx, "S")
	require.NoError(t, err)

	// delta de 0.0001: por debajo del umbral de 0.001
	_, err = uc.UpdateItem(ctx, doc.ID, doc.Items[0].ID, dto.ItemInput{
		ItemID: "ITEM1", ItemName: "Repuesto", Quantity: 1, UnitPrice: dec("2.0001"),
	}, "tester")
	require.NoError(t, err)

	historyAfter, err := (&memPartyRepo{s}).GetHistory(ctx, "S")
	require.NoError(t, err)
	assert.Len(t, historyAfter, len(historyBefore), "no debe agregarse historial por un ajuste ínfimo")
	assert.Equal(t, "2.0001", s.balance("S").String(), "el balance sí debe reflejar el ajuste")
}

func TestRemoveItem_InexistenteRecalculaTotales(t *testing.T) {
	s := newMemStore()
	s.addParty("S", entity.PartySupplier, "Proveedor Uno")
	uc := newUC(s, entity.KindOrder)
	ctx := context.Background()

	doc := draftOrder(t, s, uc)
	doc, err := uc.AddItem(ctx, doc.ID, dto.ItemInput{ItemName: "Ad-hoc", Quantity: 2, UnitPrice: dec("5.00")}, "tester")
	require.NoError(t, err)
	require.Equal(t, "10.00", doc.TotalAmount.StringFixed(2))

	doc, err = uc.RemoveItem(ctx, doc.ID, "no-existe", "tester")
	require.NoError(t, err)
	// la línea sigue ahí y el total se recalculó igual
	assert.Len(t, doc.Items, 1)
	assert.Equal(t, "10.00", doc.TotalAmount.StringFixed(2))
}

func TestCancel_SoloTransaccionesEnBorrador(t *testing.T) {
	s := newMemStore()
	s.addParty("C", entity.PartyClient, "Cliente Uno")
	s.addParty("S", entity.PartySupplier, "Proveedor Uno")
	ctx := context.Background()

	// una orden de compra no se puede cancelar
	orderUC := newUC(s, entity.KindOrder)
	order := draftOrder(t, s, orderUC)
	_, err := orderUC.Cancel(ctx, order.ID, "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// una transacción en borrador sí
	txUC := newUC(s, entity.KindTransaction)
	tx, err := txUC.Create(ctx, dto.CreateDocumentRequest{PartyID: "C", Type: "sale"})
	require.NoError(t, err)
	tx, err = txUC.Cancel(ctx, tx.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", tx.Status)

	// una transacción completada no
	tx2, err := txUC.Create(ctx, dto.CreateDocumentRequest{PartyID: "C", Type: "sale", Status: "completed"})
	require.NoError(t, err)
	_, err = txUC.Cancel(ctx, tx2.ID, "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSubmit_TransaccionCompletaEnUnaLlamada(t *testing.T) {
	s := newMemStore()
	s.addParty("S", entity.PartySupplier, "Proveedor Uno")
	s.addInvItem("ITEM1", 1)
	uc := newUC(s, entity.KindTransaction)
	ctx := context.Background()

	doc, err := uc.Submit(ctx, dto.CreateDocumentRequest{
		PartyID: "S",
		Type:    "purchase",
		Status:  "completed",
		Items: []dto.ItemInput{
			{ItemID: "ITEM1", ItemName: "Repuesto", Quantity: 2, UnitPrice: dec("5.00")},
		},
		Payments: []dto.PaymentInput{
			{Amount: dec("4.00"), Method: "cash"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "completed", doc.Status)
	assert.Equal(t, "10.00", doc.TotalAmount.StringFixed(2))
	assert.Equal(t, "4.00", doc.PaidAmount.StringFixed(2))
	assert.Equal(t, "partial", doc.PaymentStatus)
	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("TX-%d-001", year), doc.Number)
	assert.EqualValues(t, 3, s.stock("ITEM1"))
	// se deben 10, se pagaron 4
	assert.Equal(t, "6.00", s.balance("S").StringFixed(2))
}

func TestReasignacionDeContraparte_EnCompletadaMueveElTotal(t *testing.T) {
	s := newMemStore()
	s.addParty("S1", entity.PartySupplier, "Proveedor Uno")
	s.addParty("S2", entity.PartySupplier, "Proveedor Dos")
	uc := newUC(s, entity.KindOrder)
	ctx := context.Background()

	doc, err := uc.Create(ctx, dto.CreateDocumentRequest{
		PartyID: "S1",
		Status:  "completed",
		Items:   []dto.ItemInput{{ItemName: "Servicio", Quantity: 1, UnitPrice: dec("20.00")}},
	})
	require.NoError(t, err)
	require.Equal(t, "20.00", s.balance("S1").StringFixed(2))

	doc, err = uc.UpdateHeader(ctx, doc.ID, dto.UpdateHeaderRequest{PartyID: strPtr("S2")}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "S2", doc.PartyID)
	assert.Equal(t, "0.00", s.balance("S1").StringFixed(2))
	assert.Equal(t, "20.00", s.balance("S2").StringFixed(2))
}

func TestAddPayment_EnBorradorSeDescuentaAlCompletar(t *testing.T) {
	s := newMemStore()
	s.addParty("C", entity.PartyClient, "Cliente Uno")
	uc := newUC(s, entity.KindSale)
	ctx := context.Background()

	doc, err := uc.Create(ctx, dto.CreateDocumentRequest{
		PartyID: "C",
		Items:   []dto.ItemInput{{ItemName: "Servicio", Quantity: 1, UnitPrice: dec("50.00")}},
	})
	require.NoError(t, err)

	doc, err = uc.AddPayment(ctx, doc.ID, dto.PaymentInput{Amount: dec("25.00"), Method: "cash"}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "partial", doc.PaymentStatus)
	// en borrador el pago queda registrado pero sin efecto en el balance
	assert.Equal(t, "0.00", s.balance("C").StringFixed(2))

	// al completar, el pago hecho en borrador se descuenta: 50 - 25
	doc, err = uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, "25.00", s.balance("C").StringFixed(2))
}

// El balance resultante depende del contenido del documento, no del orden en
// que se registraron pagos y completación: crear completado con pago inicial
// y crear en borrador, pagar y completar deben dejar el mismo balance.
func TestBalance_IndependienteDelOrdenDePagoYCompletacion(t *testing.T) {
	ctx := context.Background()

	// camino A: alta completada con pago inicial
	sA := newMemStore()
	sA.addParty("S", entity.PartySupplier, "Proveedor Uno")
	ucA := newUC(sA, entity.KindOrder)
	_, err := ucA.Create(ctx, dto.CreateDocumentRequest{
		PartyID:  "S",
		Status:   "completed",
		Items:    []dto.ItemInput{{ItemName: "Repuesto", Quantity: 2, UnitPrice: dec("5.00")}},
		Payments: []dto.PaymentInput{{Amount: dec("4.00"), Method: "cash"}},
	})
	require.NoError(t, err)

	// camino B: borrador, pago y completación por separado
	sB := newMemStore()
	sB.addParty("S", entity.PartySupplier, "Proveedor Uno")
	ucB := newUC(sB, entity.KindOrder)
	doc, err := ucB.Create(ctx, dto.CreateDocumentRequest{
		PartyID: "S",
		Items:   []dto.ItemInput{{ItemName: "Repuesto", Quantity: 2, UnitPrice: dec("5.00")}},
	})
	require.NoError(t, err)
	_, err = ucB.AddPayment(ctx, doc.ID, dto.PaymentInput{Amount: dec("4.00"), Method: "cash"}, "tester")
	require.NoError(t, err)
	_, err = ucB.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)

	assert.Equal(t, "6.00", sA.balance("S").StringFixed(2))
	assert.Equal(t, sA.balance("S").StringFixed(2), sB.balance("S").StringFixed(2),
		"ambos caminos deben dejar el mismo balance")
}

func TestReversion_RestituyePagosDescontados(t *testing.T) {
	s := newMemStore()
	s.addParty("C", entity.PartyClient, "Cliente Uno")
	uc := newUC(s, entity.KindSale)
	ctx := context.Background()

	doc, err := uc.Create(ctx, dto.CreateDocumentRequest{
		PartyID: "C",
		Items:   []dto.ItemInput{{ItemName: "Servicio", Quantity: 1, UnitPrice: dec("10.00")}},
	})
	require.NoError(t, err)
	_, err = uc.AddPayment(ctx, doc.ID, dto.PaymentInput{Amount: dec("4.00"), Method: "cash"}, "tester")
	require.NoError(t, err)

	doc, err = uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, "6.00", s.balance("C").StringFixed(2))

	// la reversión deshace el total y restituye los pagos descontados
	doc, err = uc.UpdateHeader(ctx, doc.ID, dto.UpdateHeaderRequest{Status: strPtr("draft")}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "0.00", s.balance("C").StringFixed(2))

	// re-completar vuelve a dejar total - pagado
	_, err = uc.Complete(ctx, doc.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, "6.00", s.balance("C").StringFixed(2))
}

func TestGetByID_NoExiste(t *testing.T) {
	s := newMemStore()
	uc := newUC(s, entity.KindOrder)
	_, err := uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_TransaccionRequiereTipo(t *testing.T) {
	s := newMemStore()
	s.addParty("C", entity.PartyClient, "Cliente Uno")
	uc := newUC(s, entity.KindTransaction)
	_, err := uc.Create(context.Background(), dto.CreateDocumentRequest{PartyID: "C"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
