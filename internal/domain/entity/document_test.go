package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
)

func TestDerivePaymentStatus(t *testing.T) {
	cases := []struct {
		name  string
		paid  string
		total string
		want  entity.PaymentStatus
	}{
		{"sin pagos", "0", "100", entity.PaymentUnpaid},
		{"pago parcial", "40", "100", entity.PaymentPartial},
		{"pago exacto", "100", "100", entity.PaymentPaid},
		{"sobrepago", "120", "100", entity.PaymentPaid},
		{"centavos pendientes", "99.99", "100", entity.PaymentPartial},
		{"documento vacío no debe nada", "0", "0", entity.PaymentPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			paid := decimal.RequireFromString(tc.paid)
			total := decimal.RequireFromString(tc.total)
			assert.Equal(t, tc.want, entity.DerivePaymentStatus(paid, total))
		})
	}
}

func TestStockSign(t *testing.T) {
	assert.EqualValues(t, -1, entity.TypeSale.StockSign())
	assert.EqualValues(t, 1, entity.TypePurchase.StockSign())
}

func TestKindBindings(t *testing.T) {
	assert.Equal(t, "ORD", entity.KindOrder.NumberPrefix())
	assert.Equal(t, "SALE", entity.KindSale.NumberPrefix())
	assert.Equal(t, "TX", entity.KindTransaction.NumberPrefix())

	assert.Equal(t, entity.TypePurchase, entity.KindOrder.FixedType())
	assert.Equal(t, entity.TypeSale, entity.KindSale.FixedType())
	assert.Empty(t, entity.KindTransaction.FixedType())

	assert.Equal(t, entity.PartySupplier, entity.KindOrder.FixedPartyKind())
	assert.Equal(t, entity.PartyClient, entity.KindSale.FixedPartyKind())
	assert.Empty(t, entity.KindTransaction.FixedPartyKind())

	assert.True(t, entity.KindOrder.Valid())
	assert.False(t, entity.DocumentKind("invoice").Valid())
}
