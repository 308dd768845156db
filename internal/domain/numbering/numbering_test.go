package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext_PrimerNumeroDelAño(t *testing.T) {
	assert.Equal(t, "SALE-2025-001", Next("SALE", 2025, ""))
	assert.Equal(t, "ORD-2024-001", Next("ORD", 2024, ""))
	assert.Equal(t, "TX-2025-001", Next("TX", 2025, ""))
}

func TestNext_Incrementa(t *testing.T) {
	assert.Equal(t, "SALE-2025-002", Next("SALE", 2025, "SALE-2025-001"))
	assert.Equal(t, "SALE-2025-100", Next("SALE", 2025, "SALE-2025-099"))
}

func TestNext_DesbordaElPadding(t *testing.T) {
	// Más de 999 documentos en un año: el número crece sin truncarse.
	assert.Equal(t, "SALE-2025-1000", Next("SALE", 2025, "SALE-2025-999"))
	assert.Equal(t, "SALE-2025-1001", Next("SALE", 2025, "SALE-2025-1000"))
}

func TestNext_ReiniciaPorAño(t *testing.T) {
	// El mayor número del año anterior no influye en el nuevo año.
	assert.Equal(t, "SALE-2026-001", Next("SALE", 2026, ""))
}

func TestNext_SufijoCorrupto(t *testing.T) {
	assert.Equal(t, "SALE-2025-001", Next("SALE", 2025, "SALE-2025-abc"))
	assert.Equal(t, "SALE-2025-001", Next("SALE", 2025, "OTRO-2025-007"))
}

func TestNextCode_Secuencia(t *testing.T) {
	assert.Equal(t, "REP001", NextCode("REP", ""))
	assert.Equal(t, "REP002", NextCode("REP", "REP001"))
	assert.Equal(t, "REP100", NextCode("REP", "REP099"))
}

func TestNextCode_DesbordaElPadding(t *testing.T) {
	assert.Equal(t, "REP1000", NextCode("REP", "REP999"))
	assert.Equal(t, "REP1001", NextCode("REP", "REP1000"))
}

func TestNextCode_SufijoCorrupto(t *testing.T) {
	assert.Equal(t, "REP001", NextCode("REP", "REPabc"))
	assert.Equal(t, "REP001", NextCode("REP", "OTRO007"))
}
