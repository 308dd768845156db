// Package numbering genera números de documento humano-legibles. Los
// documentos comerciales usan PREFIX-YYYY-NNN (ej. SALE-2025-001), con
// secuencia anual e independiente por prefijo; las reparaciones usan
// PREFIXNNN (ej. REP001), con secuencia continua sin componente de año.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
)

// Next calcula el siguiente número para prefix en year a partir del mayor
// número existente (lexicográficamente) con ese prefijo y año. last vacío
// significa que no hay documentos previos y la secuencia arranca en 001.
// Un sufijo que no parsea como entero se trata como 0.
func Next(prefix string, year int, last string) string {
	seq := parseSeq(prefix, year, last) + 1
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}

// NextCode calcula el siguiente código corto para prefix a partir del mayor
// código existente (ej. "REP007" -> "REP008"). last vacío arranca la
// secuencia en 001; un sufijo que no parsea como entero se trata como 0.
// Pasado 999 el código crece sin truncarse (REP999 -> REP1000).
func NextCode(prefix, last string) string {
	seq := 0
	if rest, ok := strings.CutPrefix(last, prefix); ok {
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			seq = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq+1)
}

// parseSeq extrae el componente secuencial de un número existente.
func parseSeq(prefix string, year int, number string) int {
	if number == "" {
		return 0
	}
	head := fmt.Sprintf("%s-%d-", prefix, year)
	rest, ok := strings.CutPrefix(number, head)
	if !ok {
		return 0
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0
	}
	return seq
}
