package ledger

import (
	"context"

	"github.com/jhoicas/comercio-api/internal/application/dto"
)

// Submit alta atómica de documento con líneas, pagos y completación
// inmediata opcional, en una sola transacción. Es la misma semántica de
// Create; se expone con nombre propio para el flujo de transacciones
// genéricas, donde el caller arma todo el documento de una vez.
func (uc *DocumentUseCase) Submit(ctx context.Context, in dto.CreateDocumentRequest) (*dto.DocumentDetailResponse, error) {
	return uc.Create(ctx, in)
}
