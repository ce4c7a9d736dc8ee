package pdf

import "context"

// Renderer turns invoice documents into PDF bytes.
type Renderer interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}
