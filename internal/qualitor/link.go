// Package qualitor builds outbound links into the Qualitor help desk.
package qualitor

import (
	"net/url"

	"github.com/frigelar/esteira/internal/config"
)

// LinkBuilder renders the fixed-template ticket URL.
type LinkBuilder struct {
	base string
}

// NewLinkBuilder constructs the builder.
func NewLinkBuilder(cfg config.QualitorConfig) LinkBuilder {
	return LinkBuilder{base: cfg.LinkBase}
}

// TicketURL embeds the ticket reference as the cdchamado query parameter.
// An empty reference yields no link; the reference content itself is never
// validated.
func (b LinkBuilder) TicketURL(reference string) string {
	if reference == "" {
		return ""
	}
	u, err := url.Parse(b.base)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("cdchamado", reference)
	u.RawQuery = q.Encode()
	return u.String()
}
