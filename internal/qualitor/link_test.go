package qualitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frigelar/esteira/internal/config"
)

func TestTicketURL(t *testing.T) {
	builder := NewLinkBuilder(config.QualitorConfig{
		LinkBase: "https://frigelar.qualitorsoftware.com/html/hd/hdchamado/cadastro_chamado.php",
	})

	url := builder.TicketURL("45123")
	assert.Equal(t, "https://frigelar.qualitorsoftware.com/html/hd/hdchamado/cadastro_chamado.php?cdchamado=45123", url)
}

func TestTicketURLEmptyReference(t *testing.T) {
	builder := NewLinkBuilder(config.QualitorConfig{LinkBase: "https://example.com/ticket.php"})
	assert.Empty(t, builder.TicketURL(""))
}

func TestTicketURLEscapesReference(t *testing.T) {
	builder := NewLinkBuilder(config.QualitorConfig{LinkBase: "https://example.com/ticket.php"})
	assert.Equal(t, "https://example.com/ticket.php?cdchamado=a%26b", builder.TicketURL("a&b"))
}
