package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColLetter(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, colLetter(tt.col), "col %d", tt.col)
	}
}
