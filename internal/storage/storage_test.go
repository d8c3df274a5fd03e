package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/models"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		kind     models.DocumentKind
		filename string
		want     string
	}{
		{models.KindProposal, "acme bid.pdf", "proposals/id1/acme_bid.pdf"},
		{models.KindRFP, "city_portal.docx", "rfps/id1/city_portal.docx"},
		{models.KindProposal, "../../etc/passwd", "proposals/id1/passwd"},
		{models.KindProposal, `C:\Users\me\offer.txt`, "proposals/id1/offer.txt"},
		{models.KindProposal, "", "proposals/id1/document"},
		{models.KindProposal, "Café.txt", "proposals/id1/Caf_.txt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ObjectKey(tt.kind, "id1", tt.filename), tt.filename)
	}
}
