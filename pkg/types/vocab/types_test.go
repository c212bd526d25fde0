package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTermCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    TermCategory
		wantErr bool
	}{
		{"structural", CategoryStructural, false},
		{"  Source ", CategorySource, false},
		{"FUNCTIONAL", CategoryFunctional, false},
		{"unknown", CategoryUnknown, false},
		{"chemical", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTermCategory(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTermRecordValidate(t *testing.T) {
	valid := TermRecord{
		ID:             "CHEBI:16243",
		CanonicalLabel: "quercetin",
		Category:       CategoryStructural,
		ParentIDs:      []TermID{"CHEBI:28802"},
	}
	assert.NoError(t, valid.Validate())

	noID := valid
	noID.ID = ""
	assert.Error(t, noID.Validate())

	blankLabel := valid
	blankLabel.CanonicalLabel = "   "
	assert.Error(t, blankLabel.Validate())

	badCategory := valid
	badCategory.Category = CategoryUnknown
	assert.Error(t, badCategory.Validate(), "unknown is not a term category")

	selfParent := valid
	selfParent.ParentIDs = []TermID{"CHEBI:16243"}
	assert.Error(t, selfParent.Validate())
}
