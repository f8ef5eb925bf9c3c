package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dladmin/internal/category"
	"dladmin/internal/person"
)

func TestNormalizePermits(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"D implies G", []string{"D"}, []string{"G", "D"}},
		{"lowercase and padding", []string{" d ", "p"}, []string{"G", "P", "D"}},
		{"duplicates collapse", []string{"G", "g", "D"}, []string{"G", "D"}},
		{"unknown codes dropped", []string{"X", "P"}, []string{"P"}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePermits(tt.in))
		})
	}
}

func TestRequiresPoliceClearance(t *testing.T) {
	t.Run("P alone requires", func(t *testing.T) {
		assert.True(t, RequiresPoliceClearance([]string{"P"}, nil))
	})

	t.Run("G alone does not", func(t *testing.T) {
		assert.False(t, RequiresPoliceClearance([]string{"G"}, nil))
	})

	t.Run("D requires", func(t *testing.T) {
		assert.True(t, RequiresPoliceClearance([]string{"D"}, nil))
	})

	t.Run("existing active professional permit requires", func(t *testing.T) {
		existing := []person.ExistingLicense{{Kind: category.KindPermit, Categories: []string{"P"}, Active: true}}
		assert.True(t, RequiresPoliceClearance([]string{"G"}, existing))
	})

	t.Run("existing permit reported without kind requires", func(t *testing.T) {
		existing := []person.ExistingLicense{{ID: "P-1", Categories: []string{"G", "P"}, Active: true}}
		assert.True(t, RequiresPoliceClearance([]string{"G"}, existing))
	})

	t.Run("inactive permit and bus licence do not", func(t *testing.T) {
		existing := []person.ExistingLicense{
			{Kind: category.KindPermit, Categories: []string{"P"}, Active: false},
			{Kind: category.KindLicense, Categories: []string{"D"}, Active: true},
		}
		assert.False(t, RequiresPoliceClearance([]string{"G"}, existing))
	})
}
