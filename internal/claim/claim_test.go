package claim_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vnagri/claimfusion/internal/claim"
)

func TestNew(t *testing.T) {
	tcs := []struct {
		name    string
		subject string
		pred    string
		conf    float64
		wantErr bool
	}{
		{"ok", "Lúa ST25", "Năng suất", 0.8, false},
		{"empty subject", "  ", "Năng suất", 0.8, true},
		{"empty predicate", "Lúa ST25", "", 0.8, true},
		{"confidence too high", "Lúa ST25", "Năng suất", 1.2, true},
		{"confidence negative", "Lúa ST25", "Năng suất", -0.1, true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			c, err := claim.New(tc.subject, tc.pred, "8.5 tấn/ha", "", tc.conf, "")
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.conf, c.Confidence)
		})
	}
}

func TestGroupKeyFoldsCase(t *testing.T) {
	a, err := claim.New("  Lúa ST25 ", "Năng Suất", "8.5", "", 0.5, "")
	require.NoError(t, err)
	b, err := claim.New("lúa st25", "năng suất", "8.4", "", 0.5, "")
	require.NoError(t, err)

	require.Equal(t, a.GroupKey(), b.GroupKey())
	require.Equal(t, "Lúa ST25", a.Subject, "original casing preserved for display")
}

func TestDedupKeyUsesRawCasing(t *testing.T) {
	a, err := claim.New("Lúa ST25", "Năng suất", "8.5 tấn/ha", "", 0.5, "")
	require.NoError(t, err)
	b, err := claim.New("lúa st25", "năng suất", "8.5 tấn/ha", "", 0.5, "")
	require.NoError(t, err)

	require.NotEqual(t, a.DedupKey(), b.DedupKey())
}
