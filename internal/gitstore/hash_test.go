package gitstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHash(t *testing.T) {
	full := "16047dfc3ba3b4a8a6244dec410c0338b305a3ed"

	tests := []struct {
		name      string
		input     string
		minPrefix int
		want      string
		wantErr   bool
	}{
		{"full hash", full, DefaultMinPrefix, full, false},
		{"uppercase is lowered", strings.ToUpper(full), DefaultMinPrefix, full, false},
		{"minimum prefix", "1604", DefaultMinPrefix, "1604", false},
		{"two characters", "1a", DefaultMinPrefix, "", true},
		{"single character", "4", DefaultMinPrefix, "", true},
		{"empty", "", DefaultMinPrefix, "", true},
		{"too long", full + "a", DefaultMinPrefix, "", true},
		{"non-hex", "zzzz", DefaultMinPrefix, "", true},
		{"non-hex in full", "g6047dfc3ba3b4a8a6244dec410c0338b305a3ed", DefaultMinPrefix, "", true},
		{"abbreviation disabled", "1604", HashLen, "", true},
		{"out of range min falls back to full", "1604", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHash(tt.input, tt.minPrefix)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidHash)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsFullHash(t *testing.T) {
	assert.True(t, IsFullHash("4eee8aa0ea3fc32a0f3a9de626423ec0f2a4b39f"))
	assert.False(t, IsFullHash("4eee8aa"))
	assert.False(t, IsFullHash("not-a-hash"))
}
