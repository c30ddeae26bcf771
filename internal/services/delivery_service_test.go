package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeliveryCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateDeliveryCode()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
		seen[code] = true
	}
	// 50 draws from a million-value space collide to a single value with
	// negligible probability.
	assert.Greater(t, len(seen), 1)
}

func TestFallbackDeliveryCode(t *testing.T) {
	tests := []struct {
		nanos int64
		want  string
	}{
		{0, "000000"},
		{42, "000042"},
		{1000000, "000000"},
		{1693489301123456789, "456789"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, fallbackDeliveryCode(tc.nanos))
	}
}
