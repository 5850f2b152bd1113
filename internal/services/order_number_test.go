package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOrderNumber(t *testing.T) {
	day := time.Date(2025, 3, 7, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "SOL-20250307-00001", FormatOrderNumber("SOL", day, 1))
	assert.Equal(t, "SOL-20250307-12345", FormatOrderNumber("SOL", day, 12345))
}

func TestParseOrderNumber(t *testing.T) {
	prefix, day, seq, err := ParseOrderNumber("SOL-20250307-00042")
	require.NoError(t, err)
	assert.Equal(t, "SOL", prefix)
	assert.Equal(t, "20250307", day)
	assert.Equal(t, 42, seq)

	for _, bad := range []string{"", "SOL-2025037-00001", "sol-20250307-00001", "SOL-20250307-1"} {
		_, _, _, err := ParseOrderNumber(bad)
		assert.Error(t, err, bad)
	}
}
