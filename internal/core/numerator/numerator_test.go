package numerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	period := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "PU-2026-00001", Format(DefaultConfig("PU"), period, 1))
	assert.Equal(t, "SA-000042", Format(Config{Prefix: "SA", PadWidth: 6}, period, 42))
}

func TestSequenceKey(t *testing.T) {
	period := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "PU_2026", SequenceKey(DefaultConfig("PU"), period))
	assert.Equal(t, "PU_2026_03", SequenceKey(Config{Prefix: "PU", ResetPeriod: "month"}, period))
	assert.Equal(t, "PU", SequenceKey(Config{Prefix: "PU", ResetPeriod: "never"}, period))
}
