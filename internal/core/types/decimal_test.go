package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProrate(t *testing.T) {
	tests := []struct {
		name   string
		price  string
		oldQty int64
		newQty int64
		want   string
	}{
		{"exact", "270", 27, 22, "220"},
		{"thirds round up", "100", 3, 3, "100"},
		{"half rounds up", "15", 2, 1, "8"},
		{"to zero", "270", 27, 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prorate(MustMoney(tt.price), tt.oldQty, tt.newQty)
			assert.True(t, MustMoney(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestSumMoney(t *testing.T) {
	assert.True(t, SumMoney().IsZero())
	assert.True(t, MustMoney("370.5").Equal(SumMoney(MustMoney("270"), MustMoney("100.5"))))
}
