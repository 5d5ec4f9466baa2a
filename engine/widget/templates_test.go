package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell_String(t *testing.T) {
	t.Run("Should print unavailable for missing values", func(t *testing.T) {
		assert.Equal(t, "unavailable", cell{Value: 42, OK: false}.String())
		assert.Equal(t, "42", cell{Value: 42, OK: true}.String())
		assert.Equal(t, "0", cell{Value: 0, OK: true}.String())
	})
}

func TestRound2(t *testing.T) {
	t.Run("Should round to two decimals for positive and negative values", func(t *testing.T) {
		assert.Equal(t, 3.14, round2(3.14159))
		assert.Equal(t, 4.57, round2(4.567))
		assert.Equal(t, -4.57, round2(-4.567))
		assert.Equal(t, -0.33, round2(-1.0/3.0))
		assert.Equal(t, 0.0, round2(0))
	})
}
