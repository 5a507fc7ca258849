package stv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Arithmetic(t *testing.T) {
	a := NewRatio(19, 70)
	b := NewInt(70)
	assert.Equal(t, int64(19), a.Mul(b).Floor())

	sum := NewInt(30).Add(NewInt(19))
	assert.Equal(t, int64(49), sum.Floor())

	diff, err := NewInt(5).Sub(NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, int64(2), diff.Floor())

	_, err = NewInt(3).Sub(NewInt(5))
	require.ErrorIs(t, err, ErrNegativeResult)
}

func TestValue_Floor_TruncatesTowardZero(t *testing.T) {
	v := NewRatio(7, 2)
	assert.Equal(t, int64(3), v.Floor())
}

func TestValue_Cmp(t *testing.T) {
	assert.Equal(t, 0, NewRatio(1, 2).Cmp(NewRatio(2, 4)))
	assert.Equal(t, -1, NewRatio(1, 3).Cmp(NewRatio(1, 2)))
	assert.Equal(t, 1, NewRatio(2, 3).Cmp(NewRatio(1, 2)))
}

func TestValue_Zero(t *testing.T) {
	assert.True(t, Zero().IsZero())
	assert.False(t, One().IsZero())
}
