package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddItem(t *testing.T) {
	buf := NewBuffer(10)

	a, mn, mx, s := buf.GetAverageMinMaxSum()
	assert.Equal(t, Average(0), a)
	assert.Equal(t, Sum(0), s)
	assert.Equal(t, 0, buf.Len())

	for i := 0; i < 10; i++ {
		buf.AddItem(1)
	}

	a, mn, mx, s = buf.GetAverageMinMaxSum()
	assert.Equal(t, Average(1), a)
	assert.Equal(t, Minimum(1), mn)
	assert.Equal(t, Maximum(1), mx)
	assert.Equal(t, Sum(10), s)

	buf.AddItem(10)

	a, mn, mx, s = buf.GetAverageMinMaxSum()
	assert.Equal(t, Average(1.9), a)
	assert.Equal(t, Minimum(1), mn)
	assert.Equal(t, Maximum(10), mx)
	assert.Equal(t, Sum(19), s)
	assert.Equal(t, 10, buf.Len())
	assert.Equal(t, float64(10), buf.GetLast())
}

func TestPartialFill(t *testing.T) {
	buf := NewBuffer(5)

	buf.AddItem(2)
	buf.AddItem(4)

	a, mn, mx, s := buf.GetAverageMinMaxSum()
	assert.Equal(t, Average(3), a)
	assert.Equal(t, Minimum(2), mn)
	assert.Equal(t, Maximum(4), mx)
	assert.Equal(t, Sum(6), s)

	// asking for more than we hold only counts what we hold
	s, _, _ = buf.SumMinMaxLast(5)
	assert.Equal(t, Sum(6), s)
}

func TestSumMinMaxLastWraps(t *testing.T) {
	buf := NewBuffer(4)

	buf.AddItem(1)
	buf.AddItem(0)
	buf.AddItem(0)
	buf.AddItem(1)
	buf.AddItem(1) // overwrites slot 0
	buf.AddItem(1)

	s, mn, mx := buf.SumMinMaxLast(3)
	assert.Equal(t, Sum(3), s)
	assert.Equal(t, Minimum(1), mn)
	assert.Equal(t, Maximum(1), mx)

	s, mn, _ = buf.SumMinMaxLast(4)
	assert.Equal(t, Sum(3), s)
	assert.Equal(t, Minimum(0), mn)
	assert.Equal(t, Position(2), buf.GetPosition())
}

func TestReset(t *testing.T) {
	buf := NewBuffer(3)
	buf.AddItem(7)
	buf.AddItem(7)
	buf.Reset()

	assert.Equal(t, 0, buf.Len())
	s, _, _ := buf.SumMinMaxLast(3)
	assert.Equal(t, Sum(0), s)
	assert.Equal(t, Size(3), buf.GetSize())
}
