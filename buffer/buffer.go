package buffer

import (
	"math"
	"sync"
)

type Average float64
type Minimum float64
type Maximum float64
type Sum float64
type Size int
type Position int

// SampleBuffer is a fixed size ring of float64 samples. Slots that have
// never been written are not counted by any of the aggregates.
type SampleBuffer struct {
	position int
	size     int
	count    int
	data     []float64
	lock     sync.Mutex
}

func NewBuffer(size int) *SampleBuffer {
	if size < 1 {
		size = 1
	}
	return &SampleBuffer{
		size: size,
		data: make([]float64, size),
	}
}

func (b *SampleBuffer) AddItem(val float64) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.data[b.position] = val
	b.position += 1
	if b.position == b.size {
		b.position = 0
	}
	if b.count < b.size {
		b.count += 1
	}
}

// SumMinMaxLast aggregates the newest numberOfItems samples. The request is
// capped to the number of samples actually held.
func (b *SampleBuffer) SumMinMaxLast(numberOfItems int) (Sum, Minimum, Maximum) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if numberOfItems > b.count {
		numberOfItems = b.count
	}
	if numberOfItems < 1 {
		return 0, 0, 0
	}
	index := b.position - numberOfItems
	if index < 0 {
		// we are at the start of the array, so need to reverse wrap
		index += b.size
	}
	min := math.MaxFloat64
	max := -math.MaxFloat64
	sum := 0.0
	for numberOfItems > 0 {
		x := b.data[index]
		sum += x
		if x > max {
			max = x
		}
		if x < min {
			min = x
		}
		index += 1
		if index == b.size {
			index = 0
		}
		numberOfItems -= 1
	}
	return Sum(sum), Minimum(min), Maximum(max)
}

func (b *SampleBuffer) GetAverageMinMaxSum() (Average, Minimum, Maximum, Sum) {
	b.lock.Lock()
	count := b.count
	b.lock.Unlock()
	if count == 0 {
		return 0, 0, 0, 0
	}
	s, mn, mx := b.SumMinMaxLast(count)
	return Average(float64(s) / float64(count)), mn, mx, s
}

func (b *SampleBuffer) GetLast() float64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	index := b.position - 1
	if index < 0 {
		index += b.size
	}
	return b.data[index]
}

func (b *SampleBuffer) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.position = 0
	b.count = 0
	for i := range b.data {
		b.data[i] = 0
	}
}

func (b *SampleBuffer) GetSize() Size {
	return Size(b.size)
}

// Len is the number of samples held, at most GetSize.
func (b *SampleBuffer) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.count
}

func (b *SampleBuffer) GetPosition() Position {
	b.lock.Lock()
	defer b.lock.Unlock()
	return Position(b.position)
}
