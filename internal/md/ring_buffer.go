package md

import "github.com/shopspring/decimal"

// RingBuffer keeps the last size values and an exact decimal running sum of them.
type RingBuffer struct {
	values []float64
	size   int
	index  int
	filled bool
	sum    decimal.Decimal
}

func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		values: make([]float64, size),
		size:   size,
	}
}

func (r *RingBuffer) Add(value float64) {
	if r.filled {
		r.sum = r.sum.Sub(decimal.NewFromFloat(r.values[r.index]))
	}
	r.sum = r.sum.Add(decimal.NewFromFloat(value))
	r.values[r.index] = value
	r.index = (r.index + 1) % r.size
	if r.index == 0 {
		r.filled = true
	}
}

func (r *RingBuffer) Len() int {
	if r.filled {
		return r.size
	}
	return r.index
}

// Full reports whether the buffer holds a complete window.
func (r *RingBuffer) Full() bool {
	return r.filled
}

// Values returns the buffered values oldest first.
func (r *RingBuffer) Values() []float64 {
	length := r.Len()
	result := make([]float64, 0, length)
	if length == 0 {
		return result
	}
	if r.filled {
		result = append(result, r.values[r.index:]...)
	}
	result = append(result, r.values[:r.index]...)
	return result
}

// Mean averages the values buffered so far. Until the buffer is full the
// window grows with each Add, after that it slides. An empty buffer has mean 0.
// Windows holding the same values have exactly equal means whatever their length.
func (r *RingBuffer) Mean() float64 {
	n := r.Len()
	if n == 0 {
		return 0
	}
	return r.sum.Div(decimal.NewFromInt(int64(n))).InexactFloat64()
}
