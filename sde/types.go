package sde

import "math"

// Float is the set of scalar types a state vector may hold.
type Float interface {
	~float32 | ~float64
}

// Vector is the dependent variable of an integration. Its length is the
// dimension of the system and stays fixed for the lifetime of a run.
type Vector[T Float] []T

func (v Vector[T]) Clone() Vector[T] {
	c := make(Vector[T], len(v))
	copy(c, v)
	return c
}

func (v Vector[T]) IsValid() bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (v Vector[T]) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Zero sets every component to zero in place.
func (v Vector[T]) Zero() {
	for i := range v {
		v[i] = 0
	}
}

// AddScaled stores v + alpha*w in dst and returns dst. dst may alias v.
func AddScaled[T Float](dst, v Vector[T], alpha T, w Vector[T]) Vector[T] {
	for i := range v {
		dst[i] = v[i] + alpha*w[i]
	}
	return dst
}

// Float64s converts v to a float64 slice, mainly for statistics and export.
func (v Vector[T]) Float64s() []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
