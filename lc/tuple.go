package lc

import "fmt"

// Tuple1 is the candidate tuple of a one-sequence comprehension.
type Tuple1[A any] struct {
	V1 A
}

// Tuple2 is the candidate tuple of a two-sequence comprehension.
type Tuple2[A, B any] struct {
	V1 A
	V2 B
}

// Tuple3 is the candidate tuple of a three-sequence comprehension.
type Tuple3[A, B, C any] struct {
	V1 A
	V2 B
	V3 C
}

// Tuple4 is the candidate tuple of a four-sequence comprehension.
type Tuple4[A, B, C, D any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
}

func (t Tuple1[A]) Unpack() A { return t.V1 }

func (t Tuple2[A, B]) Unpack() (A, B) { return t.V1, t.V2 }

func (t Tuple3[A, B, C]) Unpack() (A, B, C) { return t.V1, t.V2, t.V3 }

func (t Tuple4[A, B, C, D]) Unpack() (A, B, C, D) { return t.V1, t.V2, t.V3, t.V4 }

func (t Tuple1[A]) String() string {
	return "(" + formatElem(t.V1) + ")"
}

func (t Tuple2[A, B]) String() string {
	return fmt.Sprintf("(%s, %s)", formatElem(t.V1), formatElem(t.V2))
}

func (t Tuple3[A, B, C]) String() string {
	return fmt.Sprintf("(%s, %s, %s)", formatElem(t.V1), formatElem(t.V2), formatElem(t.V3))
}

func (t Tuple4[A, B, C, D]) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", formatElem(t.V1), formatElem(t.V2), formatElem(t.V3), formatElem(t.V4))
}

// Pred1 adapts a unary test to a predicate over Tuple1.
func Pred1[A any](f func(A) bool) func(Tuple1[A]) bool {
	return func(t Tuple1[A]) bool { return f(t.V1) }
}

// Pred2 adapts a binary test to a predicate over Tuple2.
func Pred2[A, B any](f func(A, B) bool) func(Tuple2[A, B]) bool {
	return func(t Tuple2[A, B]) bool { return f(t.V1, t.V2) }
}

// Pred3 adapts a ternary test to a predicate over Tuple3.
func Pred3[A, B, C any](f func(A, B, C) bool) func(Tuple3[A, B, C]) bool {
	return func(t Tuple3[A, B, C]) bool { return f(t.V1, t.V2, t.V3) }
}

// Pred4 adapts a four-argument test to a predicate over Tuple4.
func Pred4[A, B, C, D any](f func(A, B, C, D) bool) func(Tuple4[A, B, C, D]) bool {
	return func(t Tuple4[A, B, C, D]) bool { return f(t.V1, t.V2, t.V3, t.V4) }
}

// Func1 adapts a unary function to a transform over Tuple1.
func Func1[A, R any](f func(A) R) func(Tuple1[A]) R {
	return func(t Tuple1[A]) R { return f(t.V1) }
}

// Func2 adapts a binary function to a transform over Tuple2.
func Func2[A, B, R any](f func(A, B) R) func(Tuple2[A, B]) R {
	return func(t Tuple2[A, B]) R { return f(t.V1, t.V2) }
}

// Func3 adapts a ternary function to a transform over Tuple3.
func Func3[A, B, C, R any](f func(A, B, C) R) func(Tuple3[A, B, C]) R {
	return func(t Tuple3[A, B, C]) R { return f(t.V1, t.V2, t.V3) }
}

// Func4 adapts a four-argument function to a transform over Tuple4.
func Func4[A, B, C, D, R any](f func(A, B, C, D) R) func(Tuple4[A, B, C, D]) R {
	return func(t Tuple4[A, B, C, D]) R { return f(t.V1, t.V2, t.V3, t.V4) }
}
