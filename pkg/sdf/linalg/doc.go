// Package linalg provides exact linear algebra over the rationals.
//
// Balance equations of dataflow graphs must be solved exactly: a rate
// mismatch has to show up as a change in matrix rank, not as a residual of
// 1e-16. Every computation in this package therefore runs on [math/big.Rat]
// values and never touches floating point.
//
// # Usage
//
// Reduce an integer matrix to reduced row echelon form, then query its rank
// and null space:
//
//	r := linalg.Reduce([][]int64{{2, -3}}, 2)
//	r.Rank()      // 1
//	r.NullSpace() // [[3/2 1]]
//
// [Primitive] scales a rational vector to the unique integer vector with the
// same direction whose entries have gcd 1.
package linalg
