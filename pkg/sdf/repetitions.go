package sdf

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	errs "github.com/matzehuels/sdfexpand/pkg/errors"
	"github.com/matzehuels/sdfexpand/pkg/sdf/linalg"
)

var (
	// ErrRankMismatch means the topology matrix does not have rank n-1, so the
	// balance equations have no unique one-dimensional solution space. The
	// graph is empty, disconnected, or carries contradictory rates.
	ErrRankMismatch = errors.New("topology matrix rank must equal actor count minus one")

	// ErrMixedSigns means the balance solution has zero or mixed-sign
	// entries and cannot be oriented to all-positive firing counts.
	ErrMixedSigns = errors.New("repetitions vector cannot be made strictly positive")

	// ErrOverflow means a repetition count does not fit in an int64.
	ErrOverflow = errors.New("repetition count overflows int64")
)

// Repetitions holds the firing count of each actor per graph iteration,
// indexed like the graph's actors. A vector returned by [RepetitionsVector]
// has strictly positive entries with gcd 1.
type Repetitions []int64

// Of returns the firing count of actor i.
func (r Repetitions) Of(i int) int64 { return r[i] }

// Total returns the sum of all firing counts, which is the number of actors
// in the homogeneous expansion.
func (r Repetitions) Total() int64 {
	var sum int64
	for _, x := range r {
		sum += x
	}
	return sum
}

// Balances reports whether m × r is the zero vector. The products are
// summed exactly, so entries whose int64 products would overflow cannot
// cancel out by wrapping.
func (r Repetitions) Balances(m Matrix) bool {
	if len(m) > 0 && m.Cols() != len(r) {
		return false
	}
	var sum, term, x, y big.Int
	for _, row := range m {
		sum.SetInt64(0)
		for j, a := range row {
			term.Mul(x.SetInt64(a), y.SetInt64(r[j]))
			sum.Add(&sum, &term)
		}
		if sum.Sign() != 0 {
			return false
		}
	}
	return true
}

// String formats the vector as "[3 2]".
func (r Repetitions) String() string {
	parts := make([]string, len(r))
	for i, x := range r {
		parts[i] = strconv.FormatInt(x, 10)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// RepetitionsVector computes the repetitions vector of g.
// See [SolveRepetitions] for the algorithm and failure modes.
func RepetitionsVector(g *Graph) (Repetitions, error) {
	return SolveRepetitions(g.ActorCount(), g.TopologyMatrix())
}

// SolveRepetitions computes the minimal positive integer vector in the null
// space of the topology matrix m of a graph with nActors actors.
//
// The rank of m over the rationals must be nActors-1. Otherwise the result is
// an [errs.ErrCodeStructural] error wrapping ErrRankMismatch; this includes a
// graph without actors. The single null space basis vector is scaled by the
// lcm of its denominators and divided by the gcd of all its entries. If every
// entry is negative the vector is negated; if any entry is zero or the signs
// are mixed the result is an [errs.ErrCodeSign] error wrapping ErrMixedSigns.
//
// The computation is exact and deterministic.
func SolveRepetitions(nActors int, m Matrix) (Repetitions, error) {
	reduced := linalg.Reduce(m, nActors)
	if rank := reduced.Rank(); rank != nActors-1 {
		return nil, errs.Wrap(errs.ErrCodeStructural, ErrRankMismatch,
			"rank %d with %d actors", rank, nActors)
	}

	basis := reduced.NullSpace()
	v := linalg.Primitive(basis[0])

	positive, negative := 0, 0
	for _, x := range v {
		switch x.Sign() {
		case 1:
			positive++
		case -1:
			negative++
		}
	}
	switch {
	case positive == len(v):
	case negative == len(v):
		for _, x := range v {
			x.Neg(x)
		}
	default:
		return nil, errs.Wrap(errs.ErrCodeSign, ErrMixedSigns,
			"balance solution %s", bigString(v))
	}

	out := make(Repetitions, len(v))
	for i, x := range v {
		if !x.IsInt64() {
			return nil, errs.Wrap(errs.ErrCodeInternal, ErrOverflow, "actor %d fires %s times", i, x)
		}
		out[i] = x.Int64()
	}
	return out, nil
}

func bigString(v []*big.Int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = x.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
