package linalg

import "math/big"

// Primitive scales v to an integer vector with the same direction whose
// entries have gcd 1. Signs are preserved.
//
// The vector is multiplied by the lcm of all denominators and then divided by
// the gcd of all resulting numerators, taken over the whole vector. A zero
// vector maps to a zero vector.
func Primitive(v []*big.Rat) []*big.Int {
	l := big.NewInt(1)
	g := new(big.Int)
	for _, x := range v {
		l = lcm(l, x.Denom())
	}

	out := make([]*big.Int, len(v))
	for i, x := range v {
		n := new(big.Int).Mul(x.Num(), new(big.Int).Quo(l, x.Denom()))
		out[i] = n
		g.GCD(nil, nil, g, new(big.Int).Abs(n))
	}

	if g.Sign() == 0 || g.Cmp(big.NewInt(1)) == 0 {
		return out
	}
	for _, n := range out {
		n.Quo(n, g)
	}
	return out
}

// GCD returns the gcd of the absolute values of xs. GCD of no values is 0.
func GCD(xs ...*big.Int) *big.Int {
	g := new(big.Int)
	for _, x := range xs {
		g.GCD(nil, nil, g, new(big.Int).Abs(x))
	}
	return g
}

func lcm(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}
	g := new(big.Int).GCD(nil, nil, a, b)
	out := new(big.Int).Quo(a, g)
	return out.Abs(out.Mul(out, b))
}
