package linalg

import "math/big"

// Reduced is a matrix in reduced row echelon form together with the pivot
// column of each non-zero row.
//
// Rows below len(Pivots) are all zero. The zero value is an empty 0x0 matrix.
type Reduced struct {
	Rows   [][]*big.Rat
	Pivots []int
	Cols   int
}

// FromInts copies an integer matrix into freshly allocated rationals. Rows
// shorter than cols are padded with zeros.
func FromInts(m [][]int64, cols int) [][]*big.Rat {
	out := make([][]*big.Rat, len(m))
	for i, row := range m {
		out[i] = make([]*big.Rat, cols)
		for j := range cols {
			out[i][j] = new(big.Rat)
			if j < len(row) {
				out[i][j].SetInt64(row[j])
			}
		}
	}
	return out
}

// Reduce computes the reduced row echelon form of the integer matrix m with
// the given number of columns. The input is not modified.
func Reduce(m [][]int64, cols int) *Reduced {
	return ReduceRat(FromInts(m, cols), cols)
}

// ReduceRat computes the reduced row echelon form of a rational matrix in
// place and returns it. Callers that need the unreduced rows must copy them first.
func ReduceRat(rows [][]*big.Rat, cols int) *Reduced {
	var pivots []int
	pivotRow := 0
	for col := 0; col < cols && pivotRow < len(rows); col++ {
		sel := -1
		for r := pivotRow; r < len(rows); r++ {
			if rows[r][col].Sign() != 0 {
				sel = r
				break
			}
		}
		if sel < 0 {
			continue
		}
		rows[pivotRow], rows[sel] = rows[sel], rows[pivotRow]

		pivot := rows[pivotRow]
		inv := new(big.Rat).Inv(pivot[col])
		for c := col; c < cols; c++ {
			pivot[c].Mul(pivot[c], inv)
		}

		tmp := new(big.Rat)
		for r := range rows {
			if r == pivotRow || rows[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(rows[r][col])
			for c := col; c < cols; c++ {
				tmp.Mul(factor, pivot[c])
				rows[r][c].Sub(rows[r][c], tmp)
			}
		}

		pivots = append(pivots, col)
		pivotRow++
	}
	return &Reduced{Rows: rows, Pivots: pivots, Cols: cols}
}

// Rank returns the number of non-zero rows.
func (r *Reduced) Rank() int { return len(r.Pivots) }

// FreeColumns returns the non-pivot columns in increasing order.
func (r *Reduced) FreeColumns() []int {
	isPivot := make([]bool, r.Cols)
	for _, p := range r.Pivots {
		isPivot[p] = true
	}
	var free []int
	for c, p := range isPivot {
		if !p {
			free = append(free, c)
		}
	}
	return free
}

// NullSpace returns a basis of the null space, one vector per free column in
// increasing column order. Each vector has a 1 at its free column, 0 at every
// other free column, and the back-substituted values at the pivot columns.
func (r *Reduced) NullSpace() [][]*big.Rat {
	free := r.FreeColumns()
	basis := make([][]*big.Rat, 0, len(free))
	for _, f := range free {
		v := make([]*big.Rat, r.Cols)
		for i := range v {
			v[i] = new(big.Rat)
		}
		v[f].SetInt64(1)
		for i, p := range r.Pivots {
			v[p].Neg(r.Rows[i][f])
		}
		basis = append(basis, v)
	}
	return basis
}

// Rank returns the rank of the integer matrix m over the rationals.
func Rank(m [][]int64, cols int) int {
	return Reduce(m, cols).Rank()
}

// NullSpace returns a rational basis of the null space of the integer matrix m.
func NullSpace(m [][]int64, cols int) [][]*big.Rat {
	return Reduce(m, cols).NullSpace()
}
