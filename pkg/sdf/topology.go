package sdf

// Matrix is a dense integer matrix stored row-major.
type Matrix [][]int64

// Topology builds the channels × nActors topology matrix.
//
// Row c has +Production at column Source and -Consumption at column Target,
// zero elsewhere. For a self-loop both contributions land in the same cell
// and are summed. Channel indices are assumed to be valid.
func Topology(nActors int, channels []Channel) Matrix {
	m := make(Matrix, len(channels))
	for i, c := range channels {
		row := make([]int64, nActors)
		row[c.Source] += c.Production
		row[c.Target] -= c.Consumption
		m[i] = row
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of columns, or 0 for a matrix without rows.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// MulVec returns m × v. The length of v must equal the column count.
// Arithmetic is int64 and wraps on overflow; use [Repetitions.Balances] to
// check a vector exactly.
func (m Matrix) MulVec(v []int64) []int64 {
	out := make([]int64, len(m))
	for i, row := range m {
		var sum int64
		for j, a := range row {
			sum += a * v[j]
		}
		out[i] = sum
	}
	return out
}
