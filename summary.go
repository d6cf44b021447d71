package contextclust

import "gonum.org/v1/gonum/mat"

// NumberOfClusters returns, for each row of the global-label matrix
// (rows = samples, columns = points), the number of distinct global
// clusters actually occupied by at least one point. Every entry is at most
// the configured global cluster cap.
func NumberOfClusters(globalLabels [][]int) []int {
	counts := make([]int, len(globalLabels))
	for s, row := range globalLabels {
		seen := make(map[int]struct{}, len(row))
		for _, g := range row {
			seen[g] = struct{}{}
		}
		counts[s] = len(seen)
	}
	return counts
}

// CoclusteringMatrix computes the pairwise posterior co-clustering
// probabilities from a global-label matrix (rows = samples, columns =
// points): entry (i,j) is the fraction of samples in which points i and j
// share a global label. The result is symmetric with entries in [0,1] and
// the diagonal forced to 1, ready to be converted to a dissimilarity
// matrix for an external agglomerative clustering step. It is a pure
// function of its input.
func CoclusteringMatrix(globalLabels [][]int) *mat.SymDense {
	if len(globalLabels) == 0 {
		return nil
	}
	n := len(globalLabels[0])
	m := mat.NewSymDense(n, nil)
	for _, row := range globalLabels {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if row[i] == row[j] {
					m.SetSym(i, j, m.At(i, j)+1)
				}
			}
		}
	}
	inv := 1 / float64(len(globalLabels))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.SetSym(i, j, m.At(i, j)*inv)
		}
		m.SetSym(i, i, 1)
	}
	return m
}
