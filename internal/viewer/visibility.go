// File path: internal/viewer/visibility.go
package viewer

// VisibilityPercent turns per-point ray hits into the share of rays that
// reached their target, as a percentage. A point with no rays scores 0.
func VisibilityPercent(hits [][]bool) []float64 {
	out := make([]float64, len(hits))
	for i, rays := range hits {
		if len(rays) == 0 {
			continue
		}
		seen := 0
		for _, hit := range rays {
			if hit {
				seen++
			}
		}
		out[i] = float64(seen) * 100 / float64(len(rays))
	}
	return out
}
