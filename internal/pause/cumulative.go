package pause

// CumulativeDistances returns the distance from the first fix to every fix,
// following the recorded path.
func CumulativeDistances(fixes []Fix) []float64 {
	if len(fixes) == 0 {
		return nil
	}

	cumulative := make([]float64, len(fixes))
	for k := 1; k < len(fixes); k++ {
		cumulative[k] = cumulative[k-1] + distance(fixes[k-1], fixes[k])
	}
	return cumulative
}

// pathDistance sums segment distances from fixes[from] to fixes[to].
func pathDistance(fixes []Fix, from, to int) float64 {
	var total float64
	for j := from; j < to; j++ {
		total += distance(fixes[j], fixes[j+1])
	}
	return total
}
