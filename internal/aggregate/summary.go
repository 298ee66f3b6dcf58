package aggregate

// Summary condenses a bucket series for one-line reporting.
type Summary struct {
	Total      int
	Peak       Bucket
	EmptyCount int
}

// Summarize returns the total, the busiest bucket (first one on ties) and
// the number of empty buckets.
func Summarize(buckets []Bucket) Summary {
	var s Summary
	for i, b := range buckets {
		s.Total += b.Count
		if b.Count == 0 {
			s.EmptyCount++
		}
		if i == 0 || b.Count > s.Peak.Count {
			s.Peak = b
		}
	}
	return s
}
