package tasks

// Progress is a (current, total) pair in job-kind-defined units.
type Progress struct {
	Current uint64 `json:"current"`
	Total   uint64 `json:"total"`
}

// Ratio returns Current/Total clamped to [0,1]; 0 when Total is 0.
func (p Progress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	r := float64(p.Current) / float64(p.Total)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
