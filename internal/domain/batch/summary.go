package batch

// Summary aggregates the outcome of a bulk ingest.
type Summary struct {
	Seen      int
	Succeeded int
	Failed    int
	Chunks    int
	Failures  []Result
}

// Record folds one chunk's results into the summary.
func (s *Summary) Record(results []Result) {
	s.Chunks++
	for _, r := range results {
		s.Seen++
		if r.Status() == StatusOK {
			s.Succeeded++
			continue
		}
		s.Failed++
		s.Failures = append(s.Failures, r)
	}
}

// FailedIDs lists the identifiers of rejected documents in write order.
func (s *Summary) FailedIDs() []string {
	ids := make([]string, len(s.Failures))
	for i, r := range s.Failures {
		ids[i] = r.ID()
	}
	return ids
}
