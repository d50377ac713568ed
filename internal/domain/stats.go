package domain

import "math"

// Stats summarizes the collection for dashboards.
type Stats struct {
	Today      int `json:"today"`
	Tomorrow   int `json:"tomorrow"`
	ThisWeek   int `json:"thisweek"`
	Finished   int `json:"finished"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ComputeStats counts tasks per section; Percentage is the rounded share of
// finished tasks.
func ComputeStats(c Collection) Stats {
	st := Stats{
		Today:    len(c[SectionToday]),
		Tomorrow: len(c[SectionTomorrow]),
		ThisWeek: len(c[SectionThisWeek]),
		Finished: len(c[SectionFinished]),
	}
	st.Total = st.Today + st.Tomorrow + st.ThisWeek + st.Finished
	if st.Total > 0 {
		st.Percentage = int(math.Round(float64(st.Finished) * 100 / float64(st.Total)))
	}
	return st
}
