package domain

// View is a rendered list. Most views show one section; the "upcoming-today"
// list on the upcoming page is a second rendering of the today section.
type View string

const (
	ViewToday         View = "today"
	ViewUpcomingToday View = "upcoming-today"
	ViewTomorrow      View = "tomorrow"
	ViewThisWeek      View = "thisweek"
	ViewFinished      View = "finished"
)

// Section returns the bucket a view renders.
func (v View) Section() Section {
	if v == ViewUpcomingToday {
		return SectionToday
	}
	return Section(v)
}

// ViewsFor expands sections into the views that must be refreshed, keeping the
// order of first appearance and always pairing today with upcoming-today.
func ViewsFor(sections ...Section) []View {
	seen := make(map[View]bool)
	var out []View
	add := func(v View) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, s := range sections {
		if !s.IsValid() {
			continue
		}
		add(View(s))
		if s == SectionToday {
			add(ViewUpcomingToday)
		}
	}
	return out
}

// AllViews lists every view.
func AllViews() []View {
	return ViewsFor(AllSections...)
}
