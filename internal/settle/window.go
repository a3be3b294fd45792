package settle

import "time"

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Span builds the window running from the start day shifted by startOffset to
// the end day shifted by endOffset. Both days are taken at midnight of their
// own calendar date.
func Span(start, end time.Time, startOffset, endOffset time.Duration) Window {
	return Window{
		Start: midnight(start).Add(startOffset),
		End:   midnight(end).Add(endOffset),
	}
}

// Contains reports whether t lies inside w, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Day returns the calendar day of t after shifting it by shift.
func Day(t time.Time, shift time.Duration) time.Time {
	return midnight(t.Add(shift))
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
