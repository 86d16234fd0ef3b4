package core

// SelectWindow returns the records whose entry date falls inside
// [start, end], inclusive on both bounds, comparing by calendar date only.
// Records with invalid entry dates are excluded. Bound ordering is the
// caller's responsibility; the filter never reorders them.
func SelectWindow(all []Record, start, end Date) []Record {
	out := make([]Record, 0, len(all))
	for _, rec := range all {
		d := rec.EntryDate
		if !d.Valid {
			continue
		}
		if d.Before(start.Time) || d.After(end.Time) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// BaselineBefore returns all records dated strictly before start. The
// result is the historical baseline used for first-time-donor detection.
// An invalid start yields an empty baseline, so every window donor counts
// as first-time.
func BaselineBefore(all []Record, start Date) []Record {
	if !start.Valid {
		return nil
	}
	out := make([]Record, 0, len(all))
	for _, rec := range all {
		if rec.EntryDate.Valid && rec.EntryDate.Before(start.Time) {
			out = append(out, rec)
		}
	}
	return out
}
