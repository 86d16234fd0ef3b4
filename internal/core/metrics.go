package core

// StatusBucket holds count and summed value for one status partition.
type StatusBucket struct {
	Count  int
	Amount Money
}

// Metrics are the window-level aggregates published for reporting. They
// are a pure function of the active window plus, for first-time-donor
// detection, the historical records preceding the window start.
type Metrics struct {
	TotalDonated Money

	// UniqueDonors is the window's distinct email count minus the
	// first-time-donor count, i.e. the returning-donor count. This
	// reproduces the dashboard's historical definition of the figure;
	// see DESIGN.md before "fixing" it.
	UniqueDonors int

	AvgDonation      Money
	TransactionCount int
	FirstTimeDonors  int

	// MostFrequentAmount is the amount with the highest occurrence count
	// across the window; ties go to the amount seen earliest in input
	// order. Zero when the window is empty.
	MostFrequentAmount Money

	Successful StatusBucket
	Declined   StatusBucket
}

// ComputeMetrics derives the window metrics from the active records.
// all and start feed the first-time-donor baseline only.
func ComputeMetrics(active, all []Record, start Date) Metrics {
	var m Metrics
	m.TransactionCount = len(active)

	windowEmails := make(map[string]struct{})
	for _, rec := range active {
		m.TotalDonated.Cents += rec.Value.Cents
		windowEmails[rec.Email] = struct{}{}

		if rec.Declined() {
			m.Declined.Count++
			m.Declined.Amount.Cents += rec.Value.Cents
		} else {
			m.Successful.Count++
			m.Successful.Amount.Cents += rec.Value.Cents
		}
	}

	if m.TransactionCount > 0 {
		// round half up on the cent
		n := int64(m.TransactionCount)
		m.AvgDonation.Cents = (m.TotalDonated.Cents + n/2) / n
	}

	m.FirstTimeDonors = countFirstTime(windowEmails, all, start)
	m.UniqueDonors = len(windowEmails) - m.FirstTimeDonors
	m.MostFrequentAmount = mostFrequentAmount(active)

	return m
}

// countFirstTime counts window emails absent from the pre-start baseline.
func countFirstTime(windowEmails map[string]struct{}, all []Record, start Date) int {
	baseline := make(map[string]struct{})
	for _, rec := range BaselineBefore(all, start) {
		baseline[rec.Email] = struct{}{}
	}
	n := 0
	for email := range windowEmails {
		if _, seen := baseline[email]; !seen {
			n++
		}
	}
	return n
}

func mostFrequentAmount(active []Record) Money {
	counts := make(map[int64]int)
	firstSeen := make(map[int64]int)
	for i, rec := range active {
		c := rec.Value.Cents
		if _, seen := counts[c]; !seen {
			firstSeen[c] = i
		}
		counts[c]++
	}

	var best int64
	bestCount := 0
	for cents, count := range counts {
		if count > bestCount || (count == bestCount && firstSeen[cents] < firstSeen[best]) {
			best = cents
			bestCount = count
		}
	}
	if bestCount == 0 {
		return Money{}
	}
	return Money{Cents: best}
}
