package core

import (
	"sort"
	"strings"
)

// topCountries limits the country rollup, matching the reporting consumers
// that only chart the largest five.
const topCountries = 5

// topItemCount limits the item rollup the same way.
const topItemCount = 5

// SourceStat is the per-source rollup: transaction count and summed value.
type SourceStat struct {
	Source Source
	Count  int
	Amount Money
}

// LabelAmount is a generic label -> summed value rollup entry.
type LabelAmount struct {
	Label  string
	Amount Money
}

// ItemStat is the per-item rollup across the window: summed price*quantity
// and the number of transactions the item appeared in.
type ItemStat struct {
	Name   string
	Amount Money
	Count  int
}

// TrendPoint is one day's summed donation value.
type TrendPoint struct {
	Day    string // YYYY-MM-DD
	Amount Money
}

// Breakdowns are the chart-feeding rollups derived from the active window.
// Like Metrics they are recomputed whole on every window change.
type Breakdowns struct {
	BySource          []SourceStat
	FirstTimeBySource []SourceStat
	ByPaymentMethod   []LabelAmount
	ByDevice          []LabelAmount
	TopCountries      []LabelAmount
	TopItems          []ItemStat
	DailyTrend        []TrendPoint
}

// ComputeBreakdowns derives all rollups from the active window. all and
// start feed the first-time-donor attribution only.
func ComputeBreakdowns(active, all []Record, start Date) Breakdowns {
	var b Breakdowns

	bySource := make(map[Source]*SourceStat)
	firstTime := make(map[Source]*SourceStat)
	for _, src := range AllSources() {
		bySource[src] = &SourceStat{Source: src}
		firstTime[src] = &SourceStat{Source: src}
	}

	baseline := make(map[string]struct{})
	for _, rec := range BaselineBefore(all, start) {
		baseline[rec.Email] = struct{}{}
	}

	methods := newLabelRollup()
	devices := newLabelRollup()
	countries := newLabelRollup()
	trend := make(map[string]int64)
	items := make(map[string]*ItemStat)
	var itemOrder []string

	for _, rec := range active {
		src := Classify(rec)
		bySource[src].Count++
		bySource[src].Amount.Cents += rec.Value.Cents

		if _, returning := baseline[rec.Email]; !returning {
			firstTime[src].Count++
			firstTime[src].Amount.Cents += rec.Value.Cents
		}

		if rec.PaymentMethod != "" {
			methods.add(rec.PaymentMethod, rec.Value.Cents)
		}

		device := rec.Device
		if device == "" {
			device = "Unknown"
		}
		devices.add(device, rec.Value.Cents)

		country := strings.ToUpper(rec.Country)
		if country == "" {
			country = "Unknown"
		}
		countries.add(country, rec.Value.Cents)

		if rec.EntryDate.Valid {
			trend[rec.EntryDate.Key()] += rec.Value.Cents
		}

		for _, item := range rec.Items {
			if item.Name == "" {
				continue
			}
			stat, seen := items[item.Name]
			if !seen {
				stat = &ItemStat{Name: item.Name}
				items[item.Name] = stat
				itemOrder = append(itemOrder, item.Name)
			}
			stat.Amount.Cents += item.Price.Cents * int64(item.Quantity)
			stat.Count++
		}
	}

	for _, src := range AllSources() {
		b.BySource = append(b.BySource, *bySource[src])
		b.FirstTimeBySource = append(b.FirstTimeBySource, *firstTime[src])
	}
	b.ByPaymentMethod = methods.entries()
	b.ByDevice = devices.entries()
	b.TopCountries = topByAmount(countries.entries(), topCountries)

	for _, name := range itemOrder {
		b.TopItems = append(b.TopItems, *items[name])
	}
	sort.SliceStable(b.TopItems, func(i, j int) bool {
		return b.TopItems[i].Amount.Cents > b.TopItems[j].Amount.Cents
	})
	if len(b.TopItems) > topItemCount {
		b.TopItems = b.TopItems[:topItemCount]
	}

	b.DailyTrend = sortedTrend(trend)
	return b
}

// DonorHistory returns a donor's per-day donation series in ascending
// date order, feeding the donor detail chart. Invalid dates are skipped.
func DonorHistory(d Donor) []TrendPoint {
	byDay := make(map[string]int64)
	for _, rec := range d.Donations {
		if rec.EntryDate.Valid {
			byDay[rec.EntryDate.Key()] += rec.Value.Cents
		}
	}
	return sortedTrend(byDay)
}

func sortedTrend(byDay map[string]int64) []TrendPoint {
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	points := make([]TrendPoint, 0, len(days))
	for _, day := range days {
		points = append(points, TrendPoint{Day: day, Amount: Money{Cents: byDay[day]}})
	}
	return points
}

// labelRollup accumulates label -> cents preserving first-seen order.
type labelRollup struct {
	cents map[string]int64
	order []string
}

func newLabelRollup() *labelRollup {
	return &labelRollup{cents: make(map[string]int64)}
}

func (r *labelRollup) add(label string, cents int64) {
	if _, seen := r.cents[label]; !seen {
		r.order = append(r.order, label)
	}
	r.cents[label] += cents
}

func (r *labelRollup) entries() []LabelAmount {
	out := make([]LabelAmount, 0, len(r.order))
	for _, label := range r.order {
		out = append(out, LabelAmount{Label: label, Amount: Money{Cents: r.cents[label]}})
	}
	return out
}

func topByAmount(entries []LabelAmount, n int) []LabelAmount {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.Cents > entries[j].Amount.Cents
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

