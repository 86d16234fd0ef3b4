package core

import "sort"

// ItemRollup accumulates quantity and spend for one (name, category) item
// pair across a donor's transactions.
type ItemRollup struct {
	Name     string
	Category string
	Quantity int
	Total    Money
}

// Donor is the aggregate for a single email identity. It is rebuilt from
// scratch on every aggregation pass, never patched incrementally.
//
// Invariants: TotalDonated == sum of Donations values,
// DonationCount == len(Donations), and FirstDonation <= LastDonation
// whenever both are valid.
type Donor struct {
	Name     string
	Email    string
	Phone    string
	Country  string
	City     string
	State    string
	Postcode string

	Donations      []Record
	TotalDonated   Money
	DonationCount  int
	FirstDonation  Date
	LastDonation   Date
	PaymentMethods []string
	Sources        []Source
	Items          []ItemRollup

	// Frequency is donations per day over the first..last span.
	// FrequencyValid is false for single-donation donors and whenever the
	// span is zero days (no division by zero).
	Frequency      float64
	FrequencyValid bool
}

type itemKey struct {
	name     string
	category string
}

type donorAcc struct {
	donor     Donor
	methods   map[string]struct{}
	sources   map[Source]struct{}
	items     map[itemKey]int // index into donor.Items
}

// Aggregate groups transactions by donor email and derives the per-donor
// aggregate. Identity fields come from the first record seen for an
// email; later records only extend the donation history and rollups.
//
// The result is ordered by last-donation date descending, ties broken by
// total donated descending, and beyond that by first-seen email order.
func Aggregate(records []Record) []Donor {
	byEmail := make(map[string]*donorAcc)
	var order []string

	for _, rec := range records {
		acc, ok := byEmail[rec.Email]
		if !ok {
			acc = &donorAcc{
				donor: Donor{
					Name:     rec.Name,
					Email:    rec.Email,
					Phone:    rec.Phone,
					Country:  rec.Country,
					City:     rec.City,
					State:    rec.State,
					Postcode: rec.Postcode,
				},
				methods: make(map[string]struct{}),
				sources: make(map[Source]struct{}),
				items:   make(map[itemKey]int),
			}
			byEmail[rec.Email] = acc
			order = append(order, rec.Email)
		}
		acc.fold(rec)
	}

	donors := make([]Donor, 0, len(order))
	for _, email := range order {
		donors = append(donors, byEmail[email].finish())
	}

	sort.SliceStable(donors, func(i, j int) bool {
		a, b := donors[i], donors[j]
		if !a.LastDonation.Equal(b.LastDonation.Time) {
			return a.LastDonation.After(b.LastDonation.Time)
		}
		return a.TotalDonated.Cents > b.TotalDonated.Cents
	})

	return donors
}

func (acc *donorAcc) fold(rec Record) {
	d := &acc.donor
	d.Donations = append(d.Donations, rec)
	d.TotalDonated.Cents += rec.Value.Cents

	if _, seen := acc.methods[rec.PaymentMethod]; !seen {
		acc.methods[rec.PaymentMethod] = struct{}{}
		d.PaymentMethods = append(d.PaymentMethods, rec.PaymentMethod)
	}

	src := Classify(rec)
	if _, seen := acc.sources[src]; !seen {
		acc.sources[src] = struct{}{}
		d.Sources = append(d.Sources, src)
	}

	for _, item := range rec.Items {
		key := itemKey{name: item.Name, category: item.Category}
		idx, seen := acc.items[key]
		if !seen {
			idx = len(d.Items)
			acc.items[key] = idx
			d.Items = append(d.Items, ItemRollup{Name: item.Name, Category: item.Category})
		}
		d.Items[idx].Quantity += item.Quantity
		d.Items[idx].Total.Cents += item.Price.Cents * int64(item.Quantity)
	}

	if rec.EntryDate.Valid {
		if !d.FirstDonation.Valid || rec.EntryDate.Before(d.FirstDonation.Time) {
			d.FirstDonation = rec.EntryDate
		}
		if !d.LastDonation.Valid || rec.EntryDate.After(d.LastDonation.Time) {
			d.LastDonation = rec.EntryDate
		}
	}
}

func (acc *donorAcc) finish() Donor {
	d := acc.donor
	d.DonationCount = len(d.Donations)
	if d.FirstDonation.Valid && d.LastDonation.Valid {
		if span := DaysBetween(d.FirstDonation, d.LastDonation); span > 0 {
			d.Frequency = float64(d.DonationCount) / float64(span)
			d.FrequencyValid = true
		}
	}
	return d
}
