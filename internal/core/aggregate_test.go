package core

import (
	"reflect"
	"testing"
)

func donation(email string, cents int64, date string) Record {
	return Record{
		Name:          "Donor " + email,
		Email:         email,
		Value:         Money{Cents: cents},
		EntryDate:     ParseDate(date),
		PaymentMethod: "Credit Card",
		Status:        "Completed",
	}
}

func TestAggregateSingleDonor(t *testing.T) {
	records := []Record{
		donation("a@x.com", 5000, "2024-01-01"),
		donation("a@x.com", 7500, "2024-01-20"),
	}

	donors := Aggregate(records)
	if len(donors) != 1 {
		t.Fatalf("expected 1 donor, got %d", len(donors))
	}

	d := donors[0]
	if d.TotalDonated.Cents != 12500 {
		t.Fatalf("total donated = %d cents, want 12500", d.TotalDonated.Cents)
	}
	if d.DonationCount != 2 || len(d.Donations) != 2 {
		t.Fatalf("donation count = %d (len %d), want 2", d.DonationCount, len(d.Donations))
	}
	if d.FirstDonation.Key() != "2024-01-01" {
		t.Fatalf("first donation = %q, want 2024-01-01", d.FirstDonation.Key())
	}
	if d.LastDonation.Key() != "2024-01-20" {
		t.Fatalf("last donation = %q, want 2024-01-20", d.LastDonation.Key())
	}
	if !d.FrequencyValid {
		t.Fatal("expected a valid frequency over a 19 day span")
	}
	want := 2.0 / 19.0
	if d.Frequency != want {
		t.Fatalf("frequency = %v, want %v", d.Frequency, want)
	}
}

func TestAggregateConservation(t *testing.T) {
	records := []Record{
		donation("a@x.com", 5000, "2024-01-01"),
		donation("b@x.com", 2599, "2024-01-05"),
		donation("a@x.com", 101, "2024-02-01"),
		donation("c@x.com", 0, "bad-date"),
	}

	var wantTotal int64
	for _, r := range records {
		wantTotal += r.Value.Cents
	}

	donors := Aggregate(records)
	var got int64
	for _, d := range donors {
		got += d.TotalDonated.Cents
		if d.DonationCount != len(d.Donations) {
			t.Fatalf("donor %s: count %d != len(donations) %d", d.Email, d.DonationCount, len(d.Donations))
		}
		if d.FirstDonation.Valid && d.LastDonation.Valid && d.FirstDonation.After(d.LastDonation.Time) {
			t.Fatalf("donor %s: first donation after last", d.Email)
		}
	}
	if got != wantTotal {
		t.Fatalf("sum of donor totals = %d, want %d", got, wantTotal)
	}
}

func TestAggregateIdentityFieldsFromFirstRecord(t *testing.T) {
	first := donation("a@x.com", 100, "2024-01-01")
	first.Name = "Original Name"
	first.City = "Boston"
	second := donation("a@x.com", 200, "2024-01-02")
	second.Name = "Changed Name"
	second.City = "Denver"

	donors := Aggregate([]Record{first, second})
	if donors[0].Name != "Original Name" || donors[0].City != "Boston" {
		t.Fatalf("identity fields overwritten: got name=%q city=%q", donors[0].Name, donors[0].City)
	}
}

func TestAggregateOrdering(t *testing.T) {
	records := []Record{
		donation("old@x.com", 99900, "2023-06-01"),
		donation("recent-small@x.com", 1000, "2024-03-01"),
		donation("recent-big@x.com", 5000, "2024-03-01"),
		donation("newest@x.com", 100, "2024-04-01"),
	}

	donors := Aggregate(records)
	var got []string
	for _, d := range donors {
		got = append(got, d.Email)
	}
	// newest last-donation first; same-date ties by total descending
	want := []string{"newest@x.com", "recent-big@x.com", "recent-small@x.com", "old@x.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ordering = %v, want %v", got, want)
	}
}

func TestAggregateOrderingStableForEqualKeys(t *testing.T) {
	// same date and same total: first-seen email order must survive
	records := []Record{
		donation("first@x.com", 1000, "2024-01-01"),
		donation("second@x.com", 1000, "2024-01-01"),
		donation("third@x.com", 1000, "2024-01-01"),
	}

	donors := Aggregate(records)
	want := []string{"first@x.com", "second@x.com", "third@x.com"}
	for i, d := range donors {
		if d.Email != want[i] {
			t.Fatalf("position %d = %s, want %s", i, d.Email, want[i])
		}
	}
}

func TestAggregateDeterministic(t *testing.T) {
	records := []Record{
		donation("a@x.com", 5000, "2024-01-01"),
		donation("b@x.com", 2500, "2024-01-05"),
		donation("a@x.com", 7500, "2024-01-20"),
	}
	if !reflect.DeepEqual(Aggregate(records), Aggregate(records)) {
		t.Fatal("aggregate is not deterministic for identical input")
	}
}

func TestAggregateItemsAndSets(t *testing.T) {
	r1 := donation("a@x.com", 5000, "2024-01-01")
	r1.Gclid = "g-1"
	r1.Items = []LineItem{{Name: "General", Category: "Donation", Price: Money{Cents: 2500}, Quantity: 2}}
	r2 := donation("a@x.com", 2500, "2024-01-10")
	r2.PaymentMethod = "PayPal"
	r2.Items = []LineItem{
		{Name: "General", Category: "Donation", Price: Money{Cents: 2500}, Quantity: 1},
		{Name: "Shirt", Category: "Merch", Price: Money{Cents: 1500}, Quantity: 1},
	}

	d := Aggregate([]Record{r1, r2})[0]

	if !reflect.DeepEqual(d.PaymentMethods, []string{"Credit Card", "PayPal"}) {
		t.Fatalf("payment methods = %v", d.PaymentMethods)
	}
	if !reflect.DeepEqual(d.Sources, []Source{SourceGoogle, SourceOther}) {
		t.Fatalf("sources = %v", d.Sources)
	}
	if len(d.Items) != 2 {
		t.Fatalf("expected 2 item rollups, got %d", len(d.Items))
	}
	general := d.Items[0]
	if general.Name != "General" || general.Quantity != 3 || general.Total.Cents != 7500 {
		t.Fatalf("general rollup = %+v", general)
	}
	shirt := d.Items[1]
	if shirt.Quantity != 1 || shirt.Total.Cents != 1500 {
		t.Fatalf("shirt rollup = %+v", shirt)
	}
}

func TestAggregateSingleDonationFrequency(t *testing.T) {
	d := Aggregate([]Record{donation("a@x.com", 100, "2024-01-01")})[0]
	if !d.FirstDonation.Equal(d.LastDonation.Time) {
		t.Fatal("single donation should have first == last")
	}
	if d.FrequencyValid {
		t.Fatal("single donation must not produce a frequency")
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if donors := Aggregate(nil); len(donors) != 0 {
		t.Fatalf("expected empty donor list, got %d", len(donors))
	}
}

func TestAggregateIgnoresInvalidDatesForOrdering(t *testing.T) {
	bad := donation("a@x.com", 1000, "not-a-date")
	good := donation("a@x.com", 2000, "2024-01-05")

	d := Aggregate([]Record{bad, good})[0]
	if d.TotalDonated.Cents != 3000 {
		t.Fatalf("invalid-date record must still count in totals, total = %d", d.TotalDonated.Cents)
	}
	if d.FirstDonation.Key() != "2024-01-05" || d.LastDonation.Key() != "2024-01-05" {
		t.Fatalf("date range = %q..%q, want the single valid date", d.FirstDonation.Key(), d.LastDonation.Key())
	}
}
