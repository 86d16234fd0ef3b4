package core

import "testing"

func TestComputeMetricsBasics(t *testing.T) {
	active := []Record{
		donation("a@x.com", 5000, "2024-01-15"),
		donation("b@x.com", 5000, "2024-01-16"),
		donation("a@x.com", 7500, "2024-01-20"),
	}

	m := ComputeMetrics(active, active, ParseDate("2024-01-10"))

	if m.TotalDonated.Cents != 17500 {
		t.Fatalf("total = %d, want 17500", m.TotalDonated.Cents)
	}
	if m.TransactionCount != 3 {
		t.Fatalf("transaction count = %d, want 3", m.TransactionCount)
	}
	// 17500/3 rounded half up
	if m.AvgDonation.Cents != 5833 {
		t.Fatalf("avg = %d, want 5833", m.AvgDonation.Cents)
	}
	if m.MostFrequentAmount.Cents != 5000 {
		t.Fatalf("most frequent = %d, want 5000", m.MostFrequentAmount.Cents)
	}
}

func TestComputeMetricsEmptyWindow(t *testing.T) {
	m := ComputeMetrics(nil, nil, Date{})
	if m.AvgDonation.Cents != 0 || m.TotalDonated.Cents != 0 || m.MostFrequentAmount.Cents != 0 {
		t.Fatalf("empty window should produce zero metrics, got %+v", m)
	}
}

func TestComputeMetricsFirstTimeDonors(t *testing.T) {
	all := []Record{
		donation("veteran@x.com", 1000, "2023-12-01"),
		donation("veteran@x.com", 2000, "2024-01-15"),
		donation("new@x.com", 3000, "2024-01-16"),
	}
	start := ParseDate("2024-01-10")
	active := SelectWindow(all, start, ParseDate("2024-01-31"))

	m := ComputeMetrics(active, all, start)
	if m.FirstTimeDonors != 1 {
		t.Fatalf("first-time donors = %d, want 1", m.FirstTimeDonors)
	}
	// 2 unique window emails minus 1 first-timer
	if m.UniqueDonors != 1 {
		t.Fatalf("unique donors = %d, want 1", m.UniqueDonors)
	}
}

func TestComputeMetricsBaselineRepeatDoesNotCount(t *testing.T) {
	all := []Record{
		donation("a@x.com", 1000, "2023-11-01"),
		donation("a@x.com", 1000, "2024-01-12"),
		donation("a@x.com", 1000, "2024-01-13"),
		donation("a@x.com", 1000, "2024-01-14"),
	}
	start := ParseDate("2024-01-10")
	active := SelectWindow(all, start, ParseDate("2024-01-31"))

	m := ComputeMetrics(active, all, start)
	if m.FirstTimeDonors != 0 {
		t.Fatalf("baseline donor counted as first-time: %d", m.FirstTimeDonors)
	}
}

func TestComputeMetricsWindowScenario(t *testing.T) {
	all := []Record{
		donation("a@x.com", 5000, "2024-01-01"),
		donation("a@x.com", 7500, "2024-01-20"),
	}
	start, end := ParseDate("2024-01-10"), ParseDate("2024-01-31")
	active := SelectWindow(all, start, end)

	if len(active) != 1 || active[0].Value.Cents != 7500 {
		t.Fatalf("active window = %v, want only the 2024-01-20 record", active)
	}

	m := ComputeMetrics(active, all, start)
	// a@x.com already donated on 2024-01-01, before the window start
	if m.FirstTimeDonors != 0 {
		t.Fatalf("first-time donors = %d, want 0", m.FirstTimeDonors)
	}

	// without the prior donation the same donor is first-time
	m = ComputeMetrics(active, active, start)
	if m.FirstTimeDonors != 1 {
		t.Fatalf("first-time donors = %d, want 1", m.FirstTimeDonors)
	}
}

func TestMostFrequentAmountTieBreak(t *testing.T) {
	cases := []struct {
		name  string
		cents []int64
		want  int64
	}{
		{"clear winner", []int64{5000, 5000, 7500}, 5000},
		{"tie goes to first seen", []int64{7500, 5000, 5000, 7500}, 7500},
		{"single record", []int64{2000}, 2000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var records []Record
			for _, c := range tc.cents {
				records = append(records, donation("a@x.com", c, "2024-01-01"))
			}
			got := mostFrequentAmount(records)
			if got.Cents != tc.want {
				t.Fatalf("most frequent = %d, want %d", got.Cents, tc.want)
			}
		})
	}
}

func TestComputeMetricsStatusPartition(t *testing.T) {
	declined := donation("a@x.com", 2000, "2024-01-05")
	declined.Status = StatusDeclined

	m := ComputeMetrics([]Record{declined}, []Record{declined}, Date{})
	if m.Declined.Count != 1 || m.Declined.Amount.Cents != 2000 {
		t.Fatalf("declined = %+v, want count 1 amount 2000", m.Declined)
	}
	if m.Successful.Count != 0 || m.Successful.Amount.Cents != 0 {
		t.Fatalf("successful = %+v, want zero", m.Successful)
	}

	// any status other than Declined is successful, including unknown ones
	pending := donation("b@x.com", 500, "2024-01-06")
	pending.Status = "Pending"
	m = ComputeMetrics([]Record{pending}, []Record{pending}, Date{})
	if m.Successful.Count != 1 || m.Successful.Amount.Cents != 500 {
		t.Fatalf("successful = %+v, want count 1 amount 500", m.Successful)
	}
}
