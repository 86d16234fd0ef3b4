package memory

import (
	"context"
	"sync"

	"donordash/internal/core"
)

// Store is an in-memory TransactionSource. It backs tests and the
// fallback path when no external dataset is reachable.
type Store struct {
	mu      sync.Mutex
	records []core.Record
}

func New(records []core.Record) *Store {
	return &Store{records: records}
}

// NewSample returns a store seeded with a pair of demo transactions,
// mirroring the demo dataset the dashboard falls back to.
func NewSample() *Store {
	return New([]core.Record{
		{
			Name:          "John Doe",
			Email:         "john.doe@email.com",
			Phone:         "123-456-7890",
			Country:       "USA",
			City:          "New York",
			State:         "NY",
			Postcode:      "10001",
			Value:         core.Money{Cents: 5000},
			EntryDate:     core.NewDate(2024, 1, 15),
			PaymentMethod: "Credit Card",
			Status:        "Completed",
			Device:        "Desktop",
			Gclid:         "sample_gclid",
			Items: []core.LineItem{
				{Name: "General Donation", Category: "Donation", Price: core.Money{Cents: 5000}, Quantity: 1},
			},
		},
		{
			Name:          "Jane Smith",
			Email:         "jane.smith@email.com",
			Phone:         "987-654-3210",
			Country:       "Canada",
			City:          "Toronto",
			State:         "ON",
			Postcode:      "M5H 2N2",
			Value:         core.Money{Cents: 7500},
			EntryDate:     core.NewDate(2024, 1, 20),
			PaymentMethod: "PayPal",
			Status:        "Completed",
			Device:        "Mobile",
			Fbclid:        "sample_fbclid",
			Items: []core.LineItem{
				{Name: "Monthly Donation", Category: "Subscription", Price: core.Money{Cents: 7500}, Quantity: 1},
			},
		},
	})
}

// Load returns a copy of the stored records.
func (s *Store) Load(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.records...), nil
}

// Replace swaps the stored dataset, for tests that exercise reload paths.
func (s *Store) Replace(records []core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]core.Record(nil), records...)
}
