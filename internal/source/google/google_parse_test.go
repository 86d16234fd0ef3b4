package google

import (
	"testing"
)

// Build a small matrix emulating the donation export sheet.
func TestParseRows(t *testing.T) {
	values := [][]interface{}{
		{"Name", "Email", "Phone Number", "Country", "City", "State", "Postcode", "Value", "Entry Date", "Payment Method", "Donation Status", "Device", "Gclid", "Fbclid", "TTclid", "Items"},
		{"John Doe", "john.doe@email.com", "123-456-7890", "USA", "New York", "NY", "10001", "50.00", "2024-01-15", "Credit Card", "Completed", "Desktop", "g123", "", "",
			`[{"item_name":"General Donation","item_category":"Donation","price":50.0,"quantity":1}]`},
		{"Jane Smith", "jane.smith@email.com", "", "Canada", "Toronto", "ON", "M5H 2N2", 75.0, "2024-01-20", "PayPal", "Completed", "Mobile", "", "fb456", "", ""},
		{"No Email", "", "", "", "", "", "", "10.00", "2024-01-21", "", "", "", "", "", "", ""},
	}

	records, skipped := parseRows(values)
	if len(records) != 2 {
		t.Fatalf("parsed %d records, want 2", len(records))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1 (row without email)", skipped)
	}

	john := records[0]
	if john.Email != "john.doe@email.com" || john.Value.Cents != 5000 {
		t.Errorf("john = %+v", john)
	}
	if !john.EntryDate.Valid || john.EntryDate.Key() != "2024-01-15" {
		t.Errorf("john entry date = %+v", john.EntryDate)
	}
	if len(john.Items) != 1 || john.Items[0].Name != "General Donation" ||
		john.Items[0].Price.Cents != 5000 || john.Items[0].Quantity != 1 {
		t.Errorf("john items = %+v", john.Items)
	}

	jane := records[1]
	if jane.Value.Cents != 7500 {
		t.Errorf("numeric Value cell: got %d cents, want 7500", jane.Value.Cents)
	}
	if jane.Fbclid != "fb456" || jane.Gclid != "" {
		t.Errorf("jane click ids = %q %q", jane.Gclid, jane.Fbclid)
	}
	if len(jane.Items) != 0 {
		t.Errorf("empty items cell should yield no items: %+v", jane.Items)
	}
}

func TestParseRowsHeaderOnly(t *testing.T) {
	values := [][]interface{}{
		{"Name", "Email", "Value"},
	}
	records, skipped := parseRows(values)
	if records != nil || skipped != 0 {
		t.Fatalf("header-only sheet: records=%v skipped=%d", records, skipped)
	}
}

func TestParseRowsHeaderCaseInsensitive(t *testing.T) {
	values := [][]interface{}{
		{"name", "EMAIL", "value", "entry date"},
		{"A", "a@x.com", "12.34", "2024-03-01"},
	}
	records, _ := parseRows(values)
	if len(records) != 1 {
		t.Fatalf("parsed %d records, want 1", len(records))
	}
	if records[0].Value.Cents != 1234 || records[0].EntryDate.Key() != "2024-03-01" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestParseItemsMalformed(t *testing.T) {
	if items := parseItems(`{"not":"an array"`); items != nil {
		t.Errorf("malformed items JSON should degrade to nil, got %+v", items)
	}
	items := parseItems(`[{"item_name":"Gala Ticket","price":"25.50","quantity":"2"}]`)
	if len(items) != 1 || items[0].Price.Cents != 2550 || items[0].Quantity != 2 {
		t.Errorf("string-typed item fields: %+v", items)
	}
}
