package google

import (
	"strings"

	"donordash/internal/core"

	json "github.com/goccy/go-json"
)

// parseRows converts a values matrix (as returned by the Sheets API) into
// transaction records. The header row names the columns using the same
// labels as the JSON dataset; the Items column, when present, holds the
// line items as a JSON array.
func parseRows(values [][]interface{}) ([]core.Record, int) {
	if len(values) < 2 {
		return nil, 0
	}

	headers := toStrings(values[0])
	col := func(name string) int { return indexOf(headers, name) }

	var (
		colName     = col("Name")
		colEmail    = col("Email")
		colPhone    = col("Phone Number")
		colCountry  = col("Country")
		colCity     = col("City")
		colState    = col("State")
		colPostcode = col("Postcode")
		colValue    = col("Value")
		colDate     = col("Entry Date")
		colMethod   = col("Payment Method")
		colStatus   = col("Donation Status")
		colDevice   = col("Device")
		colGclid    = col("Gclid")
		colFbclid   = col("Fbclid")
		colTtclid   = col("TTclid")
		colItems    = col("Items")
	)

	var records []core.Record
	skipped := 0
	for i := 1; i < len(values); i++ {
		row := values[i]
		email := strings.TrimSpace(cellString(row, colEmail))
		if email == "" {
			skipped++
			continue
		}

		rec := core.Record{
			Name:          cellString(row, colName),
			Email:         email,
			Phone:         cellString(row, colPhone),
			Country:       cellString(row, colCountry),
			City:          cellString(row, colCity),
			State:         cellString(row, colState),
			Postcode:      cellString(row, colPostcode),
			Value:         core.ParseMoney(cell(row, colValue)),
			EntryDate:     core.ParseDate(cellString(row, colDate)),
			PaymentMethod: cellString(row, colMethod),
			Status:        cellString(row, colStatus),
			Device:        cellString(row, colDevice),
			Gclid:         strings.TrimSpace(cellString(row, colGclid)),
			Fbclid:        strings.TrimSpace(cellString(row, colFbclid)),
			Ttclid:        strings.TrimSpace(cellString(row, colTtclid)),
		}

		if itemsJSON := strings.TrimSpace(cellString(row, colItems)); itemsJSON != "" {
			rec.Items = parseItems(itemsJSON)
		}

		records = append(records, rec)
	}
	return records, skipped
}

func parseItems(itemsJSON string) []core.LineItem {
	var raw []struct {
		Name     string `json:"item_name"`
		Category string `json:"item_category"`
		Price    any    `json:"price"`
		Quantity any    `json:"quantity"`
	}
	if err := json.Unmarshal([]byte(itemsJSON), &raw); err != nil {
		// malformed item cells degrade to no items, not an error
		return nil
	}
	items := make([]core.LineItem, 0, len(raw))
	for _, it := range raw {
		items = append(items, core.LineItem{
			Name:     it.Name,
			Category: it.Category,
			Price:    core.ParseMoney(it.Price),
			Quantity: core.ParseQuantity(it.Quantity),
		})
	}
	return items
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if s, ok := v.(string); ok {
			out[i] = s
		}
	}
	return out
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func cell(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func cellString(row []interface{}, idx int) string {
	v := cell(row, idx)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
