package core

import (
	"strings"

	json "github.com/goccy/go-json"
)

// LineItem is a single line of a donation transaction. Malformed price or
// quantity values default to zero.
type LineItem struct {
	Name     string
	Category string
	Price    Money
	Quantity int
}

// Record is one donation transaction as ingested from the dataset.
// Records are immutable once decoded; all fields carry defaults for
// missing or malformed input.
type Record struct {
	Name          string
	Email         string
	Phone         string
	Country       string
	City          string
	State         string
	Postcode      string
	Value         Money
	EntryDate     Date
	PaymentMethod string
	Status        string
	Device        string
	Gclid         string
	Fbclid        string
	Ttclid        string
	Items         []LineItem
}

// StatusDeclined is the one status value with dedicated metrics semantics;
// every other status counts as successful.
const StatusDeclined = "Declined"

// Declined reports whether the transaction was declined.
func (r Record) Declined() bool {
	return r.Status == StatusDeclined
}

// rawRecord mirrors the dataset's JSON field names. Loosely typed fields
// use `any` so that numbers-as-strings, nulls and other malformed values
// decode without failing the whole record.
type rawRecord struct {
	Name          string    `json:"Name"`
	Email         string    `json:"Email"`
	Phone         string    `json:"Phone Number"`
	Country       string    `json:"Country"`
	City          string    `json:"City"`
	State         string    `json:"State"`
	Postcode      string    `json:"Postcode"`
	Value         any       `json:"Value"`
	EntryDate     string    `json:"Entry Date"`
	PaymentMethod string    `json:"Payment Method"`
	Status        string    `json:"Donation Status"`
	Device        string    `json:"Device"`
	Gclid         any       `json:"Gclid"`
	Fbclid        any       `json:"Fbclid"`
	TTclid        any       `json:"TTclid"`
	Items         []rawItem `json:"Items"`
}

type rawItem struct {
	Name     string `json:"item_name"`
	Category string `json:"item_category"`
	Price    any    `json:"price"`
	Quantity any    `json:"quantity"`
}

// UnmarshalJSON decodes a record tolerantly from the dataset's wire shape.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = raw.toRecord()
	return nil
}

func (raw rawRecord) toRecord() Record {
	rec := Record{
		Name:          raw.Name,
		Email:         raw.Email,
		Phone:         raw.Phone,
		Country:       raw.Country,
		City:          raw.City,
		State:         raw.State,
		Postcode:      raw.Postcode,
		Value:         Money{Cents: coerceCents(raw.Value)},
		EntryDate:     ParseDate(raw.EntryDate),
		PaymentMethod: raw.PaymentMethod,
		Status:        raw.Status,
		Device:        raw.Device,
		Gclid:         coerceID(raw.Gclid),
		Fbclid:        coerceID(raw.Fbclid),
		Ttclid:        coerceID(raw.TTclid),
	}
	for _, it := range raw.Items {
		rec.Items = append(rec.Items, LineItem{
			Name:     it.Name,
			Category: it.Category,
			Price:    Money{Cents: coerceCents(it.Price)},
			Quantity: coerceInt(it.Quantity),
		})
	}
	return rec
}

// DecodeRecords decodes a JSON array of transaction records.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// coerceID normalizes a click identifier: null and non-string values mean
// "absent".
func coerceID(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
