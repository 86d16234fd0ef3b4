package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"donordash/internal/core"
	"donordash/internal/log"
	"donordash/internal/services"
)

type windowJSON struct {
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Filtered bool   `json:"filtered"`
}

type statusBucketJSON struct {
	Count       int    `json:"count"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

type metricsJSON struct {
	Window windowJSON `json:"window"`

	TotalDonatedCents int64  `json:"total_donated_cents"`
	TotalDonated      string `json:"total_donated"`
	UniqueDonors      int    `json:"unique_donors"`
	AvgDonationCents  int64  `json:"avg_donation_cents"`
	AvgDonation       string `json:"avg_donation"`
	TransactionCount  int    `json:"transaction_count"`
	FirstTimeDonors   int    `json:"first_time_donors"`

	MostFrequentAmountCents int64  `json:"most_frequent_amount_cents"`
	MostFrequentAmount      string `json:"most_frequent_amount"`

	Successful statusBucketJSON `json:"successful"`
	Declined   statusBucketJSON `json:"declined"`
}

type itemRollupJSON struct {
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	Quantity   int    `json:"quantity"`
	TotalCents int64  `json:"total_cents"`
}

type donorJSON struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Country  string `json:"country,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Postcode string `json:"postcode,omitempty"`

	TotalDonatedCents int64    `json:"total_donated_cents"`
	TotalDonated      string   `json:"total_donated"`
	DonationCount     int      `json:"donation_count"`
	FirstDonation     string   `json:"first_donation,omitempty"`
	LastDonation      string   `json:"last_donation,omitempty"`
	PaymentMethods    []string `json:"payment_methods,omitempty"`
	Sources           []string `json:"sources,omitempty"`

	Items []itemRollupJSON `json:"items,omitempty"`

	// Frequency is donations per day; omitted for single-donation donors.
	Frequency *float64 `json:"frequency,omitempty"`
}

type donorListJSON struct {
	Window windowJSON  `json:"window"`
	Count  int         `json:"count"`
	Donors []donorJSON `json:"donors"`
}

type trendPointJSON struct {
	Day         string `json:"day"`
	AmountCents int64  `json:"amount_cents"`
}

type donorDetailJSON struct {
	Window  windowJSON       `json:"window"`
	Donor   donorJSON        `json:"donor"`
	History []trendPointJSON `json:"history"`
}

type sourceStatJSON struct {
	Source      string `json:"source"`
	Count       int    `json:"count"`
	AmountCents int64  `json:"amount_cents"`
}

type labelAmountJSON struct {
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
}

type itemStatJSON struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	Count       int    `json:"count"`
}

type breakdownsJSON struct {
	Window windowJSON `json:"window"`

	BySource          []sourceStatJSON  `json:"by_source"`
	FirstTimeBySource []sourceStatJSON  `json:"first_time_by_source"`
	ByPaymentMethod   []labelAmountJSON `json:"by_payment_method"`
	ByDevice          []labelAmountJSON `json:"by_device"`
	TopCountries      []labelAmountJSON `json:"top_countries"`
	TopItems          []itemStatJSON    `json:"top_items"`
	DailyTrend        []trendPointJSON  `json:"daily_trend"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func (s *Server) window() windowJSON {
	start, end, filtered := s.dashboard.Window()
	return windowJSON{Start: start.Key(), End: end.Key(), Filtered: filtered}
}

// windowKey identifies the published dataset revision for cache keys.
func (s *Server) windowKey() string {
	gen := strconv.FormatUint(s.generation.Load(), 10)
	w := s.window()
	if !w.Filtered {
		return gen + "/all"
	}
	return gen + "/" + w.Start + ".." + w.End
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.dashboard.Metrics()
	writeJSON(w, http.StatusOK, metricsJSON{
		Window: s.window(),

		TotalDonatedCents: m.TotalDonated.Cents,
		TotalDonated:      m.TotalDonated.String(),
		UniqueDonors:      m.UniqueDonors,
		AvgDonationCents:  m.AvgDonation.Cents,
		AvgDonation:       m.AvgDonation.String(),
		TransactionCount:  m.TransactionCount,
		FirstTimeDonors:   m.FirstTimeDonors,

		MostFrequentAmountCents: m.MostFrequentAmount.Cents,
		MostFrequentAmount:      m.MostFrequentAmount.String(),

		Successful: statusBucketJSON{
			Count:       m.Successful.Count,
			AmountCents: m.Successful.Amount.Cents,
			Amount:      m.Successful.Amount.String(),
		},
		Declined: statusBucketJSON{
			Count:       m.Declined.Count,
			AmountCents: m.Declined.Amount.Cents,
			Amount:      m.Declined.Amount.String(),
		},
	})
}

func (s *Server) handleDonors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	key := s.windowKey() + "|" + query
	if body, found := s.donorsCache.Get(key); found {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	donors := s.dashboard.SearchDonors(query)
	payload := donorListJSON{
		Window: s.window(),
		Count:  len(donors),
		Donors: make([]donorJSON, 0, len(donors)),
	}
	for _, d := range donors {
		payload.Donors = append(payload.Donors, toDonorJSON(d))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(r.Context(), "Donor list marshal failed", "error", err)
		writeError(w, http.StatusInternalServerError, "encoding failed")
		return
	}
	s.donorsCache.Set(key, body)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleDonorDetail(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	donor, found := s.dashboard.Donor(email)
	if !found {
		writeError(w, http.StatusNotFound, "donor not found")
		return
	}

	writeJSON(w, http.StatusOK, donorDetailJSON{
		Window:  s.window(),
		Donor:   toDonorJSON(donor),
		History: toTrendJSON(core.DonorHistory(donor)),
	})
}

func (s *Server) handleBreakdowns(w http.ResponseWriter, r *http.Request) {
	key := s.windowKey()
	if body, found := s.breakdownsCache.Get(key); found {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	b := s.dashboard.Breakdowns()
	payload := breakdownsJSON{
		Window: s.window(),

		BySource:          toSourceStatJSON(b.BySource),
		FirstTimeBySource: toSourceStatJSON(b.FirstTimeBySource),
		ByPaymentMethod:   toLabelAmountJSON(b.ByPaymentMethod),
		ByDevice:          toLabelAmountJSON(b.ByDevice),
		TopCountries:      toLabelAmountJSON(b.TopCountries),
		TopItems:          toItemStatJSON(b.TopItems),
		DailyTrend:        toTrendJSON(b.DailyTrend),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(r.Context(), "Breakdowns marshal failed", "error", err)
		writeError(w, http.StatusInternalServerError, "encoding failed")
		return
	}
	s.breakdownsCache.Set(key, body)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleApplyFilter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	start := r.Form.Get("start")
	end := r.Form.Get("end")

	logger := log.FromContext(r.Context())
	if err := s.dashboard.ApplyFilter(start, end); err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			logger.WarnContext(r.Context(), "Filter rejected",
				log.FieldOperation, log.OpFilter,
				log.FieldWindowStart, start,
				log.FieldWindowEnd, end,
				log.FieldError, verr.Message)
			writeError(w, http.StatusUnprocessableEntity, verr.Message)
			return
		}
		logger.ErrorContext(r.Context(), "Filter failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "filter failed")
		return
	}

	s.generation.Add(1)
	logger.InfoContext(r.Context(), "Filter applied",
		log.FieldOperation, log.OpFilter,
		log.FieldWindowStart, start,
		log.FieldWindowEnd, end)
	writeJSON(w, http.StatusOK, struct {
		Window windowJSON `json:"window"`
	}{s.window()})
}

func (s *Server) handleResetFilter(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	if err := s.dashboard.ResetFilter(r.Context()); err != nil {
		var lerr *services.DataLoadError
		if errors.As(err, &lerr) {
			logger.ErrorContext(r.Context(), "Reset failed, keeping published data",
				log.FieldOperation, log.OpReset,
				log.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "dataset reload failed")
			return
		}
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}

	s.generation.Add(1)
	writeJSON(w, http.StatusOK, struct {
		Window windowJSON `json:"window"`
	}{s.window()})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type readyJSON struct {
	Status            string `json:"status"`
	RequestsServed    int64  `json:"requests_served"`
	AvgResponseMicros int64  `json:"avg_response_us"`
}

// handleReady reports 503 until the first dataset load completes; an
// empty engine has nothing to serve.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if !s.dashboard.Loaded() {
		writeJSON(w, http.StatusServiceUnavailable, readyJSON{Status: "loading"})
		return
	}

	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, readyJSON{
		Status:            "ready",
		RequestsServed:    m.TotalRequests,
		AvgResponseMicros: m.AverageResponseTime,
	})
}

func toDonorJSON(d core.Donor) donorJSON {
	out := donorJSON{
		Name:     d.Name,
		Email:    d.Email,
		Phone:    d.Phone,
		Country:  d.Country,
		City:     d.City,
		State:    d.State,
		Postcode: d.Postcode,

		TotalDonatedCents: d.TotalDonated.Cents,
		TotalDonated:      d.TotalDonated.String(),
		DonationCount:     d.DonationCount,
		FirstDonation:     d.FirstDonation.Key(),
		LastDonation:      d.LastDonation.Key(),
		PaymentMethods:    d.PaymentMethods,
	}
	for _, src := range d.Sources {
		out.Sources = append(out.Sources, string(src))
	}
	for _, item := range d.Items {
		out.Items = append(out.Items, itemRollupJSON{
			Name:       item.Name,
			Category:   item.Category,
			Quantity:   item.Quantity,
			TotalCents: item.Total.Cents,
		})
	}
	if d.FrequencyValid {
		freq := d.Frequency
		out.Frequency = &freq
	}
	return out
}

func toSourceStatJSON(stats []core.SourceStat) []sourceStatJSON {
	out := make([]sourceStatJSON, 0, len(stats))
	for _, s := range stats {
		out = append(out, sourceStatJSON{
			Source:      string(s.Source),
			Count:       s.Count,
			AmountCents: s.Amount.Cents,
		})
	}
	return out
}

func toLabelAmountJSON(entries []core.LabelAmount) []labelAmountJSON {
	out := make([]labelAmountJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, labelAmountJSON{Label: e.Label, AmountCents: e.Amount.Cents})
	}
	return out
}

func toItemStatJSON(stats []core.ItemStat) []itemStatJSON {
	out := make([]itemStatJSON, 0, len(stats))
	for _, s := range stats {
		out = append(out, itemStatJSON{Name: s.Name, AmountCents: s.Amount.Cents, Count: s.Count})
	}
	return out
}

func toTrendJSON(points []core.TrendPoint) []trendPointJSON {
	out := make([]trendPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointJSON{Day: p.Day, AmountCents: p.Amount.Cents})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorJSON{Error: message})
}
