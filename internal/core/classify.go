package core

import "strings"

// Source is the traffic source a transaction is attributed to.
type Source string

const (
	SourceGoogle   Source = "Google"
	SourceFacebook Source = "Facebook"
	SourceTikTok   Source = "TikTok"
	SourceOther    Source = "Other"
)

// AllSources lists the sources in their canonical reporting order.
func AllSources() []Source {
	return []Source{SourceGoogle, SourceFacebook, SourceTikTok, SourceOther}
}

// Classify maps a record to exactly one traffic source. Precedence is
// fixed, first match wins: Google click id, then Facebook, then TikTok,
// otherwise Other.
func Classify(r Record) Source {
	switch {
	case strings.TrimSpace(r.Gclid) != "":
		return SourceGoogle
	case strings.TrimSpace(r.Fbclid) != "":
		return SourceFacebook
	case strings.TrimSpace(r.Ttclid) != "":
		return SourceTikTok
	default:
		return SourceOther
	}
}
