// Shared opportunity model and terminal statuses.
// Kept as a leaf package so search, engine, ledger and notify can all import it.

package jobs

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Platform identifies a supported job board.
type Platform string

const (
	PlatformLinkedIn Platform = "LinkedIn"
	PlatformGupy     Platform = "Gupy"
	PlatformVagas    Platform = "Vagas"
)

// Terminal statuses of one apply attempt. Consumers match by substring
// ("APPLIED" in status), so new tags must keep that convention.
const (
	StatusSkippedDuplicate     = "SKIPPED_DUPLICATE"
	StatusSkippedLowMatch      = "SKIPPED_LOW_MATCH"
	StatusSkippedAlreadyOnSite = "SKIPPED_ALREADY_ON_SITE"
	StatusSkippedUser          = "SKIPPED_USER"
	StatusAlreadyOnSite        = "ALREADY_APPLIED_ON_SITE"
	StatusRequiresExternal     = "REQUIRES_EXTERNAL"
	StatusAppliedAuto          = "APPLIED_AUTO"
	StatusAppliedPartial       = "APPLIED_PARTIAL"
	StatusFlowError            = "FLOW_ERROR"
	StatusFailed               = "FAILED"
)

// IsApplied reports whether a status counts as a submitted application.
func IsApplied(status string) bool {
	return strings.Contains(status, "APPLIED")
}

// Opportunity is one discovered job posting. Link is the identity key and
// must be canonical before any ledger lookup or write.
type Opportunity struct {
	Platform           Platform `json:"platform"`
	Title              string   `json:"title"`
	Company            string   `json:"company"`
	Location           string   `json:"location"`
	Link               string   `json:"link"`
	CompatibilityScore int      `json:"compatibility_score,omitempty"`
}

// CanonicalLink strips the query string and fragment from a job URL.
// Boards attach dynamic tracking params (?refId=..., ?trackingId=...) which
// make the same job appear as different URLs and defeat de-duplication.
func CanonicalLink(raw string) string {
	link := strings.TrimSpace(raw)
	if i := strings.IndexAny(link, "?#"); i != -1 {
		link = link[:i]
	}
	return link
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s and strips diacritics, so "Sênior" matches "senior".
func Fold(s string) string {
	result, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(result)
}
