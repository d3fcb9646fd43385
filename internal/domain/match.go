package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchType describes which key paired two records. Lower rank means more trusted.
type MatchType string

const (
	MatchExactUUID MatchType = "EXACT_UUID"
	MatchFiscalKey MatchType = "FISCAL_KEY"
	MatchHeuristic MatchType = "HEURISTIC"
)

// Rank orders match types by trust, 0 being the most trusted.
func (m MatchType) Rank() int {
	switch m {
	case MatchExactUUID:
		return 0
	case MatchFiscalKey:
		return 1
	case MatchHeuristic:
		return 2
	default:
		return 3
	}
}

// MatchCandidate pairs one ERP record with one local record for a single validation call.
// TotalDelta is invalid when either total is missing.
type MatchCandidate struct {
	ERP        *CanonicalRecord    `json:"-"`
	Local      *CanonicalRecord    `json:"local"`
	MatchType  MatchType           `json:"match_type"`
	Confidence int                 `json:"confidence"`
	TotalDelta decimal.NullDecimal `json:"total_delta"`
	TimeDelta  time.Duration       `json:"time_delta"`
}

// UnknownTimeDelta marks a candidate where either side has no timestamp.
const UnknownTimeDelta = time.Duration(1<<63 - 1)

// Reasons reported when a record is not found.
const (
	ReasonNoCandidates = "no candidates"
	ReasonAmbiguous    = "ambiguous candidates"
)

// Classification is the verdict for one ERP record.
type Classification struct {
	Found      bool            `json:"found"`
	MatchType  MatchType       `json:"match_type,omitempty"`
	Confidence int             `json:"confidence"`
	Reason     string          `json:"reason,omitempty"`
	Candidate  *MatchCandidate `json:"-"`
}
