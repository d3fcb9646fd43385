package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"pdv-reconciliation/internal/domain"
)

const (
	confidenceKeyAllCore   = 100
	confidenceKeyOneOff    = 90
	confidenceKeyOnly      = 75
	confidenceHeuristic    = 60
	confidenceHeuristicMax = 90
	heuristicBonus         = 15
)

// Classifier scores candidates and picks the winner. It is a pure function of its input.
type Classifier struct {
	tolerance decimal.Decimal
}

// NewClassifier builds a Classifier comparing totals with opts.Tolerance.
func NewClassifier(opts Options) *Classifier {
	return &Classifier{tolerance: opts.withDefaults().Tolerance}
}

// Classify returns the verdict for the candidates of one ERP record.
// Only the most trusted match type present competes. Among those the smallest total
// delta wins, then the smallest time delta; a remaining tie is reported as ambiguous.
func (c *Classifier) Classify(candidates []domain.MatchCandidate) domain.Classification {
	if len(candidates) == 0 {
		return domain.Classification{Found: false, Reason: domain.ReasonNoCandidates}
	}

	best := candidates[0].MatchType.Rank()
	for _, cand := range candidates[1:] {
		if r := cand.MatchType.Rank(); r < best {
			best = r
		}
	}
	tier := make([]domain.MatchCandidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.MatchType.Rank() == best {
			tier = append(tier, cand)
		}
	}

	sort.SliceStable(tier, func(i, j int) bool {
		return compareCandidates(tier[i], tier[j]) < 0
	})
	if len(tier) > 1 && compareCandidates(tier[0], tier[1]) == 0 {
		return domain.Classification{
			Found:     false,
			MatchType: tier[0].MatchType,
			Reason:    domain.ErrAmbiguousMatch.Error(),
		}
	}

	winner := tier[0]
	winner.Confidence = c.Score(winner)
	return domain.Classification{
		Found:      true,
		MatchType:  winner.MatchType,
		Confidence: winner.Confidence,
		Candidate:  &winner,
	}
}

// Score computes the 0-100 confidence of a single candidate.
// Key matches score 100 when total, store and operator agree, 90 when one of them
// diverges and 75 otherwise. Heuristic matches start at 60 and never exceed 90.
func (c *Classifier) Score(cand domain.MatchCandidate) int {
	if cand.ERP == nil || cand.Local == nil {
		return 0
	}
	erp, local := *cand.ERP, *cand.Local

	if cand.MatchType == domain.MatchHeuristic {
		score := confidenceHeuristic
		if sameStoreSecondary(erp.Store, local.Store) {
			score += heuristicBonus
		}
		if sameOperator(erp.Operator, local.Operator) {
			score += heuristicBonus
		}
		if score > confidenceHeuristicMax {
			score = confidenceHeuristicMax
		}
		return score
	}

	diverging := 0
	if !erp.Total.Valid || !local.Total.Valid || !withinTolerance(erp.Total.Decimal, local.Total.Decimal, c.tolerance) {
		diverging++
	}
	if !sameStore(erp.Store, local.Store) {
		diverging++
	}
	if !sameOperator(erp.Operator, local.Operator) {
		diverging++
	}
	switch diverging {
	case 0:
		return confidenceKeyAllCore
	case 1:
		return confidenceKeyOneOff
	default:
		return confidenceKeyOnly
	}
}

// compareCandidates orders by total delta then time delta, unknown deltas last.
func compareCandidates(a, b domain.MatchCandidate) int {
	switch {
	case a.TotalDelta.Valid && !b.TotalDelta.Valid:
		return -1
	case !a.TotalDelta.Valid && b.TotalDelta.Valid:
		return 1
	case a.TotalDelta.Valid:
		if cmp := a.TotalDelta.Decimal.Cmp(b.TotalDelta.Decimal); cmp != 0 {
			return cmp
		}
	}
	switch {
	case a.TimeDelta < b.TimeDelta:
		return -1
	case a.TimeDelta > b.TimeDelta:
		return 1
	}
	return 0
}

func sameStore(a, b domain.Party) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	return a.GUID != "" && a.GUID == b.GUID
}

// sameStoreSecondary confirms a store through GUID or name, independent of the id the heuristic filtered on.
func sameStoreSecondary(a, b domain.Party) bool {
	if a.GUID != "" && b.GUID != "" {
		return a.GUID == b.GUID
	}
	return a.Name != "" && strings.EqualFold(a.Name, b.Name)
}

func sameOperator(a, b domain.Party) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	if a.ID != "" || b.ID != "" {
		return false
	}
	return a.Name != "" && strings.EqualFold(a.Name, b.Name)
}
