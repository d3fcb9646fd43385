package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pdv-reconciliation/internal/domain"
)

// Selector narrows a local pool to the plausible counterparts of one ERP record.
type Selector struct {
	tolerance decimal.Decimal
	window    time.Duration
}

// NewSelector builds a Selector with the tolerance and heuristic window of opts.
func NewSelector(opts Options) *Selector {
	opts = opts.withDefaults()
	return &Selector{tolerance: opts.Tolerance, window: opts.Window}
}

// SelectCandidates returns the candidates of the most trusted tier that yields any:
// operation UUID, then fiscal key, then the store/total/time heuristic.
// The result is deterministic for a given erp and pool. An empty result means "not found".
func (s *Selector) SelectCandidates(erp domain.CanonicalRecord, pool []domain.CanonicalRecord) []domain.MatchCandidate {
	if c := s.byKey(erp, pool, domain.KeyUUID, domain.MatchExactUUID); len(c) > 0 {
		return c
	}
	if c := s.byKey(erp, pool, domain.KeyFiscalKey, domain.MatchFiscalKey); len(c) > 0 {
		return c
	}
	return s.heuristic(erp, pool)
}

func (s *Selector) byKey(erp domain.CanonicalRecord, pool []domain.CanonicalRecord, kind domain.KeyKind, mt domain.MatchType) []domain.MatchCandidate {
	key := erp.ID(kind)
	if key == "" {
		return nil
	}
	var out []domain.MatchCandidate
	for i := range pool {
		if pool[i].ID(kind) == key {
			out = append(out, newCandidate(&erp, &pool[i], mt))
		}
	}
	return out
}

func (s *Selector) heuristic(erp domain.CanonicalRecord, pool []domain.CanonicalRecord) []domain.MatchCandidate {
	if erp.Store.ID == "" || erp.Timestamp.IsZero() || !erp.Total.Valid {
		return nil
	}

	var survivors []domain.MatchCandidate
	for i := range pool {
		local := &pool[i]
		if local.Store.ID != erp.Store.ID || !local.Total.Valid || local.Timestamp.IsZero() {
			continue
		}
		// A local record keyed to a different operation is a different event.
		if conflictingKey(erp, *local, domain.KeyUUID) || conflictingKey(erp, *local, domain.KeyFiscalKey) {
			continue
		}
		if !withinTolerance(erp.Total.Decimal, local.Total.Decimal, s.tolerance) {
			continue
		}
		if absDuration(erp.Timestamp.Sub(local.Timestamp)) > s.window {
			continue
		}
		survivors = append(survivors, newCandidate(&erp, local, domain.MatchHeuristic))
	}
	if len(survivors) == 0 {
		return nil
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if a.TimeDelta != b.TimeDelta {
			return a.TimeDelta < b.TimeDelta
		}
		return a.TotalDelta.Decimal.LessThan(b.TotalDelta.Decimal)
	})

	top := survivors[0]
	n := 1
	for n < len(survivors) && survivors[n].TimeDelta == top.TimeDelta && survivors[n].TotalDelta.Decimal.Equal(top.TotalDelta.Decimal) {
		n++
	}
	return survivors[:n]
}

func newCandidate(erp, local *domain.CanonicalRecord, mt domain.MatchType) domain.MatchCandidate {
	c := domain.MatchCandidate{
		ERP:       erp,
		Local:     local,
		MatchType: mt,
		TimeDelta: domain.UnknownTimeDelta,
	}
	if erp.Total.Valid && local.Total.Valid {
		c.TotalDelta = decimal.NewNullDecimal(erp.Total.Decimal.Sub(local.Total.Decimal).Abs())
	}
	if !erp.Timestamp.IsZero() && !local.Timestamp.IsZero() {
		c.TimeDelta = absDuration(erp.Timestamp.Sub(local.Timestamp))
	}
	return c
}

func conflictingKey(a, b domain.CanonicalRecord, kind domain.KeyKind) bool {
	x, y := a.ID(kind), b.ID(kind)
	return x != "" && y != "" && x != y
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
