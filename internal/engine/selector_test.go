package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdv-reconciliation/internal/domain"
	"pdv-reconciliation/internal/engine"
)

func TestSelector_SelectCandidates(t *testing.T) {
	heuristicLocal := record(domain.OriginLocal, withStore("5"), withTotal("150.00"), withTime(baseTime))

	tests := []struct {
		name     string
		erp      domain.CanonicalRecord
		pool     []domain.CanonicalRecord
		wantType domain.MatchType
		wantIdx  []int
	}{
		{
			name: "uuid wins over every weaker tier",
			erp:  record(domain.OriginERP, withUUID("abc-123"), withFiscalKey("K1"), withStore("5"), withTotal("150.00"), withTime(baseTime)),
			pool: []domain.CanonicalRecord{
				heuristicLocal,
				record(domain.OriginLocal, withFiscalKey("K1")),
				record(domain.OriginLocal, withUUID("abc-123"), withTotal("10.00")),
			},
			wantType: domain.MatchExactUUID,
			wantIdx:  []int{2},
		},
		{
			name: "fiscal key when no uuid counterpart",
			erp:  record(domain.OriginERP, withUUID("abc-123"), withFiscalKey("K1"), withStore("5"), withTotal("150.00"), withTime(baseTime)),
			pool: []domain.CanonicalRecord{
				heuristicLocal,
				record(domain.OriginLocal, withFiscalKey("K1")),
			},
			wantType: domain.MatchFiscalKey,
			wantIdx:  []int{1},
		},
		{
			name: "heuristic within window",
			erp:  record(domain.OriginERP, withStore("5"), withTotal("80.00"), withTime(baseTime)),
			pool: []domain.CanonicalRecord{
				record(domain.OriginLocal, withStore("5"), withTotal("80.00"), withTime(baseTime.Add(3*time.Minute))),
			},
			wantType: domain.MatchHeuristic,
			wantIdx:  []int{0},
		},
		{
			name: "heuristic picks the closest in time",
			erp:  record(domain.OriginERP, withStore("5"), withTotal("80.00"), withTime(baseTime)),
			pool: []domain.CanonicalRecord{
				record(domain.OriginLocal, withStore("5"), withTotal("80.00"), withTime(baseTime.Add(4*time.Minute))),
				record(domain.OriginLocal, withStore("5"), withTotal("80.005"), withTime(baseTime.Add(-time.Minute))),
				record(domain.OriginLocal, withStore("5"), withTotal("80.00"), withTime(baseTime.Add(2*time.Minute))),
			},
			wantType: domain.MatchHeuristic,
			wantIdx:  []int{1},
		},
		{
			name: "heuristic keeps exact ties",
			erp:  record(domain.OriginERP, withStore("5"), withTotal("80.00"), withTime(baseTime)),
			pool: []domain.CanonicalRecord{
				record(domain.OriginLocal, withStore("5"), withTotal("80.00"), withTime(baseTime.Add(time.Minute))),
				record(domain.OriginLocal, withStore("5"), withTotal("80.00"), withTime(baseTime.Add(-time.Minute))),
				record(domain.OriginLocal, withStore("5"), withTotal("80.00"), withTime(baseTime.Add(2*time.Minute))),
			},
			wantType: domain.MatchHeuristic,
			wantIdx:  []int{0, 1},
		},
		{
			name: "heuristic rejects other store, window and tolerance",
			erp:  record(domain.OriginERP, withStore("5"), withTotal("80.00"), withTime(baseTime)),
			pool: []domain.CanonicalRecord{
				record(domain.OriginLocal, withStore("6"), withTotal("80.00"), withTime(baseTime)),
				record(domain.OriginLocal, withStore("5"), withTotal("80.00"), withTime(baseTime.Add(6*time.Minute))),
				record(domain.OriginLocal, withStore("5"), withTotal("80.01"), withTime(baseTime)),
				record(domain.OriginLocal, withStore("5"), withTime(baseTime)),
			},
		},
		{
			name: "heuristic skips local records keyed to another operation",
			erp:  record(domain.OriginERP, withUUID("abc-123"), withStore("5"), withTotal("80.00"), withTime(baseTime)),
			pool: []domain.CanonicalRecord{
				record(domain.OriginLocal, withUUID("zzz-999"), withStore("5"), withTotal("80.00"), withTime(baseTime)),
			},
		},
		{
			name: "heuristic needs store, time and total on the erp side",
			erp:  record(domain.OriginERP, withStore("5"), withTime(baseTime)),
			pool: []domain.CanonicalRecord{
				record(domain.OriginLocal, withStore("5"), withTotal("80.00"), withTime(baseTime)),
			},
		},
		{
			name: "empty pool",
			erp:  record(domain.OriginERP, withUUID("abc-123")),
		},
	}

	selector := engine.NewSelector(engine.DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selector.SelectCandidates(tt.erp, tt.pool)
			require.Len(t, got, len(tt.wantIdx))
			for i, idx := range tt.wantIdx {
				assert.Equal(t, tt.wantType, got[i].MatchType)
				assert.Same(t, &tt.pool[idx], got[i].Local)
			}
		})
	}
}

func TestSelector_SelectCandidates_Deltas(t *testing.T) {
	erp := record(domain.OriginERP, withUUID("u"), withTotal("150.00"), withTime(baseTime))
	pool := []domain.CanonicalRecord{
		record(domain.OriginLocal, withUUID("u"), withTotal("149.50"), withTime(baseTime.Add(-90*time.Second))),
		record(domain.OriginLocal, withUUID("u")),
	}

	got := engine.NewSelector(engine.DefaultOptions()).SelectCandidates(erp, pool)
	require.Len(t, got, 2)
	assert.True(t, got[0].TotalDelta.Valid)
	assert.Equal(t, "0.5", got[0].TotalDelta.Decimal.String())
	assert.Equal(t, 90*time.Second, got[0].TimeDelta)
	assert.False(t, got[1].TotalDelta.Valid)
	assert.Equal(t, domain.UnknownTimeDelta, got[1].TimeDelta)
}

func TestSelector_SelectCandidates_CustomWindow(t *testing.T) {
	opts := engine.DefaultOptions()
	opts.Window = 10 * time.Minute
	erp := record(domain.OriginERP, withStore("5"), withTotal("80.00"), withTime(baseTime))
	pool := []domain.CanonicalRecord{
		record(domain.OriginLocal, withStore("5"), withTotal("80.00"), withTime(baseTime.Add(-8*time.Minute))),
	}

	assert.Empty(t, engine.NewSelector(engine.DefaultOptions()).SelectCandidates(erp, pool))
	assert.Len(t, engine.NewSelector(opts).SelectCandidates(erp, pool), 1)
}

func TestSelector_SelectCandidates_Deterministic(t *testing.T) {
	erp := record(domain.OriginERP, withStore("5"), withTotal("80.00"), withTime(baseTime))
	pool := []domain.CanonicalRecord{
		record(domain.OriginLocal, withSequence("1"), withStore("5"), withTotal("80.00"), withTime(baseTime.Add(2*time.Minute))),
		record(domain.OriginLocal, withSequence("2"), withStore("5"), withTotal("80.00"), withTime(baseTime.Add(-2*time.Minute))),
		record(domain.OriginLocal, withSequence("3"), withStore("5"), withTotal("80.00"), withTime(baseTime.Add(time.Minute))),
	}
	selector := engine.NewSelector(engine.DefaultOptions())
	classifier := engine.NewClassifier(engine.DefaultOptions())

	first := classifier.Classify(selector.SelectCandidates(erp, pool))
	for i := 0; i < 20; i++ {
		again := classifier.Classify(selector.SelectCandidates(erp, pool))
		assert.Equal(t, first.Found, again.Found)
		assert.Equal(t, first.MatchType, again.MatchType)
		assert.Equal(t, first.Confidence, again.Confidence)
		assert.Equal(t, first.Candidate.Local.ID(domain.KeySequence), again.Candidate.Local.ID(domain.KeySequence))
	}
	assert.Equal(t, "3", first.Candidate.Local.ID(domain.KeySequence))
}
