package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"pdv-reconciliation/internal/config"
	"pdv-reconciliation/internal/domain"
)

// Engine runs the normalize → select → classify → compare pipeline over batches.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	opts       Options
	normalizer *Normalizer
	selector   *Selector
	classifier *Classifier
	comparator *Comparator
	logger     *logrus.Logger
}

// New builds an Engine. A nil logger falls back to the process logger.
func New(opts Options, logger *logrus.Logger) *Engine {
	opts = opts.withDefaults()
	if logger == nil {
		logger = config.GetLogger()
	}
	return &Engine{
		opts:       opts,
		normalizer: NewNormalizer(opts),
		selector:   NewSelector(opts),
		classifier: NewClassifier(opts),
		comparator: NewComparator(opts),
		logger:     logger,
	}
}

// Options returns the settings the engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

// Normalize delegates to the engine's Normalizer.
func (e *Engine) Normalize(raw domain.RawRecord, origin domain.Origin) (domain.CanonicalRecord, error) {
	return e.normalizer.Normalize(raw, origin)
}

// SelectCandidates delegates to the engine's Selector.
func (e *Engine) SelectCandidates(erp domain.CanonicalRecord, pool []domain.CanonicalRecord) []domain.MatchCandidate {
	return e.selector.SelectCandidates(erp, pool)
}

// Classify delegates to the engine's Classifier.
func (e *Engine) Classify(candidates []domain.MatchCandidate) domain.Classification {
	return e.classifier.Classify(candidates)
}

// Compare delegates to the engine's Comparator.
func (e *Engine) Compare(erp, local domain.CanonicalRecord) domain.ComparisonResult {
	return e.comparator.Compare(erp, local)
}

// NormalizePool normalizes local rows, dropping the ones without any identifier.
func (e *Engine) NormalizePool(rows []domain.RawRecord) []domain.CanonicalRecord {
	pool := make([]domain.CanonicalRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := e.normalizer.Normalize(row, domain.OriginLocal)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"module": "engine",
				"row":    i,
			}).Warn(err.Error())
			continue
		}
		pool = append(pool, rec)
	}
	return pool
}

// RunBatch validates filters, then matches every ERP input passing them against the local pool.
// Filter errors reject the whole batch before any matching. Any other failure is confined
// to the item it happened on.
func (e *Engine) RunBatch(inputs, localRows []domain.RawRecord, filters domain.FilterSpec) (*domain.BatchResult, error) {
	if err := ValidateFilters(filters); err != nil {
		return nil, err
	}

	pool := e.NormalizePool(localRows)
	rf := newRecordFilter(filters, e.opts.Location, e.opts.Tolerance)

	result := &domain.BatchResult{
		Items:   make([]domain.BatchItem, 0, len(inputs)),
		Filters: filters,
	}
	for _, raw := range inputs {
		rec, err := e.normalizer.Normalize(raw, domain.OriginERP)
		if err != nil {
			e.logger.WithFields(logrus.Fields{"module": "engine", "funcName": "RunBatch"}).Warn(err.Error())
			result.Items = append(result.Items, failedItem(raw, nil, err))
			continue
		}
		if !rf.keep(rec) {
			continue
		}
		result.Items = append(result.Items, e.processRecord(raw, rec, pool))
	}

	result.Summary = summarizeBatch(result.Items)
	e.logger.WithFields(logrus.Fields{
		"module":           "engine",
		"total":            result.Summary.Total,
		"found":            result.Summary.Found,
		"not_found":        result.Summary.NotFound,
		"with_discrepancy": result.Summary.WithDiscrepancy,
	}).Info("batch reconciled")
	return result, nil
}

// processRecord isolates one record: a panic becomes a failed item instead of aborting the batch.
func (e *Engine) processRecord(raw domain.RawRecord, rec domain.CanonicalRecord, pool []domain.CanonicalRecord) (item domain.BatchItem) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			config.LogError(e.logger, "engine", "processRecord", "recover", rec.Reference(), err)
			item = failedItem(raw, &rec, err)
		}
	}()

	item = domain.BatchItem{Input: raw, Record: &rec}
	item.Classification = e.classifier.Classify(e.selector.SelectCandidates(rec, pool))

	switch {
	case item.Classification.Found:
		local := *item.Classification.Candidate.Local
		cmp := e.comparator.Compare(rec, local)
		item.Local = &local
		item.Comparison = &cmp
		item.Outcome = domain.OutcomeMatched
	case item.Classification.Reason == domain.ReasonAmbiguous:
		item.Outcome = domain.OutcomeAmbiguous
	default:
		item.Outcome = domain.OutcomeNotFound
	}
	return item
}

func failedItem(raw domain.RawRecord, rec *domain.CanonicalRecord, err error) domain.BatchItem {
	return domain.BatchItem{
		Input:          raw,
		Record:         rec,
		Outcome:        domain.OutcomeFailed,
		Classification: domain.Classification{Found: false, Reason: err.Error()},
	}
}

func summarizeBatch(items []domain.BatchItem) domain.BatchSummary {
	s := domain.BatchSummary{
		Total:      len(items),
		ERPTotal:   decimal.Zero,
		LocalTotal: decimal.Zero,
	}
	for _, it := range items {
		if it.Classification.Found {
			s.Found++
			if it.HasDiscrepancy() {
				s.WithDiscrepancy++
			}
		} else {
			s.NotFound++
		}
		switch it.Outcome {
		case domain.OutcomeAmbiguous:
			s.Ambiguous++
		case domain.OutcomeFailed:
			s.Failed++
		}
		if it.Record != nil && it.Record.Total.Valid {
			s.ERPTotal = s.ERPTotal.Add(it.Record.Total.Decimal)
		}
		if it.Local != nil && it.Local.Total.Valid {
			s.LocalTotal = s.LocalTotal.Add(it.Local.Total.Decimal)
		}
	}
	if s.Total > 0 {
		s.MatchRate = float64(s.Found) / float64(s.Total) * 100
	}
	return s
}
