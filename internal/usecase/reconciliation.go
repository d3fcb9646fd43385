package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pdv-reconciliation/internal/config"
	"pdv-reconciliation/internal/domain"
	"pdv-reconciliation/internal/engine"
)

// ReconcileRequest names the inputs of one reconciliation run.
type ReconcileRequest struct {
	ERPSource   string
	LocalSource string
	Filters     domain.FilterSpec
}

// ReconciliationUseCase orchestrates the reconciliation process.
type ReconciliationUseCase struct {
	erp    ERPRecordSource
	local  LocalRecordSource
	runs   RunRecorder
	engine *engine.Engine
	logger *logrus.Logger
	now    func() time.Time
}

// NewReconciliationUseCase creates a new instance of the usecase. runs may be nil when run metadata is not kept.
func NewReconciliationUseCase(erp ERPRecordSource, local LocalRecordSource, runs RunRecorder, eng *engine.Engine, logger *logrus.Logger) *ReconciliationUseCase {
	if logger == nil {
		logger = config.GetLogger()
	}
	if eng == nil {
		eng = engine.New(engine.DefaultOptions(), logger)
	}
	return &ReconciliationUseCase{
		erp:    erp,
		local:  local,
		runs:   runs,
		engine: eng,
		logger: logger,
		now:    time.Now,
	}
}

// Reconcile validates the filters, loads both sides and runs the engine over them.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, req ReconcileRequest) (*domain.BatchResult, error) {
	// Step 1: Reject contradictory filters before touching any source
	if err := engine.ValidateFilters(req.Filters); err != nil {
		return nil, err
	}
	startedAt := uc.now()

	// Step 2: Data Ingestion
	erpRecords, err := uc.erp.GetERPRecords(ctx, req.ERPSource)
	if err != nil {
		return nil, fmt.Errorf("could not get erp records: %w", err)
	}

	localRecords, err := uc.local.GetLocalRecords(ctx, uc.localQuery(req))
	if err != nil {
		return nil, fmt.Errorf("could not get local records: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 3: Matching and comparison
	result, err := uc.engine.RunBatch(erpRecords, localRecords, req.Filters)
	if err != nil {
		return nil, err
	}

	uc.logger.WithFields(logrus.Fields{
		"module":       "usecase",
		"erp_source":   req.ERPSource,
		"local_source": req.LocalSource,
		"erp_records":  len(erpRecords),
		"local_pool":   len(localRecords),
		"found":        result.Summary.Found,
		"not_found":    result.Summary.NotFound,
	}).Info("reconciliation finished")

	// Step 4: Keep run metadata; the result stands even if this fails
	if uc.runs != nil {
		run := domain.BatchRun{
			ID:         uuid.NewString(),
			StartedAt:  startedAt,
			FinishedAt: uc.now(),
			Summary:    result.Summary,
			Filters:    req.Filters,
		}
		if err := uc.runs.RecordRun(ctx, run); err != nil {
			config.LogError(uc.logger, "usecase", "Reconcile", "record run", run.ID, err)
		}
	}

	return result, nil
}

// localQuery narrows the local pool to the filtered store and dates, widened by the heuristic window.
func (uc *ReconciliationUseCase) localQuery(req ReconcileRequest) domain.LocalQuery {
	opts := uc.engine.Options()
	q := domain.LocalQuery{Source: req.LocalSource}
	if req.Filters.StoreID != "" {
		q.StoreID = engine.CanonicalStoreID(req.Filters.StoreID)
	}
	if req.Filters.DateFrom != "" {
		if from, err := time.ParseInLocation(time.DateOnly, req.Filters.DateFrom, opts.Location); err == nil {
			q.From = from.Add(-opts.Window).UTC()
		}
	}
	if req.Filters.DateTo != "" {
		if to, err := time.ParseInLocation(time.DateOnly, req.Filters.DateTo, opts.Location); err == nil {
			q.To = to.AddDate(0, 0, 1).Add(opts.Window).UTC()
		}
	}
	return q
}
