package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"pdv-reconciliation/internal/config"
	"pdv-reconciliation/internal/domain"
	"pdv-reconciliation/internal/engine"
)

// ImportUseCase copies a local export into a persistent local store.
type ImportUseCase struct {
	source LocalRecordSource
	sink   LocalRecordSink
	engine *engine.Engine
	logger *logrus.Logger
}

// NewImportUseCase creates a new instance of the usecase.
func NewImportUseCase(source LocalRecordSource, sink LocalRecordSink, eng *engine.Engine, logger *logrus.Logger) *ImportUseCase {
	if logger == nil {
		logger = config.GetLogger()
	}
	if eng == nil {
		eng = engine.New(engine.DefaultOptions(), logger)
	}
	return &ImportUseCase{source: source, sink: sink, engine: eng, logger: logger}
}

// Import stores every record of path that carries an identifier and returns how many were saved.
func (uc *ImportUseCase) Import(ctx context.Context, path string) (int, error) {
	rows, err := uc.source.GetLocalRecords(ctx, domain.LocalQuery{Source: path})
	if err != nil {
		return 0, fmt.Errorf("could not get local records: %w", err)
	}

	saved := 0
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		rec, err := uc.engine.Normalize(row, domain.OriginLocal)
		if err != nil {
			uc.logger.WithFields(logrus.Fields{"module": "usecase", "row": i}).Warn(err.Error())
			continue
		}
		if err := uc.sink.SaveLocalRecord(ctx, row, rec); err != nil {
			return saved, fmt.Errorf("could not save local record %s: %w", rec.Reference(), err)
		}
		saved++
	}

	uc.logger.WithFields(logrus.Fields{
		"module":  "usecase",
		"source":  path,
		"rows":    len(rows),
		"saved":   saved,
		"skipped": len(rows) - saved,
	}).Info("local records imported")
	return saved, nil
}
