package usecase

import (
	"context"

	"pdv-reconciliation/internal/domain"
)

// ERPRecordSource fetches the raw records exported by the ERP.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go
type ERPRecordSource interface {
	GetERPRecords(ctx context.Context, source string) ([]domain.RawRecord, error)
}

// LocalRecordSource fetches the local candidate pool for a reconciliation run.
type LocalRecordSource interface {
	GetLocalRecords(ctx context.Context, query domain.LocalQuery) ([]domain.RawRecord, error)
}

// RunRecorder persists the metadata of finished batch runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run domain.BatchRun) error
}

// LocalRecordSink stores local records together with their normalized form.
type LocalRecordSink interface {
	SaveLocalRecord(ctx context.Context, raw domain.RawRecord, rec domain.CanonicalRecord) error
}
