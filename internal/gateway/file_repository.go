package gateway

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pdv-reconciliation/internal/domain"
)

// FileRepository reads ERP exports and local record dumps from CSV or JSON files.
type FileRepository struct{}

// NewFileRepository creates a new repository instance.
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// GetERPRecords reads the ERP records stored at path.
func (r *FileRepository) GetERPRecords(ctx context.Context, path string) ([]domain.RawRecord, error) {
	return readRecords(ctx, path)
}

// GetLocalRecords reads the local pool stored at query.Source. Files are not narrowed by store or time.
func (r *FileRepository) GetLocalRecords(ctx context.Context, query domain.LocalQuery) ([]domain.RawRecord, error) {
	return readRecords(ctx, query.Source)
}

func readRecords(ctx context.Context, path string) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVRecords(path)
	case ".json":
		return readJSONRecords(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}
