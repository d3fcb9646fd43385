package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"pdv-reconciliation/internal/domain"
	"pdv-reconciliation/internal/engine"
)

// envelopeKeys are the wrapper fields ERP exports put their record list under.
var envelopeKeys = []string{"data", "items", "records"}

// ErrUnsupportedFormat is returned for files that are neither CSV nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// readJSONRecords reads a JSON array of records, a single record, or an object wrapping a list
// under an envelope key.
// Numbers are kept as json.Number so amounts are not rounded through float64.
func readJSONRecords(path string) ([]domain.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open json file %s: %w", path, err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	return records, nil
}

func decodeRecords(data []byte) ([]domain.RawRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	switch v := doc.(type) {
	case []any:
		return toRecords(v)
	case map[string]any:
		// An object carrying its own identifier is a record, even when it has an items list.
		if engine.HasIdentifier(v) {
			return []domain.RawRecord{v}, nil
		}
		for _, key := range envelopeKeys {
			if list, ok := v[key].([]any); ok {
				return toRecords(list)
			}
		}
		return []domain.RawRecord{v}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected an array or object, got %T", doc)
	}
}

// decodeObject decodes a single record, keeping numbers as json.Number.
func decodeObject(data []byte) (domain.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var record domain.RawRecord
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	return record, nil
}

func toRecords(list []any) ([]domain.RawRecord, error) {
	records := make([]domain.RawRecord, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is %T, not an object", i, item)
		}
		records = append(records, obj)
	}
	return records, nil
}
