package gateway

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"pdv-reconciliation/internal/domain"
)

// readCSVRecords reads a CSV file whose header row names the record fields.
// Empty cells are left out of the record, and cells holding a JSON array or object are decoded.
func readCSVRecords(path string) ([]domain.RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []domain.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", path, err)
		}

		record := make(domain.RawRecord, len(header))
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" || header[i] == "" {
				continue
			}
			record[header[i]] = decodeCell(cell)
		}
		records = append(records, record)
	}
	return records, nil
}

// decodeCell expands JSON-encoded nested values such as line or payment lists.
func decodeCell(cell string) any {
	if cell[0] != '[' && cell[0] != '{' {
		return cell
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(cell)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return cell
	}
	return v
}
