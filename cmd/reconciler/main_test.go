package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdv-reconciliation/internal/domain"
	"pdv-reconciliation/internal/gateway"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// trackStores records every store run opens so the test can check it was closed.
func trackStores(t *testing.T) *[]*gateway.SQLiteStore {
	t.Helper()
	var opened []*gateway.SQLiteStore
	prev := openStore
	openStore = func(ctx context.Context, path string) (*gateway.SQLiteStore, error) {
		store, err := prev(ctx, path)
		if store != nil {
			opened = append(opened, store)
		}
		return store, err
	}
	t.Cleanup(func() { openStore = prev })
	return &opened
}

func TestRun_ErrorsCloseTheStore(t *testing.T) {
	t.Setenv("RECON_DB_PATH", "")
	dir := t.TempDir()
	erp := writeFile(t, dir, "erp.json", `[{"uuid":"abc-123","loja":"5","total":150}]`)
	db := filepath.Join(dir, "pdv.db")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad amount flag", args: []string{"-erp", erp, "-db", db, "-value", "12,x"}, wantErr: "-value"},
		{name: "missing erp flag", args: []string{"-db", db}, wantErr: "-erp"},
		{name: "import source missing", args: []string{"-db", db, "-import", filepath.Join(dir, "nope.json")}, wantErr: "import failed"},
		{name: "contradictory filters", args: []string{"-erp", erp, "-db", db, "-date-from", "2024-02-01", "-date-to", "2024-01-01"}, wantErr: "reconciliation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opened := trackStores(t)

			err := run(tt.args, &bytes.Buffer{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			require.Len(t, *opened, 1)
			_, err = (*opened)[0].GetLocalRecords(context.Background(), domain.LocalQuery{})
			assert.ErrorContains(t, err, "database is closed")
		})
	}
}

func TestRun_ImportThenReconcile(t *testing.T) {
	t.Setenv("RECON_DB_PATH", "")
	dir := t.TempDir()
	local := writeFile(t, dir, "local.json", `[{"operation_uuid":"abc-123","store_id":"5","total":"150.00","created_at":"2024-01-15T14:02:00Z"}]`)
	erp := writeFile(t, dir, "erp.json", `[{"uuid":"abc-123","loja":"005","total":150,"dataHora":"2024-01-15T14:02:00Z"}]`)
	db := filepath.Join(dir, "pdv.db")
	opened := trackStores(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-db", db, "-import", local}, &out))
	assert.Contains(t, out.String(), "imported 1 local records")

	out.Reset()
	require.NoError(t, run([]string{"-erp", erp, "-db", db, "-store", "005"}, &out))

	var result struct {
		Summary domain.BatchSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 1, result.Summary.Found)
	assert.Len(t, *opened, 2)
}

func TestParseAmountFlag(t *testing.T) {
	got, err := parseAmountFlag("value", "")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseAmountFlag("value-min", "10.50")
	require.NoError(t, err)
	assert.Equal(t, "10.5", got.String())

	_, err = parseAmountFlag("value-max", "abc")
	assert.ErrorContains(t, err, "-value-max")
}
