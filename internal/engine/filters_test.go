package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdv-reconciliation/internal/domain"
	"pdv-reconciliation/internal/engine"
)

func TestValidateFilters(t *testing.T) {
	tests := []struct {
		name       string
		filters    domain.FilterSpec
		wantFields []string
	}{
		{name: "empty", filters: domain.FilterSpec{}},
		{
			name: "full valid range",
			filters: domain.FilterSpec{
				StoreID: "5", StoreGUID: "g", ShiftSequence: "2", OperationCode: 42,
				DateFrom: "2024-01-01", DateTo: "2024-01-31", HourFrom: "08:00", HourTo: "18:30",
				ValueMin: decPtr("0"), ValueMax: decPtr("100"),
			},
		},
		{name: "same day", filters: domain.FilterSpec{DateFrom: "2024-01-01", DateTo: "2024-01-01"}},
		{name: "exact value only", filters: domain.FilterSpec{ValueExact: decPtr("80.00")}},
		{name: "open range", filters: domain.FilterSpec{ValueMin: decPtr("10")}},
		{
			name:       "date_from after date_to",
			filters:    domain.FilterSpec{DateFrom: "2024-02-01", DateTo: "2024-01-01"},
			wantFields: []string{"date_from"},
		},
		{
			name:       "malformed date and hour",
			filters:    domain.FilterSpec{DateFrom: "01/02/2024", HourTo: "25:00"},
			wantFields: []string{"date_from", "hour_to"},
		},
		{
			name:       "exact and range together",
			filters:    domain.FilterSpec{ValueExact: decPtr("10"), ValueMin: decPtr("5")},
			wantFields: []string{"value_exact"},
		},
		{
			name:       "negative values",
			filters:    domain.FilterSpec{ValueMin: decPtr("-1"), ValueMax: decPtr("-0.5")},
			wantFields: []string{"value_min", "value_max"},
		},
		{
			name:       "min above max",
			filters:    domain.FilterSpec{ValueMin: decPtr("50"), ValueMax: decPtr("10")},
			wantFields: []string{"value_min"},
		},
		{
			name:       "negative operation code",
			filters:    domain.FilterSpec{OperationCode: -3},
			wantFields: []string{"operation_code"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.ValidateFilters(tt.filters)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ferr *domain.FilterValidationError
			require.True(t, errors.As(err, &ferr))
			assert.Len(t, ferr.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, ferr.Fields, f)
				assert.Contains(t, err.Error(), f)
			}
		})
	}
}

func TestFilterRecords(t *testing.T) {
	records := []domain.CanonicalRecord{
		record(domain.OriginERP, withSequence("1"), withStore("5"), withTotal("80.00"), withTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))),
		record(domain.OriginERP, withSequence("2"), withStore("5"), withTotal("150.00"), withTime(time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC))),
		record(domain.OriginERP, withSequence("3"), withStore("6"), withTotal("10.00"), withTime(time.Date(2024, 2, 1, 0, 10, 0, 0, time.UTC))),
		record(domain.OriginERP, withSequence("4"), withStore("5")),
	}
	records[1].Identifiers[domain.KeyShift] = "2"
	records[2].Store.GUID = "guid-6"

	tests := []struct {
		name    string
		filters domain.FilterSpec
		want    []string
	}{
		{name: "no filter", filters: domain.FilterSpec{}, want: []string{"1", "2", "3", "4"}},
		{name: "store id canonicalized", filters: domain.FilterSpec{StoreID: "005"}, want: []string{"1", "2", "4"}},
		{name: "store guid", filters: domain.FilterSpec{StoreGUID: "GUID-6"}, want: []string{"3"}},
		{name: "shift", filters: domain.FilterSpec{ShiftSequence: "02"}, want: []string{"2"}},
		{name: "operation code", filters: domain.FilterSpec{OperationCode: 3}, want: []string{"3"}},
		{name: "inclusive date range", filters: domain.FilterSpec{DateFrom: "2024-01-01", DateTo: "2024-01-31"}, want: []string{"1", "2"}},
		{name: "date_from only", filters: domain.FilterSpec{DateFrom: "2024-01-31"}, want: []string{"2", "3"}},
		{name: "hour window", filters: domain.FilterSpec{HourFrom: "08:00", HourTo: "10:00"}, want: []string{"1"}},
		{name: "overnight hours", filters: domain.FilterSpec{HourFrom: "23:00", HourTo: "01:00"}, want: []string{"2", "3"}},
		{name: "exact value", filters: domain.FilterSpec{ValueExact: decPtr("150")}, want: []string{"2"}},
		{name: "exact value within tolerance", filters: domain.FilterSpec{ValueExact: decPtr("150.005")}, want: []string{"2"}},
		{name: "exact value off by the tolerance", filters: domain.FilterSpec{ValueExact: decPtr("150.01")}, want: nil},
		{name: "value range", filters: domain.FilterSpec{ValueMin: decPtr("10"), ValueMax: decPtr("80")}, want: []string{"1", "3"}},
		{name: "combined", filters: domain.FilterSpec{StoreID: "5", ValueMax: decPtr("100")}, want: []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, engine.ValidateFilters(tt.filters))
			got := engine.FilterRecords(records, tt.filters, time.UTC)

			var seqs []string
			for _, r := range got {
				seqs = append(seqs, r.ID(domain.KeySequence))
			}
			assert.Equal(t, tt.want, seqs)

			again := engine.FilterRecords(got, tt.filters, time.UTC)
			assert.Equal(t, got, again)
		})
	}
}

func TestFilterRecords_Location(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	// 01:30 UTC on Feb 1st is still Jan 31st in BRT.
	records := []domain.CanonicalRecord{
		record(domain.OriginERP, withSequence("1"), withTime(time.Date(2024, 2, 1, 1, 30, 0, 0, time.UTC))),
	}
	f := domain.FilterSpec{DateFrom: "2024-01-31", DateTo: "2024-01-31"}

	assert.Len(t, engine.FilterRecords(records, f, brt), 1)
	assert.Empty(t, engine.FilterRecords(records, f, time.UTC))
}
