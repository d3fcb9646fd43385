package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FilterSpec narrows the ERP inputs of a batch before any matching happens.
type FilterSpec struct {
	StoreID       string           `json:"store_id,omitempty"`
	StoreGUID     string           `json:"store_guid,omitempty"`
	ShiftSequence string           `json:"shift_sequence,omitempty"`
	OperationCode int              `json:"operation_code,omitempty" validate:"gte=0"`
	DateFrom      string           `json:"date_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo        string           `json:"date_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	HourFrom      string           `json:"hour_from,omitempty" validate:"omitempty,datetime=15:04"`
	HourTo        string           `json:"hour_to,omitempty" validate:"omitempty,datetime=15:04"`
	ValueExact    *decimal.Decimal `json:"value_exact,omitempty"`
	ValueMin      *decimal.Decimal `json:"value_min,omitempty"`
	ValueMax      *decimal.Decimal `json:"value_max,omitempty"`
}

// IsEmpty reports whether no filter option is set.
func (f FilterSpec) IsEmpty() bool {
	return f.StoreID == "" && f.StoreGUID == "" && f.ShiftSequence == "" && f.OperationCode == 0 &&
		f.DateFrom == "" && f.DateTo == "" && f.HourFrom == "" && f.HourTo == "" &&
		f.ValueExact == nil && f.ValueMin == nil && f.ValueMax == nil
}

// Outcome is the per-record result category of a batch.
type Outcome string

const (
	OutcomeMatched   Outcome = "MATCHED"
	OutcomeNotFound  Outcome = "NOT_FOUND"
	OutcomeAmbiguous Outcome = "AMBIGUOUS"
	OutcomeFailed    Outcome = "FAILED"
)

// BatchItem is the result slot of one ERP input.
type BatchItem struct {
	Input          RawRecord         `json:"input"`
	Record         *CanonicalRecord  `json:"record,omitempty"`
	Local          *CanonicalRecord  `json:"local,omitempty"`
	Outcome        Outcome           `json:"outcome"`
	Classification Classification    `json:"classification"`
	Comparison     *ComparisonResult `json:"comparison,omitempty"`
}

// HasDiscrepancy reports whether a found record was not a perfect match.
func (i BatchItem) HasDiscrepancy() bool {
	return i.Classification.Found && i.Comparison != nil && !i.Comparison.Summary.Perfect
}

// BatchSummary holds the counts of one batch. Ambiguous and Failed are subsets of NotFound.
type BatchSummary struct {
	Total           int             `json:"total"`
	Found           int             `json:"found"`
	NotFound        int             `json:"not_found"`
	WithDiscrepancy int             `json:"with_discrepancy"`
	Ambiguous       int             `json:"ambiguous"`
	Failed          int             `json:"failed"`
	MatchRate       float64         `json:"match_rate"`
	ERPTotal        decimal.Decimal `json:"erp_total"`
	LocalTotal      decimal.Decimal `json:"local_total"`
}

// BatchResult is the output of one batch run.
type BatchResult struct {
	Items   []BatchItem  `json:"items"`
	Summary BatchSummary `json:"summary"`
	Filters FilterSpec   `json:"filters"`
}

// BatchRun is the metadata of a finished batch handed to the persistence sink.
type BatchRun struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Summary    BatchSummary `json:"summary"`
	Filters    FilterSpec   `json:"filters"`
}

// LocalQuery describes which local records to load as the candidate pool.
// Sources that cannot narrow by store or time return everything they hold.
type LocalQuery struct {
	Source  string    `json:"source,omitempty"`
	StoreID string    `json:"store_id,omitempty"`
	From    time.Time `json:"from,omitempty"`
	To      time.Time `json:"to,omitempty"`
}
