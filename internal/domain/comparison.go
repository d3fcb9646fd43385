package domain

import "github.com/shopspring/decimal"

// FieldComparison compares a string-valued field.
type FieldComparison struct {
	ERPValue   string `json:"erp_value"`
	LocalValue string `json:"local_value"`
	Match      bool   `json:"match"`
}

// DecimalComparison compares an amount. Diff is ERP minus local and is zero when either side is missing.
type DecimalComparison struct {
	ERPValue   decimal.NullDecimal `json:"erp_value"`
	LocalValue decimal.NullDecimal `json:"local_value"`
	Diff       decimal.Decimal     `json:"diff"`
	Match      bool                `json:"match"`
}

// StatusComparison is tri-state: Match is nil while either side's status is unknown.
type StatusComparison struct {
	ERPValue   *Status `json:"erp_value"`
	LocalValue *Status `json:"local_value"`
	Match      *bool   `json:"match"`
}

// Pending reports whether the status cross-check could not be decided.
func (s StatusComparison) Pending() bool {
	return s.Match == nil
}

// LineComparison pairs an ERP line with a local line. One side is nil when unmatched.
type LineComparison struct {
	ERP   *LineItem `json:"erp_line"`
	Local *LineItem `json:"local_line"`
	Match bool      `json:"match"`
}

// PaymentComparison pairs an ERP payment with a local payment. One side is nil when unmatched.
type PaymentComparison struct {
	ERP   *PaymentLine `json:"erp_payment"`
	Local *PaymentLine `json:"local_payment"`
	Match bool         `json:"match"`
}

// ComparisonSummary aggregates the per-category flags.
type ComparisonSummary struct {
	Total       bool `json:"total"`
	Declared    bool `json:"declared"`
	Operator    bool `json:"operator"`
	Sequence    bool `json:"sequence"`
	FiscalKey   bool `json:"fiscal_key"`
	UUID        bool `json:"uuid"`
	Status      bool `json:"status"`
	AllItems    bool `json:"all_itens"`
	AllPayments bool `json:"all_payments"`
	Perfect     bool `json:"perfect"`
}

// ComparisonResult is the field-by-field diff of a matched ERP/local pair.
type ComparisonResult struct {
	Total     DecimalComparison `json:"total"`
	Declared  DecimalComparison `json:"declared"`
	Operator  FieldComparison   `json:"operator"`
	Sequence  FieldComparison   `json:"sequence"`
	FiscalKey FieldComparison   `json:"fiscal_key"`
	UUID      FieldComparison   `json:"uuid"`
	Status    StatusComparison  `json:"status"`

	Lines    []LineComparison    `json:"line_comparisons"`
	Payments []PaymentComparison `json:"payment_comparisons"`

	// Falta/Sobra per side, only for records that declare cash.
	ERPBalance   decimal.NullDecimal `json:"erp_balance"`
	LocalBalance decimal.NullDecimal `json:"local_balance"`

	ERPLinesConsistent   *bool `json:"erp_lines_consistent"`
	LocalLinesConsistent *bool `json:"local_lines_consistent"`

	Summary ComparisonSummary `json:"summary"`
}

// UnmatchedLines counts line comparisons missing one side.
func (c ComparisonResult) UnmatchedLines() int {
	n := 0
	for _, l := range c.Lines {
		if l.ERP == nil || l.Local == nil {
			n++
		}
	}
	return n
}

// UnmatchedPayments counts payment comparisons missing one side.
func (c ComparisonResult) UnmatchedPayments() int {
	n := 0
	for _, p := range c.Payments {
		if p.ERP == nil || p.Local == nil {
			n++
		}
	}
	return n
}
