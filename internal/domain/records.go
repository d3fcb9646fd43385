package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is a loosely shaped payload as delivered by the ERP API or read from a local row.
type RawRecord map[string]any

// Origin tells which side of the reconciliation a record comes from.
type Origin string

const (
	OriginERP   Origin = "ERP"
	OriginLocal Origin = "LOCAL"
)

// RecordKind separates individual sales from end-of-shift closures.
type RecordKind string

const (
	KindSale    RecordKind = "SALE"
	KindClosure RecordKind = "CLOSURE"
)

// KeyKind names an identifier. The set is closed.
type KeyKind string

const (
	KeyUUID      KeyKind = "uuid"
	KeyFiscalKey KeyKind = "fiscal_key"
	KeySequence  KeyKind = "sequence"
	KeyStore     KeyKind = "store"
	KeyShift     KeyKind = "shift"
)

// KeyKinds lists every identifier kind, most trusted first.
var KeyKinds = []KeyKind{KeyUUID, KeyFiscalKey, KeySequence, KeyStore, KeyShift}

// Status is the normalized lifecycle state of a sale or closure.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

// Party identifies a store or an operator/seller.
type Party struct {
	ID   string `json:"id,omitempty"`
	GUID string `json:"guid,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether no identifying field is set.
func (p Party) IsZero() bool {
	return p.ID == "" && p.GUID == "" && p.Name == ""
}

// LineItem is one sold product line.
type LineItem struct {
	Code      string              `json:"code"`
	Name      string              `json:"name,omitempty"`
	Quantity  decimal.NullDecimal `json:"quantity"`
	UnitPrice decimal.NullDecimal `json:"unit_price"`
	Total     decimal.NullDecimal `json:"total"`
	Discount  decimal.NullDecimal `json:"discount"`
	SellerRef string              `json:"seller_ref,omitempty"`
}

// PaymentLine is one tender used to settle a sale.
type PaymentLine struct {
	Method       string              `json:"method"`
	Amount       decimal.NullDecimal `json:"amount"`
	ChangeDue    decimal.NullDecimal `json:"change_due"`
	Installments int                 `json:"installments"`
}

// CanonicalRecord is the comparable view of an ERP or local sale/closure.
// Absent amounts stay invalid NullDecimals so that "missing" never reads as zero.
type CanonicalRecord struct {
	Origin      Origin              `json:"origin"`
	Kind        RecordKind          `json:"kind"`
	Identifiers map[KeyKind]string  `json:"identifiers"`
	Timestamp   time.Time           `json:"timestamp"`
	Total       decimal.NullDecimal `json:"total"`
	Declared    decimal.NullDecimal `json:"declared"`
	Store       Party               `json:"store"`
	Operator    Party               `json:"operator"`
	Lines       []LineItem          `json:"lines"`
	Payments    []PaymentLine       `json:"payments"`
	Status      *Status             `json:"status"`
}

// ID returns the identifier of the given kind, or "" when absent.
func (r CanonicalRecord) ID(kind KeyKind) string {
	if r.Identifiers == nil {
		return ""
	}
	return r.Identifiers[kind]
}

// Reference returns the most trusted identifier available, formatted as kind:value.
func (r CanonicalRecord) Reference() string {
	for _, kind := range KeyKinds {
		if v := r.ID(kind); v != "" {
			return string(kind) + ":" + v
		}
	}
	return ""
}

// LinesTotal sums the line totals that are present.
func (r CanonicalRecord) LinesTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range r.Lines {
		if l.Total.Valid {
			sum = sum.Add(l.Total.Decimal)
		}
	}
	return sum
}

// LinesConsistent reports whether Total agrees with the sum of line totals within tolerance.
// It returns nil when the record has no total or no lines, since there is nothing to check.
func (r CanonicalRecord) LinesConsistent(tolerance decimal.Decimal) *bool {
	if !r.Total.Valid || len(r.Lines) == 0 {
		return nil
	}
	ok := r.Total.Decimal.Sub(r.LinesTotal()).Abs().LessThan(tolerance)
	return &ok
}

// Balance is the closure shortage/surplus: declared cash minus expected total.
func (r CanonicalRecord) Balance() decimal.NullDecimal {
	if !r.Declared.Valid || !r.Total.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(r.Declared.Decimal.Sub(r.Total.Decimal))
}
