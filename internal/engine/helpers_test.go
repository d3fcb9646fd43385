package engine_test

import (
	"time"

	"github.com/shopspring/decimal"

	"pdv-reconciliation/internal/domain"
)

var baseTime = time.Date(2024, 1, 15, 14, 2, 0, 0, time.UTC)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func statusPtr(s domain.Status) *domain.Status {
	return &s
}

type recordOpt func(*domain.CanonicalRecord)

func withUUID(v string) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Identifiers[domain.KeyUUID] = v }
}

func withFiscalKey(v string) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Identifiers[domain.KeyFiscalKey] = v }
}

func withSequence(v string) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Identifiers[domain.KeySequence] = v }
}

func withStore(id string) recordOpt {
	return func(r *domain.CanonicalRecord) {
		r.Store.ID = id
		r.Identifiers[domain.KeyStore] = id
	}
}

func withStoreGUID(guid string) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Store.GUID = guid }
}

func withOperator(id string) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Operator.ID = id }
}

func withTotal(v string) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Total = amount(v) }
}

func withTime(t time.Time) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Timestamp = t }
}

func withStatus(s domain.Status) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Status = statusPtr(s) }
}

func withLines(lines ...domain.LineItem) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Lines = lines }
}

func withPayments(payments ...domain.PaymentLine) recordOpt {
	return func(r *domain.CanonicalRecord) { r.Payments = payments }
}

func record(origin domain.Origin, opts ...recordOpt) domain.CanonicalRecord {
	r := domain.CanonicalRecord{
		Origin:      origin,
		Kind:        domain.KindSale,
		Identifiers: make(map[domain.KeyKind]string),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func line(code, total string) domain.LineItem {
	return domain.LineItem{Code: code, Quantity: amount("1"), UnitPrice: amount(total), Total: amount(total)}
}

func payment(method, value string) domain.PaymentLine {
	return domain.PaymentLine{Method: method, Amount: amount(value), Installments: 1}
}
