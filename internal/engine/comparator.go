package engine

import (
	"github.com/shopspring/decimal"

	"pdv-reconciliation/internal/domain"
)

// Comparator diffs a matched ERP/local pair field by field.
type Comparator struct {
	tolerance decimal.Decimal
}

// NewComparator builds a Comparator using opts.Tolerance for every amount.
func NewComparator(opts Options) *Comparator {
	return &Comparator{tolerance: opts.withDefaults().Tolerance}
}

// Compare builds the ComparisonResult of erp against local. The summary is recomputed on every call.
func (c *Comparator) Compare(erp, local domain.CanonicalRecord) domain.ComparisonResult {
	res := domain.ComparisonResult{
		Total:     c.compareDecimal(erp.Total, local.Total),
		Declared:  c.compareDecimal(erp.Declared, local.Declared),
		Operator:  compareString(operatorKey(erp.Operator), operatorKey(local.Operator)),
		Sequence:  compareString(erp.ID(domain.KeySequence), local.ID(domain.KeySequence)),
		FiscalKey: compareString(erp.ID(domain.KeyFiscalKey), local.ID(domain.KeyFiscalKey)),
		UUID:      compareString(erp.ID(domain.KeyUUID), local.ID(domain.KeyUUID)),
		Status:    compareStatus(erp.Status, local.Status),

		ERPBalance:           erp.Balance(),
		LocalBalance:         local.Balance(),
		ERPLinesConsistent:   erp.LinesConsistent(c.tolerance),
		LocalLinesConsistent: local.LinesConsistent(c.tolerance),
	}

	for _, p := range pairSequences(erp.Lines, local.Lines, linesEqual, func(l domain.LineItem) string { return l.Code }) {
		lc := domain.LineComparison{}
		if p.erp >= 0 {
			lc.ERP = &erp.Lines[p.erp]
		}
		if p.local >= 0 {
			lc.Local = &local.Lines[p.local]
		}
		lc.Match = lc.ERP != nil && lc.Local != nil && c.linesMatch(*lc.ERP, *lc.Local)
		res.Lines = append(res.Lines, lc)
	}

	for _, p := range pairSequences(erp.Payments, local.Payments, paymentsEqual, func(p domain.PaymentLine) string { return p.Method }) {
		pc := domain.PaymentComparison{}
		if p.erp >= 0 {
			pc.ERP = &erp.Payments[p.erp]
		}
		if p.local >= 0 {
			pc.Local = &local.Payments[p.local]
		}
		pc.Match = pc.ERP != nil && pc.Local != nil && c.paymentsMatch(*pc.ERP, *pc.Local)
		res.Payments = append(res.Payments, pc)
	}

	res.Summary = summarize(res)
	return res
}

func summarize(res domain.ComparisonResult) domain.ComparisonSummary {
	s := domain.ComparisonSummary{
		Total:       res.Total.Match,
		Declared:    res.Declared.Match,
		Operator:    res.Operator.Match,
		Sequence:    res.Sequence.Match,
		FiscalKey:   res.FiscalKey.Match,
		UUID:        res.UUID.Match,
		Status:      res.Status.Match == nil || *res.Status.Match,
		AllItems:    true,
		AllPayments: true,
	}
	for _, l := range res.Lines {
		if !l.Match {
			s.AllItems = false
			break
		}
	}
	for _, p := range res.Payments {
		if !p.Match {
			s.AllPayments = false
			break
		}
	}
	s.Perfect = s.Total && s.Declared && s.Operator && s.Sequence && s.FiscalKey && s.UUID &&
		s.Status && s.AllItems && s.AllPayments
	return s
}

func (c *Comparator) compareDecimal(erp, local decimal.NullDecimal) domain.DecimalComparison {
	dc := domain.DecimalComparison{ERPValue: erp, LocalValue: local}
	switch {
	case erp.Valid && local.Valid:
		dc.Diff = erp.Decimal.Sub(local.Decimal)
		dc.Match = dc.Diff.Abs().LessThan(c.tolerance)
	default:
		dc.Match = !erp.Valid && !local.Valid
	}
	return dc
}

func compareString(erp, local string) domain.FieldComparison {
	return domain.FieldComparison{ERPValue: erp, LocalValue: local, Match: erp == local}
}

func compareStatus(erp, local *domain.Status) domain.StatusComparison {
	sc := domain.StatusComparison{ERPValue: erp, LocalValue: local}
	if erp != nil && local != nil {
		m := *erp == *local
		sc.Match = &m
	}
	return sc
}

func operatorKey(p domain.Party) string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

func (c *Comparator) linesMatch(a, b domain.LineItem) bool {
	return a.Code == b.Code &&
		a.SellerRef == b.SellerRef &&
		nullEqual(a.Quantity, b.Quantity) &&
		nullWithinTolerance(a.UnitPrice, b.UnitPrice, c.tolerance) &&
		nullWithinTolerance(a.Total, b.Total, c.tolerance) &&
		nullWithinTolerance(a.Discount, b.Discount, c.tolerance)
}

func (c *Comparator) paymentsMatch(a, b domain.PaymentLine) bool {
	return a.Method == b.Method &&
		a.Installments == b.Installments &&
		nullWithinTolerance(a.Amount, b.Amount, c.tolerance) &&
		nullWithinTolerance(a.ChangeDue, b.ChangeDue, c.tolerance)
}

// linesEqual is field-set equality, ignoring the display name.
func linesEqual(a, b domain.LineItem) bool {
	return a.Code == b.Code &&
		a.SellerRef == b.SellerRef &&
		nullEqual(a.Quantity, b.Quantity) &&
		nullEqual(a.UnitPrice, b.UnitPrice) &&
		nullEqual(a.Total, b.Total) &&
		nullEqual(a.Discount, b.Discount)
}

func paymentsEqual(a, b domain.PaymentLine) bool {
	return a.Method == b.Method &&
		a.Installments == b.Installments &&
		nullEqual(a.Amount, b.Amount) &&
		nullEqual(a.ChangeDue, b.ChangeDue)
}

func nullEqual(a, b decimal.NullDecimal) bool {
	if !a.Valid || !b.Valid {
		return a.Valid == b.Valid
	}
	return a.Decimal.Equal(b.Decimal)
}

// pairing holds indexes into the ERP and local sequences; -1 marks a missing side.
type pairing struct {
	erp, local int
}

// pairSequences assigns ERP elements to local elements one-to-one: first by exact equality,
// then positionally when the leftovers have the same length, otherwise by key in order of
// occurrence. Pairs come back in ERP order, followed by local-only elements in local order.
func pairSequences[T any](erp, local []T, equal func(a, b T) bool, key func(T) string) []pairing {
	erpPair := make([]int, len(erp))
	for i := range erpPair {
		erpPair[i] = -1
	}
	localUsed := make([]bool, len(local))

	for i := range erp {
		for j := range local {
			if !localUsed[j] && equal(erp[i], local[j]) {
				erpPair[i] = j
				localUsed[j] = true
				break
			}
		}
	}

	var restERP, restLocal []int
	for i, j := range erpPair {
		if j < 0 {
			restERP = append(restERP, i)
		}
	}
	for j, used := range localUsed {
		if !used {
			restLocal = append(restLocal, j)
		}
	}

	if len(restERP) == len(restLocal) {
		for k, i := range restERP {
			erpPair[i] = restLocal[k]
			localUsed[restLocal[k]] = true
		}
	} else {
		for _, i := range restERP {
			for _, j := range restLocal {
				if !localUsed[j] && key(erp[i]) == key(local[j]) {
					erpPair[i] = j
					localUsed[j] = true
					break
				}
			}
		}
	}

	out := make([]pairing, 0, len(erp)+len(local))
	for i, j := range erpPair {
		out = append(out, pairing{erp: i, local: j})
	}
	for j, used := range localUsed {
		if !used {
			out = append(out, pairing{erp: -1, local: j})
		}
	}
	return out
}
