package engine

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"pdv-reconciliation/internal/domain"
)

const (
	dateLayout = time.DateOnly
	hourLayout = "15:04"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateFilters rejects self-contradictory filter combinations with a *domain.FilterValidationError.
func ValidateFilters(f domain.FilterSpec) error {
	fields := make(map[string]string)

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, ve := range verrs {
			fields[ve.Field()] = ve.Tag()
		}
	}

	if f.DateFrom != "" && f.DateTo != "" && fields["date_from"] == "" && fields["date_to"] == "" {
		from, _ := time.Parse(dateLayout, f.DateFrom)
		to, _ := time.Parse(dateLayout, f.DateTo)
		if from.After(to) {
			fields["date_from"] = "ltefield=date_to"
		}
	}

	if f.ValueExact != nil && (f.ValueMin != nil || f.ValueMax != nil) {
		fields["value_exact"] = "excluded_with=value_min value_max"
	}
	if f.ValueExact != nil && f.ValueExact.IsNegative() {
		fields["value_exact"] = "gte=0"
	}
	if f.ValueMin != nil && f.ValueMin.IsNegative() {
		fields["value_min"] = "gte=0"
	}
	if f.ValueMax != nil && f.ValueMax.IsNegative() {
		fields["value_max"] = "gte=0"
	}
	if f.ValueMin != nil && f.ValueMax != nil && f.ValueMin.GreaterThan(*f.ValueMax) && fields["value_min"] == "" {
		fields["value_min"] = "ltefield=value_max"
	}

	if len(fields) > 0 {
		return &domain.FilterValidationError{Fields: fields}
	}
	return nil
}

// recordFilter is a validated FilterSpec with its dates and hours parsed.
type recordFilter struct {
	spec     domain.FilterSpec
	from, to time.Time
	hourFrom int
	hourTo    int
	location  *time.Location
	tolerance decimal.Decimal
}

func newRecordFilter(f domain.FilterSpec, loc *time.Location, tolerance decimal.Decimal) recordFilter {
	rf := recordFilter{spec: f, hourFrom: -1, hourTo: -1, location: loc, tolerance: tolerance}
	if f.DateFrom != "" {
		rf.from, _ = time.ParseInLocation(dateLayout, f.DateFrom, loc)
	}
	if f.DateTo != "" {
		to, _ := time.ParseInLocation(dateLayout, f.DateTo, loc)
		rf.to = to.AddDate(0, 0, 1)
	}
	if f.HourFrom != "" {
		rf.hourFrom = minuteOfDay(f.HourFrom)
	}
	if f.HourTo != "" {
		rf.hourTo = minuteOfDay(f.HourTo)
	}
	return rf
}

func minuteOfDay(s string) int {
	t, err := time.Parse(hourLayout, s)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

// FilterRecords keeps the records satisfying f, in their original order, reading dates in loc
// and comparing an exact value within the default tolerance.
// f must have passed ValidateFilters. Applying the same filter twice yields the same subset.
func FilterRecords(records []domain.CanonicalRecord, f domain.FilterSpec, loc *time.Location) []domain.CanonicalRecord {
	if loc == nil {
		loc = time.UTC
	}
	rf := newRecordFilter(f, loc, DefaultOptions().Tolerance)
	out := make([]domain.CanonicalRecord, 0, len(records))
	for _, r := range records {
		if rf.keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (rf recordFilter) keep(r domain.CanonicalRecord) bool {
	f := rf.spec
	if f.StoreID != "" && r.Store.ID != CanonicalStoreID(f.StoreID) {
		return false
	}
	if f.StoreGUID != "" && r.Store.GUID != strings.ToLower(strings.TrimSpace(f.StoreGUID)) {
		return false
	}
	if f.ShiftSequence != "" && r.ID(domain.KeyShift) != canonicalID(domain.KeyShift, f.ShiftSequence) {
		return false
	}
	if f.OperationCode > 0 && r.ID(domain.KeySequence) != strconv.Itoa(f.OperationCode) {
		return false
	}
	if !rf.keepTime(r.Timestamp) {
		return false
	}
	return rf.keepValue(r)
}

func (rf recordFilter) keepTime(ts time.Time) bool {
	if rf.from.IsZero() && rf.to.IsZero() && rf.hourFrom < 0 && rf.hourTo < 0 {
		return true
	}
	if ts.IsZero() {
		return false
	}
	local := ts.In(rf.location)
	if !rf.from.IsZero() && local.Before(rf.from) {
		return false
	}
	if !rf.to.IsZero() && !local.Before(rf.to) {
		return false
	}
	minute := local.Hour()*60 + local.Minute()
	switch {
	case rf.hourFrom >= 0 && rf.hourTo >= 0 && rf.hourFrom > rf.hourTo:
		// Overnight window such as 22:00-02:00.
		return minute >= rf.hourFrom || minute <= rf.hourTo
	case rf.hourFrom >= 0 && minute < rf.hourFrom:
		return false
	case rf.hourTo >= 0 && minute > rf.hourTo:
		return false
	}
	return true
}

func (rf recordFilter) keepValue(r domain.CanonicalRecord) bool {
	f := rf.spec
	if f.ValueExact == nil && f.ValueMin == nil && f.ValueMax == nil {
		return true
	}
	if !r.Total.Valid {
		return false
	}
	total := r.Total.Decimal
	if f.ValueExact != nil && !withinTolerance(total, *f.ValueExact, rf.tolerance) {
		return false
	}
	if f.ValueMin != nil && total.LessThan(*f.ValueMin) {
		return false
	}
	if f.ValueMax != nil && total.GreaterThan(*f.ValueMax) {
		return false
	}
	return true
}
