package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"pdv-reconciliation/internal/domain"
)

// Field aliases seen in ERP payloads and local rows.
var (
	uuidFields      = []string{"uuid", "operationUuid", "operation_uuid", "uuidOperacao", "closureUuid", "uuidFechamento"}
	fiscalKeyFields = []string{"fiscalKey", "fiscal_key", "chaveFiscal", "chave_nfce", "chaveNfce"}
	sequenceFields  = []string{"sequence", "sequencial", "operationCode", "operation_code", "codigoOperacao"}
	storeFields     = []string{"store", "storeId", "store_id", "loja", "codigoLoja"}
	storeGUIDFields = []string{"storeGuid", "store_guid", "guidLoja"}
	storeNameFields = []string{"storeName", "store_name", "nomeLoja"}
	shiftFields     = []string{"shiftSequence", "shift_sequence", "shift", "turno", "sequencialTurno"}
	totalFields     = []string{"total", "valorTotal", "totalLiquido", "expected", "valorEsperado"}
	declaredFields  = []string{"declared", "valorDeclarado", "totalDeclarado"}
	timeFields      = []string{"timestamp", "dataHora", "createdAt", "created_at", "dataOperacao", "data"}
	operatorFields  = []string{"operator", "operatorId", "operator_id", "operador", "codigoOperador"}
	operatorNames   = []string{"operatorName", "operator_name", "nomeOperador"}
	statusFields    = []string{"status", "situacao"}
	cancelFields    = []string{"cancelled", "canceled", "cancelada", "cancelado"}
	kindFields      = []string{"kind", "tipo"}
	lineFields      = []string{"lines", "items", "itens"}
	paymentFields   = []string{"payments", "pagamentos", "finalizadoras"}

	partyIDFields   = []string{"id", "codigo", "code"}
	partyGUIDFields = []string{"guid", "uuid"}
	partyNameFields = []string{"name", "nome"}

	lineCodeFields     = []string{"code", "codigo", "codigoProduto", "sku"}
	lineNameFields     = []string{"name", "nome", "descricao"}
	lineQtyFields      = []string{"quantity", "quantidade", "qtd"}
	lineUnitFields     = []string{"unitPrice", "unit_price", "valorUnitario", "precoUnitario"}
	lineTotalFields    = []string{"total", "valorTotal"}
	lineDiscountFields = []string{"discount", "desconto"}
	lineSellerFields   = []string{"sellerRef", "seller_ref", "seller", "vendedor"}

	paymentMethodFields = []string{"method", "forma", "formaPagamento", "finalizadora"}
	paymentAmountFields = []string{"amount", "valor"}
	paymentChangeFields = []string{"changeDue", "change_due", "troco"}
	paymentInstFields   = []string{"installments", "parcelas"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	time.DateOnly,
}

var statusSynonyms = map[string]domain.Status{
	"CANCELADA":    domain.StatusCancelled,
	"CANCELADO":    domain.StatusCancelled,
	"CANCELLED":    domain.StatusCancelled,
	"CANCELED":     domain.StatusCancelled,
	"CONCLUIDA":    domain.StatusClosed,
	"CONCLUIDO":    domain.StatusClosed,
	"COMPLETED":    domain.StatusClosed,
	"CLOSED":       domain.StatusClosed,
	"FECHADA":      domain.StatusClosed,
	"FECHADO":      domain.StatusClosed,
	"FINALIZADA":   domain.StatusClosed,
	"FINALIZADO":   domain.StatusClosed,
	"ABERTA":       domain.StatusOpen,
	"ABERTO":       domain.StatusOpen,
	"OPEN":         domain.StatusOpen,
	"EM ANDAMENTO": domain.StatusOpen,
	"IN PROGRESS":  domain.StatusOpen,
}

// Normalizer converts raw payloads into CanonicalRecords.
type Normalizer struct {
	location *time.Location
}

// NewNormalizer builds a Normalizer reading zone-less timestamps in opts.Location.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{location: opts.withDefaults().Location}
}

// Normalize converts raw into the canonical shape. It fails only when raw carries no identifier at all.
func (n *Normalizer) Normalize(raw domain.RawRecord, origin domain.Origin) (domain.CanonicalRecord, error) {
	rec := domain.CanonicalRecord{
		Origin:      origin,
		Identifiers: make(map[domain.KeyKind]string),
	}
	if raw == nil {
		return rec, &domain.NormalizationError{Origin: origin, Reason: "empty record"}
	}

	rec.Store = partyFrom(raw, storeFields, storeGUIDFields, storeNameFields)
	rec.Operator = partyFrom(raw, operatorFields, nil, operatorNames)

	setID := func(kind domain.KeyKind, v string) {
		if v = canonicalID(kind, v); v != "" {
			rec.Identifiers[kind] = v
		}
	}
	setID(domain.KeyUUID, stringField(raw, uuidFields))
	setID(domain.KeyFiscalKey, stringField(raw, fiscalKeyFields))
	setID(domain.KeySequence, stringField(raw, sequenceFields))
	setID(domain.KeyStore, rec.Store.ID)
	setID(domain.KeyShift, stringField(raw, shiftFields))
	if len(rec.Identifiers) == 0 {
		return rec, &domain.NormalizationError{Origin: origin, Reason: "no identifier present"}
	}
	rec.Store.ID = rec.ID(domain.KeyStore)

	rec.Timestamp = n.timeField(raw, timeFields)
	rec.Total = decimalField(raw, totalFields)
	rec.Declared = decimalField(raw, declaredFields)
	rec.Status = statusFrom(raw)
	rec.Kind = kindFrom(raw, rec.Declared.Valid)
	rec.Lines = linesFrom(raw)
	rec.Payments = paymentsFrom(raw)

	return rec, nil
}

// NormalizeStatus maps a free-form status through the synonym table. Unknown values return nil.
func NormalizeStatus(s string) *domain.Status {
	key := strings.Join(strings.Fields(strings.ReplaceAll(foldAccents(strings.ToUpper(s)), "_", " ")), " ")
	st, ok := statusSynonyms[key]
	if !ok {
		return nil
	}
	return &st
}

func statusFrom(raw domain.RawRecord) *domain.Status {
	if st := NormalizeStatus(stringField(raw, statusFields)); st != nil {
		return st
	}
	if v, ok := lookup(raw, cancelFields); ok && truthy(v) {
		st := domain.StatusCancelled
		return &st
	}
	return nil
}

func kindFrom(raw domain.RawRecord, hasDeclared bool) domain.RecordKind {
	switch strings.ToUpper(foldAccents(stringField(raw, kindFields))) {
	case "CLOSURE", "FECHAMENTO", "FECHAMENTO DE CAIXA":
		return domain.KindClosure
	case "SALE", "VENDA":
		return domain.KindSale
	}
	if hasDeclared {
		return domain.KindClosure
	}
	return domain.KindSale
}

func linesFrom(raw domain.RawRecord) []domain.LineItem {
	items := objectList(raw, lineFields)
	if len(items) == 0 {
		return nil
	}
	lines := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.LineItem{
			Code:      strings.TrimSpace(stringField(it, lineCodeFields)),
			Name:      strings.TrimSpace(stringField(it, lineNameFields)),
			Quantity:  decimalField(it, lineQtyFields),
			UnitPrice: decimalField(it, lineUnitFields),
			Total:     decimalField(it, lineTotalFields),
			Discount:  decimalField(it, lineDiscountFields),
			SellerRef: strings.TrimSpace(partyFrom(it, lineSellerFields, nil, nil).ID),
		})
	}
	return lines
}

func paymentsFrom(raw domain.RawRecord) []domain.PaymentLine {
	items := objectList(raw, paymentFields)
	if len(items) == 0 {
		return nil
	}
	payments := make([]domain.PaymentLine, 0, len(items))
	for _, it := range items {
		inst := 0
		if d := decimalField(it, paymentInstFields); d.Valid {
			inst = int(d.Decimal.IntPart())
		}
		payments = append(payments, domain.PaymentLine{
			Method:       strings.ToUpper(strings.TrimSpace(foldAccents(stringField(it, paymentMethodFields)))),
			Amount:       decimalField(it, paymentAmountFields),
			ChangeDue:    decimalField(it, paymentChangeFields),
			Installments: inst,
		})
	}
	return payments
}

// partyFrom reads a party given either as a scalar id or as a nested object.
func partyFrom(raw domain.RawRecord, idFields, guidFields, nameFields []string) domain.Party {
	var p domain.Party
	if v, ok := lookup(raw, idFields); ok {
		if obj, isObj := asObject(v); isObj {
			p.ID = stringField(obj, partyIDFields)
			p.GUID = stringField(obj, partyGUIDFields)
			p.Name = stringField(obj, partyNameFields)
		} else {
			p.ID = toString(v)
		}
	}
	if p.GUID == "" {
		p.GUID = stringField(raw, guidFields)
	}
	if p.Name == "" {
		p.Name = stringField(raw, nameFields)
	}
	p.ID = strings.TrimSpace(p.ID)
	p.GUID = strings.ToLower(strings.TrimSpace(p.GUID))
	p.Name = strings.TrimSpace(p.Name)
	return p
}

func canonicalID(kind domain.KeyKind, v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	switch kind {
	case domain.KeyUUID:
		return strings.ToLower(v)
	case domain.KeyFiscalKey:
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) || r == '.' || r == '-' || r == '/' {
				return -1
			}
			return unicode.ToUpper(r)
		}, v)
	case domain.KeySequence, domain.KeyStore, domain.KeyShift:
		if isDigits(v) {
			trimmed := strings.TrimLeft(v, "0")
			if trimmed == "" {
				return "0"
			}
			return trimmed
		}
		return v
	}
	return v
}

// CanonicalStoreID formats a store id the way normalized records carry it ("005" becomes "5").
func CanonicalStoreID(id string) string {
	return canonicalID(domain.KeyStore, id)
}

// HasIdentifier reports whether raw carries any field a record can be referenced by.
func HasIdentifier(raw domain.RawRecord) bool {
	for _, fields := range [][]string{uuidFields, fiscalKeyFields, sequenceFields, storeFields, shiftFields} {
		if v, ok := lookup(raw, fields); ok && strings.TrimSpace(toString(v)) != "" {
			return true
		}
	}
	return false
}

func (n *Normalizer) timeField(raw domain.RawRecord, fields []string) time.Time {
	v, ok := lookup(raw, fields)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.ParseInLocation(layout, s, n.location); err == nil {
				return parsed.UTC()
			}
		}
		if isDigits(s) {
			if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
				return unixTime(float64(secs))
			}
		}
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return unixTime(f)
		}
	case float64:
		return unixTime(t)
	case int:
		return unixTime(float64(t))
	case int64:
		return unixTime(float64(t))
	}
	return time.Time{}
}

// unixTime reads seconds, or milliseconds when the value is too large to be seconds.
func unixTime(v float64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	if v > 1e11 {
		return time.UnixMilli(int64(v)).UTC()
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func decimalField(raw domain.RawRecord, fields []string) decimal.NullDecimal {
	v, ok := lookup(raw, fields)
	if !ok {
		return decimal.NullDecimal{}
	}
	d, err := ParseAmount(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return d
}

// ParseAmount coerces numbers and formatted strings ("1234.56", "1.234,56", "R$ 10,00") to a decimal.
// nil and empty strings give an invalid NullDecimal.
func ParseAmount(v any) (decimal.NullDecimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.NullDecimal{}, nil
	case decimal.Decimal:
		return decimal.NewNullDecimal(t), nil
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(t)), nil
	case float32:
		return decimal.NewNullDecimal(decimal.NewFromFloat32(t)), nil
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(t))), nil
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(t)), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		return decimal.NewNullDecimal(d), nil
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "R$")
		s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
		if s == "" {
			return decimal.NullDecimal{}, nil
		}
		comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
		switch {
		case comma >= 0 && comma > dot:
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		case comma >= 0:
			s = strings.ReplaceAll(s, ",", "")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.NullDecimal{}, fmt.Errorf("parse amount %q: %w", t, err)
		}
		return decimal.NewNullDecimal(d), nil
	}
	return decimal.NullDecimal{}, fmt.Errorf("unsupported amount type %T", v)
}

func lookup(raw map[string]any, fields []string) (any, bool) {
	for _, f := range fields {
		if v, ok := raw[f]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(raw map[string]any, fields []string) string {
	v, ok := lookup(raw, fields)
	if !ok {
		return ""
	}
	if _, isObj := asObject(v); isObj {
		return ""
	}
	return strings.TrimSpace(toString(v))
}

func objectList(raw map[string]any, fields []string) []map[string]any {
	v, ok := lookup(raw, fields)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []domain.RawRecord:
		out := make([]map[string]any, 0, len(list))
		for _, it := range list {
			out = append(out, it)
		}
		return out
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, it := range list {
			if obj, ok := asObject(it); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case domain.RawRecord:
		return obj, true
	}
	return nil, false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToUpper(strings.TrimSpace(t)) {
		case "S", "SIM", "Y", "YES", "TRUE", "1":
			return true
		}
	case float64:
		return t != 0
	case int:
		return t != 0
	case json.Number:
		return t.String() != "0"
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
