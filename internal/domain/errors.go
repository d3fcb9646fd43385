package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAmbiguousMatch is the logical error behind an ambiguous classification.
// Classifications report it through Reason, it is never returned from the engine.
var ErrAmbiguousMatch = errors.New(ReasonAmbiguous)

// NormalizationError is returned when a raw record carries no usable identifier.
type NormalizationError struct {
	Origin Origin
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s record: %s", strings.ToLower(string(e.Origin)), e.Reason)
}

// FilterValidationError rejects a self-contradictory FilterSpec.
// Fields maps each offending filter option to the rule it broke.
type FilterValidationError struct {
	Fields map[string]string
}

func (e *FilterValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid filters: " + strings.Join(parts, "; ")
}
