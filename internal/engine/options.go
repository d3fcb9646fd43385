// Package engine decides whether ERP and local sales/closure records describe the same
// business event, and diffs the ones that do. It performs no I/O.
package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"pdv-reconciliation/internal/config"
)

// Options tunes the engine.
type Options struct {
	// Tolerance is the strict upper bound on an amount difference that still counts as equal.
	Tolerance decimal.Decimal
	// Window bounds the timestamp distance of heuristic candidates, in both directions.
	Window time.Duration
	// Location reads zone-less timestamps.
	Location *time.Location
}

// DefaultOptions returns ε=0.01, a 5 minute window and UTC.
func DefaultOptions() Options {
	return Options{
		Tolerance: decimal.RequireFromString(config.DefaultTolerance),
		Window:    config.DefaultHeuristicWindow,
		Location:  time.UTC,
	}
}

// OptionsFromConfig maps the process configuration onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if cfg.Tolerance.IsPositive() {
		opts.Tolerance = cfg.Tolerance
	}
	if cfg.HeuristicWindow > 0 {
		opts.Window = cfg.HeuristicWindow
	}
	if cfg.Location != nil {
		opts.Location = cfg.Location
	}
	return opts
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if !o.Tolerance.IsPositive() {
		o.Tolerance = def.Tolerance
	}
	if o.Window <= 0 {
		o.Window = def.Window
	}
	if o.Location == nil {
		o.Location = def.Location
	}
	return o
}

func withinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

func nullWithinTolerance(a, b decimal.NullDecimal, tolerance decimal.Decimal) bool {
	if !a.Valid || !b.Valid {
		return a.Valid == b.Valid
	}
	return withinTolerance(a.Decimal, b.Decimal, tolerance)
}
