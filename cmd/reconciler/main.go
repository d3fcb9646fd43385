package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"pdv-reconciliation/internal/config"
	"pdv-reconciliation/internal/domain"
	"pdv-reconciliation/internal/engine"
	"pdv-reconciliation/internal/gateway"
	"pdv-reconciliation/internal/usecase"
)

var openStore = gateway.OpenSQLiteStore

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run wires and executes one import or reconciliation; returning instead of exiting lets deferred closes run.
func run(args []string, stdout io.Writer) error {
	// Define command-line flags
	flags := flag.NewFlagSet("reconciler", flag.ContinueOnError)
	erpFile := flags.String("erp", "", "Path to the ERP export, JSON or CSV (required unless -import)")
	localFile := flags.String("local", "", "Path to the local PDV export, JSON or CSV")
	dbPath := flags.String("db", "", "Path to the SQLite local store (defaults to RECON_DB_PATH)")
	importFile := flags.String("import", "", "Load this local export into the SQLite store and exit")

	storeID := flags.String("store", "", "Only reconcile records of this store id")
	storeGUID := flags.String("store-guid", "", "Only reconcile records of this store guid")
	shift := flags.String("shift", "", "Only reconcile records of this shift sequence")
	operation := flags.Int("operation", 0, "Only reconcile the record with this operation code")
	dateFrom := flags.String("date-from", "", "First day to reconcile (YYYY-MM-DD)")
	dateTo := flags.String("date-to", "", "Last day to reconcile (YYYY-MM-DD)")
	hourFrom := flags.String("hour-from", "", "Start of the daily hour range (HH:MM)")
	hourTo := flags.String("hour-to", "", "End of the daily hour range (HH:MM)")
	value := flags.String("value", "", "Only reconcile records with exactly this total")
	valueMin := flags.String("value-min", "", "Only reconcile records with at least this total")
	valueMax := flags.String("value-max", "", "Only reconcile records with at most this total")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	logger := config.GetLogger()
	logger.SetLevel(cfg.LogLevel)

	if *dbPath == "" {
		*dbPath = cfg.DBPath
	}

	ctx := context.Background()

	// --- Dependency Injection (Wiring the application) ---

	// 1. Create the repositories (the outermost layer)
	files := gateway.NewFileRepository()
	var store *gateway.SQLiteStore
	if *dbPath != "" {
		store, err = openStore(ctx, *dbPath)
		if err != nil {
			return fmt.Errorf("error opening local store: %w", err)
		}
		defer store.Close()
	}

	// 2. Create the engine with the configured tolerance, window and timezone
	eng := engine.New(engine.OptionsFromConfig(cfg), logger)

	if *importFile != "" {
		if store == nil {
			return errors.New("-import needs -db or RECON_DB_PATH")
		}
		saved, err := usecase.NewImportUseCase(files, store, eng, logger).Import(ctx, *importFile)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Fprintf(stdout, "imported %d local records into %s\n", saved, *dbPath)
		return nil
	}

	// Validate required flags
	if *erpFile == "" || (*localFile == "" && store == nil) {
		flags.Usage()
		return errors.New("-erp and one of -local or -db are required")
	}

	// 3. Create the usecase and inject the repositories (the core logic layer)
	var (
		local       usecase.LocalRecordSource = files
		localSource                           = *localFile
		runs        usecase.RunRecorder
	)
	if store != nil {
		runs = store
		if *localFile == "" {
			local, localSource = store, *dbPath
		}
	}
	reconciliationUseCase := usecase.NewReconciliationUseCase(files, local, runs, eng, logger)

	exact, err := parseAmountFlag("value", *value)
	if err != nil {
		return err
	}
	lower, err := parseAmountFlag("value-min", *valueMin)
	if err != nil {
		return err
	}
	upper, err := parseAmountFlag("value-max", *valueMax)
	if err != nil {
		return err
	}
	filters := domain.FilterSpec{
		StoreID:       *storeID,
		StoreGUID:     *storeGUID,
		ShiftSequence: *shift,
		OperationCode: *operation,
		DateFrom:      *dateFrom,
		DateTo:        *dateTo,
		HourFrom:      *hourFrom,
		HourTo:        *hourTo,
		ValueExact:    exact,
		ValueMin:      lower,
		ValueMax:      upper,
	}

	// --- Execute the Usecase ---
	result, err := reconciliationUseCase.Reconcile(ctx, usecase.ReconcileRequest{
		ERPSource:   *erpFile,
		LocalSource: localSource,
		Filters:     filters,
	})
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	// --- Present the Output ---
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate JSON report: %w", err)
	}

	fmt.Fprintln(stdout, string(output))
	return nil
}

func parseAmountFlag(name, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("error parsing -%s: %w", name, err)
	}
	return &d, nil
}
