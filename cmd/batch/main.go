package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/danisetya/transfer-service/internal/intake"
	"github.com/danisetya/transfer-service/internal/report"
	"github.com/danisetya/transfer-service/internal/seed"
	"github.com/danisetya/transfer-service/internal/service"
	"github.com/danisetya/transfer-service/internal/store/memory"
	"github.com/danisetya/transfer-service/internal/store/postgres"
)

func main() {
	// Command-line flags
	var (
		inputFile    string
		dbURL        string
		outputFormat string
		outputFile   string
		prettyPrint  bool
		verbose      bool
	)

	flag.StringVar(&inputFile, "input", "", "Path to transfer requests CSV file (accountId,amount)")
	flag.StringVar(&dbURL, "db", "", "Postgres URL; when empty, runs against a seeded in-memory store (dry run)")
	flag.StringVar(&outputFormat, "format", "json", "Output format: json only for now")
	flag.StringVar(&outputFile, "output", "", "Path to output file (if empty, writes to stdout)")
	flag.BoolVar(&prettyPrint, "pretty", true, "Pretty print JSON output")
	flag.BoolVar(&verbose, "verbose", false, "Log individual transfer failures")

	flag.Parse()

	if inputFile == "" {
		exitWithError("Transfer requests file path is required")
	}

	logger := zap.NewNop()
	if verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			exitWithError(fmt.Sprintf("Failed to create logger: %v", err))
		}
	}

	requests, err := intake.NewCSVRequestReader(inputFile).ReadAll()
	if err != nil {
		exitWithError(fmt.Sprintf("Invalid request file: %v", err))
	}

	ctx := context.Background()

	svc, cleanup, err := buildService(ctx, dbURL, logger)
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to set up stores: %v", err))
	}
	defer cleanup()

	outcome := svc.ProcessBatch(ctx, requests)

	// Format the output
	var formatter report.OutputFormatter
	switch outputFormat {
	case "json":
		formatter = report.NewJSONFormatter(prettyPrint)

	// Can add other formatters later: csv, txt, etc
	default:
		exitWithError(fmt.Sprintf("Unsupported output format: %s", outputFormat))
		return
	}

	output, err := formatter.Format(outcome)
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to format output: %v", err))
	}

	if outputFile != "" {
		// If no extension is provided, add the formatter's default extension
		if !strings.Contains(outputFile, ".") {
			outputFile = fmt.Sprintf("%s.%s", outputFile, formatter.FileExtension())
		}

		if err := os.WriteFile(outputFile, output, 0644); err != nil {
			exitWithError(fmt.Sprintf("Failed to write output file: %v", err))
		}
	} else {
		fmt.Println(string(output))
	}

	if outcome.Failed > 0 {
		os.Exit(2)
	}
}

// buildService wires the engine against Postgres, or against a freshly
// seeded in-memory store when no database URL is given
func buildService(ctx context.Context, dbURL string, logger *zap.Logger) (*service.TransferService, func(), error) {
	if dbURL == "" {
		store := memory.NewStore()
		accounts := store.Accounts()
		ledger := store.Ledger()
		if err := seed.NewSeeder(accounts, ledger, logger).Run(ctx); err != nil {
			return nil, func() {}, err
		}
		svc := service.NewTransferService(
			accounts, ledger, store.Transfers(),
			memory.NewUnitOfWork(store), nil, logger,
		)
		return svc, func() {}, nil
	}

	db, err := postgres.Open(ctx, dbURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := postgres.Initialize(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}

	accounts := postgres.NewAccountStore(db)
	ledger := postgres.NewLedgerStore(db)
	if err := seed.NewSeeder(accounts, ledger, logger).Run(ctx); err != nil {
		db.Close()
		return nil, func() {}, err
	}

	svc := service.NewTransferService(
		accounts, ledger, postgres.NewTransferLog(db),
		postgres.NewUnitOfWork(db), nil, logger,
	)
	return svc, func() { db.Close() }, nil
}

func exitWithError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Run with -h flag for usage information.\n")
	os.Exit(1)
}
