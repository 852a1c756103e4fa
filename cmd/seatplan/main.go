// Command seatplan reads a roster file and writes a seating arrangement
// without starting the HTTP service.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/seating-planner/internal/export"
	"github.com/eugenenazirov/seating-planner/internal/logging"
	"github.com/eugenenazirov/seating-planner/internal/roster"
	"github.com/eugenenazirov/seating-planner/internal/seating"
)

type options struct {
	input         string
	output        string
	seatsPerTable int
	diversify     bool
	seed          uint64
	seedSet       bool
	logLevel      string
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(opts.logLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(opts, os.Stdout, logger); err != nil {
		logger.Fatal("seating plan failed", zap.Error(err))
	}
}

func parseArgs(args []string) (options, error) {
	var opts options
	app := kingpin.New("seatplan", "Generate a seating arrangement from a CSV or XLSX roster")
	app.Flag("input", "Roster file (.csv or .xlsx)").Short('i').Required().StringVar(&opts.input)
	app.Flag("output", "Output file (.csv, .xlsx or .pdf); CSV on stdout when omitted").Short('o').StringVar(&opts.output)
	app.Flag("seats-per-table", "Maximum seats per table").Default("8").IntVar(&opts.seatsPerTable)
	app.Flag("diversify", "Mix departments across tables").BoolVar(&opts.diversify)
	app.Flag("seed", "Seed for a reproducible shuffle").IsSetByUser(&opts.seedSet).Uint64Var(&opts.seed)
	app.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").StringVar(&opts.logLevel)

	if _, err := app.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(opts options, stdout io.Writer, logger *zap.Logger) error {
	inputFormat, err := roster.FormatFromFilename(opts.input)
	if err != nil {
		return err
	}
	outputFormat, err := outputFormatFor(opts.output)
	if err != nil {
		return err
	}

	in, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer in.Close()

	people, err := roster.Parse(in, inputFormat)
	if err != nil {
		return fmt.Errorf("parse roster: %w", err)
	}

	var assignerOpts []seating.Option
	if opts.seedSet {
		assignerOpts = append(assignerOpts, seating.WithSeed(opts.seed))
	}

	start := time.Now()
	arrangement, err := seating.Arrange(seating.New(assignerOpts...), people, opts.seatsPerTable, opts.diversify)
	if err != nil {
		return fmt.Errorf("arrange: %w", err)
	}
	logger.Info("arrangement generated",
		zap.Int("people", arrangement.TotalSeated()),
		zap.Int("tables", len(arrangement.Tables)),
		zap.Int("same_department_pairs", arrangement.SameDepartmentPairs()),
		zap.Bool("diversify", opts.diversify),
		zap.Duration("elapsed", time.Since(start)),
	)

	if opts.output == "" {
		return export.Write(stdout, arrangement, outputFormat)
	}

	out, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := export.Write(out, arrangement, outputFormat); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", outputFormat, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	logger.Info("arrangement written", zap.String("path", opts.output), zap.String("format", string(outputFormat)))
	return nil
}

func outputFormatFor(path string) (export.Format, error) {
	if path == "" {
		return export.FormatCSV, nil
	}
	return export.ParseFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}
