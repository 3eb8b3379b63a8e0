package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"m3calc/api"
	"m3calc/config"
	"m3calc/market"
	"m3calc/models"
	"m3calc/services"
	"m3calc/storage"
	"m3calc/utils"
)

const usage = `usage: m3calc <command> [flags]

commands:
  calc    estimate transfer time for a pasted log (reads stdin unless -in or -sample)
  serve   run the HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "m3calc: %v\n", err)
		os.Exit(1)
	}
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	switch os.Args[1] {
	case "calc":
		err = runCalc(os.Args[2:], cfg, logger)
	case "serve":
		err = runServe(cfg, logger)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "m3calc: unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func runCalc(args []string, cfg *config.Config, logger *utils.Logger) error {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	in := fs.String("in", "-", "input file with the pasted log, - for stdin")
	sample := fs.Bool("sample", false, "use the built-in sample log instead of -in")
	rate := fs.String("rate", "", "base rate in m3 per second (de or en notation)")
	modules := fs.String("modules", "", "number of modules")
	chars := fs.String("chars", "", "number of characters")
	sortKey := fs.String("sort", "", "label table sort key: label, count or sum")
	sortDir := fs.String("dir", "", "sort direction: asc or desc")
	prices := fs.Bool("prices", false, "look up Jita prices for every label")
	hms := fs.Bool("hms", false, "show the duration as HH:MM:SS")
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw, err := readInput(*in, *sample)
	if err != nil {
		return err
	}
	st, err := models.ParseSortState(*sortKey, *sortDir)
	if err != nil {
		return fmt.Errorf("calc: %w", err)
	}

	opts := []services.CalculatorOption{services.WithStrictFreshness(cfg.StrictFreshness)}
	if *prices {
		enricher, err := market.New(cfg, logger)
		if err != nil {
			return err
		}
		defer enricher.Close()
		opts = append(opts, services.WithPrices(enricher))
	}

	calc := services.NewCalculator(logger, services.NewTerminalRenderer(os.Stdout, *hms), opts...)
	calc.SetSort(st)

	rep := calc.Recompute(models.FormState{Raw: raw, Rate: *rate, Modules: *modules, Chars: *chars})
	if *prices {
		logger.Info("[calc] Looking up prices for %d labels...", len(rep.Labels))
		<-calc.EnrichAsync(rep)
		rep = calc.Last()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sinks, err := openSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sinks.Close()
	if sinks.Len() > 0 {
		if err := sinks.Write(ctx, rep); err != nil {
			return fmt.Errorf("calc: store run: %w", err)
		}
		logger.Info("[calc] Run %s stored in %d sink(s)", rep.ID, sinks.Len())
	}
	return nil
}

func readInput(path string, sample bool) (string, error) {
	if sample {
		return services.SampleLog, nil
	}
	if path == "" || path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("calc: read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("calc: read input: %w", err)
	}
	return string(b), nil
}

func runServe(cfg *config.Config, logger *utils.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enricher, err := market.New(cfg, logger)
	if err != nil {
		return err
	}
	defer enricher.Close()

	sinks, err := openSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sinks.Close()

	if utils.ParseLevel(cfg.LogLevel) != utils.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	calc := services.NewCalculator(logger, nil,
		services.WithPrices(enricher),
		services.WithStrictFreshness(cfg.StrictFreshness))
	h := api.NewHandler(api.Deps{
		Calc:        calc,
		Prices:      enricher,
		Sink:        sinks,
		Runs:        sinks.Lister(),
		Logger:      logger,
		WaitTimeout: 2 * cfg.HTTPTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(h, cfg.AllowedOrigins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("=== m3calc API listening on %s ===", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}

// openSinks opens every configured export sink. Nothing configured yields an
// empty MultiWriter.
func openSinks(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*storage.MultiWriter, error) {
	sinks := storage.NewMultiWriter()

	if cfg.CSVOutputPath != "" {
		w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			return nil, err
		}
		sinks.Add(w)
		logger.Info("[storage] CSV sink: %s", cfg.CSVOutputPath)
	}

	if cfg.SQLitePath != "" {
		w, err := storage.NewSQLiteWriter(ctx, cfg.SQLitePath)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks.Add(w)
		logger.Info("[storage] SQLite sink: %s", cfg.SQLitePath)
	}

	if cfg.PostgresEnabled() {
		w, err := storage.NewPostgresWriter(ctx, cfg.DSN(), logger)
		if err != nil {
			_ = sinks.Close()
			logger.Error("Make sure PostgreSQL is reachable at %s:%s", cfg.PostgresHost, cfg.PostgresPort)
			return nil, err
		}
		sinks.Add(w)
	}

	return sinks, nil
}
