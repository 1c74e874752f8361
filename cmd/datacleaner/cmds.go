package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"datacleaner/pkg/config"
	"datacleaner/pkg/data"
	"datacleaner/pkg/engine"
	"datacleaner/pkg/logging"
	"datacleaner/pkg/pipeline"
	"datacleaner/pkg/report"
	"datacleaner/pkg/server"
	"datacleaner/pkg/session"
	"datacleaner/pkg/stats"
)

const shutdownTimeout = 10 * time.Second

func fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	os.Exit(1)
}

// Action carries the command being run and the settings shared by all commands.
type Action struct {
	cmd    *cobra.Command
	start  time.Time
	quiet  bool
	cfg    *config.Config
	logger *logging.Logger
}

func newAction(cmd *cobra.Command) *Action {
	result := &Action{cmd: cmd, start: time.Now()}
	result.quiet = result.getBool("quiet")
	return result
}

func (a *Action) getBool(name string) bool {
	result, _ := a.cmd.Flags().GetBool(name)
	return result
}

func (a *Action) getFloat(name string) float64 {
	result, _ := a.cmd.Flags().GetFloat64(name)
	return result
}

func (a *Action) getString(name string) string {
	result, _ := a.cmd.Flags().GetString(name)
	return result
}

// Config loads the config file named by --config, once.
func (a *Action) Config() *config.Config {
	if a.cfg == nil {
		cfg, err := config.Load(a.getString("config"))
		if err != nil {
			fatal("%s", err)
		}
		a.cfg = &cfg
	}
	return a.cfg
}

// Logger writes to stderr, honouring --log-level and --log-format over the config.
func (a *Action) Logger() *logging.Logger {
	if a.logger == nil {
		cfg := a.Config()
		level, format := cfg.LogLevel, cfg.LogFormat
		if s := a.getString("log-level"); s != "" {
			level = s
		}
		if s := a.getString("log-format"); s != "" {
			format = s
		}
		a.logger = logging.New(os.Stderr, format, logging.ParseLevel(level))
	}
	return a.logger
}

func (a *Action) Append(format string, args ...interface{}) *Action {
	if a.quiet {
		return a
	}
	fmt.Printf(format, args...)
	return a
}

// Show the action banner message.
func (a *Action) Start(format string, args ...interface{}) *Action {
	if a.quiet {
		return a
	}
	fmt.Printf(format+" .. ", args...)
	return a
}

// Update the action banner and exit.
func (a *Action) Exit(result interface{}, err error) {
	delta := time.Since(a.start).Seconds()
	if err != nil {
		a.Append("(%.1fs)\n", delta)
		fatal("%s", err)
	}
	a.Append("Ok (%.1fs)\n", delta)
	if result != nil {
		showJSON(result)
	}
	os.Exit(0)
}

func showJSON(v interface{}) {
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	e.Encode(v)
}

func defaultOutput(input string) string {
	dir, base := filepath.Split(input)
	return filepath.Join(dir, "cleaned_"+base)
}

func serve(cmd *cobra.Command, args []string) {
	action := newAction(cmd)
	cfg := action.Config()
	logger := action.Logger()
	if s := action.getString("listen"); s != "" {
		cfg.Listen = s
	}

	store := session.NewStore(
		session.Config{TTL: cfg.SessionTTL, MaxSessions: cfg.MaxSessions},
		logger,
		engine.WithLogger(logger),
		engine.WithCoerceTolerance(cfg.CoerceTolerance))
	srv := server.New(store, logger, server.Options{
		MaxUploadBytes:   cfg.MaxUploadMB << 20,
		RateLimit:        cfg.RateLimit,
		Burst:            cfg.Burst,
		CORSOrigins:      cfg.CORSOrigins,
		MissingThreshold: &cfg.MissingThreshold,
		IQRFactor:        cfg.IQRFactor,
	})
	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		fatal("%s", err)
	}
}

func cleanOptions(action *Action) pipeline.Options {
	cfg := action.Config()
	all := action.getBool("all")
	opts := pipeline.Options{
		RemoveDuplicates:   all || action.getBool("remove-duplicates"),
		FillMissing:        all || action.getBool("fill-missing"),
		DetectOutliers:     all || action.getBool("clip-outliers"),
		FillMethod:         engine.ResolveFillMethod(engine.FillMethod(action.getString("method"))),
		IQRFactor:          cfg.IQRFactor,
		DropHighMissing:    all || action.getBool("drop-high-missing"),
		MissingThreshold:   &cfg.MissingThreshold,
		RemoveSpecialChars: all || action.getBool("remove-special-chars"),
		ConvertTypes:       all || action.getBool("convert-types"),
	}
	if v := action.getFloat("threshold"); v >= 0 {
		opts.MissingThreshold = &v
	}
	if v := action.getFloat("iqr-factor"); v > 0 {
		opts.IQRFactor = v
	}
	return opts
}

func clean(cmd *cobra.Command, args []string) {
	action := newAction(cmd)
	input := args[0]
	output := action.getString("output")
	if output == "" {
		output = defaultOutput(input)
	}

	action.Start("Cleaning '%s'", input)
	t, err := data.ReadFile(input)
	if err != nil {
		action.Exit(nil, errors.Wrapf(err, "read %s", input))
	}
	e := engine.New(t,
		engine.WithLogger(action.Logger()),
		engine.WithCoerceTolerance(action.Config().CoerceTolerance))
	rep := pipeline.FromOptions(cleanOptions(action)).Run(e)
	if err := data.WriteFile(output, e.CleanedTable()); err != nil {
		action.Exit(nil, errors.Wrapf(err, "write %s", output))
	}
	action.Append("Ok (%.1fs)\n", time.Since(action.start).Seconds())
	for _, res := range rep.Results {
		action.Append("  %s: %s\n", res.Operation, res.Description)
	}
	action.Append("Wrote %d rows to '%s'\n", rep.Summary.RowCount, output)
}

func profile(cmd *cobra.Command, args []string) {
	action := newAction(cmd)
	input := args[0]

	action.Start("Profiling '%s'", input)
	t, err := data.ReadFile(input)
	if err != nil {
		action.Exit(nil, errors.Wrapf(err, "read %s", input))
	}
	summary := engine.New(t, engine.WithLogger(action.Logger())).Summary()
	m, names := t.NumericMatrix()
	result := struct {
		engine.Summary
		Correlation stats.Correlation `json:"correlation"`
	}{summary, stats.Correlate(m, names)}
	if chart := action.getString("chart"); chart != "" {
		if err := report.SaveMissingChart(summary, chart); err != nil {
			action.Exit(nil, errors.Wrapf(err, "chart %s", chart))
		}
	}
	action.Exit(result, nil)
}
