// Command eventgen is the synthetic event stream generator's CLI entry
// point: it loads a generator config, compiles the state machine, and
// drives the spawner until the configured record-count or duration bound
// (or an OS signal) ends the run.
//
// Grounded on the chaos framework's cmd/chaos-runner/main.go + run.go
// wiring order (config -> logger -> execute -> report), adapted to this
// domain's single-pipeline run (config -> engine -> sink -> report).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/implydata/imply-eventgenerator/internal/clock"
	"github.com/implydata/imply-eventgenerator/internal/config"
	"github.com/implydata/imply-eventgenerator/internal/control"
	"github.com/implydata/imply-eventgenerator/internal/distributions"
	"github.com/implydata/imply-eventgenerator/internal/engine"
	"github.com/implydata/imply-eventgenerator/internal/logging"
	"github.com/implydata/imply-eventgenerator/internal/metrics"
	"github.com/implydata/imply-eventgenerator/internal/render"
	"github.com/implydata/imply-eventgenerator/internal/report"
	"github.com/implydata/imply-eventgenerator/internal/shutdown"
	"github.com/implydata/imply-eventgenerator/internal/sink"
)

var version = "dev"

var (
	configPath   string
	targetPath   string
	templatePath string
	simStart     string
	runDuration  string
	totalRecords int64
	maxEntities  int64
	seed         int64
	debug        bool
	logFormat    string
	metricsAddr  string
)

var rootCmd = &cobra.Command{
	Use:     "eventgen",
	Short:   "Synthetic event stream generator",
	Long:    `eventgen drives a configurable state-machine simulation that emits a stream of structured records to a pluggable sink, for load-testing and integration-testing downstream ingestion systems.`,
	Version: version,
	Args:    cobra.NoArgs,
	RunE:    runGenerate,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "generator config path (required)")
	rootCmd.Flags().StringVarP(&targetPath, "target", "t", "", "target config override path")
	rootCmd.Flags().StringVarP(&templatePath, "format", "f", "", "record-format template path")
	rootCmd.Flags().StringVarP(&simStart, "sim-start", "s", "", "simulation start time (ISO-8601); presence switches to SIM mode")
	rootCmd.Flags().StringVarP(&runDuration, "run-duration", "r", "", "run length (<n>s|m|h or ISO-8601 duration); mutually exclusive with -n")
	rootCmd.Flags().Int64VarP(&totalRecords, "num-records", "n", 0, "total records to emit; mutually exclusive with -r")
	rootCmd.Flags().Int64VarP(&maxEntities, "max-entities", "m", 100, "max concurrent entities, 1-1000")
	rootCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for the RNG stream")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "verbose diagnostics on standard error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "logging output format: text|json")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics at /metrics on this address")

	rootCmd.MarkFlagRequired("config")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if runDuration != "" && totalRecords > 0 {
		return fmt.Errorf("-r and -n are mutually exclusive")
	}
	if maxEntities < 1 || maxEntities > 1000 {
		return fmt.Errorf("-m must be between 1 and 1000, got %d", maxEntities)
	}

	level := logging.LevelInfo
	if debug {
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if logFormat == "json" {
		format = logging.FormatJSON
	}
	logger := logging.New(logging.Config{Level: level, Format: format, Output: os.Stderr})
	logging.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if targetPath != "" {
		target, err := config.LoadTarget(targetPath)
		if err != nil {
			return err
		}
		cfg.Target = target
	}

	mode := clock.Real
	start := time.Now()
	if simStart != "" {
		parsed, err := config.ParseStartTime(simStart)
		if err != nil {
			return err
		}
		mode = clock.Sim
		start = parsed
	}
	clk := clock.New(mode, start)

	var targetDuration time.Duration
	if runDuration != "" {
		targetDuration, err = config.ParseDuration(runDuration)
		if err != nil {
			return err
		}
	}

	sampler := distributions.NewSampler(seed)
	machine, interarrival, err := engine.Compile(cfg, sampler, clk)
	if err != nil {
		return err
	}

	snk, err := sink.New(cfg.Target)
	if err != nil {
		return err
	}
	defer snk.Close()

	rnd, err := buildRenderer(templatePath)
	if err != nil {
		return err
	}

	ctrl := control.New(clk, totalRecords, targetDuration)
	ctrl.OnTerminate(clk.ReleaseAll)

	// A -r duration bound only ever gets checked by a goroutine that is
	// already awake (a spawner/entity between sleeps); in REAL mode that is
	// not enough, since an in-flight realSleep can block on a per-state delay
	// far longer than the run's target duration (SPEC_FULL.md §8 scenario 5).
	// Arm a real wall-clock watchdog that forces Terminate (and, through
	// OnTerminate above, ReleaseAll) once the bound expires, so every blocked
	// realSleep wakes via the clock's done channel instead of running to
	// completion. Not needed in SIM mode: sim time only ever advances through
	// cooperative Sleep calls, which already recheck IsDone on every hop.
	if targetDuration > 0 && mode == clock.Real {
		durationTimer := time.AfterFunc(targetDuration, ctrl.Terminate)
		defer durationTimer.Stop()
	}

	// m is left nil (an untyped interface value) when metrics are disabled,
	// rather than holding a typed-nil *metrics.Metrics: engine.NewSpawner's
	// nil check only works against a genuinely nil interface.
	var m engine.Metrics
	if metricsAddr != "" {
		mm := metrics.New()
		if err := mm.Serve(metricsAddr); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer mm.Shutdown(context.Background())
		logger.Info("serving metrics", "addr", metricsAddr)
		m = mm
	}

	watcher := shutdown.New()
	watcher.OnShutdown(func(reason string) {
		logger.Warn("shutdown signal received, terminating run", "reason", reason)
		ctrl.Terminate()
	})
	watcher.Start()

	logger.Info("starting run", "max_entities", maxEntities, "mode", modeName(mode), "seed", seed)

	sp := engine.NewSpawner(machine, interarrival, clk, ctrl, sampler, snk, rnd, m, logger, maxEntities)
	sp.Run()

	// Stdout carries only the record stream (the default stdout sink writes
	// there too); the run summary goes to stderr alongside the rest of the
	// run's diagnostics so it never corrupts a JSON-lines consumer.
	report.Write(os.Stderr, report.Summary{
		RecordsEmitted: ctrl.RecordCount(),
		EntitiesSeen:   ctrl.TotalSpawned(),
		Elapsed:        ctrl.Elapsed(),
		Terminated:     watcher.Triggered(),
	})

	return nil
}

// buildRenderer returns the default JSON renderer, or a template-backed one
// when -f names a template file.
func buildRenderer(path string) (*render.Renderer, error) {
	if path == "" {
		return render.NewDefault(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}
	return render.NewTemplate(string(raw)), nil
}

func modeName(m clock.Mode) string {
	switch m {
	case clock.Sim:
		return "SIM"
	case clock.SimToReal:
		return "SIM_TO_REAL"
	default:
		return "REAL"
	}
}
