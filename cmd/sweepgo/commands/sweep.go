package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sweepgo/pkg/cache"
	"sweepgo/pkg/core"
	"sweepgo/pkg/generator"
	"sweepgo/pkg/metric"
	"sweepgo/pkg/reporter"
	"sweepgo/pkg/runner"
	"sweepgo/pkg/sweeplog"
)

func newSweepCommand() *cobra.Command {
	var (
		generatorName string
		runnerName    string
		benchmarkName string
		trials        int
		parallel      int
		objectiveName string
		minimize      bool
		outputPath    string
		format        string
		logDir        string
		logFormat     string
		percentile    float64
		metricsDir    string
		launchRPS     float64
		launchBurst   int
		useCache      bool
		seed          int64
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a hyperparameter sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			generatorResolved := resolveString(generatorName, appConfig.Generator)
			if generatorResolved == "" {
				generatorResolved = "strategy"
			}
			runnerResolved := resolveString(runnerName, appConfig.Runner)
			if runnerResolved == "" {
				runnerResolved = "local"
			}
			benchmarkResolved := resolveString(benchmarkName, appConfig.Benchmark)
			if benchmarkResolved == "" {
				benchmarkResolved = "sphere"
			}
			formatResolved := resolveString(format, appConfig.Format)
			if formatResolved == "" {
				formatResolved = "table"
			}
			outputResolved := resolveString(outputPath, appConfig.Output)
			objectiveResolved := resolveString(objectiveName, appConfig.Objective)
			if objectiveResolved == "" {
				objectiveResolved = "loss"
			}
			logDirResolved := resolveString(logDir, appConfig.LogDir)
			logFormatResolved := resolveString(logFormat, appConfig.LogFormat)
			if logFormatResolved == "" {
				logFormatResolved = "archive"
			}
			trialCount := resolveInt(trials, appConfig.Trials, 20)
			parallelCount := resolveInt(parallel, appConfig.Parallel, 4)
			minimizeResolved := minimize || appConfig.Minimize
			seedResolved := seed
			if seedResolved == 0 {
				seedResolved = appConfig.Seed
			}

			space := appConfig.searchSpace()
			if len(space.Parameters) == 0 {
				space = benchmarkSpace(benchmarkResolved)
			}
			if err := space.Validate(); err != nil {
				return err
			}

			gen, err := buildGenerator(generatorResolved, trialCount, minimizeResolved, seedResolved)
			if err != nil {
				return err
			}

			run, err := buildRunner(runnerResolved, benchmarkResolved, space, useCache)
			if err != nil {
				return err
			}

			var metricSource core.MetricSource
			if metricsDir != "" {
				metricSource = &metric.FileSource{Dir: metricsDir}
			}

			stopper := buildStopper(percentile, minimizeResolved)

			var limiter core.RateLimiter
			rps := launchRPS
			if rps <= 0 {
				rps = appConfig.Launch.PerSecond
			}
			if rps > 0 {
				burst := launchBurst
				if burst <= 0 {
					burst = appConfig.Launch.Burst
				}
				l, stop, err := core.NewRateLimiter(rps, burst)
				if err != nil {
					return err
				}
				limiter = l
				defer stop()
			}

			progress := newProgressBar(progressWriter(cmd), trialCount)
			progress.Update(0, 0)

			scheduler := core.Scheduler{
				Name:        space.Name(),
				Space:       space,
				Generator:   gen,
				Runner:      run,
				Metric:      metricSource,
				Stopper:     stopper,
				Limiter:     limiter,
				MaxTrials:   trialCount,
				MaxParallel: parallelCount,
				Objective:   objectiveResolved,
				Minimize:    minimizeResolved,
				Logger:      logger,
				Progress: func(finished, running int) {
					progress.Update(finished, running)
				},
			}

			report, err := scheduler.Run(context.Background())
			if err != nil {
				return err
			}
			if report.Metadata == nil {
				report.Metadata = map[string]string{}
			}
			report.Metadata["benchmark"] = benchmarkResolved

			writer := os.Stdout
			if outputResolved != "" {
				file, err := os.Create(outputResolved)
				if err != nil {
					return err
				}
				defer file.Close()
				writer = file
			}

			rep, err := buildReporter(formatResolved, writer)
			if err != nil {
				return err
			}
			if err := rep.Report(report); err != nil {
				return err
			}

			if logFormatResolved != "none" {
				if logDirResolved == "" {
					logDirResolved = "./logs"
				}
				if err := writeSweepLog(logFormatResolved, logDirResolved, report); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&generatorName, "generator", "", "generator name (random, halton, forest, surrogate, strategy)")
	cmd.Flags().StringVar(&runnerName, "runner", "", "runner name (local, exec, mock)")
	cmd.Flags().StringVar(&benchmarkName, "benchmark", "", "synthetic objective for the local runner")
	cmd.Flags().IntVar(&trials, "trials", 0, "number of trials")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "max trials running at once")
	cmd.Flags().StringVar(&objectiveName, "objective", "", "objective metric name")
	cmd.Flags().BoolVar(&minimize, "minimize", false, "minimize the objective")
	cmd.Flags().StringVar(&outputPath, "output", "", "output file path")
	cmd.Flags().StringVar(&format, "format", "", "output format (table, json, html, markdown, csv)")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "directory for sweep logs")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "log format (archive, json, none)")
	cmd.Flags().Float64Var(&percentile, "percentile", 0, "early stopping percentile (0 disables)")
	cmd.Flags().StringVar(&metricsDir, "metrics-dir", "", "read curves from <dir>/<trial>/<metric> files")
	cmd.Flags().Float64Var(&launchRPS, "launch-rps", 0, "trial launches per second (0 disables)")
	cmd.Flags().IntVar(&launchBurst, "launch-burst", 0, "launch rate limiter burst")
	cmd.Flags().BoolVar(&useCache, "cache", false, "cache curves keyed by parameters")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses wall clock)")

	return cmd
}

func buildGenerator(name string, trialCount int, minimize bool, seed int64) (core.Generator, error) {
	forestCfg := appConfig.Forest
	switch name {
	case "random":
		return &generator.Random{Seed: seed}, nil
	case "halton":
		return &generator.Halton{}, nil
	case "forest":
		return &generator.Forest{
			Candidates:      forestCfg.Candidates,
			MinObservations: forestCfg.MinObservations,
			Minimize:        minimize,
			Trees:           forestCfg.Trees,
			MaxDepth:        forestCfg.MaxDepth,
			Seed:            seed,
		}, nil
	case "surrogate":
		surrogateCfg := appConfig.Surrogate
		acquire, err := buildAcquisition(surrogateCfg.Acquisition)
		if err != nil {
			return nil, err
		}
		return &generator.Surrogate{
			Acquire: acquire,
			AcqParams: generator.AcqParams{
				Beta: surrogateCfg.Beta,
				Xi:   surrogateCfg.Xi,
			},
			Candidates:      surrogateCfg.Candidates,
			MinObservations: surrogateCfg.MinObservations,
			Minimize:        minimize,
			Seed:            seed,
		}, nil
	case "strategy":
		// Quasi-random seeding phase, then the forest takes over.
		seedTrials := trialCount / 4
		if seedTrials < 5 {
			seedTrials = 5
		}
		return &generator.Strategy{
			Phases: []generator.Phase{
				{Generator: &generator.Halton{}, Trials: seedTrials},
				{Generator: &generator.Forest{
					Candidates:      forestCfg.Candidates,
					MinObservations: forestCfg.MinObservations,
					Minimize:        minimize,
					Trees:           forestCfg.Trees,
					MaxDepth:        forestCfg.MaxDepth,
					Seed:            seed,
				}},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
}

func buildAcquisition(name string) (generator.Acquisition, error) {
	switch name {
	case "", "ei":
		return generator.ExpectedImprovement, nil
	case "ucb":
		return generator.UCB, nil
	case "pi":
		return generator.ProbabilityOfImprovement, nil
	case "thompson":
		return generator.ThompsonSampling, nil
	default:
		return nil, fmt.Errorf("unknown acquisition: %s", name)
	}
}

func buildRunner(name string, benchmark string, space core.SearchSpace, useCache bool) (core.Runner, error) {
	var run core.Runner
	switch name {
	case "local":
		objective, ok := runner.Benchmark(benchmark)
		if !ok {
			return nil, fmt.Errorf("unknown benchmark: %s", benchmark)
		}
		localCfg := appConfig.Local
		run = &runner.Local{
			Objective: objective,
			Epochs:    localCfg.Epochs,
			StepDelay: time.Duration(localCfg.StepDelayMill) * time.Millisecond,
		}
	case "exec":
		execCfg := appConfig.Exec
		if execCfg.Command == "" {
			return nil, errors.New("exec runner needs exec.command in config")
		}
		run = &runner.Exec{
			Command:    execCfg.Command,
			Args:       execCfg.Args,
			Dir:        execCfg.Dir,
			MetricsDir: execCfg.MetricsDir,
		}
	case "mock":
		run = &runner.Mock{Curve: []core.Measurement{{Step: 1, Value: 1}}}
	default:
		return nil, fmt.Errorf("unknown runner: %s", name)
	}

	if useCache || appConfig.Cache.Enabled {
		cacheCfg := appConfig.Cache
		store, err := cache.New(cacheCfg.Dir, time.Duration(cacheCfg.TTLDays)*24*time.Hour)
		if err != nil {
			return nil, err
		}
		run = &runner.Cached{Runner: run, Cache: store, Space: space}
	}
	return run, nil
}

func buildStopper(percentile float64, minimize bool) core.StoppingRule {
	stopCfg := appConfig.Stopping
	if percentile > 0 {
		stopCfg.Percentile = percentile
	}
	if stopCfg.Percentile <= 0 {
		return nil
	}
	return core.PercentileRule{
		Percentile:     stopCfg.Percentile,
		MinProgression: stopCfg.MinProgression,
		MinCurves:      stopCfg.MinCurves,
		Minimize:       minimize,
	}
}

func buildReporter(format string, writer io.Writer) (reporter.Reporter, error) {
	switch format {
	case reporter.FormatJSON:
		return reporter.JSONReporter{Writer: writer, Pretty: true}, nil
	case reporter.FormatTable:
		return reporter.TableReporter{Writer: writer}, nil
	case reporter.FormatHTML:
		return reporter.HTMLReporter{Writer: writer}, nil
	case reporter.FormatMarkdown:
		return reporter.MarkdownReporter{Writer: writer}, nil
	case reporter.FormatCSV:
		return reporter.CSVReporter{Writer: writer}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func writeSweepLog(format string, logDir string, report core.SweepReport) error {
	switch format {
	case "archive", "sweep":
		log := sweeplog.FromReport(report)
		_, err := sweeplog.WriteArchive(logDir, log)
		return err
	case "json":
		log := sweeplog.FromReport(report)
		_, err := sweeplog.WriteJSON(logDir, log)
		return err
	case "none":
		return nil
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}
}

// benchmarkSpace is the domain the synthetic objectives are defined on, used
// when the config does not declare a search space.
func benchmarkSpace(benchmark string) core.SearchSpace {
	switch benchmark {
	case "branin":
		return core.SearchSpace{
			NameHint: benchmark,
			Parameters: []core.Parameter{
				{Name: "x1", Type: core.FloatParameter, Min: -5, Max: 10},
				{Name: "x2", Type: core.FloatParameter, Min: 0, Max: 15},
			},
		}
	default:
		return core.SearchSpace{
			NameHint: benchmark,
			Parameters: []core.Parameter{
				{Name: "x1", Type: core.FloatParameter, Min: -5.12, Max: 5.12},
				{Name: "x2", Type: core.FloatParameter, Min: -5.12, Max: 5.12},
			},
		}
	}
}

type progressBar struct {
	writer io.Writer
	total  int
	start  time.Time
	isTTY  bool
}

func newProgressBar(writer io.Writer, total int) *progressBar {
	return &progressBar{
		writer: writer,
		total:  total,
		start:  time.Now(),
		isTTY:  isTerminal(writer),
	}
}

func (p *progressBar) Update(finished int, running int) {
	width := 30
	if p.total <= 0 {
		elapsed := time.Since(p.start).Truncate(time.Second)
		if p.isTTY {
			fmt.Fprintf(p.writer, "\rFinished %d trials (running %d) (%s)", finished, running, elapsed)
		} else {
			fmt.Fprintf(p.writer, "Finished %d trials (running %d) (%s)\n", finished, running, elapsed)
		}
		return
	}

	ratio := float64(finished) / float64(p.total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))

	bar := strings.Repeat("=", filled) + strings.Repeat(".", width-filled)
	percent := int(ratio * 100)
	elapsed := time.Since(p.start).Truncate(time.Second)

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	line := fmt.Sprintf("[%s] %3d%% (%d/%d) running %d %s", barStyle.Render(bar), percent, finished, p.total, running, elapsed)
	if p.isTTY {
		fmt.Fprintf(p.writer, "\r%s", line)
	} else {
		fmt.Fprintf(p.writer, "%s\n", line)
	}

	if finished >= p.total {
		fmt.Fprintln(p.writer)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func progressWriter(cmd *cobra.Command) io.Writer {
	stderr := cmd.ErrOrStderr()
	stdout := cmd.OutOrStdout()

	if isTerminal(stderr) {
		return stderr
	}
	if isTerminal(stdout) {
		return stdout
	}
	return stderr
}

func resolveString(value string, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func resolveInt(value int, fallback int, defaultValue int) int {
	if value > 0 {
		return value
	}
	if fallback > 0 {
		return fallback
	}
	return defaultValue
}
