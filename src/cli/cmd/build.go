package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sofmeright/sboxbuild/src/config"
	"github.com/sofmeright/sboxbuild/src/gitver"
	"github.com/sofmeright/sboxbuild/src/logging"
	"github.com/sofmeright/sboxbuild/src/orchestrator"
	"github.com/sofmeright/sboxbuild/src/output"
	"github.com/sofmeright/sboxbuild/src/stage"
	"github.com/sofmeright/sboxbuild/src/version"
)

// argvLauncher is implemented by launchers that can show the command line
// they would run, which the dry-run plan prints.
type argvLauncher interface {
	Argv(name stage.Name, profile string) []string
}

func runBuild(d deps, args []string) error {
	cfg, err := config.Resolve(config.Input{
		Args:    args,
		Environ: d.environ,
		WorkDir: d.workDir,
		Usage:   d.stdout,
	})
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return nil
		}
		return &ExitError{Code: exitConfigError, Err: fmt.Errorf("%w (see --help)", err)}
	}

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Debug("configuration resolved",
		zap.String("profile", cfg.Profile),
		zap.Int("jobs", cfg.Parallelism),
		zap.Bool("engine", cfg.RunEngine),
		zap.Bool("shaders", cfg.RunShaders),
		zap.Bool("content", cfg.RunContent),
		zap.String("root", cfg.Root),
		zap.String("file", cfg.File),
	)

	w := d.stdout
	color := output.UseColorFor(w)
	start := time.Now()

	output.Banner(w, output.NewBannerInfo(version.Version, version.Commit), color)
	output.ContextBlock(w, buildContextKV(cfg, d.environ, log))

	launcher := d.newLauncher(cfg, log)
	plan := orchestrator.Plan(cfg)

	// --- Plan ---
	printPlan(w, cfg, plan, launcher, color)

	if cfg.DryRun {
		return nil
	}
	if !cfg.AnyStage() {
		fmt.Fprintln(w, "\n==> No stages enabled. Nothing to build.")
		return nil
	}

	// --- Build ---
	output.SectionStart(w, "sbox_build", "Build")
	outcome := orchestrator.New(launcher, orchestrator.WithLogger(log)).Run(cfg)
	output.SectionEnd(w, "sbox_build")
	elapsed := time.Since(start)

	errColor := output.UseColorFor(d.stderr)
	for _, r := range outcome.Failed() {
		output.StageFailure(d.stderr, r.Name.String(), r.Reason(), errColor)
	}

	reports := stageReports(outcome)
	printSummary(w, reports, outcome.Succeeded, elapsed, color)

	if cfg.ReportDir != "" {
		path, err := output.WriteStagesJUnit(cfg.ReportDir, cfg.Profile, reports, elapsed)
		if err != nil {
			log.Warn("writing stage report failed", zap.Error(err))
		} else {
			log.Debug("stage report written", zap.String("path", path))
		}
	}

	var failed []string
	for _, r := range outcome.Failed() {
		failed = append(failed, r.Name.String())
	}
	output.ResultLine(w, outcome.Succeeded, failed, color)

	if !outcome.Succeeded {
		return &ExitError{
			Code:     exitBuildFailed,
			Err:      fmt.Errorf("%w: %s", stage.ErrFailed, strings.Join(failed, ", ")),
			Reported: true,
		}
	}
	return nil
}

// buildContextKV assembles the context block shown under the banner.
func buildContextKV(cfg config.BuildConfiguration, environ []string, log *zap.Logger) []output.KV {
	kv := []output.KV{
		{Key: "Profile", Value: cfg.Profile},
		{Key: "Jobs", Value: strconv.Itoa(cfg.Parallelism)},
		{Key: "Root", Value: cfg.Root},
	}

	info, err := gitver.Detect(cfg.Root)
	if err != nil {
		log.Debug("source identity unavailable", zap.Error(err))
	}
	if info.SHA != "" {
		kv = append(kv, output.KV{Key: "Commit", Value: info.SHA})
	}
	if info.Branch != "" {
		kv = append(kv, output.KV{Key: "Branch", Value: info.Branch})
	}

	env := lookupEnv(environ)
	if pipe := env("CI_PIPELINE_ID"); pipe != "" {
		kv = append(kv, output.KV{Key: "Pipeline", Value: pipe})
	}
	if runner := env("CI_RUNNER_DESCRIPTION"); runner != "" {
		kv = append(kv, output.KV{Key: "Runner", Value: runner})
	}
	if cfg.File != "" {
		kv = append(kv, output.KV{Key: "Config", Value: cfg.File})
	}
	return kv
}

func printPlan(w io.Writer, cfg config.BuildConfiguration, plan []stage.Name, l stage.Launcher, color bool) {
	planned := make(map[stage.Name]bool, len(plan))
	for _, n := range plan {
		planned[n] = true
	}

	sec := output.NewSection(w, "Plan", 0, color)
	for _, n := range stage.All {
		if !planned[n] {
			sec.Row("%-12s%s  %s", n, output.StatusIcon(output.StatusSkipped, color), output.Dimmed("disabled", color))
			continue
		}
		detail := n.Subcommand() + " --config " + cfg.Profile
		if n != stage.Engine && cfg.RunEngine {
			detail += output.Dimmed("  (after engine)", color)
		}
		sec.Row("%-12s→ %s", n, detail)
	}

	if al, ok := l.(argvLauncher); ok && cfg.DryRun {
		sec.Separator()
		for _, n := range plan {
			sec.Row("%s", "+ "+strings.Join(al.Argv(n, cfg.Profile), " "))
		}
	}
	sec.Close()
}

// stageReports lists every stage in pipeline order with its final status.
func stageReports(o orchestrator.Outcome) []output.StageReport {
	skipped := make(map[stage.Name]bool, len(o.Skipped))
	for _, n := range o.Skipped {
		skipped[n] = true
	}

	var reports []output.StageReport
	for _, n := range stage.All {
		if r, ok := o.Result(n); ok {
			reports = append(reports, output.StageReport{
				Name:     n.String(),
				Status:   r.Status(),
				ExitCode: r.ExitCode,
				Reason:   r.Reason(),
				Duration: r.Duration,
			})
			continue
		}
		if skipped[n] {
			reason := "disabled"
			if engine, ok := o.Result(stage.Engine); ok && !engine.Succeeded {
				reason = "engine failed"
			}
			reports = append(reports, output.StageReport{
				Name:   n.String(),
				Status: output.StatusSkipped,
				Reason: reason,
			})
		}
	}
	return reports
}

func printSummary(w io.Writer, reports []output.StageReport, succeeded bool, elapsed time.Duration, color bool) {
	sec := output.NewSection(w, "Summary", elapsed, color)
	for _, r := range reports {
		detail := r.Reason
		if r.Status == output.StatusSuccess {
			detail = "exit status 0"
		}
		sec.StageRow(r.Name, r.Status, detail, r.Duration)
	}
	sec.Separator()
	status := output.StatusSuccess
	if !succeeded {
		status = output.StatusFailed
	}
	output.SummaryTotal(w, elapsed, status, color)
	sec.Close()
}

// lookupEnv returns a getter over "KEY=value" pairs, falling back to the
// process environment when environ is nil.
func lookupEnv(environ []string) func(string) string {
	if environ == nil {
		return os.Getenv
	}
	return func(key string) string {
		prefix := key + "="
		for i := len(environ) - 1; i >= 0; i-- {
			if strings.HasPrefix(environ[i], prefix) {
				return environ[i][len(prefix):]
			}
		}
		return ""
	}
}
