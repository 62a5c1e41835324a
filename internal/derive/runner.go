package derive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"odea/internal/diag"
)

// Conversion timeouts. Long-running rules (the ffmpeg family) get an hour;
// everything else must finish quickly or is considered wedged.
const (
	defaultTimeout     = 30 * time.Second
	longRunningTimeout = time.Hour
)

// commandContext builds the external converter invocation. Tests replace it
// to avoid shelling out to real tools.
var commandContext = exec.CommandContext

// Outcome classifies how a conversion ended.
type Outcome int

const (
	// Success means the converter exited zero.
	Success Outcome = iota
	// SoftSuccess means the converter exited nonzero but still produced the
	// target file. Some tools report noisy exit codes on usable output, so
	// the result is kept and the anomaly recorded.
	SoftSuccess
	// Failure means the conversion produced nothing usable, including the
	// timeout case.
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case SoftSuccess:
		return "soft-success"
	default:
		return "failure"
	}
}

// Result reports one conversion attempt.
type Result struct {
	Outcome Outcome
	// Target is the derivative path, set for Success and SoftSuccess.
	Target string
	// Cached is true when the target already existed and the converter was
	// never invoked.
	Cached bool
	// ExitCode is the converter's exit status, -1 when it never ran or was
	// killed.
	ExitCode int
}

// Runner executes conversion rules through the shell.
type Runner struct {
	reporter *diag.Reporter

	// Overwrite re-runs conversions whose target already exists. Off by
	// default so repeated derive passes skip completed work.
	Overwrite bool
}

// NewRunner returns a Runner reporting anomalies to the given reporter.
func NewRunner(reporter *diag.Reporter) *Runner {
	return &Runner{reporter: reporter}
}

// Run executes rule against source, writing to target. frame selects a page
// or time offset for rules whose template uses it; empty means the first.
//
// When the target already exists and Overwrite is off, the converter is not
// invoked and the cached result is returned. A timeout is always a failure,
// even if a partial target was left behind.
func (r *Runner) Run(ctx context.Context, rule Rule, source, target, frame string) (Result, error) {
	if _, err := os.Stat(target); err == nil && !r.Overwrite {
		return Result{Outcome: Success, Target: target, Cached: true}, nil
	}

	if frame == "" {
		frame = "0"
	}
	command := expandTemplate(rule.Template, source, target, frame)

	timeout := defaultTimeout
	if rule.LongRunning {
		timeout = longRunningTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := commandContext(runCtx, "/bin/sh", "-c", command)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()

	if err == nil {
		return Result{Outcome: Success, Target: target, ExitCode: 0}, nil
	}

	if runCtx.Err() == context.DeadlineExceeded {
		r.report(diag.KindConversionTimeout, target, fmt.Sprintf("rule %s timed out after %s", rule.Name, timeout), err)
		return Result{Outcome: Failure, ExitCode: -1}, fmt.Errorf("rule %s timed out after %s: %s", rule.Name, timeout, source)
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	if info, statErr := os.Stat(target); statErr == nil && info.Mode().IsRegular() {
		r.report(diag.KindConversionSoftSuccess, target,
			fmt.Sprintf("rule %s exited %d but produced the target", rule.Name, exitCode), err)
		return Result{Outcome: SoftSuccess, Target: target, ExitCode: exitCode}, nil
	}

	detail := strings.TrimSpace(stderr.String())
	if detail == "" {
		detail = err.Error()
	}
	r.report(diag.KindConversionFailure, target, fmt.Sprintf("rule %s: %s", rule.Name, detail), err)
	return Result{Outcome: Failure, ExitCode: exitCode}, fmt.Errorf("rule %s failed on %s: %w", rule.Name, source, err)
}

func (r *Runner) report(kind diag.Kind, path, detail string, err error) {
	r.reporter.Report(diag.Event{Kind: kind, Path: path, Detail: detail, Err: err})
}

func expandTemplate(template, source, target, frame string) string {
	replacer := strings.NewReplacer(
		"{source}", source,
		"{target}", target,
		"{frame}", frame,
	)
	return replacer.Replace(template)
}
