package exiftool

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Runner abstracts command execution so the adapter can be tested without a
// real exiftool binary on the host.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Locate resolves the exiftool binary on PATH. The whole run depends on it,
// so a missing binary is reported to the caller as a hard error.
func Locate() (string, error) {
	path, err := exec.LookPath("exiftool")
	if err != nil {
		return "", fmt.Errorf("exiftool not found on PATH: %w", err)
	}
	return path, nil
}

var (
	primaryArgs  = []string{"-a", "-u", "-g", "-j", "-x", "Thumbnail*"}
	fallbackArgs = []string{"-j"}
)

// Tool invokes exiftool against single files and decodes its JSON output.
type Tool struct {
	binary  string
	runner  Runner
	timeout time.Duration
}

func New(binary string) *Tool {
	return &Tool{binary: binary, runner: execRunner{}, timeout: 30 * time.Second}
}

// NewWithRunner is used by tests to substitute the process execution.
func NewWithRunner(binary string, r Runner) *Tool {
	return &Tool{binary: binary, runner: r, timeout: 30 * time.Second}
}

// Extract runs the full grouped invocation first and retries once with the
// minimal flag set when that fails. Both failing means the file yields no
// tool metadata, which is not fatal for the run.
func (t *Tool) Extract(ctx context.Context, path string) (map[string]any, error) {
	meta, err := t.run(ctx, primaryArgs, path)
	if err == nil {
		return meta, nil
	}
	meta, fallbackErr := t.run(ctx, fallbackArgs, path)
	if fallbackErr != nil {
		return nil, fmt.Errorf("exiftool failed for %s: %w", path, err)
	}
	return meta, nil
}

func (t *Tool) run(ctx context.Context, args []string, path string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	full := append(append([]string{}, args...), path)
	out, err := t.runner.Run(ctx, t.binary, full...)
	if err != nil {
		return nil, fmt.Errorf("run exiftool: %w", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		return nil, fmt.Errorf("decode exiftool output: %w", err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("exiftool returned no entries for %s", path)
	}
	return decoded[0], nil
}
