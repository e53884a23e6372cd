// Package monitor drives one deployment session from trigger to terminal
// resolution. It triggers a deployment through the forge client, then
// polls status and log output on a fixed interval until the platform
// reports a terminal status or the session ceiling elapses, streaming
// incremental log output to the caller as it arrives.
package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/forgeline/forge-deploy/pkg/forge"
	"github.com/forgeline/forge-deploy/pkg/logging"
	"github.com/forgeline/forge-deploy/pkg/types"
)

const (
	// DefaultInterval between poll cycles
	DefaultInterval = 10 * time.Second

	// DefaultTimeout is the session ceiling
	DefaultTimeout = 10 * time.Minute
)

// Terminal status vocabularies. The platform's status vocabulary is
// open-ended, so anything outside these two sets counts as in-progress.
var (
	terminalSuccess = map[string]bool{
		"finished": true,
	}
	terminalFailure = map[string]bool{
		"failed":       true,
		"failed-build": true,
		"cancelled":    true,
	}
)

// Options configures a Monitor. Zero values fall back to defaults.
type Options struct {
	// Interval between poll cycles (default 10s)
	Interval time.Duration

	// Timeout is the session ceiling (default 10m)
	Timeout time.Duration

	// Out receives progress and incremental log output (default os.Stdout)
	Out io.Writer

	// ErrOut receives the diagnostic log dump on terminal failure (default os.Stderr)
	ErrOut io.Writer
}

// Monitor observes a single deployment session. It owns the log cursor
// and last-observed status for the lifetime of one Run call; a Monitor
// must not be shared across concurrent sessions.
type Monitor struct {
	client   *forge.Client
	interval time.Duration
	timeout  time.Duration
	out      io.Writer
	errOut   io.Writer
}

// New creates a Monitor for the given client.
func New(client *forge.Client, opts Options) *Monitor {
	m := &Monitor{
		client:   client,
		interval: opts.Interval,
		timeout:  opts.Timeout,
		out:      opts.Out,
		errOut:   opts.ErrOut,
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	if m.timeout <= 0 {
		m.timeout = DefaultTimeout
	}
	if m.out == nil {
		m.out = os.Stdout
	}
	if m.errOut == nil {
		m.errOut = os.Stderr
	}
	return m
}

// Run triggers a deployment and polls it to resolution. It returns a
// Result for every session that got past the trigger, alongside an error
// when the session resolved FAILED or TIMED_OUT. A failed trigger is
// fatal and returns a nil Result.
func (m *Monitor) Run(ctx context.Context) (*types.Result, error) {
	start := time.Now()

	fmt.Fprintln(m.out, "Triggering deployment...")
	id, err := m.client.CreateDeployment(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to trigger deployment: %w", err)
	}
	fmt.Fprintf(m.out, "Deployment %s started\n", id)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var (
		cursor     int
		lastStatus string
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-ticker.C:
			// The ceiling is checked before any network call so no
			// request goes out after expiry.
			if time.Since(start) >= m.timeout {
				ticker.Stop()
				result := &types.Result{
					DeploymentID: string(id),
					State:        types.StateTimedOut,
					LastStatus:   lastStatus,
					Elapsed:      time.Since(start),
				}
				return result, fmt.Errorf("timed out after %s waiting for deployment %s to finish", m.timeout, id)
			}

			status, err := m.client.GetDeployment(ctx, id)
			if err != nil {
				// Status-fetch failures are transient; skip this cycle.
				logging.Warn("status fetch failed, will retry",
					"deployment", string(id), "error", err.Error())
				continue
			}

			if status != lastStatus {
				fmt.Fprintf(m.out, "Deployment status: %s\n", status)
				lastStatus = status
			}

			// A failing deployment gets a dedicated full-log dump below,
			// so the incremental fetch is skipped for that case.
			if !terminalFailure[status] {
				cursor = m.emitNewOutput(ctx, id, cursor)
			}

			switch {
			case terminalSuccess[status]:
				ticker.Stop()
				return &types.Result{
					DeploymentID: string(id),
					State:        types.StateSucceeded,
					LastStatus:   status,
					Elapsed:      time.Since(start),
				}, nil

			case terminalFailure[status]:
				ticker.Stop()
				m.dumpFullLog(ctx, id)
				result := &types.Result{
					DeploymentID: string(id),
					State:        types.StateFailed,
					LastStatus:   status,
					Elapsed:      time.Since(start),
				}
				return result, fmt.Errorf("deployment %s ended with status %q", id, status)
			}
		}
	}
}

// emitNewOutput fetches the current log and writes the suffix beyond the
// cursor, returning the advanced cursor. Fetch failures are best-effort:
// the cursor is left unchanged and the cycle continues.
func (m *Monitor) emitNewOutput(ctx context.Context, id forge.DeploymentID, cursor int) int {
	output, err := m.client.GetDeploymentLog(ctx, id)
	if err != nil {
		logging.Warn("log fetch failed, skipping output this cycle",
			"deployment", string(id), "error", err.Error())
		return cursor
	}
	return writeIncrement(m.out, output, cursor)
}

// writeIncrement emits the part of output beyond cursor and returns the
// new cursor. The cursor never decreases: if the platform returns a
// shorter log than previously observed, nothing is emitted. Increments
// that are entirely whitespace advance the cursor but are not displayed.
func writeIncrement(w io.Writer, output string, cursor int) int {
	if len(output) <= cursor {
		return cursor
	}
	increment := output[cursor:]
	if strings.TrimSpace(increment) != "" {
		fmt.Fprint(w, increment)
	}
	return len(output)
}

// dumpFullLog fetches the complete deployment log once and writes it to
// the error stream as diagnostic output.
func (m *Monitor) dumpFullLog(ctx context.Context, id forge.DeploymentID) {
	output, err := m.client.GetDeploymentLog(ctx, id)
	if err != nil {
		logging.Warn("could not fetch final deployment log",
			"deployment", string(id), "error", err.Error())
		return
	}
	if output == "" {
		return
	}
	fmt.Fprintln(m.errOut, "--- deployment log ---")
	fmt.Fprintln(m.errOut, output)
}
