// File path: internal/common/process/process.go
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nicodishanthj/spinyleaf/internal/common"
)

// RunConfig describes a single invocation of an external tool such as the
// EnergyPlus engine.
type RunConfig struct {
	Name    string
	Command string
	Args    []string
	Env     []string
	WorkDir string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Result summarises a finished invocation.
type Result struct {
	ExitCode int
	Duration time.Duration
	// Tail holds the last stderr lines, newest last.
	Tail []string
}

// ExitError reports a non-zero exit together with the captured stderr tail.
type ExitError struct {
	Name     string
	ExitCode int
	Tail     []string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("process: %s exited with code %d", e.Name, e.ExitCode)
	if len(e.Tail) > 0 {
		msg += ": " + e.Tail[len(e.Tail)-1]
	}
	return msg
}

const tailLines = 20

// Run starts the command, forwards stdout/stderr lines to the logger, and
// waits for exit or for the timeout/context to expire.
func Run(ctx context.Context, cfg RunConfig) (Result, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return Result{}, errors.New("process: command required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = common.Logger()
	}
	name := componentName(cfg)
	logger.Info("process: launching", "process", name, "command", cfg.Command, "args", strings.Join(cfg.Args, " "))

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("process: stdout pipe %s: %w", name, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("process: stderr pipe %s: %w", name, err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("process: start %s: %w", name, err)
	}

	baseAttrs := []slog.Attr{
		slog.String("component", "process/"+strings.ReplaceAll(strings.ToLower(name), " ", "_")),
		slog.String("process", name),
	}
	tail := &lineTail{max: tailLines}
	var wg sync.WaitGroup
	forward := func(pipe io.Reader, stream string, level slog.Level, keep bool) {
		defer wg.Done()
		scanner := bufio.NewScanner(pipe)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		attrs := append(append([]slog.Attr(nil), baseAttrs...), slog.String("stream", stream))
		for scanner.Scan() {
			line := scanner.Text()
			if keep {
				tail.add(line)
			}
			logger.LogAttrs(context.Background(), level, line, attrs...)
		}
		if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.LogAttrs(context.Background(), slog.LevelWarn, "process log stream error", append(attrs, slog.Any("error", err))...)
		}
	}
	wg.Add(2)
	go forward(stdoutPipe, "stdout", slog.LevelDebug, false)
	go forward(stderrPipe, "stderr", slog.LevelWarn, true)
	wg.Wait()

	waitErr := cmd.Wait()
	result := Result{Duration: time.Since(start), Tail: tail.lines()}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("process: %s interrupted after %s: %w", name, result.Duration.Round(time.Millisecond), ctxErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return result, &ExitError{Name: name, ExitCode: result.ExitCode, Tail: result.Tail}
		}
		return result, fmt.Errorf("process: wait %s: %w", name, waitErr)
	}
	logger.Info("process: finished", "process", name, "dur", result.Duration)
	return result, nil
}

// BinaryPath resolves an executable path using the system PATH.
func BinaryPath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("process: binary name required")
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("process: locate %s: %w", name, err)
	}
	return filepath.Clean(path), nil
}

func componentName(cfg RunConfig) string {
	if name := strings.TrimSpace(cfg.Name); name != "" {
		return name
	}
	if base := filepath.Base(strings.TrimSpace(cfg.Command)); base != "" && base != "." {
		return base
	}
	return "process"
}

type lineTail struct {
	mu    sync.Mutex
	max   int
	items []string
}

func (t *lineTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, line)
	if len(t.items) > t.max {
		t.items = t.items[len(t.items)-t.max:]
	}
}

func (t *lineTail) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.items...)
}
