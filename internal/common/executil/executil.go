package executil

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"
)

// Cmd describes one external command.
type Cmd struct {
	Path string
	Args []string
	Env  map[string]string // added to the inherited environment
	Dir  string
}

// Runner runs external commands. Capabilities take it as a dependency so tests
// can substitute a fake.
type Runner interface {
	Run(ctx context.Context, c Cmd) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, c Cmd) error

func (f RunnerFunc) Run(ctx context.Context, c Cmd) error { return f(ctx, c) }

// ExecRunner runs commands with os/exec, streaming their output line by line
// into the logger at debug level.
type ExecRunner struct {
	Log   zerolog.Logger
	Procs *ProcTracker
}

func NewExecRunner(log zerolog.Logger) *ExecRunner {
	return &ExecRunner{Log: log, Procs: NewProcTracker()}
}

func (r *ExecRunner) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	log := r.Log.With().Str("cmd", c.Path).Logger()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.Path, err)
	}
	if r.Procs != nil {
		r.Procs.Add(cmd)
		defer r.Procs.Remove(cmd)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); stream(log, "stdout", stdout) }()
	go func() { defer wg.Done(); stream(log, "stderr", stderr) }()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", c.Path, err)
	}
	return nil
}

func stream(log zerolog.Logger, name string, r io.Reader) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		log.Debug().Str("stream", name).Msg(s.Text())
	}
}
