package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// SSHCommand executes commands through the local ssh client binary.
// The remote command travels as a single argument; nothing is interpreted by a local shell.
type SSHCommand struct {
	path   string
	opts   Options
	logger *zap.Logger
}

// NewSSHCommand resolves opts.Binary on PATH. A missing binary wraps ErrDependencyMissing.
func NewSSHCommand(opts Options, logger *zap.Logger) (*SSHCommand, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	binary := opts.Binary
	if binary == "" {
		binary = "ssh"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: ssh client %q: %w", ErrDependencyMissing, binary, err)
	}
	if opts.Port == 0 {
		opts.Port = 22
	}
	return &SSHCommand{path: path, opts: opts, logger: logger}, nil
}

// Args builds the argument vector for one invocation.
func (s *SSHCommand) Args(t Target, command string) []string {
	args := []string{"-o", "BatchMode=yes"}
	if s.opts.ConnectTimeout > 0 {
		secs := int(s.opts.ConnectTimeout.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		args = append(args, "-o", "ConnectTimeout="+strconv.Itoa(secs))
	}
	switch {
	case s.opts.InsecureIgnoreHostKey:
		args = append(args, "-o", "StrictHostKeyChecking=no", "-o", "UserKnownHostsFile=/dev/null")
	case s.opts.KnownHosts != "":
		args = append(args, "-o", "UserKnownHostsFile="+s.opts.KnownHosts)
	}
	port := t.Port
	if port == 0 {
		port = s.opts.Port
	}
	args = append(args, "-p", strconv.Itoa(port))
	for _, f := range s.opts.IdentityFiles {
		args = append(args, "-i", f)
	}
	return append(args, "--", t.Destination(), command)
}

// Execute runs command on t and returns its standard output.
func (s *SSHCommand) Execute(ctx context.Context, t Target, command string) (*Result, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to run ssh: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.path, s.Args(t, command)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// do not wait forever on pipes held open by a killed child's descendants
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	s.logger.Debug("ssh command finished",
		zap.String("destination", t.Destination()),
		zap.String("command", command),
		zap.Duration("duration", elapsed),
		zap.Error(err))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ssh %s: %w", t.Destination(), ctxErr)
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return nil, &ExitError{Code: ee.ExitCode(), Stderr: stderr.String()}
		}
		return nil, fmt.Errorf("ssh %s: %w", t.Destination(), err)
	}
	return &Result{Output: stdout.String(), Duration: elapsed}, nil
}
