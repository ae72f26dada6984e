// Package remote runs the fixed diagnostic commands on a cluster over SSH.
//
// Two transports implement Executor: SSHCommand drives the system ssh client with an
// explicit argument vector, NativeSSH speaks the protocol through golang.org/x/crypto/ssh.
// A non-nil error from Execute means the command produced no usable output; callers treat
// it as a soft failure for that endpoint.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// CmdClusterIdentity prints the cluster identity, including a "Name:" line.
	CmdClusterIdentity = "isi cluster identity view"
	// CmdNetStats runs netstat -iW on every node, each output line prefixed with "<host>-<lnn>:".
	CmdNetStats = "sudo /usr/bin/isi_for_array -sX netstat -iW"
)

// ErrDependencyMissing the transport cannot be built on this host (no ssh binary, no credentials).
var ErrDependencyMissing = errors.New("remote transport unavailable")

// Target one cluster management address and the account used to reach it.
// Port zero means the transport default.
type Target struct {
	Address string
	User    string
	Port    int
}

// Destination returns user@address.
func (t Target) Destination() string {
	return t.User + "@" + t.Address
}

// HostPort returns address:port for dialing, using defaultPort when Port is unset.
func (t Target) HostPort(defaultPort int) string {
	port := t.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(t.Address, strconv.Itoa(port))
}

// Validate rejects values that could be read as ssh options or split into extra arguments.
func (t Target) Validate() error {
	fields := []struct{ name, v string }{{"endpoint", t.Address}, {"user", t.User}}
	for _, f := range fields {
		name, v := f.name, f.v
		switch {
		case v == "":
			return fmt.Errorf("%s is empty", name)
		case strings.HasPrefix(v, "-"):
			return fmt.Errorf("%s %q must not start with '-'", name, v)
		case strings.ContainsAny(v, " \t\r\n@"):
			return fmt.Errorf("%s %q must not contain whitespace or '@'", name, v)
		}
	}
	return nil
}

// Result captured standard output of one successful command.
type Result struct {
	Output   string
	Duration time.Duration
}

// Executor runs one command on one target and blocks until it finishes or ctx is done.
type Executor interface {
	Execute(ctx context.Context, t Target, command string) (*Result, error)
}

// ExitError the remote command ran but exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("remote command exited with status %d", e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
