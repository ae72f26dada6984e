package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// NativeSSH executes commands with the in-process SSH client. A fresh connection is dialed
// per command; no session is shared between scrapes.
type NativeSSH struct {
	opts            Options
	auth            []ssh.AuthMethod
	hostKeyCallback ssh.HostKeyCallback
	logger          *zap.Logger
	dial            func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewNativeSSH loads credentials from the ssh-agent at SSH_AUTH_SOCK and from
// opts.IdentityFiles, and the host key policy from opts. Having no credential at all, or an
// unreadable known_hosts file, wraps ErrDependencyMissing.
func NewNativeSSH(opts Options, logger *zap.Logger) (*NativeSSH, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Port == 0 {
		opts.Port = 22
	}

	var auth []ssh.AuthMethod
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		conn, err := net.Dial("unix", sock)
		if err != nil {
			logger.Warn("ssh-agent unreachable, continuing with key files", zap.String("socket", sock), zap.Error(err))
		} else {
			auth = append(auth, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	var signers []ssh.Signer
	for _, f := range opts.IdentityFiles {
		pem, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read identity file %s: %w", ErrDependencyMissing, f, err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("%w: parse identity file %s: %w", ErrDependencyMissing, f, err)
		}
		signers = append(signers, signer)
	}
	if len(signers) > 0 {
		auth = append(auth, ssh.PublicKeys(signers...))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("%w: no ssh-agent and no identity files configured", ErrDependencyMissing)
	}

	var hostKeyCallback ssh.HostKeyCallback
	if opts.InsecureIgnoreHostKey {
		logger.Warn("ssh host key verification disabled")
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		cb, err := knownhosts.New(opts.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("%w: known_hosts %s: %w", ErrDependencyMissing, opts.KnownHosts, err)
		}
		hostKeyCallback = cb
	}

	d := &net.Dialer{Timeout: opts.ConnectTimeout}
	return &NativeSSH{
		opts:            opts,
		auth:            auth,
		hostKeyCallback: hostKeyCallback,
		logger:          logger,
		dial:            d.DialContext,
	}, nil
}

// Execute dials t, runs command in one session and returns its standard output.
func (n *NativeSSH) Execute(ctx context.Context, t Target, command string) (*Result, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to dial: %w", err)
	}
	start := time.Now()
	addr := t.HostPort(n.opts.Port)

	conn, err := n.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	// closing the connection unblocks the handshake and the session when ctx ends
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if n.opts.ConnectTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(n.opts.ConnectTimeout))
	}
	clientConfig := &ssh.ClientConfig{
		User:            t.User,
		Auth:            n.auth,
		HostKeyCallback: n.hostKeyCallback,
		Timeout:         n.opts.ConnectTimeout,
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		_ = conn.Close()
		return nil, n.wrap(ctx, t, fmt.Errorf("handshake: %w", err))
	}
	_ = conn.SetDeadline(time.Time{})
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, n.wrap(ctx, t, fmt.Errorf("open session: %w", err))
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	err = session.Run(command)
	elapsed := time.Since(start)
	n.logger.Debug("ssh session finished",
		zap.String("destination", t.Destination()),
		zap.String("command", command),
		zap.Duration("duration", elapsed),
		zap.Error(err))

	if err != nil {
		var ee *ssh.ExitError
		if errors.As(err, &ee) {
			return nil, &ExitError{Code: ee.ExitStatus(), Stderr: stderr.String()}
		}
		return nil, n.wrap(ctx, t, err)
	}
	return &Result{Output: stdout.String(), Duration: elapsed}, nil
}

func (n *NativeSSH) wrap(ctx context.Context, t Target, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("ssh %s: %w", t.Destination(), ctxErr)
	}
	return fmt.Errorf("ssh %s: %w", t.Destination(), err)
}
