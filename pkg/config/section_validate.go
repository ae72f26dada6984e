package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Validate checks that Addr is ":port" or "ip:port".
func (h *ServerConfig) Validate() error {
	if err := valid.Struct(h); err != nil {
		return err
	}
	if _, err := net.ResolveTCPAddr("tcp", h.Addr); err != nil {
		return fmt.Errorf("server.addr format invalid (expected :port or ip:port), got %s: %w", h.Addr, err)
	}
	if h.MetricsPath == "/" || h.MetricsPath == "/health" {
		return fmt.Errorf("server.metrics_path %q collides with a built-in route", h.MetricsPath)
	}
	return nil
}

// Validate bounds the per-endpoint timeout. Anything above an hour is almost certainly a typo.
func (col *CollectorConfig) Validate() error {
	if err := valid.Struct(col); err != nil {
		return err
	}
	if col.Timeout > time.Hour {
		return fmt.Errorf("collector.timeout must be at most 1h, got %s", col.Timeout)
	}
	return nil
}

// Validate checks the transport specific fields.
// exec needs a binary name, native needs a host key policy.
func (s *SSHConfig) Validate() error {
	if err := valid.Struct(s); err != nil {
		return err
	}
	switch s.Transport {
	case "exec":
		if strings.TrimSpace(s.Binary) == "" {
			return errors.New("ssh.binary cannot be empty when ssh.transport is exec")
		}
	case "native":
		if s.KnownHosts == "" && !s.InsecureIgnoreHostKey {
			return errors.New("ssh.known_hosts is required unless ssh.insecure_ignore_host_key is set")
		}
	}
	seen := map[string]bool{}
	for _, f := range s.IdentityFiles {
		if strings.TrimSpace(f) == "" {
			return errors.New("ssh.identity_files cannot contain empty string")
		}
		if seen[f] {
			return fmt.Errorf("ssh.identity_files duplicated entry: %q", f)
		}
		seen[f] = true
	}
	return nil
}
