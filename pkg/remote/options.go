package remote

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ps-net-stats/pkg/config"
)

// Options transport settings shared by both executors.
type Options struct {
	Binary                string
	Port                  int
	ConnectTimeout        time.Duration
	IdentityFiles         []string
	KnownHosts            string
	InsecureIgnoreHostKey bool
}

// OptionsFromConfig maps the ssh settings section onto Options.
func OptionsFromConfig(c config.SSHConfig) Options {
	return Options{
		Binary:                c.Binary,
		Port:                  c.Port,
		ConnectTimeout:        c.ConnectTimeout,
		IdentityFiles:         c.IdentityFiles,
		KnownHosts:            c.KnownHosts,
		InsecureIgnoreHostKey: c.InsecureIgnoreHostKey,
	}
}

// New builds the executor selected by c.Transport.
func New(c config.SSHConfig, logger *zap.Logger) (Executor, error) {
	opts := OptionsFromConfig(c)
	switch c.Transport {
	case "", "exec":
		return NewSSHCommand(opts, logger)
	case "native":
		return NewNativeSSH(opts, logger)
	}
	return nil, fmt.Errorf("unknown ssh transport %q", c.Transport)
}
