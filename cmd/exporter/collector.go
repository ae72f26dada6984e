package exporter

import (
	"github.com/spf13/cobra"
)

func initCollectorFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.Duration("collector.timeout", defaultCfg.Collector.Timeout, "-> Per-endpoint remote command timeout, 0 disables it")
	f.Int("collector.concurrency", defaultCfg.Collector.Concurrency, "-> Endpoints scraped in parallel")
	f.Bool("collector.self_metrics", defaultCfg.Collector.SelfMetrics, "-> Expose endpoint failure and parse mismatch counters")
}

func initSSHFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.String("ssh.transport", defaultCfg.SSH.Transport, "-> Remote transport [exec,native]")
	f.String("ssh.binary", defaultCfg.SSH.Binary, "-> ssh client used by the exec transport")
	f.Int("ssh.port", defaultCfg.SSH.Port, "-> Default SSH port, overridden per cluster by port:")
	f.Duration("ssh.connect_timeout", defaultCfg.SSH.ConnectTimeout, "-> SSH connect timeout")
	f.StringSlice("ssh.identity_files", defaultCfg.SSH.IdentityFiles, "-> Private key files")
	f.String("ssh.known_hosts", defaultCfg.SSH.KnownHosts, "-> known_hosts file used to verify cluster host keys")
	f.Bool("ssh.insecure_ignore_host_key", defaultCfg.SSH.InsecureIgnoreHostKey, "-> Skip host key verification")
}
