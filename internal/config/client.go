package config

import (
	"flag"
	"time"
)

// Client configures the bark CLI.
type Client struct {
	Addr               string
	CACert             string
	InsecureSkipVerify bool
	Plaintext          bool
	ConfigDir          string
	Timeout            time.Duration
	Verbose            bool
}

// RegisterClient binds the client flags on fs with env defaults. The
// returned Client is filled in when fs is parsed; err reports malformed
// environment values.
func RegisterClient(fs *flag.FlagSet, defaultDir string) (*Client, error) {
	return registerClient(newEnv(), fs, defaultDir)
}

func registerClient(e *env, fs *flag.FlagSet, defaultDir string) (*Client, error) {
	c := &Client{}
	fs.StringVar(&c.Addr, "addr", e.String("SERVER", "localhost:8443"), "server addr")
	fs.StringVar(&c.CACert, "cacert", e.String("CACERT", ""), "CA cert (PEM)")
	fs.BoolVar(&c.InsecureSkipVerify, "insecure", e.Bool("INSECURE", false), "skip cert verify (dev)")
	fs.BoolVar(&c.Plaintext, "plaintext", e.Bool("PLAINTEXT", false), "connect without TLS (dev)")
	fs.StringVar(&c.ConfigDir, "config-dir", e.String("CONFIG_DIR", defaultDir), "session directory")
	fs.DurationVar(&c.Timeout, "timeout", e.Duration("TIMEOUT", 30*time.Second), "timeout for one-shot commands")
	fs.BoolVar(&c.Verbose, "v", e.Bool("VERBOSE", false), "debug logging")
	return c, e.err()
}
