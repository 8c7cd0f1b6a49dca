// Command bark is the BarkCard client. It hosts the session monitor and
// drives the app's screens from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/and161185/barkcard/internal/config"
	"github.com/and161185/barkcard/internal/remote"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

var errUsage = errors.New("usage")

const usageText = `bark CLI
Usage:
  bark [-addr HOST:PORT] [-cacert file | -insecure | -plaintext] [-config-dir dir] [-v] <cmd> [args]

Commands:
  version
  register          -email <email> [-p <password>]
  verify            -token <token>
  login             -email <email> [-p <password>]     (saves session)
  logout
  status                                               (routed screen and profile)
  watch                                                (prints every screen change)
  recheck                                              (reload email verification)
  complete-profile  -first -last -mobile -student -region -province -municipality -barangay -zip [-middle]
  transactions      [-filter all|purchases|reloads] [-follow]
  deactivate        [-confirm AGREED]
  support           -email -service -category -merchant -subject -message [-order]
`

// main dispatches subcommands until SIGINT/SIGTERM.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		fail(err)
	}
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Client
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	log    *zap.Logger
	dial   []grpc.DialOption
	lines  *lineReader
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer, extra ...grpc.DialOption) error {
	fs := flag.NewFlagSet("bark", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {}
	cfg, err := config.RegisterClient(fs, remote.DefaultConfigDir())
	if err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 {
		return errUsage
	}

	a := &app{
		cfg:    cfg,
		in:     in,
		out:    out,
		errOut: errOut,
		log:    newLogger(errOut, cfg.Verbose),
		dial:   extra,
		lines:  newLineReader(in),
	}
	defer func() { _ = a.log.Sync() }()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "version":
		fmt.Fprintf(out, "bark %s (%s)\n", version, buildDate)
		return nil
	case "register":
		return a.register(ctx, rest)
	case "verify":
		return a.verify(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx, rest)
	case "status":
		return a.status(ctx, rest)
	case "watch":
		return a.watch(ctx, rest)
	case "recheck":
		return a.recheck(ctx, rest)
	case "complete-profile":
		return a.completeProfile(ctx, rest)
	case "transactions":
		return a.transactions(ctx, rest)
	case "deactivate":
		return a.deactivate(ctx, rest)
	case "support":
		return a.support(ctx, rest)
	default:
		return errUsage
	}
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

func (a *app) dialConfig() remote.DialConfig {
	return remote.DialConfig{
		Addr:               a.cfg.Addr,
		CACert:             a.cfg.CACert,
		InsecureSkipVerify: a.cfg.InsecureSkipVerify,
		Plaintext:          a.cfg.Plaintext,
	}
}

func (a *app) connect(ctx context.Context) (*remote.Client, error) {
	return remote.Connect(ctx, a.dialConfig(), remote.NewSessionStore(a.cfg.ConfigDir), a.log, a.dial...)
}

func fail(err error) {
	if s, ok := status.FromError(err); ok {
		fmt.Fprintf(os.Stderr, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
