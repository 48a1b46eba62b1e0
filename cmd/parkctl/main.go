// parkctl is the operator console for the parking API: sign in, check
// occupancy, register entries and walk a vehicle through checkout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/Domenick1991/parkinglot/internal/client"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// command is one parkctl subcommand. flags is called once per invocation.
type command struct {
	name    string
	usage   string
	summary string
	flags   func(fs *pflag.FlagSet)
	run     func(ctx context.Context, app *app, fs *pflag.FlagSet) error
}

// app is the state shared by every subcommand.
type app struct {
	client    *client.Client
	server    string
	tokenFile string
	in        io.Reader
	out       io.Writer
	errOut    io.Writer
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *app) saveToken(token string) error {
	if a.tokenFile == "" {
		return nil
	}
	if token == "" {
		if err := os.Remove(a.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.tokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(a.tokenFile, []byte(token), 0o600)
}

func loadToken(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "parkctl", "token")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	var server, token, tokenFile string

	global := pflag.NewFlagSet("parkctl", pflag.ContinueOnError)
	global.SetOutput(io.Discard)
	global.SetInterspersed(false)
	global.StringVar(&server, "server", envOr("PARKCTL_SERVER", "http://localhost:8080"), "API base URL")
	global.StringVar(&token, "token", os.Getenv("PARKCTL_TOKEN"), "bearer token (default: the one saved by login)")
	global.StringVar(&tokenFile, "token-file", envOr("PARKCTL_TOKEN_FILE", defaultTokenFile()), "where login saves the token")
	help := global.BoolP("help", "h", false, "show help")

	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if *help || len(rest) == 0 {
		printHelp(out, global)
		return nil
	}

	cmd := findCommand(rest[0])
	if cmd == nil {
		return fmt.Errorf("unknown command %q, run 'parkctl --help' for usage", rest[0])
	}

	if token == "" {
		token = loadToken(tokenFile)
	}

	a := &app{server: server, tokenFile: tokenFile, in: in, out: out, errOut: errOut}
	guard := client.NewExpiryGuard(
		func(msg string) { fmt.Fprintln(errOut, msg) },
		func(path string) {
			_ = a.saveToken("")
			fmt.Fprintf(errOut, "Sign in again with 'parkctl login' (%s%s).\n", strings.TrimRight(server, "/"), path)
		},
	)
	a.client = client.New(server, guard, client.WithToken(token))

	fs := pflag.NewFlagSet("parkctl "+cmd.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(rest[1:]); err != nil {
		return fmt.Errorf("%s: %w (usage: parkctl %s)", cmd.name, err, cmd.usage)
	}
	return cmd.run(ctx, a, fs)
}

func findCommand(name string) *command {
	for _, cmd := range commands() {
		if cmd.name == name {
			return cmd
		}
	}
	return nil
}

func printHelp(out io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(out, "Usage: parkctl [global flags] <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, cmd := range commands() {
		fmt.Fprintf(w, "  %s\t%s\n", cmd.usage, cmd.summary)
	}
	_ = w.Flush()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Global flags:")
	fmt.Fprint(out, global.FlagUsages())
}
