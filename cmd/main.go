package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/nsshell/config"
	"github.com/brettbedarf/nsshell/internal/term"
	"github.com/brettbedarf/nsshell/internal/util"
	"github.com/brettbedarf/nsshell/server"
	"github.com/brettbedarf/nsshell/shell"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type options struct {
	verbose        int
	configPath     string
	script         string
	prefixDispatch bool
	echo           bool
	mount          string
	umount         bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "nsshell",
		Short: "Interactive shell over a fixed-capacity directory namespace",
		Long: "nsshell reads keystrokes from stdin (or a script file) and runs the\n" +
			"cur_dir, make_dir, change_dir, remove_dir, dir_tree and clear commands\n" +
			"against an in-memory directory tree. The tree can be mirrored read-only\n" +
			"through FUSE with --mount.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.verbose, "verbose", "v", config.InfoVerbose,
		"Log verbosity level between 1 (error) and 5 (trace). Logs go to stderr.")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML or JSON config override file")
	flags.StringVarP(&opts.script, "script", "s", "", "Replay keystrokes from this file instead of stdin")
	flags.BoolVar(&opts.prefixDispatch, "prefix-dispatch", config.DefaultPrefixDispatch,
		"Match commands by prefix instead of exactly")
	flags.BoolVar(&opts.echo, "echo", config.DefaultEcho,
		"Echo typed keys to stdout. Defaults to off when stdin is a terminal, which echoes on its own.")
	flags.StringVarP(&opts.mount, "mount", "m", "", "Mirror the namespace read-only at this directory through FUSE")
	flags.BoolVarP(&opts.umount, "umount", "u", false,
		"Unmount the mount point first if needed. Useful for debuggers that don't exit properly.")

	return cmd
}

// buildConfig layers flags that were set explicitly over the config file over defaults.
func buildConfig(cmd *cobra.Command, opts *options, stdin io.Reader) (*config.Config, error) {
	override := &config.ConfigOverride{}
	if opts.configPath != "" {
		loaded, err := config.LoadConfigOverrideFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		override = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		override.LogLvl = &opts.verbose
	}
	if flags.Changed("prefix-dispatch") {
		override.PrefixDispatch = &opts.prefixDispatch
	}
	if flags.Changed("echo") {
		override.Echo = &opts.echo
	} else if override.Echo == nil && opts.script == "" && isTerminal(stdin) {
		override.Echo = util.Pointer(false)
	}
	return config.NewConfig(override), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := buildConfig(cmd, opts, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	util.InitializeLogger(cfg.LogLvl, cmd.ErrOrStderr())
	logger := util.GetLogger("main")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	out := term.NewTerminal(cmd.OutOrStdout())
	sh := shell.New(cfg, out)
	logger.Info().
		Str("session", sh.ID().String()).
		Bool("prefixDispatch", cfg.PrefixDispatch).
		Str("script", opts.script).
		Str("mount", opts.mount).
		Msg("nsshell initializing")

	if opts.mount != "" {
		if opts.umount {
			// ignore the error when not already mounted
			exec.Command("fusermount", "-u", opts.mount).Run() // nolint:errcheck
		}
		mirror := server.New(cfg, sh, sh.ID())
		if err := mirror.Serve(opts.mount); err != nil {
			return fmt.Errorf("mounting %s: %w", opts.mount, err)
		}
		defer func() {
			if err := mirror.Unmount(); err != nil {
				logger.Error().Err(err).Msg("Failed to unmount filesystem")
				return
			}
			logger.Info().Msg("Filesystem unmounted successfully")
		}()
	}

	in := cmd.InOrStdin()
	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		in = f
	}

	sh.Start()
	done := make(chan error, 1)
	go func() {
		done <- term.Pump(ctx, in, sh)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		// the pump may be stuck in a blocking read; leave it behind
		logger.Info().Msg("Received signal, shutting down")
		err = nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("reading input: %w", err)
	}
	if err := out.Err(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
