package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"nexus/internal/launch"
	"nexus/internal/logging"
	"nexus/internal/nexus"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var documented launch.ParsedOptions

	ctx := newCommandContext(&configFlag)

	// The root parses its own argv so malformed bootstrap flags are absorbed
	// instead of failing the run. Subcommands keep cobra's flag parsing.
	rootCmd := &cobra.Command{
		Use:   "nexus",
		Short: "Embed a text document with an OpenAI-compatible embeddings API",
		Long: "nexus reads the document named by [job] input in the configuration, splits it\n" +
			"into token-bounded chunks when needed, embeds each chunk, and writes the\n" +
			"averaged vector as JSON to [job] output.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) || !cmd.HasParent() {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			inv := parseRootArgs(args)
			if inv.help {
				return cmd.Help()
			}
			configFlag = inv.configPath
			return runPipeline(cmd, ctx, inv.opts)
		},
	}

	launch.BindFlags(rootCmd.Flags(), &documented)
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}

// rootInvocation is the lenient reading of the root command line.
type rootInvocation struct {
	opts       launch.ParsedOptions
	configPath string
	help       bool
}

// parseRootArgs never fails: the bootstrap flags come from launch.Parse and
// --config and --help are picked out with the same permissive rules.
func parseRootArgs(args []string) rootInvocation {
	inv := rootInvocation{opts: launch.Parse(args)}

	fs := pflag.NewFlagSet("nexus", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist.UnknownFlags = true
	var ignored launch.ParsedOptions
	launch.BindFlags(fs, &ignored)
	fs.StringVarP(&inv.configPath, "config", "c", "", "")
	fs.BoolVarP(&inv.help, "help", "h", false, "")
	_ = fs.Parse(args)
	return inv
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, opts launch.ParsedOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(opts.Verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = logging.Close(logger)
	}()
	logger.Debug("configuration loaded",
		logging.String("path", ctx.configPath),
		logging.Bool("exists", ctx.configSeen),
	)

	var app *nexus.App
	defer func() {
		_ = app.Close()
	}()

	factory := func(_ context.Context, appCfg launch.AppConfig) (launch.Application, error) {
		built, err := nexus.Open(
			nexus.Config{Verbose: appCfg.Verbose, Settings: cfg},
			nexus.Deps{Logger: logger, Stdin: cmd.InOrStdin(), Stdout: cmd.OutOrStdout()},
		)
		if err != nil {
			return nil, err
		}
		app = built
		return built, nil
	}

	return launch.Run(cmd.Context(), opts, factory, launch.WithLogger(logger))
}
