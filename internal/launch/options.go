package launch

import (
	"io"

	"github.com/spf13/pflag"
)

// Flag names shared by Parse and the cobra root command.
const (
	FlagVerbose = "verbose"
	FlagInput   = "input"
	FlagOutput  = "output"
)

// ParsedOptions is the typed view of the command line.
type ParsedOptions struct {
	Verbose bool
	Input   string
	Output  string
}

// BindFlags registers the bootstrap flags on fs, writing parsed values into opts.
func BindFlags(fs *pflag.FlagSet, opts *ParsedOptions) {
	fs.BoolVarP(&opts.Verbose, FlagVerbose, "v", false, "Enable verbose (debug) logging")
	fs.StringVarP(&opts.Input, FlagInput, "i", "", "Input path or identifier")
	fs.StringVarP(&opts.Output, FlagOutput, "o", "", "Output path or identifier")
}

// Parse converts args (argv without the program name) into ParsedOptions.
//
// Parsing is permissive: unknown flags are skipped, positional arguments are
// ignored, and a malformed flag stops parsing without failing. Whatever was
// recognised before the malformed flag is kept.
func Parse(args []string) ParsedOptions {
	var opts ParsedOptions
	fs := pflag.NewFlagSet("nexus", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist.UnknownFlags = true
	BindFlags(fs, &opts)
	_ = fs.Parse(args)
	return opts
}

// AppConfig is the configuration object passed to the application factory.
type AppConfig struct {
	Verbose bool
}

// ConfigFromOptions derives the application configuration from parsed options.
// Input and Output are not forwarded.
func ConfigFromOptions(opts ParsedOptions) AppConfig {
	return AppConfig{Verbose: opts.Verbose}
}
