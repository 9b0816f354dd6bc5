// Package main hosts the nexus CLI entrypoint and command graph.
//
// The root command is the bootstrap: it binds --verbose, --input, and
// --output, loads configuration, and hands control to the embedding pipeline
// through internal/launch. The config and cache subcommands scaffold and check
// configuration and inspect the embedding cache.
//
// main is the only place that turns an outcome into a process exit code.
package main
