// Package main hosts the vttgen CLI entrypoint and command graph.
//
// The root command generates one WebVTT file from a media file and prints
// the run metadata as a JSON line on stdout. Subcommands cover dependency
// checks, inspecting existing subtitle files, managing the transcript cache,
// and scaffolding a configuration file. Logs and errors go to stderr.
package main
