// Package config loads, normalizes, and validates vttgen configuration data.
//
// It supplies defaults for the transcription engine, reads an optional TOML
// file, loads a .env file from the working directory, and honours
// environment fallbacks such as OPENAI_API_KEY and VTTGEN_PYTHON. Command-line
// flags are layered on top by the CLI after Load returns.
package config
