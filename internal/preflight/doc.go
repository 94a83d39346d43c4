// Package preflight provides readiness checks for the transcription backend
// and the filesystem paths vttgen writes to.
//
// The CLI "vttgen check" command runs RunAll and renders the results next to
// the binary dependency table. Checks are gated by configuration: the Python
// probes only run for the faster-whisper backend, the endpoint probe only for
// the openai backend, and the cache directory check only when caching is on.
package preflight
