// Package cache persists transcription results in SQLite so repeated runs
// over the same media with the same engine settings can skip the engine.
//
// Entries are keyed by the input's content hash combined with every option
// that changes the engine output. Opening the database applies the embedded
// migrations; the cache is opt-in and never consulted unless enabled.
package cache
