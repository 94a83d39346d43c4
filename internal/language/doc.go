// Package language normalizes language hints and engine-reported language
// names.
//
// The transcription engines accept ISO 639-1 codes where one exists, while
// some OpenAI-compatible servers report full language words ("english").
// Normalize folds both into the short code used in metadata and passed to the
// engine; DisplayName renders a code for humans.
package language
