// Package subtitles turns transcription segments into WebVTT cues.
//
// BuildCues consumes an engine's segment stream once, in order, normalizing
// text and repairing degenerate timing. WriteWebVTT serializes the cues and
// ReadWebVTT parses a file back for inspection and verification.
package subtitles
