// Package transcribe adapts external speech-recognition engines to a small
// streaming interface.
//
// An Engine is configured once (model, device, compute type) and asked to
// transcribe one file. It returns a Transcription whose Info is available
// immediately and whose Segments are yielded lazily, in engine order, as the
// backend produces them. Two backends are provided:
//   - faster-whisper: an embedded Python helper run as a subprocess that
//     prints one JSON object per line while the model decodes
//   - openai: any OpenAI-compatible /v1/audio/transcriptions endpoint
//     (LocalAI, faster-whisper-server, api.openai.com)
//
// Errors that mean the engine itself cannot be used (missing interpreter,
// missing Python package, model that fails to load, unreachable server) wrap
// ErrUnavailable.
package transcribe
