// Package generate runs one subtitle generation: validate the request, lock
// the output, transcribe (or replay a cached transcript), build cues, and
// write the subtitle and metadata files.
//
// Failures are reported as *Error values whose Kind says whether the caller
// misused the tool, a dependency is missing, or generation itself failed.
package generate
