package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Params are the settings that change what an engine returns for a file.
type Params struct {
	Backend     string
	// Endpoint is the API base URL for remote backends, empty for local ones.
	Endpoint    string
	Model       string
	Device      string
	ComputeType string
	Language    string
	BeamSize    int
	VADFilter   bool
}

// Key derives the cache key for an input content hash and params.
func Key(inputHash string, p Params) string {
	fields := []string{
		"v2",
		strings.ToLower(strings.TrimSpace(inputHash)),
		p.Backend,
		p.Endpoint,
		p.Model,
		p.Device,
		p.ComputeType,
		p.Language,
		strconv.Itoa(p.BeamSize),
		strconv.FormatBool(p.VADFilter),
	}
	sum := sha256.Sum256([]byte(strings.Join(fields, "\x00")))
	return hex.EncodeToString(sum[:])
}
