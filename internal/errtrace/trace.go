// Package errtrace prints a wrapped error chain for diagnostics, one
// layer per line with the offending type and (at debug level) a spew dump
// of its fields.
package errtrace

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

// Chain walks err's Unwrap chain and returns one line per layer.
func Chain(err error) []string {
	if err == nil {
		return []string{"<nil>"}
	}
	var lines []string
	for i, e := 0, err; e != nil; i, e = i+1, errors.Unwrap(e) {
		lines = append(lines, fmt.Sprintf("[%d] %T: %v", i, e, e))
	}
	return lines
}

// Log emits err's chain to log at warn level, with a spew dump of each
// layer's fields attached at debug level.
func Log(log *zap.Logger, msg string, err error) {
	if err == nil {
		return
	}
	log.Warn(msg, zap.Strings("chain", Chain(err)))
	if log.Core().Enabled(zap.DebugLevel) {
		for i, e := 0, err; e != nil; i, e = i+1, errors.Unwrap(e) {
			log.Debug(msg, zap.Int("layer", i), zap.String("dump", spew.Sdump(e)))
		}
	}
}
