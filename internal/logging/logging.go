// Package logging routes server logs away from stdout, which belongs to
// the MCP stdio transport.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup directs the standard logger to a rotating file at path, or to
// stderr when path is empty. The returned closer flushes the file
// logger and must be called on shutdown.
func Setup(path string) io.Closer {
	if path == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	}
	log.SetOutput(out)
	return out
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
