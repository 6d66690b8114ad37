package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// New returns a stdlib-backed logger with component prefix, for APIs that
// still take *log.Logger (http.Server.ErrorLog).
func New(component string) *log.Logger {
	return NewWriter(os.Stderr, component)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, component string) *log.Logger {
	prefix := fmt.Sprintf("[%s] ", component)
	return log.New(w, prefix, log.LstdFlags|log.Lmsgprefix)
}
