// Package logging sets up the logrus file logger used by the ask and quick
// commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultFile is the log file used when no chat file is involved.
const DefaultFile = "samvada.log"

// TimestampFormat is the layout of each log line's time field.
const TimestampFormat = "2006-01-02 15:04:05.000 -07:00"

// Setup is an open file logger.
type Setup struct {
	Logger *logrus.Logger
	Path   string
	Close  func() error
}

// PathFor returns the log file for a chat file: the chat's name with a .log
// extension, next to it. An empty chatPath yields DefaultFile.
func PathFor(chatPath string) string {
	if chatPath == "" {
		return DefaultFile
	}
	base := filepath.Base(chatPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(chatPath), stem+".log")
}

// NewFileLogger truncates the log file for chatPath and returns a debug-level
// logger writing to it.
func NewFileLogger(chatPath string) (*Setup, error) {
	return OpenFile(PathFor(chatPath))
}

// OpenFile truncates path and returns a debug-level logger writing to it.
func OpenFile(path string) (*Setup, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	logger := New(f, logrus.DebugLevel)
	return &Setup{Logger: logger, Path: path, Close: f.Close}, nil
}

// New creates a logger with the project's text format.
func New(w io.Writer, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: TimestampFormat,
	})
	return logger
}

// Nop returns an entry that discards everything.
func Nop() *logrus.Entry {
	return logrus.NewEntry(New(io.Discard, logrus.PanicLevel))
}

// Component returns an entry tagged with a component name.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}
