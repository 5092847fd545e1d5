// Package common provides logging helpers and shared message constants for gdtools.
package common

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// VerboseMode controls debug output.
var VerboseMode bool = false

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(out)
	l.SetLevel(log.InfoLevel)
	l.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	return l
}

// Logger returns the shared logger used by every package.
func Logger() *log.Logger {
	return logger
}

// SetLogOutput redirects log output, mostly for tests.
func SetLogOutput(out io.Writer) {
	logger.SetOutput(out)
}

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

// Fields is an alias so callers don't need to import logrus for structured logs.
type Fields = log.Fields

// WithFields returns an entry carrying structured context.
func WithFields(fields Fields) *log.Entry {
	return logger.WithFields(fields)
}

// Error messages
const (
	ErrFailedToLoadConfig     = "failed to load configuration"
	ErrFailedToParseConfig    = "failed to parse configuration"
	ErrInvalidConfig          = "invalid configuration"
	ErrFailedToLoadDisc       = "failed to load disc description"
	ErrFailedToOpenTrackImage = "failed to open track image"
	ErrFailedToInitDrive      = "failed to initialize drive"
	ErrFailedToReadTOC        = "failed to read table of contents"
	ErrFailedToReadSectors    = "failed to read sectors"
	ErrFailedToReadSubcode    = "failed to read subcode"
	ErrFailedToQueryStatus    = "failed to query drive status"
	ErrFailedToCreateOutput   = "failed to create output file"
	ErrFailedToWriteOutput    = "failed to write output file"
	ErrNoDataTrack            = "no data track found on disc"
)

// Info messages
const (
	InfoDriveInitialized = "Drive initialized (unit %d, sector size %d)"
	InfoTOCExported      = "Exported TOC with %d tracks to YAML: %s"
	InfoSectorsDumped    = "Dumped %d sectors starting at LBA %d to: %s"
	InfoDiscLoaded       = "Loaded disc %q: %d tracks, type %s"
	InfoDiscEjected      = "Disc ejected"
)

// Debug messages
const (
	DebugCommandSubmitted = "command submitted"
	DebugCommandFinished  = "command finished"
	DebugInitAttempt      = "INIT not ready, retrying"
	DebugDataTypeResolved = "data type resolved"
	DebugStatusBusy       = "status query skipped: bus lock held"
	DebugSimRequest       = "sim: request %d (%s) -> %s"
)

// Warning messages
const (
	WarnInitTimedOut    = "INIT did not complete after %d attempts, aborting"
	WarnDataTypeDefault = "drive status unavailable, assuming CD-XA mode 1"
	WarnShortTrackImage = "track %d image shorter than declared length (%d of %d sectors)"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		logger.Infof(message, args...)
	} else {
		logger.Info(message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		logger.Warnf(message, args...)
	} else {
		logger.Warn(message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		logger.Errorf(message, args...)
	} else {
		logger.Error(message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		logger.Debugf(message, args...)
	} else {
		logger.Debug(message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// FormatErrorString creates a formatted error with string details
func FormatErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
