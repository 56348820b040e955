// Package tftplog provides tftpd's leveled logger, adapted from the
// teacher's internal/utils.Logger: a thin wrapper over the standard
// log.Logger with Debug/Info/Warn/Error methods and a configurable level
// and output format (text or json).
package tftplog

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Level is a logging severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

// Logger is a leveled, optionally-JSON-formatted logger.
type Logger struct {
	level  Level
	format string
	out    *log.Logger
}

// New creates a Logger writing to stdout at the given level and format
// ("text" or anything else falls back to text; "json" switches format).
func New(level, format string) *Logger {
	return &Logger{
		level:  parseLevel(level),
		format: format,
		out:    log.New(os.Stdout, "", 0),
	}
}

func parseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level <= Debug {
		l.log("DEBUG", format, args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.level <= Info {
		l.log("INFO", format, args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level <= Warn {
		l.log("WARN", format, args...)
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.level <= Error {
		l.log("ERROR", format, args...)
	}
}

func (l *Logger) log(level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	var line string
	if l.format == "json" {
		line = fmt.Sprintf(`{"time":"%s","level":"%s","message":%q}`, timestamp, level, message)
	} else {
		line = fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	}
	l.out.Println(line)
}
