package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level gates which messages are written.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a LOG_LEVEL value to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger struct {
	level     Level
	component string
	debug     *log.Logger
	info      *log.Logger
	warn      *log.Logger
	error     *log.Logger
}

func New() *Logger {
	return &Logger{
		level: LevelInfo,
		debug: log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile),
		info:  log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		warn:  log.New(os.Stderr, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile),
		error: log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// NewWithWriter sends every level to writer; tests use it to capture output.
func NewWithWriter(writer io.Writer) *Logger {
	return &Logger{
		level: LevelDebug,
		debug: log.New(writer, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile),
		info:  log.New(writer, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		warn:  log.New(writer, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile),
		error: log.New(writer, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return NewWithWriter(io.Discard)
}

// SetLevel changes the minimum level written.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// With returns a logger that prefixes every line with [component].
func (l *Logger) With(component string) *Logger {
	c := *l
	if c.component != "" {
		c.component += "." + component
	} else {
		c.component = component
	}
	return &c
}

func (l *Logger) args(v []interface{}) []interface{} {
	if l.component == "" {
		return v
	}
	return append([]interface{}{"[" + l.component + "]"}, v...)
}

func (l *Logger) format(format string) string {
	if l.component == "" {
		return format
	}
	return "[" + l.component + "] " + format
}

func (l *Logger) Debug(v ...interface{}) {
	if l.level <= LevelDebug {
		l.debug.Output(2, sprintln(l.args(v)))
	}
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.level <= LevelDebug {
		l.debug.Output(2, sprintf(l.format(format), v))
	}
}

func (l *Logger) Info(v ...interface{}) {
	if l.level <= LevelInfo {
		l.info.Output(2, sprintln(l.args(v)))
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.level <= LevelInfo {
		l.info.Output(2, sprintf(l.format(format), v))
	}
}

func (l *Logger) Warn(v ...interface{}) {
	if l.level <= LevelWarn {
		l.warn.Output(2, sprintln(l.args(v)))
	}
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.level <= LevelWarn {
		l.warn.Output(2, sprintf(l.format(format), v))
	}
}

func (l *Logger) Error(v ...interface{}) {
	l.error.Output(2, sprintln(l.args(v)))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.error.Output(2, sprintf(l.format(format), v))
}

func sprintln(v []interface{}) string { return fmt.Sprintln(v...) }

func sprintf(format string, v []interface{}) string { return fmt.Sprintf(format, v...) }
