package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger is the leveled key-value logger used across the shop.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

type logLevel int

const (
	debugLevel logLevel = iota
	infoLevel
	warnLevel
	errorLevel
)

type shopLogger struct {
	out   *log.Logger
	errs  *log.Logger
	level logLevel
}

// NewLogger creates a logger filtering below the given level. Unknown levels
// fall back to info.
func NewLogger(level string) Logger {
	l := infoLevel

	switch strings.ToLower(level) {
	case "debug":
		l = debugLevel
	case "info":
		l = infoLevel
	case "warn":
		l = warnLevel
	case "error":
		l = errorLevel
	}

	return &shopLogger{
		out:   log.New(os.Stdout, "", log.Ldate|log.Ltime),
		errs:  log.New(os.Stderr, "", log.Ldate|log.Ltime),
		level: l,
	}
}

func (l *shopLogger) Debug(msg string, keyvals ...interface{}) {
	if l.level <= debugLevel {
		l.out.Println("DEBUG:", render(msg, keyvals...))
	}
}

func (l *shopLogger) Info(msg string, keyvals ...interface{}) {
	if l.level <= infoLevel {
		l.out.Println("INFO:", render(msg, keyvals...))
	}
}

func (l *shopLogger) Warn(msg string, keyvals ...interface{}) {
	if l.level <= warnLevel {
		l.out.Println("WARN:", render(msg, keyvals...))
	}
}

func (l *shopLogger) Error(msg string, keyvals ...interface{}) {
	if l.level <= errorLevel {
		l.errs.Println("ERROR:", render(msg, keyvals...))
	}
}

func render(msg string, keyvals ...interface{}) string {
	if len(keyvals) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)

	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprintf("%v", keyvals[i])
		value := "missing"

		if i+1 < len(keyvals) {
			value = fmt.Sprintf("%v", keyvals[i+1])
		}

		b.WriteString(" " + key + "=" + value)
	}

	return b.String()
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
