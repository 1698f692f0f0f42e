package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Component scopes log output to a subsystem.
type Component string

const (
	ComponentApp        Component = "app"
	ComponentClient     Component = "client"
	ComponentCipher     Component = "cipher"
	ComponentVideoInfo  Component = "videoinfo"
	ComponentStreams    Component = "streams"
	ComponentCaptions   Component = "captions"
	ComponentDownloader Component = "downloader"
)

// Format selects the log output encoding.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Config holds logger configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	Components map[Component]bool
	Timestamp  bool
}

// DefaultConfig enables WARN and above for every component on stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  WARN,
		Format: FormatText,
		Output: os.Stderr,
		Components: map[Component]bool{
			ComponentApp:        true,
			ComponentClient:     true,
			ComponentCipher:     true,
			ComponentVideoInfo:  true,
			ComponentStreams:    true,
			ComponentCaptions:   true,
			ComponentDownloader: true,
		},
	}
}

type entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Component Component      `json:"component"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger writes leveled, component-scoped log entries.
type Logger struct {
	mu     sync.RWMutex
	config *Config
}

// New creates a logger. A nil config uses DefaultConfig.
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}
	return &Logger{config: config}
}

// SetLevel changes the minimum level written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Level = level
}

// SetOutput redirects log output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Output = w
}

// EnableComponent turns on output for one component.
func (l *Logger) EnableComponent(c Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Components[c] = true
}

// DisableComponent turns off output for one component.
func (l *Logger) DisableComponent(c Component) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Components[c] = false
}

// WithComponent returns a logger bound to a single component.
func (l *Logger) WithComponent(c Component) *ComponentLogger {
	return &ComponentLogger{logger: l, component: c}
}

func (l *Logger) log(level Level, c Component, message string, fields map[string]any) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.config.Level {
		return
	}
	if !l.config.Components[c] {
		return
	}

	e := entry{
		Timestamp: time.Now(),
		Level:     levelNames[level],
		Component: c,
		Message:   message,
		Fields:    fields,
	}

	var out string
	if l.config.Format == FormatJSON {
		data, _ := json.Marshal(e)
		out = string(data)
	} else {
		out = l.formatText(e)
	}
	fmt.Fprintln(l.config.Output, out)
}

func (l *Logger) formatText(e entry) string {
	var parts []string
	if l.config.Timestamp {
		parts = append(parts, e.Timestamp.Format("2006-01-02 15:04:05"))
	}
	parts = append(parts, fmt.Sprintf("[%s]", e.Level), fmt.Sprintf("[%s]", e.Component), e.Message)
	if len(e.Fields) > 0 {
		var fieldParts []string
		for k, v := range e.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, strings.Join(fieldParts, " "))
	}
	return strings.Join(parts, " ")
}

// ComponentLogger is a Logger bound to one component.
type ComponentLogger struct {
	logger    *Logger
	component Component
}

func (cl *ComponentLogger) Debug(message string, fields ...map[string]any) {
	cl.log(DEBUG, message, fields...)
}

func (cl *ComponentLogger) Info(message string, fields ...map[string]any) {
	cl.log(INFO, message, fields...)
}

func (cl *ComponentLogger) Warn(message string, fields ...map[string]any) {
	cl.log(WARN, message, fields...)
}

func (cl *ComponentLogger) Error(message string, fields ...map[string]any) {
	cl.log(ERROR, message, fields...)
}

func (cl *ComponentLogger) log(level Level, message string, fields ...map[string]any) {
	var merged map[string]any
	if len(fields) > 0 {
		merged = fields[0]
	}
	cl.logger.log(level, cl.component, message, merged)
}

var globalLogger = New(DefaultConfig())

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(l *Logger) {
	globalLogger = l
}

// GetGlobalLogger returns the process-wide logger.
func GetGlobalLogger() *Logger {
	return globalLogger
}

// WithComponent returns a component logger from the global logger.
func WithComponent(c Component) *ComponentLogger {
	return globalLogger.WithComponent(c)
}
