package logger

import (
	"bufio"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

// LogReader is implemented by loggers backed by a JSON-lines file.
type LogReader interface {
	GetLogs(level, module string, limit, offset int) ([]LogEntry, error)
}

type ZapLogger struct {
	logger   *zap.Logger
	filePath string
}

var (
	_ ILogger   = &ZapLogger{}
	_ LogReader = &ZapLogger{}
)

func newRotator(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // Megabytes
		MaxBackups: 5,
		MaxAge:     30, // Days
		Compress:   true,
	}
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// NewZapLogger writes JSON to a rotated file and a human-readable copy to stdout.
func NewZapLogger(logFilePath string, isProd bool) *ZapLogger {
	return NewZapLoggerTo(logFilePath, isProd, zapcore.Lock(os.Stdout))
}

// NewZapLoggerTo is NewZapLogger with an explicit console sink. The stdio
// server passes stderr since stdout carries protocol frames.
func NewZapLoggerTo(logFilePath string, isProd bool, console zapcore.WriteSyncer) *ZapLogger {
	fileCore := zapcore.NewCore(jsonEncoder(), zapcore.AddSync(newRotator(logFilePath)), zap.InfoLevel)

	var consoleEncoder zapcore.Encoder
	if isProd {
		consoleEncoder = jsonEncoder()
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, console, zap.DebugLevel)

	l := zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller(), zap.AddCallerSkip(1))

	return &ZapLogger{logger: l, filePath: logFilePath}
}

// NewIsolatedLogger creates a logger that ONLY writes to the file, not console.
// Used for the websocket hub so connection churn stays out of the main log.
func NewIsolatedLogger(logFilePath string) *ZapLogger {
	fileCore := zapcore.NewCore(jsonEncoder(), zapcore.AddSync(newRotator(logFilePath)), zap.InfoLevel)
	l := zap.New(fileCore, zap.AddCaller(), zap.AddCallerSkip(1))
	return &ZapLogger{logger: l, filePath: logFilePath}
}

// NewNopLogger discards everything.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

func fields(module string, details map[string]interface{}) []zap.Field {
	if details == nil {
		details = make(map[string]interface{})
	}
	return []zap.Field{zap.String("module", module), zap.Any("details", details)}
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.logger.Debug(message, fields(module, details)...)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.logger.Info(message, fields(module, details)...)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.logger.Warn(message, fields(module, details)...)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	f := fields(module, details)
	if err, ok := details["error"].(error); ok {
		f = append(f, zap.Error(err))
	}
	l.logger.Error(message, f...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

type LogEntry struct {
	Id        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Module    string                 `json:"module,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// GetLogs reads the log file newest first. Level matching is case-insensitive;
// empty level or module means no filter.
func (l *ZapLogger) GetLogs(level, module string, limit, offset int) ([]LogEntry, error) {
	if l.filePath == "" {
		return []LogEntry{}, nil
	}
	file, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []LogEntry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		var entry LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if level != "" && !strings.EqualFold(entry.Level, level) {
			continue
		}
		if module != "" && entry.Module != module {
			continue
		}
		if entry.Id == "" {
			entry.Id = fmt.Sprintf("%x", md5.Sum(line))
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	if offset >= len(entries) {
		return []LogEntry{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end], nil
}
