package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	debugColor     = color.New(color.FgHiBlack)
	infoColor      = color.New(color.FgWhite)
	warnColor      = color.New(color.FgHiYellow)
	errorColor     = color.New(color.FgHiRed)
	fatalColor     = color.New(color.FgHiRed, color.Bold)
	storeColor     = color.New(color.FgHiBlack)
	economyColor   = color.New(color.FgHiMagenta)
	voiceColor     = color.New(color.FgHiBlue)
	minecraftColor = color.New(color.FgHiGreen)

	logFile *os.File
	logMu   sync.Mutex
)

// LevelFatal sits above slog.LevelError and is only emitted by LogFatal.
const LevelFatal = slog.LevelError + 4

func init() {
	InitLogger("info", "")
}

// ParseLevel maps LOG_LEVEL strings onto slog levels. Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger installs the colored handler as the slog default.
// When path is set, output is duplicated into that file.
func InitLogger(level string, path string) error {
	logMu.Lock()
	defer logMu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var w io.Writer = os.Stdout
	var openErr error
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			openErr = fmt.Errorf("open log file %s: %w", path, err)
		} else {
			logFile = f
			w = io.MultiWriter(os.Stdout, f)
		}
	}

	slog.SetDefault(slog.New(NewBotLogHandler(w, ParseLevel(level))))
	return openErr
}

func LogDebug(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...))
}

func LogInfo(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

func LogWarn(format string, v ...interface{}) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func LogError(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

// LogFatal logs and exits the process.
func LogFatal(format string, v ...interface{}) {
	slog.Log(context.Background(), LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// LogComponent tags a message with a subsystem name (store, economy, voice, minecraft...).
func LogComponent(component, format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", component))
}

// BotLogHandler prints "15:04:05 [LEVEL] message" lines, colored per level or component.
type BotLogHandler struct {
	w     io.Writer
	level slog.Leveler
	mu    *sync.Mutex
}

func NewBotLogHandler(w io.Writer, level slog.Leveler) *BotLogHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &BotLogHandler{w: w, level: level, mu: &sync.Mutex{}}
}

func (h *BotLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *BotLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	levelStr, levelColor := levelStyle(r.Level)

	component := ""
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = strings.ToUpper(a.Value.String())
			return false
		}
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var err error
	if component != "" {
		_, err = fmt.Fprintf(h.w, "%s %s\n", ts.Format("15:04:05"), componentColor(component).Sprintf("[%s] %s", component, r.Message))
	} else {
		_, err = fmt.Fprintf(h.w, "%s %s\n", ts.Format("15:04:05"), levelColor.Sprintf("[%s] %s", levelStr, r.Message))
	}
	return err
}

func (h *BotLogHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *BotLogHandler) WithGroup(_ string) slog.Handler      { return h }

func levelStyle(level slog.Level) (string, *color.Color) {
	switch {
	case level >= LevelFatal:
		return "FATAL", fatalColor
	case level >= slog.LevelError:
		return "ERROR", errorColor
	case level >= slog.LevelWarn:
		return "WARN", warnColor
	case level >= slog.LevelInfo:
		return "INFO", infoColor
	default:
		return "DEBUG", debugColor
	}
}

func componentColor(name string) *color.Color {
	switch name {
	case "STORE":
		return storeColor
	case "ECONOMY":
		return economyColor
	case "VOICE":
		return voiceColor
	case "MINECRAFT":
		return minecraftColor
	default:
		return color.New(color.FgCyan)
	}
}
