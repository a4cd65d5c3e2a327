// Package logging wires every component in this daemon through a single
// arbor logger (github.com/ternarybob/arbor), configured once by the Outer
// Boundary (spec §4.8, §6) and shared by value thereafter.
//
// Every call site composes the exact line format spec.md §6 mandates —
// `[LEVEL] [file:line] funcname(): message` — itself, then hands the
// finished string to arbor as the message; arbor owns the writer fan-out
// (file + optional console) and the timestamp prefix.
package logging

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

var (
	mu     sync.RWMutex
	global arbor.ILogger
)

// Init configures the process-wide logger to write to logPath, replacing
// any logger installed by a previous call. The Outer Boundary calls it
// before the dispatcher is started, and each index-chunk child process
// calls it with its own log path.
func Init(logPath string) arbor.ILogger {
	mu.Lock()
	defer mu.Unlock()

	l := arbor.NewLogger().WithFileWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeFile,
		FileName:         logPath,
		TimeFormat:       "2006-01-02T15:04:05.000Z07:00",
		OutputType:       models.OutputFormatLogfmt,
		DisableTimestamp: false,
		MaxSize:          100 * 1024 * 1024,
		MaxBackups:       1,
	}).WithLevelFromString("info")

	global = l
	return l
}

// Get returns the process-wide logger, falling back to an unconfigured
// console logger if Init has not run yet (e.g. in unit tests that exercise
// a single package in isolation).
func Get() arbor.ILogger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeConsole,
			OutputType: models.OutputFormatLogfmt,
		})
	}
	return global
}

// caller resolves the file:line and function name of the frame skip levels
// above itself; format passes skip = 3 to step over caller, format and
// Info/Warn/Error/Fatal, landing on the logging call site.
func caller(skip int) (file string, line int, fn string) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "?", 0, "?"
	}
	file = filepath.Base(file)
	fn = "?"
	if f := runtime.FuncForPC(pc); f != nil {
		fn = filepath.Ext(f.Name())
		if len(fn) > 0 && fn[0] == '.' {
			fn = fn[1:]
		}
	}
	return file, line, fn
}

func format(level, msg string) string {
	file, line, fn := caller(3)
	return fmt.Sprintf("[%s] [%s:%d] %s(): %s", level, file, line, fn, msg)
}

// Info logs an informational line in spec.md §6's format.
func Info(msgFmt string, args ...any) {
	Get().Info().Msg(format("INFO", fmt.Sprintf(msgFmt, args...)))
}

// Warn logs a warning line — used for the boundary conditions the spec
// calls "logged but does not stop" (unknown action, double start/stop).
func Warn(msgFmt string, args ...any) {
	Get().Warn().Msg(format("WARNING", fmt.Sprintf(msgFmt, args...)))
}

// Error logs a recoverable-error line (spec §7 BadRequest / LookupMiss /
// ParseFailure / WorkerCrash).
func Error(msgFmt string, args ...any) {
	Get().Error().Msg(format("ERROR", fmt.Sprintf(msgFmt, args...)))
}

// Fatal logs an unrecoverable error escaping a worker's top-level result
// handling layer (spec §7 Fatal, §9). It does not terminate the process —
// only the worker loop that caught the panic decides that.
func Fatal(msgFmt string, args ...any) {
	Get().Error().Msg(format("CRITICAL", fmt.Sprintf(msgFmt, args...)))
}
