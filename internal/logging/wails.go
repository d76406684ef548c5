package logging

import (
	"os"

	"github.com/wailsapp/wails/v2/pkg/logger"
)

// wailsLogger routes the framework's log output through this package.
type wailsLogger struct {
	l *Logger
}

// Wails returns a logger.Logger for options.App so framework lines share the
// debug log file with the rest of the shell.
func Wails() logger.Logger {
	return &wailsLogger{l: New("wails")}
}

func (w *wailsLogger) Print(message string)   { w.l.Infof("%s", message) }
func (w *wailsLogger) Trace(message string)   { w.l.Debugf("%s", message) }
func (w *wailsLogger) Debug(message string)   { w.l.Debugf("%s", message) }
func (w *wailsLogger) Info(message string)    { w.l.Infof("%s", message) }
func (w *wailsLogger) Warning(message string) { w.l.Warnf("%s", message) }
func (w *wailsLogger) Error(message string)   { w.l.Errorf("%s", message) }

func (w *wailsLogger) Fatal(message string) {
	w.l.Errorf("fatal: %s", message)
	Close()
	os.Exit(1)
}
