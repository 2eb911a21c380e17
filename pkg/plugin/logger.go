package plugin

import (
	"os"
	"strings"

	"github.com/kdar/factorlog"
)

// log format, stdout is reserved for the status line so all
// diagnostics go to stderr
var (
	LogFormat = `[%{Severity}][%{ShortFile}:%{Line}] %{Message}`

	// Log is the shared plugin logger, silent unless verbose output
	// was requested
	Log = factorlog.New(os.Stderr, factorlog.NewStdFormatter(LogFormat))
)

func init() {
	SetLogLevel("error")
}

// SetLogLevel sets the minimum severity of printed log messages
func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "off":
		Log.SetMinMaxSeverity(factorlog.StringToSeverity("PANIC"), factorlog.StringToSeverity("PANIC"))
	case "error", "info", "debug", "trace":
		Log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
	default:
		Log.Errorf("unknown log level: %s", level)
	}
}
