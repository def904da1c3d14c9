package log

import (
	"fmt"
	"strings"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
)

// Configure sets the global log level and output format.
// Level is one of trace, debug, info, warn, error; format is console or json.
func Configure(level, format string) {
	gologger.DefaultLogger.SetMaxLevel(parseLevel(level))

	if strings.EqualFold(format, "json") {
		gologger.DefaultLogger.SetFormatter(&formatter.JSON{})
	} else {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(false))
	}
}

func parseLevel(level string) levels.Level {
	switch strings.ToLower(level) {
	case "trace":
		return levels.LevelVerbose
	case "debug":
		return levels.LevelDebug
	case "warn", "warning":
		return levels.LevelWarning
	case "error":
		return levels.LevelError
	default:
		return levels.LevelInfo
	}
}

// Debug logs a message at debug level with key/value pairs.
func Debug(msg string, args ...any) {
	gologger.Debug().Msg(withFields(msg, args))
}

// Info logs a message at info level with key/value pairs.
func Info(msg string, args ...any) {
	gologger.Info().Msg(withFields(msg, args))
}

// Warn logs a message at warn level with key/value pairs.
func Warn(msg string, args ...any) {
	gologger.Warning().Msg(withFields(msg, args))
}

// Error logs a message at error level with key/value pairs.
func Error(msg string, args ...any) {
	gologger.Error().Msg(withFields(msg, args))
}

// withFields renders trailing key/value pairs into the message text.
func withFields(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 == 1 {
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	return b.String()
}
