package common

import (
	"fmt"
	"io"
	"os"
	"time"
)

var (
	// LoggingEnabled controls whether Logf produces output. Library packages
	// log structural events (new generations, resizes); tools switch it on.
	LoggingEnabled = false

	// LogOutput receives everything Logf prints.
	LogOutput io.Writer = os.Stdout
)

// Logf prints a formatted message if logging is enabled.
func Logf(format string, args ...interface{}) {
	if LoggingEnabled {
		fmt.Fprintf(LogOutput, format, args...)
	}
}

// formatDuration renders d with two decimals in the largest unit that keeps
// the value readable: "12.34 ms", "1.50 s" or "7.00 us".
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2f s", d.Seconds())
	case d < 10*time.Microsecond:
		return fmt.Sprintf("%.2f us", float64(d)/float64(time.Microsecond))
	default:
		return fmt.Sprintf("%.2f ms", float64(d)/float64(time.Millisecond))
	}
}

// LogDuration logs a message prefixed by the time elapsed since start, padded
// so that consecutive messages line up.
func LogDuration(start time.Time, format string, args ...interface{}) {
	Logf("%-10s%s\n", "("+formatDuration(time.Since(start))+")", fmt.Sprintf(format, args...))
}
