package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

// Init applies global output settings.
func Init(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Success displays a success message.
func Success(format string, args ...interface{}) {
	green.Fprintf(os.Stdout, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error displays an error message to stderr.
func Error(format string, args ...interface{}) {
	red.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning displays a warning message.
func Warning(format string, args ...interface{}) {
	yellow.Fprintf(os.Stdout, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info displays an informational message.
func Info(format string, args ...interface{}) {
	cyan.Fprintf(os.Stdout, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Section displays a section header.
func Section(title string) {
	bold.Fprintf(os.Stdout, "\n%s\n", title)
	fmt.Fprintf(os.Stdout, "%s\n\n", strings.Repeat("=", len(title)))
}

// Table writes rows under headers to os.Stdout.
func Table(headers []string, rows [][]string) {
	writeTable(os.Stdout, headers, rows)
}

func writeTable(out io.Writer, headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))

	separator := make([]string, len(headers))
	for i := range separator {
		separator[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(w, strings.Join(separator, "\t"))

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	_ = w.Flush()
}

// FormatDuration formats a duration for humans, with sub-second precision
// below one minute.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	minutes := d / time.Minute
	seconds := (d - minutes*time.Minute) / time.Second
	if minutes >= 60 {
		return fmt.Sprintf("%dh %dm %ds", minutes/60, minutes%60, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
