package output

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"unicode"

	"github.com/abdul-hamid-achik/apiprobe/packages/checks"
	"github.com/abdul-hamid-achik/apiprobe/packages/core/runner"
	"github.com/fatih/color"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "<missing>"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

// capitalize upper-cases the first letter of a check description.
func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// ConsoleFormatter prints live progress markers while the suite runs and a
// summary once it is done. It implements runner.Observer.
type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	// Reports written to a file or buffer stay plain even when stdout is a TTY.
	if f.writer != os.Stdout {
		f.noColor = true
	}
	return f
}

// paint returns a color func that honors the formatter's color setting.
func (f *ConsoleFormatter) paint(attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if f.noColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) CheckStarted(check checks.Check) {
	fmt.Fprintf(f.writer, "\n🔍 Testing %s...\n", check.Description)
}

func (f *ConsoleFormatter) CheckFinished(r *runner.CheckResult) {
	green := f.paint(color.FgGreen)
	red := f.paint(color.FgRed)
	cyan := f.paint(color.FgCyan)

	name := capitalize(r.Description)
	if r.Passed {
		fmt.Fprintf(f.writer, "✅ %s", green(name+" test passed"))
		if f.verbose {
			fmt.Fprintf(f.writer, " %s", cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		}
		fmt.Fprintf(f.writer, "\n")
	} else {
		fmt.Fprintf(f.writer, "❌ %s %s\n", red(name+" test failed:"), r.ErrorMessage())
	}

	if !f.verbose {
		return
	}

	for _, a := range r.Assertions {
		fmt.Fprintf(f.writer, "    %s %s %s\n", red("→"), a.Subject, a.Operator)
		fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(a.Expected, 100))
		fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(a.Actual, 100))
	}

	if len(r.Captures) > 0 {
		fmt.Fprintf(f.writer, "    Captures:\n")
		for _, name := range slices.Sorted(maps.Keys(r.Captures)) {
			fmt.Fprintf(f.writer, "      %s = %v\n", name, r.Captures[name])
		}
	}
}

// FormatResult prints the run summary.
func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := f.paint(color.FgGreen)
	red := f.paint(color.FgRed)

	passed := fmt.Sprintf("%d passed", result.Passed)
	if result.Passed > 0 {
		passed = green(passed)
	}
	failed := fmt.Sprintf("%d failed", result.Failed)
	if result.Failed > 0 {
		failed = red(failed)
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Checks: %s, %s, %d total\n", passed, failed, len(result.Results))
	fmt.Fprintf(f.writer, "Time:   %dms\n", result.Duration.Milliseconds())
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := f.paint(color.FgRed)
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(baseURL string) {
	bold := f.paint(color.Bold)
	fmt.Fprintf(f.writer, "Using backend URL: %s\n", bold(baseURL))
}
