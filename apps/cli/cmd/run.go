package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/checks"
	"github.com/abdul-hamid-achik/apiprobe/packages/core/config"
	"github.com/abdul-hamid-achik/apiprobe/packages/core/env"
	"github.com/abdul-hamid-achik/apiprobe/packages/core/runner"
	"github.com/abdul-hamid-achik/apiprobe/packages/history"
	"github.com/abdul-hamid-achik/apiprobe/packages/http"
	"github.com/abdul-hamid-achik/apiprobe/packages/notify"
	"github.com/abdul-hamid-achik/apiprobe/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

// errChecksFailed is returned when the suite ran but at least one check failed.
// The failures have already been reported, so Execute prints nothing more.
var errChecksFailed = errors.New("one or more checks failed")

// reportedError wraps an error the console formatter has already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// printError writes err to w unless it only signals failed checks or was
// already shown by the formatter.
func printError(w io.Writer, err error) {
	var reported *reportedError
	if errors.Is(err, errChecksFailed) || errors.As(err, &reported) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

var (
	envFileFlag    string
	urlKeyFlag     string
	configFlag     string
	timeoutFlag    string
	outputFlag     string
	outputFileFlag string
	historyFlag    string
	noColorFlag    bool
	verboseFlag    bool
	insecureFlag   bool
	watchFlag      bool

	// Notification flags
	slackWebhookFlag string
	slackChannelFlag string
	notifyOnFlag     string
)

func init() {
	flags := rootCmd.Flags()

	// Target flags
	flags.StringVar(&envFileFlag, "env-file", env.DefaultFile, "Env file holding the backend URL")
	flags.StringVar(&urlKeyFlag, "url-key", env.DefaultKey, "Key of the backend URL in the env file")
	flags.StringVar(&configFlag, "config", "", "Path to config file (default: apiprobe.yaml in the working directory)")

	// Output flags
	flags.StringVarP(&outputFlag, "output", "o", "console", "Output format: console, json, junit")
	flags.StringVar(&outputFileFlag, "output-file", "", "Write output to file (default: stdout)")
	flags.BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output with request logging")
	flags.StringVar(&historyFlag, "history", "", "SQLite file to record runs in")

	// Execution flags
	flags.StringVar(&timeoutFlag, "timeout", "0s", "Request timeout (e.g., 30s, 1m), 0 for none")
	flags.BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	flags.BoolVarP(&watchFlag, "watch", "w", false, "Watch the env and config files and re-run on change")

	// Notification flags
	flags.StringVar(&slackWebhookFlag, "slack-webhook", "", "Slack webhook URL to post run summaries to")
	flags.StringVar(&slackChannelFlag, "slack-channel", "", "Slack channel override")
	flags.StringVar(&notifyOnFlag, "notify-on", "failure", "When to notify: always, failure, success, recovery")
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(baseURL string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	flagConfig := &config.Config{}
	flags := cmd.Flags()
	if flags.Changed("env-file") {
		flagConfig.EnvFile = envFileFlag
	}
	if flags.Changed("url-key") {
		flagConfig.URLKey = urlKeyFlag
	}
	if flags.Changed("timeout") {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		flagConfig.Timeout = config.Duration(timeout)
	}
	if flags.Changed("output") {
		flagConfig.Output = outputFlag
	}
	if flags.Changed("output-file") {
		flagConfig.OutputFile = outputFileFlag
	}
	if flags.Changed("history") {
		flagConfig.History = historyFlag
	}
	if flags.Changed("insecure") {
		flagConfig.ValidateSSL = config.BoolPtr(!insecureFlag)
	}
	if flags.Changed("verbose") {
		flagConfig.Verbose = config.BoolPtr(verboseFlag)
	}
	if flags.Changed("no-color") {
		flagConfig.NoColor = config.BoolPtr(noColorFlag)
	}
	if flags.Changed("slack-webhook") {
		flagConfig.SlackWebhook = slackWebhookFlag
	}
	if flags.Changed("slack-channel") {
		flagConfig.SlackChannel = slackChannelFlag
	}
	if flags.Changed("notify-on") {
		flagConfig.NotifyOn = notifyOnFlag
	}

	cfg := fileConfig.Merge(flagConfig)
	// Merge skips zero durations, but an explicit --timeout 0 clears the file's timeout.
	if flags.Changed("timeout") {
		cfg.Timeout = flagConfig.Timeout
	}
	switch strings.ToLower(cfg.Output) {
	case "console", "json", "junit":
	default:
		return nil, fmt.Errorf("unknown output format %q (use console, json or junit)", cfg.Output)
	}
	if _, err := notify.ParseNotifyOn(cfg.NotifyOn); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newNotifier returns nil when no webhook is configured.
func newNotifier(cfg *config.Config) *notify.Manager {
	if cfg.SlackWebhook == "" {
		return nil
	}
	on, _ := notify.ParseNotifyOn(cfg.NotifyOn)
	var opts []notify.SlackOption
	if cfg.SlackChannel != "" {
		opts = append(opts, notify.WithSlackChannel(cfg.SlackChannel))
	}
	return notify.NewManager(on, notify.NewSlackNotifier(cfg.SlackWebhook, opts...))
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.GetVerbose())
	if cfg.Source != "" {
		logger.Info("loaded config", "path", cfg.Source)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	notifier := newNotifier(cfg)
	result, err := executeRun(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger, notifier)
	if !watchFlag {
		if err != nil {
			return err
		}
		if !result.Success() {
			return errChecksFailed
		}
		return nil
	}

	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return watch(ctx, cmd, cfg, logger, notifier, err == nil && result.Success())
}

// newFormatter picks the report format. The console formatter doubles as the
// runner's observer for live progress.
func newFormatter(cfg *config.Config, w io.Writer) (Formatter, runner.Observer) {
	switch strings.ToLower(cfg.Output) {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w)), nil
	case "junit":
		return output.NewJUnitFormatter(output.JUnitWithWriter(w)), nil
	default: // "console"
		console := output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(cfg.GetVerbose()),
			output.WithNoColor(cfg.GetNoColor()),
		)
		return console, console
	}
}

// executeRun resolves the backend, runs the suite once and reports it.
// A non-nil error means the suite could not run or no report could be written.
func executeRun(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger, notifier *notify.Manager) (*runner.RunResult, error) {
	outWriter := stdout
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return nil, fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		outWriter = f
	}

	formatter, observer := newFormatter(cfg, outWriter)

	baseURL, err := env.ResolveBaseURL(cfg.EnvFile, cfg.URLKey)
	if err != nil {
		formatter.FormatError(err)
		flushable, ok := formatter.(Flushable)
		if ok {
			if ferr := flushable.Flush(0); ferr != nil {
				fmt.Fprintf(stderr, "warning: failed to write report: %v\n", ferr)
			}
		}
		if !ok && cfg.OutputFile == "" {
			return nil, &reportedError{err: err}
		}
		return nil, err
	}
	logger.Debug("resolved backend", "url", baseURL, "envFile", cfg.EnvFile, "key", cfg.URLKey)

	formatter.FormatHeader(baseURL)

	client := http.NewClient(
		http.WithTimeout(time.Duration(cfg.Timeout)),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithDefaultHeader("User-Agent", "apiprobe/"+version),
		http.WithDefaultHeaders(cfg.Headers),
		http.WithLogger(logger),
	)

	r := runner.NewRunner(&runner.Config{
		Checks:   checks.Default(),
		Observer: observer,
		Logger:   logger,
	})
	result := r.Run(ctx, checks.NewTarget(baseURL, client))

	formatter.FormatResult(result)
	if flushable, ok := formatter.(Flushable); ok {
		if err := flushable.Flush(result.Duration); err != nil {
			fmt.Fprintf(stderr, "warning: failed to write report: %v\n", err)
		}
	}

	if cfg.History != "" {
		if err := saveHistory(ctx, cfg.History, result); err != nil {
			fmt.Fprintf(stderr, "warning: failed to record run history: %v\n", err)
		}
	}

	if notifier != nil {
		if err := notifier.Notify(ctx, result); err != nil {
			fmt.Fprintf(stderr, "warning: %v\n", err)
		}
	}

	return result, nil
}

func saveHistory(ctx context.Context, path string, result *runner.RunResult) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Save(ctx, result)
	return err
}

// watchedFiles returns the files whose change triggers a re-run.
func watchedFiles(cfg *config.Config) []string {
	files := []string{cfg.EnvFile}
	if cfg.Source != "" {
		files = append(files, cfg.Source)
	}
	for i, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			files[i] = abs
		}
	}
	return files
}

// watch re-runs the suite whenever a watched file changes, until ctx is done.
func watch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, notifier *notify.Manager, lastOK bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories so editors that replace files on save are still seen.
	files := watchedFiles(cfg)
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to watch %s: %v\n", dir, err)
			continue
		}
		watchedDirs[dir] = true
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	rerun := func(changed string) bool {
		fmt.Fprintf(out, "\n\nFile changed: %s\nRe-running checks...\n\n", changed)
		defer fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")

		result, err := executeRun(ctx, cfg, out, cmd.ErrOrStderr(), logger, notifier)
		if err != nil {
			printError(cmd.ErrOrStderr(), err)
			return false
		}
		return result.Success()
	}

	return watchLoop(ctx, watcher.Events, watcher.Errors, files, WatchDebounceDelay, logger, lastOK, rerun)
}

// watchLoop calls rerun once per burst of changes to files, after delay has
// passed without another change. Runs happen on this goroutine so they never
// overlap. Once ctx is done it returns errChecksFailed unless the last run
// passed.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, files []string, delay time.Duration, logger *slog.Logger, lastOK bool, rerun func(changed string) bool) error {
	debounce := time.NewTimer(delay)
	debounce.Stop()
	var changed string

	for {
		select {
		case <-ctx.Done():
			if lastOK {
				return nil
			}
			return errChecksFailed

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !isWatched(files, event) {
				continue
			}
			changed = event.Name
			debounce.Reset(delay)

		case <-debounce.C:
			lastOK = rerun(changed)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

func isWatched(files []string, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		name = event.Name
	}
	for _, f := range files {
		if f == name {
			return true
		}
	}
	return false
}
