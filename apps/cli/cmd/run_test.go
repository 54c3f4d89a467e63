package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/core/config"
	"github.com/abdul-hamid-achik/apiprobe/packages/core/env"
	"github.com/abdul-hamid-achik/apiprobe/packages/history"
	"github.com/abdul-hamid-achik/apiprobe/packages/mock"
	"github.com/abdul-hamid-achik/apiprobe/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func backendConfig(t *testing.T, opts ...mock.Option) (*mock.Server, *config.Config) {
	t.Helper()
	backend := mock.NewServer(opts...)
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.EnvFile = writeEnvFile(t, "WDS_SOCKET_PORT=443\nREACT_APP_BACKEND_URL=\""+srv.URL+"/\"\n")
	cfg.NoColor = config.BoolPtr(true)
	return backend, cfg
}

func TestExecuteRun_HealthyBackend(t *testing.T) {
	backend, cfg := backendConfig(t)
	var stdout, stderr bytes.Buffer

	result, err := executeRun(context.Background(), cfg, &stdout, &stderr, discard, nil)

	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, 3, backend.Hits())
	assert.Len(t, backend.Records(), 1)

	out := stdout.String()
	assert.Contains(t, out, "Using backend URL: "+result.BaseURL)
	assert.Contains(t, out, "✅ Root endpoint test passed")
	assert.Contains(t, out, "✅ Status check creation test passed")
	assert.Contains(t, out, "✅ Status check retrieval test passed")
	assert.Contains(t, out, "Checks: 3 passed, 0 failed, 3 total")
	assert.Empty(t, stderr.String())
}

func TestExecuteRun_MissingKeySendsNoRequest(t *testing.T) {
	backend, cfg := backendConfig(t)
	cfg.EnvFile = writeEnvFile(t, "REACT_APP_OTHER=1\n")
	var stdout, stderr bytes.Buffer

	result, err := executeRun(context.Background(), cfg, &stdout, io.Discard, discard, nil)

	assert.Nil(t, result)
	var cfgErr *env.ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.True(t, errors.Is(err, env.ErrKeyNotFound))
	assert.Equal(t, 0, backend.Hits())
	assert.Equal(t, ExitFailure, exitCode(err))

	assert.Equal(t, "Error: could not find REACT_APP_BACKEND_URL in "+cfg.EnvFile+"\n", stdout.String())
	printError(&stderr, err)
	assert.Empty(t, stderr.String(), "console already showed the error")
}

func TestExecuteRun_MissingKeyStillWritesReport(t *testing.T) {
	tests := []struct {
		output   string
		contains string
	}{
		{"json", `"errors": [`},
		{"junit", `type="ConfigError"`},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			backend, cfg := backendConfig(t)
			cfg.EnvFile = writeEnvFile(t, "REACT_APP_OTHER=1\n")
			cfg.Output = tt.output
			var stdout, stderr bytes.Buffer

			_, err := executeRun(context.Background(), cfg, &stdout, io.Discard, discard, nil)

			require.Error(t, err)
			assert.Equal(t, 0, backend.Hits())
			assert.Contains(t, stdout.String(), tt.contains)
			assert.Contains(t, stdout.String(), "could not find REACT_APP_BACKEND_URL")

			printError(&stderr, err)
			assert.Contains(t, stderr.String(), "Error: could not find REACT_APP_BACKEND_URL")
		})
	}
}

func TestExecuteRun_MissingKeyJSONErrors(t *testing.T) {
	_, cfg := backendConfig(t)
	cfg.EnvFile = writeEnvFile(t, "")
	cfg.Output = "json"
	var stdout bytes.Buffer

	_, err := executeRun(context.Background(), cfg, &stdout, io.Discard, discard, nil)
	require.Error(t, err)

	var report output.JSONOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.False(t, report.Success)
	assert.Empty(t, report.Checks)
	assert.Equal(t, []string{err.Error()}, report.Errors)
}

func TestExecuteRun_FailingCheckKeepsGoing(t *testing.T) {
	backend, cfg := backendConfig(t, mock.WithGreeting("Goodbye"))
	var stdout bytes.Buffer

	result, err := executeRun(context.Background(), cfg, &stdout, io.Discard, discard, nil)

	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, backend.Hits())
	assert.Contains(t, stdout.String(), `❌ Root endpoint test failed: GET `)
	assert.Contains(t, stdout.String(), `expected "Hello World", got "Goodbye"`)
	assert.Contains(t, stdout.String(), "Checks: 2 passed, 1 failed, 3 total")
}

func TestExecuteRun_JSONReportAndHistory(t *testing.T) {
	_, cfg := backendConfig(t)
	dir := t.TempDir()
	cfg.Output = "json"
	cfg.OutputFile = filepath.Join(dir, "report.json")
	cfg.History = filepath.Join(dir, "history.db")
	var stdout bytes.Buffer

	result, err := executeRun(context.Background(), cfg, &stdout, io.Discard, discard, nil)
	require.NoError(t, err)
	assert.Empty(t, stdout.String(), "report goes to the output file")

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var report output.JSONOutput
	require.NoError(t, json.Unmarshal(data, &report))
	assert.True(t, report.Success)
	assert.Equal(t, result.BaseURL, report.BaseURL)
	assert.Len(t, report.Checks, 3)

	store, err := history.Open(cfg.History)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Passed)
}

func TestExecuteRun_UnwritableOutputFile(t *testing.T) {
	_, cfg := backendConfig(t)
	cfg.OutputFile = filepath.Join(t.TempDir(), "missing", "report.txt")

	_, err := executeRun(context.Background(), cfg, io.Discard, io.Discard, discard, nil)

	assert.ErrorContains(t, err, "cannot create output file")
}

func TestExecuteRun_HistoryFailureIsWarning(t *testing.T) {
	_, cfg := backendConfig(t)
	cfg.History = "postgres://localhost/runs"
	var stderr bytes.Buffer

	result, err := executeRun(context.Background(), cfg, io.Discard, &stderr, discard, nil)

	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Contains(t, stderr.String(), "warning: failed to record run history")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitFailure, exitCode(errChecksFailed))
	assert.Equal(t, ExitFailure, exitCode(errors.New("usage")))
	assert.Equal(t, ExitFailure, exitCode(&reportedError{err: errors.New("shown")}))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer

	printError(&buf, errChecksFailed)
	printError(&buf, &reportedError{err: errors.New("shown")})
	assert.Empty(t, buf.String())

	printError(&buf, errors.New("unknown output format"))
	assert.Equal(t, "Error: unknown output format\n", buf.String())
}

// newFlagCommand rebinds the run flags on a fresh command so each test
// starts from unparsed flags.
func newFlagCommand(args ...string) *cobra.Command {
	c := &cobra.Command{Use: "test"}
	flags := c.Flags()
	flags.StringVar(&envFileFlag, "env-file", env.DefaultFile, "")
	flags.StringVar(&urlKeyFlag, "url-key", env.DefaultKey, "")
	flags.StringVar(&configFlag, "config", "", "")
	flags.StringVar(&timeoutFlag, "timeout", "0s", "")
	flags.StringVarP(&outputFlag, "output", "o", "console", "")
	flags.StringVar(&outputFileFlag, "output-file", "", "")
	flags.StringVar(&historyFlag, "history", "", "")
	flags.BoolVar(&noColorFlag, "no-color", false, "")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "")
	flags.BoolVarP(&insecureFlag, "insecure", "k", false, "")
	flags.StringVar(&slackWebhookFlag, "slack-webhook", "", "")
	flags.StringVar(&slackChannelFlag, "slack-channel", "", "")
	flags.StringVar(&notifyOnFlag, "notify-on", "failure", "")
	_ = flags.Parse(args)
	return c
}

func TestResolveConfig_Layers(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "apiprobe.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
envFile: /srv/frontend/.env
urlKey: BACKEND_URL
timeout: 10s
output: junit
`), 0644))

	cfg, err := resolveConfig(newFlagCommand("--config", configPath, "--url-key", "API_URL", "-k"))

	require.NoError(t, err)
	assert.Equal(t, configPath, cfg.Source)
	assert.Equal(t, "/srv/frontend/.env", cfg.EnvFile, "file value kept when flag not set")
	assert.Equal(t, "API_URL", cfg.URLKey, "explicit flag overrides file")
	assert.Equal(t, config.Duration(10*time.Second), cfg.Timeout)
	assert.Equal(t, "junit", cfg.Output)
	assert.False(t, cfg.GetValidateSSL())
}

func TestResolveConfig_ZeroTimeoutFlagClearsFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "apiprobe.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("timeout: 30s\n"), 0644))

	cfg, err := resolveConfig(newFlagCommand("--config", configPath))
	require.NoError(t, err)
	assert.Equal(t, config.Duration(30*time.Second), cfg.Timeout)

	cfg, err = resolveConfig(newFlagCommand("--config", configPath, "--timeout", "0"))
	require.NoError(t, err)
	assert.Equal(t, config.Duration(0), cfg.Timeout)
}

func TestResolveConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := resolveConfig(newFlagCommand("--config", filepath.Join(dir, "nope.yaml")))
	assert.Error(t, err, "an explicit config file must exist")

	_, err = resolveConfig(newFlagCommand("--config", "", "--timeout", "soon"))
	assert.ErrorContains(t, err, "invalid timeout")

	_, err = resolveConfig(newFlagCommand("--output", "html"))
	assert.ErrorContains(t, err, "unknown output format")

	_, err = resolveConfig(newFlagCommand("--notify-on", "sometimes"))
	assert.ErrorContains(t, err, "unknown notify policy")
}

func TestExecuteRun_NotifiesSlackOnFailure(t *testing.T) {
	var posts int
	slack := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		w.WriteHeader(http.StatusOK)
	}))
	defer slack.Close()

	_, cfg := backendConfig(t, mock.WithFault("GET", "/api/status", mock.Fault{StatusCode: 500}))
	cfg.SlackWebhook = slack.URL
	notifier := newNotifier(cfg)
	require.NotNil(t, notifier)

	result, err := executeRun(context.Background(), cfg, io.Discard, io.Discard, discard, notifier)

	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, 1, posts)
	assert.Nil(t, newNotifier(config.DefaultConfig()), "no webhook, no notifier")
}

func TestWatchLoop_DebouncesAndReportsLastRun(t *testing.T) {
	envFile := "/work/frontend/.env"
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	runs := make(chan string, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, []string{envFile}, 50*time.Millisecond, discard, false, func(changed string) bool {
			runs <- changed
			return true
		})
	}()

	events <- fsnotify.Event{Name: "/work/frontend/other.txt", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: envFile, Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: envFile, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: envFile, Op: fsnotify.Create}
	errs <- errors.New("transient")

	select {
	case changed := <-runs:
		assert.Equal(t, envFile, changed)
	case <-time.After(2 * time.Second):
		t.Fatal("no re-run after a watched file changed")
	}
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, runs, "a burst of changes re-runs once")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "last run passed")
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}

func TestWatchLoop_ExitStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	never := func(string) bool { panic("no change was sent") }

	err := watchLoop(ctx, nil, nil, nil, time.Millisecond, discard, false, never)
	assert.ErrorIs(t, err, errChecksFailed)

	err = watchLoop(ctx, nil, nil, nil, time.Millisecond, discard, true, never)
	assert.NoError(t, err)

	events := make(chan fsnotify.Event)
	close(events)
	err = watchLoop(context.Background(), events, nil, nil, time.Millisecond, discard, false, never)
	assert.NoError(t, err, "a closed watcher ends the loop")
}

func TestWatchedFiles(t *testing.T) {
	cfg := &config.Config{EnvFile: "/app/frontend/.env", Source: "/work/apiprobe.yaml"}

	assert.Equal(t, []string{"/app/frontend/.env", "/work/apiprobe.yaml"}, watchedFiles(cfg))
}
