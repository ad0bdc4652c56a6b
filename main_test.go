package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func testOptions(t *testing.T) options {
	t.Helper()
	dir := t.TempDir()

	configDir := filepath.Join(dir, "configs")
	require.NoError(t, os.Mkdir(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "classic.json"),
		[]byte(`{"name":"Classic","grid_size":4,"duration_seconds":60}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "quick.json"),
		[]byte(`{"name":"Quick","grid_size":3,"duration_seconds":30}`), 0644))

	words := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(words, []byte("cat\ndog\n"), 0644))

	return options{
		host:          "127.0.0.1",
		port:          0,
		configDir:     configDir,
		dictionary:    words,
		minPlayers:    2,
		tickInterval:  time.Second,
		sweepInterval: time.Minute,
	}
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Word Grid Server", AppName)
}

func TestCommand_FlagDefaults(t *testing.T) {
	cmd := newCommand()
	var got options
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		got = optionsFrom(c)
		return nil
	}

	require.NoError(t, cmd.Run(context.Background(), []string{"wordgrid", "--min-players", "3", "--tick", "250ms"}))

	assert.Equal(t, 3, got.minPlayers)
	assert.Equal(t, 250*time.Millisecond, got.tickInterval)
	assert.Equal(t, 10*time.Minute, got.sweepInterval)
	assert.NotEmpty(t, got.staticDir)
	assert.False(t, got.ngrok)
	assert.Empty(t, got.operatorToken)
}

func TestCommand_EnvironmentFallback(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_PRESET", "quick")
	t.Setenv("OPERATOR_TOKEN", "s3cret")

	run := func(args ...string) options {
		cmd := newCommand()
		var got options
		cmd.Action = func(ctx context.Context, c *cli.Command) error {
			got = optionsFrom(c)
			return nil
		}
		require.NoError(t, cmd.Run(context.Background(), append([]string{"wordgrid"}, args...)))
		return got
	}

	got := run()
	assert.Equal(t, 9090, got.port)
	assert.Equal(t, "quick", got.preset)
	assert.Equal(t, "s3cret", got.operatorToken)

	// flags win over the environment
	assert.Equal(t, 7070, run("--port", "7070").port)
}

func TestCommand_MCPModeSeesRootFlags(t *testing.T) {
	cmd := newCommand()
	var got options
	for _, sub := range cmd.Commands {
		if sub.Name == "mcp" {
			sub.Action = func(ctx context.Context, c *cli.Command) error {
				got = optionsFrom(c)
				return nil
			}
		}
	}

	require.NoError(t, cmd.Run(context.Background(), []string{"wordgrid", "--api-url", "http://example.test:1234", "stdio-mcp"}))
	assert.Equal(t, "http://example.test:1234", got.apiURL)
}

func TestInitializeServices(t *testing.T) {
	opts := testOptions(t)

	svc, err := initializeServices(opts, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "Classic", svc.presets.Default().Name)
	assert.NotNil(t, svc.router)
	assert.NotNil(t, svc.api)
	assert.Zero(t, svc.sessions.Count())
}

func TestInitializeServices_Preset(t *testing.T) {
	opts := testOptions(t)
	opts.preset = "quick"

	svc, err := initializeServices(opts, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, svc.presets.Default().GridSize)

	opts.preset = "missing"
	_, err = initializeServices(opts, zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	opts := testOptions(t)
	opts.configDir = "/non/existent/path"

	_, err := initializeServices(opts, zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeServices_MissingDictionary(t *testing.T) {
	opts := testOptions(t)
	opts.dictionary = "/non/existent/words.txt"

	_, err := initializeServices(opts, zerolog.Nop())
	assert.NoError(t, err)
}

func TestSweepRoutine_StopsWithContext(t *testing.T) {
	svc, err := initializeServices(testOptions(t), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweepRoutine(ctx, svc.router, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep routine did not stop")
	}
}

func TestServer_Endpoints(t *testing.T) {
	opts := testOptions(t)
	opts.operatorToken = "s3cret"
	svc, err := initializeServices(opts, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc.start(ctx, time.Minute)
	t.Cleanup(svc.stop)

	server := httptest.NewServer(svc.api)
	t.Cleanup(server.Close)

	svc.mountMCP(server.URL, opts.operatorToken)

	assert.True(t, apiAvailable(server.URL))
	assert.False(t, apiAvailable("http://127.0.0.1:1"))

	const listConfigs = `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_configs","arguments":{}}}`

	anonymous, err := http.Post(server.URL+"/mcp", "application/json", strings.NewReader(listConfigs))
	require.NoError(t, err)
	anonymous.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, anonymous.StatusCode)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/mcp", strings.NewReader(listConfigs))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Result.Content)
	assert.Contains(t, body.Result.Content[0].Text, "- classic: Classic (4x4, 60s)")
	assert.Contains(t, body.Result.Content[0].Text, "- quick: Quick (3x3, 30s)")
}
