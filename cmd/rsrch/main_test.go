package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/rsrch/internal/render"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old
	return <-outC
}

// execute runs the root command with args against an isolated HOME.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() {
		configPath, endpoint, logLevel = "", "", ""
		timeout = 0
		askJSON, renderJSON, renderFile = false, false, ""
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func analysisServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	out := captureStdout(t, func() { versionCmd.Run(nil, nil) })

	if !strings.Contains(out, "rsrch dev") {
		t.Errorf("Expected version output to contain 'rsrch dev', got: %s", out)
	}
	if !strings.Contains(out, "github.com/pders01/rsrch") {
		t.Errorf("Expected version output to contain 'github.com/pders01/rsrch', got: %s", out)
	}
}

func TestGenerateConfigCommand(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configFile := filepath.Join(tmpDir, ".config", "rsrch", "config.toml")

	out := captureStdout(t, func() { configGenCmd.Run(nil, nil) })

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		t.Errorf("Config file was not created at %s", configFile)
	}
	if !strings.Contains(out, "Generated default configuration at:") {
		t.Errorf("Expected output to contain 'Generated default configuration at:', got: %s", out)
	}
}

func TestAskCommand(t *testing.T) {
	srv := analysisServer(t, http.StatusOK, `{"answer":"Article 1:\nMutation: rpoB S531L\nDrug: Rifampicin"}`)

	out, _, err := execute(t, "", "ask", "--endpoint", srv.URL, "What", "mutations?")
	require.NoError(t, err)

	assert.Contains(t, out, "Analysis Complete")
	assert.Contains(t, out, "1 mutation • 1 drug")
	assert.Contains(t, out, "rpoB S531L")
}

func TestAskCommand_JSONFromStdin(t *testing.T) {
	srv := analysisServer(t, http.StatusOK, `{"answer":"Pathogen: M. tuberculosis"}`)

	out, _, err := execute(t, "which pathogen?\n", "ask", "--json", "--endpoint", srv.URL)
	require.NoError(t, err)

	var got output
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "which pathogen?", got.Query)
	require.Len(t, got.Blocks, 1)
	assert.Equal(t, render.TagPathogen, got.Blocks[0].Tag)
	assert.Equal(t, 1, got.Tally[render.TagPathogen])
	assert.Empty(t, got.Error)
}

func TestAskCommand_JSONArticles(t *testing.T) {
	srv := analysisServer(t, http.StatusOK, `{"answer":"Drug: X"}`)

	out, _, err := execute(t, "", "ask", "--json", "--endpoint", srv.URL,
		"check", "https://pubmed.ncbi.nlm.nih.gov/31234567/", "and", "http://10.0.0.1/x")
	require.NoError(t, err)

	var got output
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Articles, 2)
	assert.Equal(t, "PubMed", got.Articles[0].Source)
	assert.Equal(t, "31234567", got.Articles[0].ID)
	assert.Contains(t, got.Articles[1].Error, "private IP")
}

func TestAskCommand_ServiceError(t *testing.T) {
	srv := analysisServer(t, http.StatusBadRequest, `{"detail":"Could not fetch article"}`)

	out, _, err := execute(t, "", "ask", "--json", "--endpoint", srv.URL, "q")
	require.Error(t, err)
	assert.Equal(t, "Could not fetch article", err.Error())

	var got output
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Could not fetch article", got.Error)
	assert.Empty(t, got.Blocks)
}

func TestAskCommand_WarnsAboutLocalArticleURLs(t *testing.T) {
	srv := analysisServer(t, http.StatusOK, `{"answer":"Drug: X"}`)

	_, stderr, err := execute(t, "", "ask", "--endpoint", srv.URL, "read", "http://localhost/paper")
	require.NoError(t, err)
	assert.Contains(t, stderr, "localhost URLs are not permitted")
}

func TestAskCommand_EmptyQuery(t *testing.T) {
	_, _, err := execute(t, "   ", "ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query cannot be empty")
}

func TestAskCommand_InvalidEndpoint(t *testing.T) {
	_, _, err := execute(t, "", "ask", "--endpoint", "ftp://example.org", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --endpoint")
}

func TestAskCommand_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	_, _, err := execute(t, "", "ask", "--endpoint", srv.URL, "--timeout", "50ms", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestRenderCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "answer.txt")
	require.NoError(t, os.WriteFile(file, []byte("**Drug:** Isoniazid\n"), 0o600))

	out, _, err := execute(t, "", "render", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Isoniazid")
	assert.NotContains(t, out, "**")
}

func TestRenderCommand_StdinJSON(t *testing.T) {
	out, _, err := execute(t, "Summary:\nKey: value: with colon\n", "render", "--json")
	require.NoError(t, err)

	var got output
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Blocks, 2)
	assert.Equal(t, render.KindHeading, got.Blocks[0].Kind)
	assert.Equal(t, "value: with colon", got.Blocks[1].Value)
}

func TestRenderCommand_EmptyInput(t *testing.T) {
	out, _, err := execute(t, "", "render")
	require.NoError(t, err)
	assert.Contains(t, out, "no findings")
}

func TestRenderCommand_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "render", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
