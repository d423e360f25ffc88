package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docufy-ai/docufy/pkg/billing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeSourceFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    pass\n"), 0o644))
	return path
}

func TestEstimateCommand(t *testing.T) {
	out, err := execute(t, "estimate", writeSourceFile(t), "-p", "openai", "-m", "gpt-5-nano")
	require.NoError(t, err)
	assert.Contains(t, out, "Tokens:")
	assert.Contains(t, out, "$")
}

func TestEstimateCommand_FreeModel(t *testing.T) {
	out, err := execute(t, "estimate", writeSourceFile(t), "-p", "ollama", "-m", "llama3.1:8b")
	require.NoError(t, err)
	assert.Contains(t, out, "free (local)")
}

func TestEstimateCommand_UnknownModel(t *testing.T) {
	_, err := execute(t, "estimate", writeSourceFile(t), "-p", "openai", "-m", "unknown-model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestGenerateCommand_LocalProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-test","object":"chat.completion","created":1700000000,
			"model":"llama3.1:8b",
			"choices":[{"index":0,"message":{"role":"assistant","content":"def f():\n    \"\"\"Doc.\"\"\"\n    pass\n"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":50,"completion_tokens":80,"total_tokens":130}
		}`))
	}))
	defer srv.Close()

	outputDir := t.TempDir()
	t.Setenv("DOCUFY_PROVIDERS_OLLAMA_BASE_URL", srv.URL)
	t.Setenv("DOCUFY_HISTORY_PATH", filepath.Join(t.TempDir(), "history.db"))

	source := writeSourceFile(t)
	out, err := execute(t, "generate", source, "-p", "ollama", "-m", "llama3.1:8b",
		"--yes", "--output-dir", outputDir)
	require.NoError(t, err)

	assert.Contains(t, out, "free")
	assert.Contains(t, out, "Output saved to")

	generated, err := os.ReadFile(filepath.Join(outputDir, "script.doc.py"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "Doc.")
}

func TestGenerateCommand_UnknownModelHaltsBeforeEstimate(t *testing.T) {
	_, err := execute(t, "generate", writeSourceFile(t), "-p", "openai", "-m", "nope", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestModelsCommand(t *testing.T) {
	out, err := execute(t, "models")
	require.NoError(t, err)
	assert.Contains(t, out, "PROVIDER")
	assert.Contains(t, out, "openai")
	assert.Contains(t, out, "gpt-5-mini")
	assert.Contains(t, out, "local")
}

func TestHistoryCommand_Empty(t *testing.T) {
	t.Setenv("DOCUFY_HISTORY_PATH", filepath.Join(t.TempDir(), "history.db"))

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docufy version")
}

func TestWriteOutput_Naming(t *testing.T) {
	dir := t.TempDir()

	path, err := writeOutput(dir, "/some/where/module.py", "content")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "module.doc.py"), path)

	path, err = writeOutput(dir, "main.go", "content")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "main.doc.go"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"whatever\n", false},
	}

	for _, tt := range tests {
		out := &bytes.Buffer{}
		got := confirm(strings.NewReader(tt.input), out)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Proceed?")
	}
}

func TestPrintReport_IncludesReasoningNote(t *testing.T) {
	out := &bytes.Buffer{}
	printReport(out, billing.UsageReport{
		UsageStats:   billing.UsageStats{InputTokens: 318, OutputTokens: 2820, ReasoningTokens: 2048},
		TotalCostUSD: 0.0011439,
		Currency:     billing.CurrencyUSD,
	})

	assert.Contains(t, out.String(), "2048 reasoning tokens")
	assert.Contains(t, out.String(), "$0.00114")
}
