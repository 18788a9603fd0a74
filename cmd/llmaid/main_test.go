package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/llmaid/config"
	"github.com/kbukum/llmaid/errors"
	"github.com/kbukum/llmaid/internal/mockbackend"
)

// clearEnv hides any LLMAID_* settings of the machine running the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range config.EnvVars {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func startMock(t *testing.T, cfg mockbackend.Config) (*mockbackend.Server, string) {
	t.Helper()
	srv, err := mockbackend.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func connFlags(url string) []string {
	return []string{"--env-file", "/nonexistent/.env", "--base-url", url, "--secret", "sk-cli-secret", "-m", mockbackend.DefaultModel}
}

func TestComplete(t *testing.T) {
	clearEnv(t)
	srv, url := startMock(t, mockbackend.Config{Echo: true})

	args := append([]string{"complete"}, connFlags(url)...)
	args = append(args, "-t", "You are a {{role}}.", "--var", "role=tutor", "--max-tokens", "7", "What", "is", "2+2?")
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("complete error: %v", err)
	}
	if want := "You are a tutor.\nWhat is 2+2?\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	got, _ := srv.LastRequest()
	if got.Body.MaxTokens == nil || *got.Body.MaxTokens != 7 || got.Body.Temperature != nil {
		t.Errorf("body = %+v", got.Body)
	}
	if got.Authorization != "Bearer sk-cli-secret" {
		t.Errorf("Authorization = %q", got.Authorization)
	}
}

func TestComplete_MissingSettings(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "complete", "--env-file", "/nonexistent/.env", "hello")
	if !errors.IsConfig(err) {
		t.Fatalf("error = %v, want config error", err)
	}
	if !strings.Contains(err.Error(), config.FieldBaseURL) {
		t.Errorf("error does not name the missing field: %v", err)
	}
}

func TestStream(t *testing.T) {
	clearEnv(t)
	_, url := startMock(t, mockbackend.Config{})

	out, err := execute(t, append(append([]string{"stream"}, connFlags(url)...), "hi")...)
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if out != "Hello world!\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRender_Prompt(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr func(error) bool
	}{
		{"bound", []string{"-t", "Hi {{name}}", "--var", "name=Ada"}, "Hi Ada\n", nil},
		{"prompt appended", []string{"-t", "Hi {{name}}", "--var", "name=Ada", "how", "are", "you"}, "Hi Ada\nhow are you\n", nil},
		{"literal prompt", []string{"keep {{x}}"}, "keep {{x}}\n", nil},
		{"strict missing", []string{"-t", "Hi {{name}}"}, "", errors.IsTemplate},
		{"lenient missing", []string{"--lenient", "-t", "Hi {{name}}"}, "Hi {{name}}\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"render", "--env-file", "/nonexistent/.env"}, tt.args...)...)
			if tt.wantErr != nil {
				if !tt.wantErr(err) {
					t.Fatalf("error = %v, wrong kind", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("render error: %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRender_Request(t *testing.T) {
	clearEnv(t)
	out, err := execute(t, "render", "--request", "--env-file", "/nonexistent/.env",
		"--base-url", "https://api.example.com/v1", "--secret", "sk-abcdef1234", "-m", "gpt-x",
		"--temperature", "0", "--context-length", "2048", "Say hello")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	var got struct {
		Method        string            `json:"method"`
		URL           string            `json:"url"`
		Headers       map[string]string `json:"headers"`
		Body          map[string]any    `json:"body"`
		ContextLength int               `json:"context_length"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Method != "POST" || got.URL != "https://api.example.com/v1/completions" {
		t.Errorf("request line = %s %s", got.Method, got.URL)
	}
	if got.Headers["Authorization"] != "Bearer *********1234" {
		t.Errorf("Authorization = %q", got.Headers["Authorization"])
	}
	if got.Body["temperature"] != 0.0 || got.Body["prompt"] != "Say hello" || got.Body["stream"] != false {
		t.Errorf("body = %v", got.Body)
	}
	for _, absent := range []string{"max_tokens", "top_p", "context_length"} {
		if _, ok := got.Body[absent]; ok {
			t.Errorf("body has %q", absent)
		}
	}
	if got.ContextLength != 2048 {
		t.Errorf("context_length = %d", got.ContextLength)
	}
	if strings.Contains(out, "sk-abcdef1234") {
		t.Error("secret printed in clear")
	}
}

func TestCheck_Mock(t *testing.T) {
	clearEnv(t)
	out, err := execute(t, "check", "--mock", "--env-file", "/nonexistent/.env")
	if err != nil {
		t.Fatalf("check error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "7 passed, 0 failed") {
		t.Errorf("summary missing:\n%s", out)
	}
	if !strings.Contains(out, "*******cret") || strings.Contains(out, "mock-secret") {
		t.Errorf("secret not masked:\n%s", out)
	}
	for _, name := range []string{"basic completion", "template completion", "error handling", "streaming completion"} {
		if !strings.Contains(out, "PASS  "+name) {
			t.Errorf("%q did not pass:\n%s", name, out)
		}
	}
}

func TestCheck_ReportsFailures(t *testing.T) {
	clearEnv(t)
	// A backend that rejects the configured secret fails the completion checks.
	_, url := startMock(t, mockbackend.Config{Secret: "other"})

	out, err := execute(t, append([]string{"check", "--json"}, connFlags(url)...)...)
	if err == nil {
		t.Fatal("expected failures")
	}
	var report struct {
		Status     string `json:"status"`
		Components []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"components"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if report.Status != "down" || len(report.Components) != 7 {
		t.Errorf("report = %+v", report)
	}
}

func TestOptions_Overrides(t *testing.T) {
	opts := &options{}
	cmd := newRootCommand(opts)
	if err := cmd.PersistentFlags().Parse([]string{"--model", "m1", "--temperature", "0", "--lenient"}); err != nil {
		t.Fatal(err)
	}
	ov := opts.overrides()

	if ov.Model == nil || *ov.Model != "m1" {
		t.Errorf("Model = %v", ov.Model)
	}
	if ov.Temperature == nil || *ov.Temperature != 0 {
		t.Errorf("Temperature = %v", ov.Temperature)
	}
	if ov.StrictTemplate == nil || *ov.StrictTemplate {
		t.Errorf("StrictTemplate = %v", ov.StrictTemplate)
	}
	if ov.BaseURL != nil || ov.MaxTokens != nil || ov.TopP != nil {
		t.Errorf("unset flags leaked into overrides: %+v", ov)
	}
}
