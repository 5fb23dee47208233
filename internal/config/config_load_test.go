package config

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// resetFlags gives every test a fresh flag set and viper instance
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// load runs LoadFromFlags with args as the command line
func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
	})

	os.Args = append([]string{"mcp-pdf-forms"}, args...)
	resetFlags()
	return LoadFromFlags()
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	cfg, err := load(t)
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != ModeStdio {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, ModeStdio)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, DefaultPort)
	}
	if cfg.Suggestions != DefaultSuggestions {
		t.Errorf("LoadFromFlags() Suggestions = %v, want %v", cfg.Suggestions, DefaultSuggestions)
	}
	if cfg.PDFDirectory == "" {
		t.Error("LoadFromFlags() PDFDirectory should not be empty")
	}
	if cfg.OutputDirectory != cfg.PDFDirectory {
		t.Errorf("LoadFromFlags() OutputDirectory = %v, want input directory %v", cfg.OutputDirectory, cfg.PDFDirectory)
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	cfg, err := load(t,
		"--mode=server", "--host=0.0.0.0", "--port=9090",
		"--dir="+in, "--outdir="+out,
		"--loglevel=debug", "--maxfilesize=1024", "--suggestions=5")
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	want := Config{
		Mode: ModeServer, Host: "0.0.0.0", Port: 9090,
		PDFDirectory: in, OutputDirectory: out, Suggestions: 5,
		LogLevel: "debug", MaxFileSize: 1024,
	}
	got := Config{
		Mode: cfg.Mode, Host: cfg.Host, Port: cfg.Port,
		PDFDirectory: cfg.PDFDirectory, OutputDirectory: cfg.OutputDirectory, Suggestions: cfg.Suggestions,
		LogLevel: cfg.LogLevel, MaxFileSize: cfg.MaxFileSize,
	}
	if got != want {
		t.Errorf("LoadFromFlags() = %+v, want %+v", got, want)
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MCP_PDF_FORMS_MODE", "server")
	t.Setenv("MCP_PDF_FORMS_PORT", "3000")
	t.Setenv("MCP_PDF_FORMS_DIR", dir)
	t.Setenv("MCP_PDF_FORMS_LOGLEVEL", "warn")
	t.Setenv("MCP_PDF_FORMS_SUGGESTIONS", "1")

	cfg, err := load(t)
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != ModeServer {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, ModeServer)
	}
	if cfg.Port != 3000 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 3000)
	}
	if cfg.PDFDirectory != dir {
		t.Errorf("LoadFromFlags() PDFDirectory = %v, want %v", cfg.PDFDirectory, dir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.Suggestions != 1 {
		t.Errorf("LoadFromFlags() Suggestions = %v, want %v", cfg.Suggestions, 1)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv("MCP_PDF_FORMS_MODE", "server")
	t.Setenv("MCP_PDF_FORMS_PORT", "3000")

	cfg, err := load(t, "--mode=stdio", "--port=8888")
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}
	if cfg.Mode != ModeStdio {
		t.Errorf("LoadFromFlags() Mode = %v, want %v (should override env)", cfg.Mode, ModeStdio)
	}
	if cfg.Port != 8888 {
		t.Errorf("LoadFromFlags() Port = %v, want %v (should override env)", cfg.Port, 8888)
	}
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"invalid mode", []string{"--mode=invalid"}, "mode must be either"},
		{"invalid port", []string{"--mode=server", "--port=70000"}, "port must be between"},
		{"invalid log level", []string{"--loglevel=trace"}, "invalid log level"},
		{"negative suggestions", []string{"--suggestions=-1"}, "suggestions cannot be negative"},
		{"version flag", []string{"--version"}, "version requested"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, append(tt.args, "--dir="+t.TempDir())...)
			if err == nil {
				t.Fatalf("LoadFromFlags() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFromFlags() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
