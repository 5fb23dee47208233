package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "mcp-pdf-forms", cfg.ServerName)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultSuggestions, cfg.Suggestions)
	assert.Empty(t, cfg.OutputDirectory)

	currentDir, _ := os.Getwd()
	assert.Equal(t, currentDir, cfg.PDFDirectory)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PDFDirectory = t.TempDir()
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "stdio mode", modify: func(*Config) {}},
		{name: "server mode", modify: func(c *Config) { c.Mode = ModeServer }},
		{name: "port ignored in stdio mode", modify: func(c *Config) { c.Port = 0 }},
		{name: "invalid mode", modify: func(c *Config) { c.Mode = "http" }, wantErr: "mode must be either"},
		{name: "invalid port", modify: func(c *Config) { c.Mode = ModeServer; c.Port = 0 }, wantErr: "port must be between"},
		{name: "empty directory", modify: func(c *Config) { c.PDFDirectory = "" }, wantErr: "PDF directory cannot be empty"},
		{name: "zero max file size", modify: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "must be positive"},
		{name: "negative suggestions", modify: func(c *Config) { c.Suggestions = -2 }, wantErr: "cannot be negative"},
		{name: "invalid log level", modify: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidateDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := DefaultConfig()
	cfg.PDFDirectory = filepath.Join(base, "in", "nested")
	require.NoError(t, cfg.Validate())

	assert.DirExists(t, cfg.PDFDirectory)
	assert.Equal(t, cfg.PDFDirectory, cfg.OutputDirectory, "output directory defaults to input")

	cfg.OutputDirectory = filepath.Join(base, "out")
	require.NoError(t, cfg.Validate())
	assert.DirExists(t, cfg.OutputDirectory)

	file := filepath.Join(base, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.OutputDirectory = file
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestConfigAccessors(t *testing.T) {
	cfg := &Config{Mode: ModeServer, Host: "localhost", Port: 9000, LogLevel: "debug"}
	assert.Equal(t, "localhost:9000", cfg.Address())
	assert.True(t, cfg.IsDebug())
	assert.True(t, cfg.IsServerMode())
	assert.False(t, cfg.IsStdioMode())

	cfg.Mode = ModeStdio
	cfg.LogLevel = "info"
	assert.False(t, cfg.IsDebug())
	assert.True(t, cfg.IsStdioMode())
	assert.Contains(t, cfg.String(), "Port: 9000")
}
