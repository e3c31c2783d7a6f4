package main

import (
	"testing"

	"spool/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTruncate tests the string truncation helper function
func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "no truncation needed",
			input:    "short",
			maxLen:   10,
			expected: "short",
		},
		{
			name:     "needs truncation",
			input:    "this is a long string that needs truncation",
			maxLen:   20,
			expected: "this is a long st...",
		},
		{
			name:     "very short maxLen",
			input:    "hello",
			maxLen:   3,
			expected: "hel",
		},
		{
			name:     "empty string",
			input:    "",
			maxLen:   10,
			expected: "",
		},
		{
			name:     "multibyte within limit",
			input:    "Léo's Über Mod",
			maxLen:   20,
			expected: "Léo's Über Mod",
		},
		{
			name:     "multibyte truncated on rune boundary",
			input:    "Léo's Über Mod Collection",
			maxLen:   10,
			expected: "Léo's Ü...",
		},
		{
			name:     "cjk truncated on rune boundary",
			input:    "空洞騎士シルクソング改造",
			maxLen:   6,
			expected: "空洞騎...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestCommandStructure tests that all subcommands are registered
func TestCommandStructure(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"search", "list", "install", "uninstall", "repo", "browse"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestRepoCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range repoCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"list", "add", "remove", "refresh", "validate"} {
		assert.True(t, names[want], "missing repo subcommand %q", want)
	}
}

func TestPickDownload(t *testing.T) {
	mod := domain.Mod{
		Title: "Lantern of Lumafly",
		Downloads: []domain.Download{
			{Label: "Download v1.0.0", URL: "https://example.com/v1.zip"},
			{Label: "Download v2.0.0", URL: "https://example.com/v2.zip"},
		},
	}

	d, err := pickDownload(mod, "")
	require.NoError(t, err)
	assert.Equal(t, "Download v1.0.0", d.Label)

	d, err = pickDownload(mod, "Download v2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v2.zip", d.URL)

	_, err = pickDownload(mod, "Download v9.9.9")
	assert.Error(t, err)

	_, err = pickDownload(domain.Mod{Title: "Empty"}, "")
	assert.Error(t, err)
}

func TestResolveDirs_Defaults(t *testing.T) {
	configDir, dataDir = "", ""

	cfgDir, dtDir, err := resolveDirs()
	require.NoError(t, err)
	assert.Contains(t, cfgDir, ".config")
	assert.Contains(t, dtDir, ".local")
}

func TestResolveDirs_Explicit(t *testing.T) {
	configDir, dataDir = "/tmp/cfg", "/tmp/data"
	defer func() { configDir, dataDir = "", "" }()

	cfgDir, dtDir, err := resolveDirs()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cfg", cfgDir)
	assert.Equal(t, "/tmp/data", dtDir)
}
