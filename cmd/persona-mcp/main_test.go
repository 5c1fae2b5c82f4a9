// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/persona-mcp/pkg/types"
)

func withDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".persona")
	viper.Set("dir", dir)
	t.Cleanup(func() { viper.Set("dir", "") })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := withDir(t)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Persona.Dir)
	assert.Equal(t, types.DefaultExtension, cfg.Persona.Extension)
	assert.Equal(t, types.TransportStdio, cfg.Server.Transport)
	assert.Equal(t, "localhost:8081", cfg.Server.HTTPAddr)
	assert.True(t, cfg.Server.Watch)
	assert.False(t, cfg.Index.Enabled)
	assert.Equal(t, filepath.Join(dir, ".index", "personas.db"), cfg.Index.Path)
	assert.Equal(t, 5, cfg.Index.MaxResults)
	assert.Equal(t, 1500, cfg.Index.ChunkSize)
	assert.Equal(t, types.BackendNative, cfg.Conversion.Backend)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandHome("~/.persona")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".persona"), got)

	got, err = expandHome("/srv/personas")
	require.NoError(t, err)
	assert.Equal(t, "/srv/personas", got)

	got, err = expandHome("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPersonaCommands(t *testing.T) {
	withDir(t)

	run := func(stdin string, args ...string) (string, error) {
		var out bytes.Buffer
		cmd := saveCmd
		switch args[0] {
		case "list":
			cmd = listCmd
		case "show":
			cmd = showCmd
		case "delete":
			cmd = deleteCmd
		}
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetContext(t.Context())
		err := cmd.RunE(cmd, args[1:])
		return out.String(), err
	}

	out, err := run("You are helpful", "save", "default")
	require.NoError(t, err)
	assert.Contains(t, out, `Persona "default" created.`)

	out, err = run("You are very helpful", "save", "default")
	require.NoError(t, err)
	assert.Equal(t, "Persona \"default\" updated.\n", out)

	out, err = run("", "show", "default")
	require.NoError(t, err)
	assert.Equal(t, "You are very helpful\n", out)

	out, err = run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "- default\n")

	_, err = run("", "delete", "default")
	require.NoError(t, err)

	_, err = run("", "delete", "default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = run("", "show", "default")
	assert.Error(t, err)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcdefg...", clip("abcdefghijklmnop", 10))

	// Multi-byte names are cut on rune boundaries.
	assert.Equal(t, "한국어", clip("한국어", 3))
	got := clip("데이터과학자페르소나입니다", 8)
	assert.Equal(t, "데이터과학...", got)
	assert.True(t, utf8.ValidString(got))
}
