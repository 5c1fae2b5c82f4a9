// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/persona-mcp/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(types.PersonaConfig{Dir: filepath.Join(t.TempDir(), ".persona")})
	require.NoError(t, s.Init())
	return s
}

func TestSaveReadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	content := "You are helpful.\n\n## Style\n- concise\n"
	require.NoError(t, s.Save("default", content))

	got, err := s.Read("default")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// On-disk representation is exactly the raw text.
	raw, err := os.ReadFile(filepath.Join(s.Dir(), "default.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, string(raw))
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("casual", "first"))
	require.NoError(t, s.Save("casual", "second"))

	got, err := s.Read("casual")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestReadMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Read("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestReadUnreadable(t *testing.T) {
	s := newTestStore(t)

	// A directory with the persona suffix cannot be read as a file.
	require.NoError(t, os.Mkdir(s.Path("odd"), 0o755))

	_, err := s.Read("odd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.Delete("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAfterCreateAndDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("a", "alpha"))
	require.NoError(t, s.Save("b", "beta"))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, s.Delete("a"))

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestListFiltersEntries(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("keep", "x"))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "archive.txt.bak"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(s.Dir(), ".index"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "folder.txt"), 0o755))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, names)
}

func TestListMissingDirectory(t *testing.T) {
	s := NewStore(types.PersonaConfig{Dir: filepath.Join(t.TempDir(), "nope")})

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListUnreadableDirectory(t *testing.T) {
	// The persona directory path points at a regular file.
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	s := NewStore(types.PersonaConfig{Dir: path})

	_, err := s.List()
	assert.Error(t, err)
}

func TestEntries(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("one", "1"))

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "one", entries[0].Name)
	assert.Equal(t, s.Path("one"), entries[0].Path)
	assert.False(t, entries[0].ModTime.IsZero())
}

func TestListFollowsSymlinks(t *testing.T) {
	s := newTestStore(t)
	target := filepath.Join(t.TempDir(), "shared.txt")
	require.NoError(t, os.WriteFile(target, []byte("linked"), 0o644))
	require.NoError(t, os.Symlink(target, s.Path("linked")))

	// Dangling links and links to directories are not personas.
	require.NoError(t, os.Symlink(filepath.Join(t.TempDir(), "gone.txt"), s.Path("dangling")))
	require.NoError(t, os.Symlink(t.TempDir(), s.Path("dirlink")))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"linked"}, names)

	content, err := s.Read("linked")
	require.NoError(t, err)
	assert.Equal(t, "linked", content)
}

func TestInitCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".persona")
	s := NewStore(types.PersonaConfig{Dir: dir})

	require.NoError(t, s.Init())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent.
	require.NoError(t, s.Init())
}

func TestInitFailure(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o644))
	s := NewStore(types.PersonaConfig{Dir: filepath.Join(parent, ".persona")})

	assert.Error(t, s.Init())
}

func TestInvalidNames(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../escape", `dir\name`, "a/b"} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(name, "x"), ErrInvalidName)
			_, err := s.Read(name)
			assert.ErrorIs(t, err, ErrInvalidName)
			assert.ErrorIs(t, s.Delete(name), ErrInvalidName)
		})
	}
}

func TestInvalidNameMessages(t *testing.T) {
	s := newTestStore(t)

	err := s.Save("a/b", "x")
	assert.ErrorContains(t, err, "contains a path separator")

	err = s.Save("a\x00b", "x")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorContains(t, err, "contains a NUL byte")
	assert.NotContains(t, err.Error(), "path separator")
}

func TestNamesUsedVerbatim(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("Senior Dev (v2)", "x"))
	_, err := os.Stat(filepath.Join(s.Dir(), "Senior Dev (v2).txt"))
	require.NoError(t, err)

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Senior Dev (v2)"}, names)
}

func TestCustomExtension(t *testing.T) {
	s := NewStore(types.PersonaConfig{Dir: t.TempDir(), Extension: "md"})
	assert.Equal(t, ".md", s.Extension())

	require.NoError(t, s.Save("x", "y"))
	_, err := os.Stat(filepath.Join(s.Dir(), "x.md"))
	require.NoError(t, err)
}

func TestPersonaLifecycle(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("default", "You are helpful"))

	names, err := s.List()
	require.NoError(t, err)
	assert.Contains(t, names, "default")

	got, err := s.Read("default")
	require.NoError(t, err)
	assert.Equal(t, "You are helpful", got)

	require.NoError(t, s.Delete("default"))

	names, err = s.List()
	require.NoError(t, err)
	assert.NotContains(t, names, "default")
}
