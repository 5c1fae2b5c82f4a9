// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resource

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/persona-mcp/internal/persona"
	"github.com/pdiddy/persona-mcp/pkg/types"
)

func newTestExposer(t *testing.T) (*Exposer, *persona.Store) {
	t.Helper()
	store := persona.NewStore(types.PersonaConfig{Dir: filepath.Join(t.TempDir(), ".persona")})
	require.NoError(t, store.Init())
	return NewExposer(store), store
}

func TestList(t *testing.T) {
	e, store := newTestExposer(t)
	require.NoError(t, store.Save("casual", "hey"))
	require.NoError(t, store.Save("professional", "Good day."))

	got, err := e.List()
	require.NoError(t, err)
	assert.Equal(t, []Resource{
		{URI: "persona://casual", Name: "Persona: casual", Description: "casual persona profile", MIMEType: "text/plain"},
		{URI: "persona://professional", Name: "Persona: professional", Description: "professional persona profile", MIMEType: "text/plain"},
	}, got)
}

func TestListEmpty(t *testing.T) {
	e, _ := newTestExposer(t)

	got, err := e.List()
	require.NoError(t, err)
	assert.Empty(t, got)
}

type failingSource struct{}

func (failingSource) List() ([]string, error)          { return nil, errors.New("disk on fire") }
func (failingSource) Read(name string) (string, error) { return "", errors.New("disk on fire") }

func TestListPropagatesErrors(t *testing.T) {
	_, err := NewExposer(failingSource{}).List()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestRead(t *testing.T) {
	e, store := newTestExposer(t)
	require.NoError(t, store.Save("default", "You are helpful"))

	got, err := e.Read("persona://default")
	require.NoError(t, err)
	assert.Equal(t, Contents{URI: "persona://default", MIMEType: "text/plain", Text: "You are helpful"}, got)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr error
	}{
		{name: "missing persona", uri: "persona://missing", wantErr: persona.ErrNotFound},
		{name: "wrong scheme", uri: "badscheme://x", wantErr: ErrInvalidIdentifier},
		{name: "no scheme", uri: "default", wantErr: ErrInvalidIdentifier},
		{name: "empty name", uri: "persona://", wantErr: ErrInvalidIdentifier},
		{name: "path escape", uri: "persona://../etc/passwd", wantErr: persona.ErrInvalidName},
	}

	e, _ := newTestExposer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Read(tt.uri)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestURIRoundTrip(t *testing.T) {
	for _, name := range []string{"default", "410-llm-engineer", "with space", "50%", "c++", "data-sci (v2)", "한국어"} {
		got, err := ParseURI(URI(name))
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
}

func TestURIEscapesName(t *testing.T) {
	assert.Equal(t, "persona://default", URI("default"))
	assert.Equal(t, "persona://my%20persona", URI("my persona"))
	assert.Equal(t, "persona://50%25", URI("50%"))
}

func TestParseURIDecodes(t *testing.T) {
	name, err := ParseURI("persona://my%20persona")
	require.NoError(t, err)
	assert.Equal(t, "my persona", name)

	// Unescaped names are accepted as written.
	name, err = ParseURI("persona://my persona")
	require.NoError(t, err)
	assert.Equal(t, "my persona", name)

	_, err = ParseURI("persona://50%")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = ParseURI("persona://%2e%2e")
	require.NoError(t, err)
}

func TestReadEscapedName(t *testing.T) {
	e, store := newTestExposer(t)
	require.NoError(t, store.Save("my persona", "spaced"))

	got, err := e.Read(URI("my persona"))
	require.NoError(t, err)
	assert.Equal(t, "spaced", got.Text)

	_, err = e.Read("persona://%2e%2e")
	assert.ErrorIs(t, err, persona.ErrInvalidName)
}
