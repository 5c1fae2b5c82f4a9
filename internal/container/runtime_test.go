// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testImage = "pandoc/core:3.5"

// fakeCommander answers engine commands from a table. Commands are keyed as
// "bin arg1 arg2".
type fakeCommander struct {
	onPath map[string]bool
	ok     map[string]bool
	run    func(args []string, stdin io.Reader, stdout io.Writer) error
	calls  []string
}

func (f *fakeCommander) LookPath(file string) (string, error) {
	if f.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeCommander) Exec(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	key := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if len(args) > 0 && args[0] == "run" && f.run != nil {
		return f.run(args, stdin, stdout)
	}
	if f.ok[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		onPath   map[string]bool
		ok       map[string]bool
		wantName string
	}{
		{"docker", map[string]bool{"docker": true}, map[string]bool{"docker info": true}, "docker"},
		{"podman fallback", map[string]bool{"podman": true}, map[string]bool{"podman info": true}, "podman"},
		{"docker daemon down", map[string]bool{"docker": true, "podman": true}, map[string]bool{"podman info": true}, "podman"},
		{"docker preferred", map[string]bool{"docker": true, "podman": true}, map[string]bool{"docker info": true, "podman info": true}, "docker"},
		{"neither", nil, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detect(&fakeCommander{onPath: tt.onPath, ok: tt.ok})
			if tt.wantName == "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	c := &fakeCommander{ok: map[string]bool{
		"docker image inspect " + testImage: true,
		"podman image exists " + testImage:  true,
	}}

	assert.NoError(t, dockerEngine(c).ImageExists(testImage))
	assert.NoError(t, podmanEngine(c).ImageExists(testImage))

	err := dockerEngine(&fakeCommander{}).ImageExists(testImage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), testImage)
}

func TestEnsureImage(t *testing.T) {
	present := &fakeCommander{ok: map[string]bool{"docker image inspect " + testImage: true}}
	require.NoError(t, EnsureImage(dockerEngine(present), testImage))
	assert.Equal(t, []string{"docker image inspect " + testImage}, present.calls)

	missing := &fakeCommander{ok: map[string]bool{"podman pull --quiet " + testImage: true}}
	require.NoError(t, EnsureImage(podmanEngine(missing), testImage))
	assert.Equal(t, []string{"podman image exists " + testImage, "podman pull --quiet " + testImage}, missing.calls)

	err := EnsureImage(dockerEngine(&fakeCommander{}), testImage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pulling "+testImage)
}

func TestRunPipesThroughContainer(t *testing.T) {
	var gotArgs []string
	c := &fakeCommander{run: func(args []string, stdin io.Reader, stdout io.Writer) error {
		gotArgs = args
		data, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		_, err = stdout.Write(append([]byte("docx:"), data...))
		return err
	}}

	var out bytes.Buffer
	err := podmanEngine(c).Run(testImage, []string{"-f", "markdown", "-t", "docx", "-o", "-"}, strings.NewReader("# Title"), &out)

	require.NoError(t, err)
	assert.Equal(t, []string{"run", "--rm", "-i", "--network", "none", testImage, "-f", "markdown", "-t", "docx", "-o", "-"}, gotArgs)
	assert.Equal(t, "docx:# Title", out.String())
	assert.True(t, strings.HasPrefix(c.calls[0], "podman run"))
}

func TestRunFailure(t *testing.T) {
	c := &fakeCommander{run: func([]string, io.Reader, io.Writer) error {
		return errors.New("exit status 64: unknown reader")
	}}

	err := dockerEngine(c).Run(testImage, nil, strings.NewReader(""), io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker")
	assert.Contains(t, err.Error(), "unknown reader")
}

func TestOSCommanderCapturesStderr(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	var out bytes.Buffer
	require.NoError(t, osCommander{}.Exec("sh", []string{"-c", "cat"}, strings.NewReader("piped"), &out))
	assert.Equal(t, "piped", out.String())

	err := osCommander{}.Exec("sh", []string{"-c", "echo broken >&2; exit 3"}, nil, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 3: broken")
}
