// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs one-shot filter containers, stdin in and stdout
// out, on docker or podman. The pandoc conversion backend is built on it.
package container

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime is a container engine that can run filter images.
type Runtime interface {
	Name() string
	Available() bool
	ImageExists(image string) error
	Pull(image string) error
	Run(image string, args []string, stdin io.Reader, stdout io.Writer) error
}

// commander runs engine CLI commands.
type commander interface {
	LookPath(file string) (string, error)
	Exec(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osCommander struct{}

func (osCommander) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Exec runs name with args. Standard error is captured and appended to the
// error of a failed command.
func (osCommander) Exec(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// engine drives a docker-compatible CLI. Docker and podman differ only in
// how an image is checked.
type engine struct {
	bin        string
	imageCheck []string
	cmd        commander
}

func dockerEngine(c commander) *engine {
	return &engine{bin: binDocker, imageCheck: []string{"image", "inspect"}, cmd: c}
}

func podmanEngine(c commander) *engine {
	return &engine{bin: binPodman, imageCheck: []string{"image", "exists"}, cmd: c}
}

func (e *engine) Name() string { return e.bin }

// Available reports whether the binary is on PATH and its daemon answers.
func (e *engine) Available() bool {
	if _, err := e.cmd.LookPath(e.bin); err != nil {
		return false
	}
	return e.cmd.Exec(e.bin, []string{"info"}, nil, io.Discard) == nil
}

func (e *engine) ImageExists(image string) error {
	args := append(slices.Clone(e.imageCheck), image)
	if err := e.cmd.Exec(e.bin, args, nil, io.Discard); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, e.bin, err)
	}
	return nil
}

func (e *engine) Pull(image string) error {
	if err := e.cmd.Exec(e.bin, []string{"pull", "--quiet", image}, nil, io.Discard); err != nil {
		return fmt.Errorf("pulling %s with %s: %w", image, e.bin, err)
	}
	return nil
}

// Run starts image with args in a throwaway container without network
// access, wired to stdin and stdout.
func (e *engine) Run(image string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmdArgs := append([]string{"run", "--rm", "-i", "--network", "none", image}, args...)
	if err := e.cmd.Exec(e.bin, cmdArgs, stdin, stdout); err != nil {
		return fmt.Errorf("running %s in %s: %w", image, e.bin, err)
	}
	return nil
}

// EnsureImage makes image available to rt, pulling it when missing.
func EnsureImage(rt Runtime, image string) error {
	if rt.ImageExists(image) == nil {
		return nil
	}
	return rt.Pull(image)
}

// DetectRuntime returns docker when it responds, otherwise podman.
func DetectRuntime() (Runtime, error) {
	return detect(osCommander{})
}

func detect(c commander) (Runtime, error) {
	for _, e := range []*engine{dockerEngine(c), podmanEngine(c)} {
		if e.Available() {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: neither %s nor %s responds", binDocker, binPodman)
}
