package runtime

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// Toolchain describes the Node.js binaries found on PATH.
type Toolchain struct {
	Node        string // path to node, empty when missing
	NPM         string // path to npm, empty when missing
	NodeVersion string // e.g. "v20.11.1"
}

// Ready reports whether `npm install` can be run.
func (t Toolchain) Ready() bool {
	return t.Node != "" && t.NPM != ""
}

// Detector looks up Node.js. The zero value uses the real PATH.
type Detector struct {
	// LookPath and Output can be set for testing; they default to
	// exec.LookPath and running the binary.
	LookPath func(file string) (string, error)
	Output   func(ctx context.Context, bin string, args ...string) ([]byte, error)
}

// Detect returns the toolchain found on PATH. Missing binaries are not an
// error; they leave the corresponding field empty.
func (d Detector) Detect(ctx context.Context) Toolchain {
	lookPath := d.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	output := d.Output
	if output == nil {
		output = runOutput
	}

	var tc Toolchain
	if p, err := lookPath("node"); err == nil {
		tc.Node = p
	}
	if p, err := lookPath("npm"); err == nil {
		tc.NPM = p
	}
	if tc.Node == "" {
		return tc
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if out, err := output(ctx, tc.Node, "--version"); err == nil {
		tc.NodeVersion = strings.TrimSpace(string(out))
	}
	return tc
}

func runOutput(ctx context.Context, bin string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}
