package runtime

import (
	"context"
	"errors"
	"testing"
)

func fakeLookPath(found map[string]string) func(string) (string, error) {
	return func(file string) (string, error) {
		if p, ok := found[file]; ok {
			return p, nil
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func TestDetect_Found(t *testing.T) {
	d := Detector{
		LookPath: fakeLookPath(map[string]string{"node": "/usr/bin/node", "npm": "/usr/bin/npm"}),
		Output: func(_ context.Context, bin string, args ...string) ([]byte, error) {
			if bin != "/usr/bin/node" || len(args) != 1 || args[0] != "--version" {
				t.Errorf("unexpected probe %s %v", bin, args)
			}
			return []byte("v20.11.1\n"), nil
		},
	}

	tc := d.Detect(context.Background())
	if !tc.Ready() {
		t.Fatalf("Ready() = false, want true: %+v", tc)
	}
	if tc.NodeVersion != "v20.11.1" {
		t.Errorf("NodeVersion = %q, want %q", tc.NodeVersion, "v20.11.1")
	}
}

func TestDetect_Missing(t *testing.T) {
	probed := false
	d := Detector{
		LookPath: fakeLookPath(nil),
		Output: func(context.Context, string, ...string) ([]byte, error) {
			probed = true
			return nil, nil
		},
	}

	tc := d.Detect(context.Background())
	if tc.Ready() {
		t.Error("Ready() = true with nothing on PATH")
	}
	if probed {
		t.Error("node --version should not run when node is missing")
	}
}

func TestDetect_NodeWithoutNPM(t *testing.T) {
	d := Detector{
		LookPath: fakeLookPath(map[string]string{"node": "/opt/node/bin/node"}),
		Output: func(context.Context, string, ...string) ([]byte, error) {
			return nil, errors.New("exit status 1")
		},
	}

	tc := d.Detect(context.Background())
	if tc.Ready() {
		t.Error("Ready() = true without npm")
	}
	if tc.Node != "/opt/node/bin/node" {
		t.Errorf("Node = %q", tc.Node)
	}
	if tc.NodeVersion != "" {
		t.Errorf("NodeVersion = %q, want empty on probe failure", tc.NodeVersion)
	}
}
