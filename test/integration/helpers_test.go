//go:build integration

package integration_test

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/spark-development/puzzle-cli/internal/testutil"
)

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

// puzzleBinary builds the CLI once per test run and returns its path.
func puzzleBinary(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "puzzle-bin-*")
		if err != nil {
			buildErr = err
			return
		}
		binPath = filepath.Join(dir, "puzzle")
		if runtime.GOOS == "windows" {
			binPath += ".exe"
		}
		cmd := exec.Command("go", "build", "-o", binPath, "../..")
		out, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = errors.New(string(out))
		}
	})
	if buildErr != nil {
		t.Fatalf("building puzzle: %v", buildErr)
	}
	return binPath
}

// testEnv holds the isolated directories and stub server for one test.
type testEnv struct {
	HomeDir    string // HOME, contains .puzzle/config.yaml
	WorkDir    string // working directory the CLI runs in
	StagingDir string
	GitHub     *testutil.GitHub
}

// setupTestEnv creates isolated temp directories and a stub GitHub serving
// a sample release.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	const wrapper = "spark-development-puzzle-framework-sample-0c0ffee/"
	gh := testutil.NewGitHub(testutil.Zip(
		testutil.Entry{Name: wrapper},
		testutil.Entry{Name: wrapper + "package.json", Body: `{"name":"puzzle-framework-sample","version":"1.0.0","private":true}`},
		testutil.Entry{Name: wrapper + "src/index.js", Body: "module.exports = {}\n"},
	))
	t.Cleanup(gh.Close)

	env := &testEnv{
		HomeDir:    t.TempDir(),
		WorkDir:    t.TempDir(),
		StagingDir: t.TempDir(),
		GitHub:     gh,
	}
	return env
}

type result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// run executes the CLI inside env.WorkDir.
func (env *testEnv) run(t *testing.T, args ...string) result {
	t.Helper()

	cmd := exec.Command(puzzleBinary(t), args...)
	cmd.Dir = env.WorkDir
	cmd.Env = append(os.Environ(),
		"HOME="+env.HomeDir,
		"USERPROFILE="+env.HomeDir,
		"PUZZLE_API_BASE="+env.GitHub.URL(),
		"PUZZLE_STAGING_DIR="+env.StagingDir,
		"PUZZLE_AUTHOR_NAME=Integration",
		"PUZZLE_AUTHOR_EMAIL=it@example.com",
		"GITHUB_TOKEN=",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		t.Fatalf("running puzzle: %v", err)
	}
	return res
}
