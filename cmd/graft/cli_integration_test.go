package main_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBinary compiles the graft binary into t.TempDir() and returns its path.
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "graft"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	bin := filepath.Join(t.TempDir(), binName)
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = filepath.Join(projectRoot(t), "cmd", "graft")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", string(out))
	return bin
}

// projectRoot walks up from this file's directory to the go.mod.
func projectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, parent, dir, "could not find project root")
		dir = parent
	}
}

const fixtureSource = `package p

func Alpha() {}

func Beta() {}
`

// createFixture writes a Go file and returns the directory and file path.
func createFixture(t *testing.T) (dir, goFile string) {
	t.Helper()
	dir = t.TempDir()
	goFile = filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(goFile, []byte(fixtureSource), 0o644))
	return dir, goFile
}

// runGraft executes the binary and returns the parsed JSON envelope plus the
// command error. Commands that report via the envelope exit nonzero but still
// emit JSON on stdout.
func runGraft(t *testing.T, bin, dir string, args ...string) (map[string]any, error) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	stdout, err := cmd.Output()
	if err != nil && len(stdout) == 0 {
		t.Fatalf("command %v failed with no output: %v", args, err)
	}

	var result map[string]any
	require.NoError(t, json.Unmarshal(stdout, &result), "invalid JSON output: %s", string(stdout))
	return result, err
}

func TestCLI_Path(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir, _ := createFixture(t)

	// Line 2 col 5 is the 'A' of Alpha.
	result, err := runGraft(t, bin, dir, "path", "main.go", "2", "5")
	require.NoError(t, err)

	assert.Equal(t, "path", result["command"])
	assert.Empty(t, result["error"])

	node, ok := result["results"].(map[string]any)
	require.True(t, ok, "results should be a node object")
	assert.Equal(t, "identifier", node["kind"])
	assert.Equal(t, "Alpha", node["text"])
	assert.NotEmpty(t, node["path"])
	assert.EqualValues(t, 2, node["start_line"])
}

func TestCLI_Resolve_Hit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir, _ := createFixture(t)

	pathResult, err := runGraft(t, bin, dir, "path", "main.go", "4", "5")
	require.NoError(t, err)
	encoded := pathResult["results"].(map[string]any)["path"].(string)

	result, err := runGraft(t, bin, dir, "resolve", encoded, "main.go")
	require.NoError(t, err)

	assert.Equal(t, "resolve", result["command"])
	node := result["results"].(map[string]any)
	assert.Equal(t, "identifier", node["kind"])
	assert.Equal(t, "Beta", node["text"])
}

func TestCLI_Resolve_MissExitsNonzero(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir, _ := createFixture(t)

	// The fixture has two functions; a third does not exist.
	result, err := runGraft(t, bin, dir, "resolve", "function_declaration[2]/identifier[0]", "main.go")

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "a miss must exit nonzero")
	assert.Equal(t, "resolve", result["command"])
	assert.Nil(t, result["results"])
	errMsg, _ := result["error"].(string)
	assert.Contains(t, errMsg, "does not resolve")
}

func TestCLI_InvalidFormatRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir, _ := createFixture(t)

	cmd := exec.Command(bin, "path", "main.go", "2", "5", "--format", "yaml")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.Error(t, err, "invalid format must exit nonzero")
	assert.Contains(t, string(out), "invalid format")
}

func TestCLI_TextFormat(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir, _ := createFixture(t)

	cmd := exec.Command(bin, "path", "main.go", "2", "5", "--format", "text")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "identifier main.go:2:5-2:10")
	assert.Contains(t, string(out), "path: ")
}

func TestCLI_AddListRebase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir, goFile := createFixture(t)
	db := filepath.Join(dir, "anchors.db")

	addResult, err := runGraft(t, bin, dir, "add", "main.go", "2", "5", "--tag", "diag-1", "--db", db)
	require.NoError(t, err)
	added := addResult["results"].(map[string]any)
	assert.Equal(t, "identifier", added["kind"])
	assert.Equal(t, "diag-1", added["tag"])
	require.FileExists(t, db)

	listResult, err := runGraft(t, bin, dir, "list", "--db", db)
	require.NoError(t, err)
	listed, ok := listResult["results"].([]any)
	require.True(t, ok, "results should be an array")
	require.Len(t, listed, 1)

	// A comment above Alpha shifts lines without changing structure.
	edited := strings.Replace(fixtureSource, "func Alpha", "// Alpha is documented now.\nfunc Alpha", 1)
	require.NoError(t, os.WriteFile(goFile, []byte(edited), 0o644))

	rebaseResult, err := runGraft(t, bin, dir, "rebase", "main.go", "--db", db)
	require.NoError(t, err)
	rebased, ok := rebaseResult["results"].([]any)
	require.True(t, ok, "results should be an array")
	require.Len(t, rebased, 1)

	anchor := rebased[0].(map[string]any)
	assert.Equal(t, true, anchor["resolved"])
	assert.EqualValues(t, 3, anchor["start_line"])
}
