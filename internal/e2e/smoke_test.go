package e2e

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprint(w, "{\"response\":\"Gulls scatter.\",\"done\":false}\n{\"response\":\"\",\"done\":true}\n")
	}))
	defer server.Close()

	home := t.TempDir()
	binaryPath := buildBinary(t)
	env := []string{"HOME=" + home, "TALEWEAVER_OLLAMA_BASE_URL=" + server.URL}

	stdout, stderr, err := runTaleweaver(t, binaryPath, env, "", "story", "new", "--title", "Harbor")
	require.NoError(t, err, "stderr: %s", stderr)
	match := regexp.MustCompile(`\(([0-9a-f-]{36})\)`).FindStringSubmatch(stdout)
	require.Len(t, match, 2)
	id := match[1]

	stdout, stderr, err = runTaleweaver(t, binaryPath, env, "Wave at the gulls\n/quit\n", "play", id)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Gulls scatter.")

	stdout, stderr, err = runTaleweaver(t, binaryPath, env, "", "story", "show", id)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Wave at the gulls")
	assert.Contains(t, stdout, "Gulls scatter.")

	_, stderr, err = runTaleweaver(t, binaryPath, env, "", "story", "delete", id)
	require.NoError(t, err, "stderr: %s", stderr)

	_, err = os.Stat(filepath.Join(home, ".taleweaver", "GameSaves", id+".json"))
	assert.True(t, os.IsNotExist(err))
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "taleweaver-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/taleweaver")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build taleweaver binary: %s", string(output))
	return binaryPath
}

func runTaleweaver(t *testing.T, binaryPath string, env []string, input string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), env...)

	var stdin io.Reader = strings.NewReader(input)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
