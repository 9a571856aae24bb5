package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daxaroodles/ttnexus/pkg/core"
)

var fixedClock = func() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
}

func newTestReporter(t *testing.T, color bool) (*Reporter, *bytes.Buffer, string) {
	t.Helper()
	var out bytes.Buffer
	logPath := filepath.Join(t.TempDir(), DefaultLogDir, DefaultLogFile)
	r := New(WithOutput(&out), WithColor(color), WithLogPath(logPath), WithClock(fixedClock))
	return r, &out, logPath
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestPresent_SuccessOnly(t *testing.T) {
	r, out, logPath := newTestReporter(t, false)

	var rep core.Report
	rep.SuccessDetail("Yaml found for mod 'ExampleMod':", "- /tmp/celeste/Mods/ExampleMod/everest.yaml")
	rep.Success("everest.TTNexus.temp saved to '/tmp/x'")
	r.Present(&rep, nil)

	assert.Equal(t,
		"[Success] Yaml found for mod 'ExampleMod':\n"+
			"- /tmp/celeste/Mods/ExampleMod/everest.yaml\n"+
			"[Success] everest.TTNexus.temp saved to '/tmp/x'\n",
		out.String())
	assert.NoFileExists(t, logPath, "success never touches the error log")
}

func TestPresent_FailureLogsOnce(t *testing.T) {
	r, out, logPath := newTestReporter(t, false)

	err := core.NewFailure(core.MissingDirectory, "/tmp/celeste", "Celeste directory does not exist.", nil)
	r.Present(&core.Report{}, err)

	assert.Contains(t, out.String(), "[NexusFatality] invalidModException: Celeste directory does not exist.\n")
	assert.Contains(t, out.String(), "[Error Log] Message logged to "+logPath)

	lines := readLines(t, logPath)
	require.Len(t, lines, 1)
	assert.Equal(t, "[2024-03-09 14:05:07] NexusFatality: Celeste directory does not exist.", lines[0])
}

func TestPresent_FailureWithCause(t *testing.T) {
	r, out, logPath := newTestReporter(t, false)

	err := core.NewFailure(core.ParseFailure, "/x", "Error reading YAML file.", errors.New("invalid yaml: line 1"))
	r.Present(nil, err)

	assert.Contains(t, out.String(), "[NexusFatality] Error reading YAML file: invalid yaml: line 1\n")
	assert.Equal(t, []string{"[2024-03-09 14:05:07] NexusFatality: Error reading YAML file."}, readLines(t, logPath))
}

func TestPresent_FatalityNoticeIsLogged(t *testing.T) {
	r, _, logPath := newTestReporter(t, false)

	var rep core.Report
	rep.Success("everest.yaml saved to '/x'")
	rep.Fatality("The file /x/everest.TTNexus.temp does not exist.")
	r.Present(&rep, nil)

	assert.Equal(t,
		[]string{"[2024-03-09 14:05:07] NexusFatality: The file /x/everest.TTNexus.temp does not exist."},
		readLines(t, logPath))
}

func TestLog_AppendOnly(t *testing.T) {
	r, _, logPath := newTestReporter(t, false)

	require.NoError(t, r.Log("first"))
	require.NoError(t, r.Log("second"))

	lines := readLines(t, logPath)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "first"))
	assert.True(t, strings.HasSuffix(lines[1], "second"))
}

func TestColors(t *testing.T) {
	r, out, _ := newTestReporter(t, true)

	r.Success("ok")
	r.Config("TTNexus version written to /x")

	assert.Equal(t,
		"\033[32m[Success]\033[0m ok\n"+
			"\033[33m[CONFIG]\033[0m TTNexus version written to /x\n",
		out.String())
}

func TestLog_NoPath(t *testing.T) {
	r := &Reporter{out: &bytes.Buffer{}, now: fixedClock}
	assert.Error(t, r.Log("nowhere"))
}

func TestDefaultLogPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	p, err := DefaultLogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "ttnexuslogs", "error_log.txt"), p)
}
