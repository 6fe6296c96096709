package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"
	"github.com/penwyp/go-tally/internal/presentation/formatter"
	"github.com/penwyp/go-tally/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

type testEnv struct {
	t       *testing.T
	dataDir string
	export  string
	base    []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Chdir(root)
	t.Cleanup(func() { _ = util.CloseLogger() })

	env := &testEnv{
		t:       t,
		dataDir: filepath.Join(root, "data"),
		export:  filepath.Join(root, "exports"),
	}
	env.base = []string{
		"--data-dir", env.dataDir,
		"--export-dir", env.export,
		"--log-file", filepath.Join(root, "logs", "app.log"),
	}
	return env
}

func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, e.base...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, out)
	return out
}

func (e *testEnv) stats() formatter.Stats {
	e.t.Helper()
	var stats formatter.Stats
	require.NoError(e.t, sonic.UnmarshalString(e.mustRun("stats", "-o", "json"), &stats))
	return stats
}

func TestAddAndIncPersist(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("add", "Flaky", "test")
	assert.Contains(t, out, `Added topic "Flaky test" (#3, #3498DB)`)

	assert.Equal(t, "Pass: 1\n", env.mustRun("inc", "Pass"))
	assert.Equal(t, "Flaky test: 3\n", env.mustRun("inc", "flaky TEST", "-n", "3"))

	stats := env.stats()
	require.Len(t, stats.Rows, 3)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 4, stats.Events)
	assert.Equal(t, 2000, stats.Capacity)

	_, err := os.Stat(filepath.Join(env.dataDir, "eventCounterData.json"))
	assert.NoError(t, err, "board saved to the file backend")
}

func TestAddBlankName(t *testing.T) {
	env := newTestEnv(t)
	assert.Contains(t, env.mustRun("add", "  "), "Nothing added")
	assert.Len(t, env.stats().Rows, 2)
}

func TestMutationsReportFailedSave(t *testing.T) {
	env := newTestEnv(t)
	// a directory in place of the slot file makes every save fail
	require.NoError(t, os.MkdirAll(filepath.Join(env.dataDir, "eventCounterData.json"), 0755))

	for _, args := range [][]string{
		{"add", "Blocked"},
		{"inc", "Pass"},
		{"clear", "--yes"},
		{"reset", "--yes"},
	} {
		out, err := env.run("", args...)
		require.Error(t, err, "%v", args)
		assert.Contains(t, err.Error(), "changes were not saved", "%v", args)
		assert.NotContains(t, out, "Added topic", "%v", args)
		assert.NotContains(t, out, "Counts cleared.", "%v", args)
		assert.NotContains(t, out, "Topics reset.", "%v", args)
	}
}

func TestAddCleansControlCharacters(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("add", "\x1b[2JWiped")
	assert.Contains(t, out, `Added topic "[2JWiped"`)

	stats := env.stats()
	require.Len(t, stats.Rows, 3)
	assert.Equal(t, "[2JWiped", stats.Rows[2].Topic)
}

func TestIncUnknownTopic(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("", "inc", "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown topic "Nope"`)
}

func TestIncStopsAtCapacity(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("inc", "Pass", "-n", "2000")

	_, err := env.run("", "inc", "Fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum of 2000 events")
	assert.Equal(t, 2000, env.stats().Events)
}

func TestClearAsksForConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("inc", "Pass")

	out, err := env.run("n\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Clear cancelled.")
	assert.Equal(t, 1, env.stats().Events)

	out, err = env.run("y\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Counts cleared.")
	assert.Equal(t, 0, env.stats().Events)
}

func TestResetWithYesFlag(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("add", "Extra")
	env.mustRun("inc", "Extra")

	assert.Contains(t, env.mustRun("reset", "--yes"), "Topics reset.")

	stats := env.stats()
	require.Len(t, stats.Rows, 2)
	assert.Equal(t, "Pass", stats.Rows[0].Topic)
	assert.Equal(t, "#27AE60", stats.Rows[0].Color)
	assert.Equal(t, "Fail", stats.Rows[1].Topic)
	assert.Equal(t, "#E74C3C", stats.Rows[1].Color)
	assert.Zero(t, stats.Events)
}

func TestStatsOutputs(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("inc", "Pass", "-n", "3")
	env.mustRun("inc", "Fail")

	assert.Equal(t, "Topic,Count\n\"Pass\",3\n\"Fail\",1\n", env.mustRun("stats", "-o", "csv"))
	assert.Contains(t, env.mustRun("stats"), "75.0%")
	assert.Contains(t, env.mustRun("stats", "-o", "summary"), "Tally Summary")

	_, err := env.run("", "stats", "-o", "xml")
	assert.Error(t, err)
}

func TestExportFiles(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("inc", "Fail")

	out := env.mustRun("export")
	paths := strings.Fields(out)
	require.Len(t, paths, 2)
	for _, p := range paths {
		assert.Equal(t, env.export, filepath.Dir(p))
		assert.FileExists(t, p)
	}
	assert.Contains(t, paths[0], "event-counter-totals-")
	assert.Contains(t, paths[1], "event-counter-events-")

	custom := filepath.Join(t.TempDir(), "pq")
	out = env.mustRun("export", "--format", "parquet", "--dir", custom)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), filepath.Join(custom, "event-counter-events-")))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), ".parquet"))

	_, err := env.run("", "export", "--format", "xlsx")
	assert.Error(t, err)
}

func TestExportToStdout(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("inc", "Pass")

	assert.Equal(t, "Topic,Count\n\"Pass\",1\n\"Fail\",0\n", env.mustRun("export", "--stdout", "totals"))

	events := env.mustRun("export", "--stdout", "events")
	lines := strings.Split(strings.TrimSpace(events), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Topic,Timestamp (Epoch),Timestamp (ISO)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"Pass",`))

	_, err := env.run("", "export", "--stdout", "both")
	assert.Error(t, err)
}

func TestSQLiteBackend(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("inc", "Pass", "--backend", "sqlite")
	env.mustRun("inc", "Pass", "--backend", "sqlite")

	out := env.mustRun("stats", "-o", "csv", "--backend", "sqlite")
	assert.Equal(t, "Topic,Count\n\"Pass\",2\n\"Fail\",0\n", out)
	assert.FileExists(t, filepath.Join(env.dataDir, "go-tally.db"))

	// The file backend is separate
	assert.Zero(t, env.stats().Events)
}

func TestConfigFileAndEnv(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(".go-tally.yaml", []byte("backend: memory\n"), 0644))

	env.mustRun("inc", "Pass")
	assert.Zero(t, env.stats().Events, "memory backend keeps nothing between runs")

	t.Setenv("TALLY_BACKEND", "file")
	env.mustRun("inc", "Pass")
	assert.Equal(t, 1, env.stats().Events)
}

func TestInvalidConfiguration(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("", "stats", "--backend", "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN")

	_, err = env.run("", "stats", "--backend", "redis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
