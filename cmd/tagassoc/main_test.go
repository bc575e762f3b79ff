package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestBuildRelatedStats(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "posts.jsonl")
	require.NoError(t, os.WriteFile(input, []byte(strings.Join([]string{
		`{"tags": ["a", "b"]}`,
		`{"tags": ["a", "b"]}`,
		`{"tag_string": "a c"}`,
		`{"tags": ["d"]}`,
		`{"tags": ["d"]}`,
		`{"tags": ["d"]}`,
		`{"tags": ["d"]}`,
		`{"tags": ["d"]}`,
	}, "\n")), 0o644))
	cfgPath := filepath.Join(dir, "tagassoc.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("workers: 2\ninput:\n  format: jsonl\n"), 0o644))
	db := filepath.Join(dir, "tags.db")
	buildFormat = ""

	run(t, "build", "--config", cfgPath, "--input", input, "--db", db)

	out := run(t, "related", "--db", db, "a", "-n", "1")
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	assert.Equal(t, "b", fields[0])
	assert.Equal(t, "0.7075", fields[1])

	out = run(t, "stats", "--db", db, "--json")
	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Len(t, rep.Bundles, 2)
	assert.Equal(t, 4, rep.Summary.NNZ)
	assert.True(t, rep.Summary.Symmetric)
	require.NotEmpty(t, rep.TopPairs)
	assert.Equal(t, "a", rep.TopPairs[0].A)
	assert.Equal(t, "b", rep.TopPairs[0].B)
}

func TestBuildRequiresInput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tags.db")
	buildInput, buildConfig = "", ""
	rootCmd.SetArgs([]string{"build", "--db", db})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.ExecuteContext(context.Background()))
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "posts.csv")
	require.NoError(t, os.WriteFile(input, []byte("tag_string\na b\na b\nb c\n"), 0o644))
	db := filepath.Join(dir, "tags.db")
	buildConfig, buildFormat = "", ""

	run(t, "build", "--input", input, "--format", "csv", "--db", db)
	run(t, "build", "--input", input, "--format", "csv", "--db", db)

	out := run(t, "prune", "--db", db, "--keep", "1")
	assert.Equal(t, 2, strings.Count(out, "deleted"))
}
