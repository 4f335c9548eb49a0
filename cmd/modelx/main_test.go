package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string, extra string) string {
	t.Helper()
	content := "store:\n" +
		"  driver: sqlite3\n" +
		"  database: " + filepath.Join(dir, "orm.sqlite") + "\n" +
		"log:\n" +
		"  level: error\n" +
		"observe:\n" +
		"  name: modelx\n" + extra
	path := filepath.Join(dir, "modelx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDemoCommand(t *testing.T) {
	config := writeConfig(t, t.TempDir(), "")

	// 连续运行两次，每次都从空库开始
	for i := 0; i < 2; i++ {
		out, err := run(t, "demo", "--config", config)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "saved User id=1", lines[0])
		assert.Equal(t, `find User id=1: {"age":25,"id":1,"name":"John","seq":[3,2,1],"tags":["1","2","3"]}`, lines[1])
		assert.Equal(t, "find User id=999: null", lines[2])
	}
}

func TestSaveAndFindCommand(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir, "models:\n"+
		"  - table: Book\n"+
		"    fields:\n"+
		"      - name: title\n"+
		"        type: string\n"+
		"        required: true\n"+
		"      - name: price\n"+
		"        type: float\n"+
		"      - name: pages\n"+
		"        type: list\n"+
		"        elem: int\n")

	out, err := run(t, "save", "--config", config, "--model", "Book", "--data", `{"title":"Go","price":9.5,"pages":[1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"pages":[1,2],"price":9.5,"title":"Go"}`, strings.TrimSpace(out))

	out, err = run(t, "save", "--config", config, "--model", "book", "--id", "1", "--data", `{"title":"Go 2"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"id":1`)

	out, err = run(t, "find", "--config", config, "--model", "Book", "--id", "1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"pages":null,"price":null,"title":"Go 2"}`, strings.TrimSpace(out))

	out, err = run(t, "find", "--config", config, "--model", "Book", "--id", "2")
	require.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(out))
}

func TestCommandErrors(t *testing.T) {
	config := writeConfig(t, t.TempDir(), "")

	_, err := run(t, "find", "--config", config)
	assert.Error(t, err)

	_, err = run(t, "find", "--config", config, "--model", "Ghost", "--id", "1")
	assert.Error(t, err)

	_, err = run(t, "save", "--config", config, "--data", "not json")
	assert.Error(t, err)

	_, err = run(t, "save", "--config", config, "--data", `{"name":"John","age":"old"}`)
	assert.Error(t, err)

	_, err = run(t, "demo", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
