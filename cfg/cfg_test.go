package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStoreOptions struct {
	Driver   string `cfg:"driver" def:"sqlite3" validate:"oneof=sqlite3 sqlite mysql"`
	Database string `cfg:"database" def:"orm.sqlite"`
	Port     int    `cfg:"port" def:"3306"`
}

type testFieldOptions struct {
	Name     string `cfg:"name" validate:"required"`
	Type     string `cfg:"type" validate:"required"`
	Elem     string `cfg:"elem"`
	Required bool   `cfg:"required"`
	Default  any    `cfg:"default"`
}

type testModelOptions struct {
	Table  string             `cfg:"table" validate:"required"`
	Fields []testFieldOptions `cfg:"fields" validate:"dive"`
}

type testOptions struct {
	Name    string             `cfg:"name" def:"modelx"`
	Timeout time.Duration      `cfg:"timeout" def:"1s"`
	Store   testStoreOptions   `cfg:"store"`
	Models  []testModelOptions `cfg:"models" validate:"dive"`
}

func writeFile(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "app.yaml", `
timeout: 3s
store:
  driver: sqlite
  database: /tmp/test.sqlite
models:
  - table: User
    fields:
      - name: name
        type: string
        required: true
      - name: age
        type: int
        default: 18
      - name: tags
        type: list
        elem: string
`)

	var options testOptions
	require.NoError(t, Load(path, &options))

	assert.Equal(t, "modelx", options.Name)
	assert.Equal(t, 3*time.Second, options.Timeout)
	assert.Equal(t, "sqlite", options.Store.Driver)
	assert.Equal(t, "/tmp/test.sqlite", options.Store.Database)
	assert.Equal(t, 3306, options.Store.Port)
	require.Len(t, options.Models, 1)
	assert.Equal(t, "User", options.Models[0].Table)
	require.Len(t, options.Models[0].Fields, 3)
	assert.True(t, options.Models[0].Fields[0].Required)
	assert.Equal(t, 18, options.Models[0].Fields[1].Default)
	assert.Equal(t, "string", options.Models[0].Fields[2].Elem)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "app.toml", `
name = "demo"

[store]
driver = "mysql"
port = 3307

[[models]]
table = "Order"

[[models.fields]]
name = "amount"
type = "float"
`)

	var options testOptions
	require.NoError(t, Load(path, &options))

	assert.Equal(t, "demo", options.Name)
	assert.Equal(t, "mysql", options.Store.Driver)
	assert.Equal(t, 3307, options.Store.Port)
	assert.Equal(t, "orm.sqlite", options.Store.Database)
	require.Len(t, options.Models, 1)
	assert.Equal(t, "amount", options.Models[0].Fields[0].Name)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "app.json", `{
  "store": {"driver": "sqlite3", "database": ":memory:", "port": 1},
  "models": [{"table": "User", "fields": [{"name": "age", "type": "int", "default": 3}]}]
}`)

	var options testOptions
	require.NoError(t, Load(path, &options))

	assert.Equal(t, ":memory:", options.Store.Database)
	assert.Equal(t, 1, options.Store.Port)
	require.Len(t, options.Models, 1)
	assert.NotNil(t, options.Models[0].Fields[0].Default)
}

func TestLoad_INI(t *testing.T) {
	path := writeFile(t, "app.ini", `
name = ini-demo
timeout = 2m

[store]
driver = sqlite
port = 3000
`)

	var options testOptions
	require.NoError(t, Load(path, &options))

	assert.Equal(t, "ini-demo", options.Name)
	assert.Equal(t, 2*time.Minute, options.Timeout)
	assert.Equal(t, "sqlite", options.Store.Driver)
	assert.Equal(t, 3000, options.Store.Port)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		var options testOptions
		assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.yaml"), &options))
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := writeFile(t, "app.xml", "<xml/>")
		var options testOptions
		assert.Error(t, Load(path, &options))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeFile(t, "app.yaml", "store: [")
		var options testOptions
		assert.Error(t, Load(path, &options))
	})

	t.Run("validation failed", func(t *testing.T) {
		path := writeFile(t, "app.yaml", "store:\n  driver: postgres\n")
		var options testOptions
		assert.Error(t, Load(path, &options))
	})

	t.Run("model without table", func(t *testing.T) {
		path := writeFile(t, "app.yaml", "models:\n  - fields: []\n")
		var options testOptions
		assert.Error(t, Load(path, &options))
	})
}

func TestBuild(t *testing.T) {
	options := &testOptions{}
	require.NoError(t, Build(options))
	assert.Equal(t, "sqlite3", options.Store.Driver)
	assert.Equal(t, time.Second, options.Timeout)
}
