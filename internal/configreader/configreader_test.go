package configreader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"fknsrs.biz/p/viddown/internal/config"
)

type testConfig struct {
	Config   string          `name:"config"`
	Name     string          `name:"name"`
	Enabled  bool            `name:"enabled"`
	Count    int             `name:"count"`
	Level    logrus.Level    `name:"level"`
	Interval config.Duration `name:"interval"`
	Ignored  string          `name:"-"`
}

func TestReadArguments(t *testing.T) {
	a := assert.New(t)

	var c testConfig
	a.NoError(Read("test", []string{"-name", "hello", "-enabled", "-count=3", "-level=debug", "-interval=50ms"}, nil, &c))

	a.Equal("hello", c.Name)
	a.True(c.Enabled)
	a.Equal(3, c.Count)
	a.Equal(logrus.DebugLevel, c.Level)
	a.Equal(time.Millisecond*50, c.Interval.Duration())
}

func TestReadEnvironmentOverridesArguments(t *testing.T) {
	a := assert.New(t)

	var c testConfig
	a.NoError(Read("test", []string{"-name", "flag"}, []string{"NAME=env", "ENABLED=yes", "COUNT=7"}, &c))

	a.Equal("env", c.Name)
	a.True(c.Enabled)
	a.Equal(7, c.Count)
}

func TestReadEnvironmentBadInteger(t *testing.T) {
	a := assert.New(t)

	var c testConfig
	a.Error(Read("test", nil, []string{"COUNT=many"}, &c))
}

func TestReadWithPrefix(t *testing.T) {
	a := assert.New(t)

	var c testConfig
	a.NoError(ReadWithPrefix("test", "VIDDOWN_", nil, []string{"NAME=plain", "VIDDOWN_NAME=prefixed", "VIDDOWN_COUNT=2"}, &c))

	a.Equal("prefixed", c.Name)
	a.Equal(2, c.Count)
}

func TestReadFileTOML(t *testing.T) {
	a := assert.New(t)

	p := filepath.Join(t.TempDir(), "config.toml")
	a.NoError(os.WriteFile(p, []byte("name = \"from-file\"\ncount = 4\n"), 0644))

	var c testConfig
	a.NoError(Read("test", []string{"-config", p, "-count", "5"}, nil, &c))

	a.Equal("from-file", c.Name)
	a.Equal(5, c.Count)
}

func TestReadFileYAML(t *testing.T) {
	a := assert.New(t)

	p := filepath.Join(t.TempDir(), "config.yaml")
	a.NoError(os.WriteFile(p, []byte("name: yaml-file\nenabled: true\n"), 0644))

	var c testConfig
	a.NoError(Read("test", nil, []string{"CONFIG=" + p}, &c))

	a.Equal("yaml-file", c.Name)
	a.True(c.Enabled)
}

func TestReadRejectsNonPointer(t *testing.T) {
	a := assert.New(t)

	a.Error(Read("test", nil, nil, testConfig{}))
}

func TestReadRejectsUnsupportedField(t *testing.T) {
	a := assert.New(t)

	var c struct {
		Ratio float64 `name:"ratio"`
	}

	a.Error(Read("test", nil, nil, &c))
}

func TestReadTextFieldFromEnvironment(t *testing.T) {
	a := assert.New(t)

	var c struct {
		Driver config.StoreDriver `name:"store_driver"`
	}

	a.NoError(Read("test", nil, []string{"STORE_DRIVER=memory"}, &c))
	a.Equal(config.StoreDriverMemory, c.Driver)

	a.Error(Read("test", nil, []string{"STORE_DRIVER=postgres"}, &c))
}
