package quote

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExceptions_Defaults(t *testing.T) {
	exceptions, err := LoadExceptions("")
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", exceptions["btc"])
	assert.Equal(t, "ethereum", exceptions["eth"])
	assert.Equal(t, "cardano", exceptions["ada"])
}

func TestLoadExceptions_FileOverridesAndExtends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exceptions.yaml")
	content := "btc: bitcoin-cash\nmycoin: my-coin-id\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	exceptions, err := LoadExceptions(path)
	require.NoError(t, err)

	assert.Equal(t, "bitcoin-cash", exceptions["btc"], "file entries win over defaults")
	assert.Equal(t, "my-coin-id", exceptions["mycoin"])
	assert.Equal(t, "ethereum", exceptions["eth"], "untouched defaults survive")
}

func TestLoadExceptions_MissingFile(t *testing.T) {
	_, err := LoadExceptions(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadExceptions_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not yaml"), 0o600))

	_, err := LoadExceptions(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse exceptions file")
}
