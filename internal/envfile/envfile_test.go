package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_BasicPairs(t *testing.T) {
	src := Load(writeEnv(t, "MONGO_INITDB_ROOT_USERNAME=root\nMONGO_INITDB_DATABASE=catalog\n"))

	user, ok := src.Get("MONGO_INITDB_ROOT_USERNAME")
	require.True(t, ok)
	assert.Equal(t, "root", user)

	db, ok := src.Get("MONGO_INITDB_DATABASE")
	require.True(t, ok)
	assert.Equal(t, "catalog", db)
}

func TestLoad_QuotesStripped(t *testing.T) {
	src := Load(writeEnv(t, `MONGO_INITDB_ROOT_PASSWORD="s3cret pass"`))

	v, ok := src.Get("MONGO_INITDB_ROOT_PASSWORD")
	require.True(t, ok)
	assert.Equal(t, "s3cret pass", v)
}

func TestLoad_FirstEqualsDelimits(t *testing.T) {
	src := Load(writeEnv(t, "CONN=mongodb://root:pw@mongo:27017/catalog?a=b\n"))

	v, ok := src.Get("CONN")
	require.True(t, ok)
	assert.Equal(t, "mongodb://root:pw@mongo:27017/catalog?a=b", v)
}

func TestLoad_LastMatchWins(t *testing.T) {
	src := Load(writeEnv(t, "KEY=first\nKEY=second\n"))

	v, ok := src.Get("KEY")
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestLoad_MissingFile(t *testing.T) {
	src := Load(filepath.Join(t.TempDir(), "does-not-exist.env"))

	_, ok := src.Get("ANY")
	assert.False(t, ok)
	assert.Equal(t, 0, src.Len())
}

func TestRequire_ReportsMissingAndEmpty(t *testing.T) {
	src := Load(writeEnv(t, "A=1\nB=\n"))

	missing := src.Require("A", "B", "C")
	assert.Equal(t, []string{"B", "C"}, missing)

	assert.Empty(t, src.Require("A"))
}
