package assemblyreport

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Plain(t *testing.T) {
	rc, err := Open("testdata/bos_taurus_excerpt.txt")
	require.NoError(t, err)
	defer rc.Close()

	assembly, err := Read(rc)
	require.NoError(t, err)
	assert.Equal(t, "Bos_taurus_UMD_3.1", assembly.Name)
}

func TestOpen_Gzip(t *testing.T) {
	raw, err := os.ReadFile("testdata/bos_taurus_excerpt.txt")
	require.NoError(t, err)

	// No .gz suffix: detection must rely on the magic number.
	path := filepath.Join(t.TempDir(), "report.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	rc, err := Open(path)
	require.NoError(t, err)
	defer rc.Close()

	assembly, err := Read(rc)
	require.NoError(t, err)
	assert.Len(t, assembly.Chromosomes, 4)
	assert.Len(t, assembly.Scaffolds, 2)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
