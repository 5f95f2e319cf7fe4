package sheet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
)

func sampleTable() Table {
	return Table{
		Header: []string{"URL", "Keyword 1", "Keyword 2"},
		Rows: [][]string{
			{"https://example.com/a", "btw", "aangifte"},
			{"https://example.com/b", "factuur", ""},
		},
	}
}

func TestColumnAndCell(t *testing.T) {
	tab := sampleTable()
	assert.Equal(t, 0, tab.Column("url"))
	assert.Equal(t, 2, tab.Column(" Keyword 2 "))
	assert.Equal(t, -1, tab.Column("Keyword 3"))

	assert.Equal(t, "btw", Cell(tab.Rows[0], 1))
	assert.Equal(t, "", Cell(tab.Rows[0], 7))
	assert.Equal(t, "", Cell(tab.Rows[0], -1))
}

func TestReadCSVCleansCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	data := "\ufeffURL , Keyword 1\n https://example.com/a ,  BTW \n,\nhttps://example.com/b\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	tab, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"URL", "Keyword 1"}, tab.Header)
	require.Len(t, tab.Rows, 2, "blank row should be dropped")
	assert.Equal(t, []string{"https://example.com/a", "BTW"}, tab.Rows[0])
	assert.Equal(t, []string{"https://example.com/b"}, tab.Rows[1])
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, ext := range []string{".csv", ".tsv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "table"+ext)
			require.NoError(t, Write(path, sampleTable()))

			got, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, sampleTable().Header, got.Header)
			require.Len(t, got.Rows, 2)
			assert.Equal(t, "factuur", Cell(got.Rows[1], 1))
			assert.Equal(t, "", Cell(got.Rows[1], 2))
		})
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "input.txt"))
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Read(empty)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))

	_, err = Read(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestWriteDelimited(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, sampleTable(), ','))
	assert.Equal(t, "URL,Keyword 1,Keyword 2\nhttps://example.com/a,btw,aangifte\nhttps://example.com/b,factuur,\n", buf.String())
}
