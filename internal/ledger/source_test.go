package ledger

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"2021-02.csv":     {Data: []byte("")},
		"2021-01.csv":     {Data: []byte("")},
		"fs.csv":          {Data: []byte("")},
		"notes.txt":       {Data: []byte("")},
		"archive/old.csv": {Data: []byte("")},
	}

	names, err := ListFiles(fsys, ".csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-01.csv", "2021-02.csv", "fs.csv"}, names)

	names, err = ListFiles(fsys, ".csv", "fs.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-01.csv", "2021-02.csv"}, names)
}

func TestScanFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"2021.csv": {Data: []byte("2021-01-01,Cash,,100,0\n\n2021-01-02,Inventory,,0,20\n")},
	}

	var accounts []string
	err := ScanFile(context.Background(), fsys, "2021.csv", func(l Line) {
		accounts = append(accounts, l.Account)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cash", "Inventory"}, accounts)
}

func TestScanFile_Missing(t *testing.T) {
	t.Parallel()

	err := ScanFile(context.Background(), fstest.MapFS{}, "nope.csv", func(Line) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestScanFile_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fsys := fstest.MapFS{"a.csv": {Data: []byte("2021-01-01,Cash,,1,0\n")}}
	err := ScanFile(ctx, fsys, "a.csv", func(Line) {})
	assert.ErrorIs(t, err, context.Canceled)
}
