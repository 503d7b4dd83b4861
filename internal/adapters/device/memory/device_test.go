package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biosync/internal/core/domain"
)

const fixture = `employee_id,name_or_timestamp,status
1,Anwar hussain
7,Sara Ali
# comment rows are skipped
7,2025-12-31 07:10:00,0
7,2025-12-31 12:40:00,4
1,2026-01-02 08:05:00,15
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromCSV_Success(t *testing.T) {
	d := NewDevice("fixture", time.UTC)
	require.NoError(t, d.LoadFromCSV(writeFixture(t, fixture)))

	users, punches := d.Count()
	assert.Equal(t, 2, users)
	assert.Equal(t, 3, punches)
}

func TestLoadFromCSV_FileNotFoundReturnsError(t *testing.T) {
	d := NewDevice("fixture", time.UTC)
	err := d.LoadFromCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_RejectsBadRows(t *testing.T) {
	for name, body := range map[string]string{
		"bad id":        "h\nx,Name\n",
		"bad timestamp": "h\n1,31/12/2025,0\n",
		"bad status":    "h\n1,2025-12-31 07:10:00,in\n",
		"extra columns": "h\n1,a,b,c\n",
	} {
		t.Run(name, func(t *testing.T) {
			err := NewDevice("fixture", time.UTC).Load(strings.NewReader(body))
			assert.ErrorContains(t, err, "line 2")
		})
	}
}

func TestConn_SnapshotAndRelease(t *testing.T) {
	loc := time.FixedZone("AST", 3*60*60)
	d := NewDevice("fixture", loc)
	require.NoError(t, d.Load(strings.NewReader(fixture)))
	ctx := context.Background()

	c, err := d.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.OpenSessions())

	dir, err := c.Directory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.DirectoryEntry{{ID: 1, Name: "Anwar hussain"}, {ID: 7, Name: "Sara Ali"}}, dir)

	punches, err := c.Punches(ctx)
	require.NoError(t, err)
	require.Len(t, punches, 3)
	assert.Equal(t, time.Date(2025, 12, 31, 7, 10, 0, 0, loc), punches[0].Timestamp)

	punches[0].StatusCode = 99
	again, err := c.Punches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again[0].StatusCode)

	require.NoError(t, c.Enable(ctx))
	require.NoError(t, c.Disconnect())
	require.NoError(t, c.Disconnect())
	assert.Equal(t, 0, d.OpenSessions())
	assert.Equal(t, 1, d.Enables())

	_, err = c.Punches(ctx)
	assert.ErrorIs(t, err, errClosed)
}

func TestConnect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDevice("fixture", time.UTC).Connect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
