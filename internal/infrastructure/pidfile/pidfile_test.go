package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_RecordsPIDAndRunID(t *testing.T) {
	pf := New(filepath.Join(t.TempDir(), "bot.pid"))

	require.NoError(t, pf.Acquire("run-a"))

	holder, err := pf.Holder()
	require.NoError(t, err)
	assert.Equal(t, Holder{PID: os.Getpid(), RunID: "run-a"}, holder)

	require.NoError(t, pf.Release())
	_, err = pf.Holder()
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoError(t, pf.Release(), "second release is a no-op")
}

func TestAcquire_RefusesWhileHolderIsAlive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.pid")
	require.NoError(t, New(path).Acquire("run-a"))

	// The test process itself is the live holder
	err := New(path).Acquire("run-b")

	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Contains(t, err.Error(), "run run-a")
}

func TestAcquire_TakesOverGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0o644))
	pf := New(path)

	require.NoError(t, pf.Acquire("run-b"))

	holder, err := pf.Holder()
	require.NoError(t, err)
	assert.Equal(t, "run-b", holder.RunID)
}

func TestHolder_WithoutRunIDLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644))

	holder, err := New(path).Holder()

	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), holder.PID)
	assert.Empty(t, holder.RunID)
}

func TestKillExisting_IgnoresMissingAndOwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.pid")
	pf := New(path)

	assert.NoError(t, pf.KillExisting(time.Second))

	require.NoError(t, pf.Acquire("run-a"))
	assert.NoError(t, pf.KillExisting(time.Second))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
