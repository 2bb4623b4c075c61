package manager

import (
	"errors"
	"testing"
	"time"

	"github.com/epwatch/epwatch/pkg/guide"
	"github.com/epwatch/epwatch/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveTo(code string, aired time.Time) func() (guide.Resolution, bool, error) {
	return func() (guide.Resolution, bool, error) {
		return guide.Resolution{Code: code, Aired: aired}, true, nil
	}
}

func mustNotResolve(t *testing.T) func() (guide.Resolution, bool, error) {
	return func() (guide.Resolution, bool, error) {
		t.Fatal("resolve called for an entry behind the watched pointer")
		return guide.Resolution{}, false, nil
	}
}

func TestReconcileOneBehindWatchedKeepsWithoutResolving(t *testing.T) {
	entry := schedule.Entry{Key: "buffy", Code: "S01E02", Aired: 100}

	action, err := reconcileOne("S02E01", entry, mustNotResolve(t))
	require.NoError(t, err)
	assert.Equal(t, ActionKeep, action.Kind)
}

func TestReconcileOneCaughtUpRemoves(t *testing.T) {
	entry := schedule.Entry{Key: "buffy", Code: "S01E02", Aired: 100}

	action, err := reconcileOne("S01E02", entry, resolveTo("S01E02", time.Unix(100, 0)))
	require.NoError(t, err)
	assert.Equal(t, ActionRemove, action.Kind)
}

func TestReconcileOneNewerEpisodeUpdates(t *testing.T) {
	entry := schedule.Entry{Key: "buffy", Code: "S01E02", Aired: 100}
	freshAired := time.Unix(500, 0)

	action, err := reconcileOne("S01E02", entry, resolveTo("S01E03", freshAired))
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, action.Kind)
	assert.Equal(t, "S01E03", action.Code)
	assert.Equal(t, int64(500), action.Aired)
}

func TestReconcileOneUnchangedResolutionKeeps(t *testing.T) {
	entry := schedule.Entry{Key: "buffy", Code: "S01E03", Aired: 500}

	action, err := reconcileOne("S01E02", entry, resolveTo("S01E03", time.Unix(500, 0)))
	require.NoError(t, err)
	assert.Equal(t, ActionKeep, action.Kind)
}

func TestReconcileOneResolveErrorPropagates(t *testing.T) {
	entry := schedule.Entry{Key: "buffy", Code: "S01E02", Aired: 100}
	boom := errors.New("boom")

	action, err := reconcileOne("S01E02", entry, func() (guide.Resolution, bool, error) {
		return guide.Resolution{}, false, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ActionKeep, action.Kind)
}

func TestReconcileOneNoResolutionKeeps(t *testing.T) {
	entry := schedule.Entry{Key: "buffy", Code: "S01E02", Aired: 100}

	action, err := reconcileOne("S01E02", entry, func() (guide.Resolution, bool, error) {
		return guide.Resolution{}, false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, ActionKeep, action.Kind)
}
