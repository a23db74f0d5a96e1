package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/gatewatch/media"
	"github.com/camden-git/gatewatch/models"
)

var testTrack = media.Track{X1: 10, Y1: 10, X2: 110, Y2: 210, TrackID: 1, Confidence: 0.9}

func sightingOf(vec []float32) []Sighting {
	return []Sighting{{Track: testTrack, Feature: vec}}
}

func TestEntryFlowMarksOutPersonIn(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("alice", models.StatusOut, 0, []float32{1, 0})

	flow := NewEntryFlow(store, NewMatcher(0.65), 60*time.Second)

	obs, err := flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.True(t, obs[0].Match.Matched)
	assert.True(t, obs[0].MarkedIn)
	require.Len(t, store.statusCalls, 1)
	assert.Equal(t, statusCall{id: 1, status: models.StatusIn}, store.statusCalls[0])
}

func TestEntryFlowDebounce(t *testing.T) {
	t0 := time.Now()
	store := newFakePersonStore()
	store.addPerson("alice", models.StatusIn, t0.Unix(), []float32{1, 0})

	flow := NewEntryFlow(store, NewMatcher(0.65), 60*time.Second)

	// re-matched 30s after arrival: inside the window, no write
	flow.now = func() time.Time { return t0.Add(30 * time.Second) }
	obs, err := flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	assert.True(t, obs[0].Match.Matched)
	assert.False(t, obs[0].MarkedIn)
	assert.Empty(t, store.statusCalls)

	// re-matched 61s after arrival: window elapsed, one write
	flow.now = func() time.Time { return t0.Add(61 * time.Second) }
	obs, err = flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	assert.True(t, obs[0].MarkedIn)
	require.Len(t, store.statusCalls, 1)
	assert.Equal(t, statusCall{id: 1, status: models.StatusIn}, store.statusCalls[0])
}

func TestEntryFlowSuppressesRewriteWithinFrame(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("alice", models.StatusOut, 0, []float32{1, 0})

	flow := NewEntryFlow(store, NewMatcher(0.65), 60*time.Second)

	// the same person matched by two tracks in one frame writes once
	two := []Sighting{
		{Track: testTrack, Feature: []float32{1, 0}},
		{Track: media.Track{X1: 200, Y1: 10, X2: 300, Y2: 210, TrackID: 2}, Feature: []float32{1, 0}},
	}
	obs, err := flow.ProcessFrame(two)
	require.NoError(t, err)
	assert.True(t, obs[0].MarkedIn)
	assert.False(t, obs[1].MarkedIn)
	assert.Len(t, store.statusCalls, 1)
}

func TestEntryFlowUnmatchedTrackMutatesNothing(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("alice", models.StatusOut, 0, []float32{1, 0})

	flow := NewEntryFlow(store, NewMatcher(0.65), 60*time.Second)

	// orthogonal feature: below threshold, surfaced as stranger
	obs, err := flow.ProcessFrame(sightingOf([]float32{0, 1}))
	require.NoError(t, err)
	assert.False(t, obs[0].Match.Matched)
	assert.Empty(t, store.statusCalls)

	// failed extraction: same outcome
	obs, err = flow.ProcessFrame(sightingOf(nil))
	require.NoError(t, err)
	assert.False(t, obs[0].Match.Matched)
	assert.Empty(t, store.statusCalls)
}

func TestEntryFlowSurvivesStorageError(t *testing.T) {
	store := newFakePersonStore()
	store.failList = true

	flow := NewEntryFlow(store, NewMatcher(0.65), 60*time.Second)

	_, err := flow.ProcessFrame(sightingOf([]float32{1, 0}))
	assert.Error(t, err)
}

func TestExitFlowDebounce(t *testing.T) {
	entered := time.Now().Add(-time.Hour)
	store := newFakePersonStore()
	store.addPerson("bob", models.StatusIn, entered.Unix(), []float32{1, 0})

	audit := &fakeAudit{}
	flow := NewExitFlow(store, NewMatcher(0.65), audit, 10*time.Second)

	t1 := time.Now()
	flow.now = func() time.Time { return t1 }
	obs, err := flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	assert.True(t, obs[0].ExitLogged)
	require.Len(t, audit.records, 1)
	require.Len(t, store.statusCalls, 1)
	assert.Equal(t, statusCall{id: 1, status: models.StatusOut}, store.statusCalls[0])

	// 3 seconds later: same person, still inside the window, no new row
	flow.now = func() time.Time { return t1.Add(3 * time.Second) }
	obs, err = flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	assert.False(t, obs[0].ExitLogged)
	assert.Len(t, audit.records, 1)
	assert.True(t, obs[0].ShowDuration)

	// 11 seconds later: window elapsed, a second independent record
	flow.now = func() time.Time { return t1.Add(11 * time.Second) }
	obs, err = flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	assert.True(t, obs[0].ExitLogged)
	require.Len(t, audit.records, 2)

	// durations are computed independently per record
	first := audit.records[0].Duration
	second := audit.records[1].Duration
	assert.InDelta(t, time.Hour.Seconds(), first.Seconds(), 2)
	assert.InDelta(t, (time.Hour + 11*time.Second).Seconds(), second.Seconds(), 2)
}

func TestExitFlowDurationZeroWithoutEntryTime(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("bob", models.StatusIn, 0, []float32{1, 0})

	audit := &fakeAudit{}
	flow := NewExitFlow(store, NewMatcher(0.65), audit, 10*time.Second)

	obs, err := flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	require.Len(t, audit.records, 1)
	assert.Zero(t, audit.records[0].Duration)
	assert.Zero(t, obs[0].Duration)
}

func TestExitFlowIdentifiesPersonMarkedOut(t *testing.T) {
	// a missed entry scan leaves the person OUT; the exit flow must still
	// identify and log them
	store := newFakePersonStore()
	store.addPerson("bob", models.StatusOut, 0, []float32{1, 0})

	audit := &fakeAudit{}
	flow := NewExitFlow(store, NewMatcher(0.65), audit, 10*time.Second)

	obs, err := flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	assert.True(t, obs[0].Match.Matched)
	assert.True(t, obs[0].ExitLogged)
	assert.Len(t, audit.records, 1)
}

func TestExitFlowAuditFailureSkipsDebounceUpdate(t *testing.T) {
	store := newFakePersonStore()
	store.addPerson("bob", models.StatusIn, time.Now().Unix(), []float32{1, 0})

	audit := &fakeAudit{failing: true}
	flow := NewExitFlow(store, NewMatcher(0.65), audit, 10*time.Second)

	obs, err := flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	assert.False(t, obs[0].ExitLogged)
	assert.Empty(t, audit.records)

	// once the log recovers the exit is retried on the next sighting
	audit.failing = false
	obs, err = flow.ProcessFrame(sightingOf([]float32{1, 0}))
	require.NoError(t, err)
	assert.True(t, obs[0].ExitLogged)
	assert.Len(t, audit.records, 1)
}
