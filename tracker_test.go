package polycanyon

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// trackerCanyon is a two-structure canyon with a wide zone so fixes can be
// placed comfortably inside and outside of it.
func trackerCanyon() *Canyon {
	c := newTestCanyon(
		[]Structure{
			{Number: 1, Name: "Shell House", Latitude: 35.5000, Longitude: -120.5000},
			{Number: 2, Name: "Geodesic Dome", Latitude: 35.5100, Longitude: -120.5000},
		},
		[]MapPoint{
			{ID: 1, Latitude: 35.5000, Longitude: -120.5000, Structure: 1},
			{ID: 2, Latitude: 35.5100, Longitude: -120.5000, Structure: 2},
			{ID: 3, Latitude: 35.5050, Longitude: -120.5000, Structure: 0},
		},
	)
	c.config.Zone = SafeZone{MinLat: 35.0, MaxLat: 36.0, MinLng: -121.0, MaxLng: -120.0}
	return c
}

func collectEvents(events *[]Event) TrackerOption {
	return WithEventHandler(func(ev Event) {
		*events = append(*events, ev)
	})
}

func TestTrackerZoneTransitionsAndVisits(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	var events []Event
	tr := NewTracker(trackerCanyon(), store, collectEvents(&events))

	// Outside the zone: nothing happens.
	require.NoError(t, tr.Update(ctx, Fix{Latitude: 40.0, Longitude: -100.0}))
	assert.Empty(t, events)
	assert.False(t, tr.InZone())

	// First fix inside: zone entry plus a visit at the Shell House point.
	require.NoError(t, tr.Update(ctx, Fix{Latitude: 35.5000, Longitude: -120.5000}))
	require.Len(t, events, 2)
	assert.Equal(t, ZoneEntered, events[0].Type)
	assert.Equal(t, StructureVisited, events[1].Type)
	assert.Equal(t, 1, events[1].Structure.Number)
	assert.True(t, tr.InZone())

	// Lingering at the same structure stays a no-op.
	require.NoError(t, tr.Update(ctx, Fix{Latitude: 35.5001, Longitude: -120.5000}))
	assert.Len(t, events, 2)

	// Walking near the trail point produces no visit.
	require.NoError(t, tr.Update(ctx, Fix{Latitude: 35.5050, Longitude: -120.5000}))
	assert.Len(t, events, 2)

	// The second structure is a fresh visit.
	require.NoError(t, tr.Update(ctx, Fix{Latitude: 35.5100, Longitude: -120.5000}))
	require.Len(t, events, 3)
	assert.Equal(t, StructureVisited, events[2].Type)
	assert.Equal(t, 2, events[2].Structure.Number)

	// Leaving the zone.
	require.NoError(t, tr.Update(ctx, Fix{Latitude: 40.0, Longitude: -100.0}))
	require.Len(t, events, 4)
	assert.Equal(t, ZoneExited, events[3].Type)
	assert.False(t, tr.InZone())

	visits, err := store.Visits(ctx)
	require.NoError(t, err)
	require.Len(t, visits, 2)
	assert.Equal(t, tr.Session(), visits[0].Session)
}

func TestTrackerVisitSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	first := NewTracker(trackerCanyon(), store)
	require.NoError(t, first.Update(ctx, Fix{Latitude: 35.5000, Longitude: -120.5000}))

	// A new session against the same store must not re-mark the structure.
	var events []Event
	second := NewTracker(trackerCanyon(), store, collectEvents(&events))
	require.NoError(t, second.Update(ctx, Fix{Latitude: 35.5000, Longitude: -120.5000}))

	for _, ev := range events {
		assert.NotEqual(t, StructureVisited, ev.Type)
	}
	visits, err := store.Visits(ctx)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, first.Session(), visits[0].Session)
}

func TestTrackerDropsJunkFixes(t *testing.T) {
	ctx := context.Background()
	var events []Event
	tr := NewTracker(trackerCanyon(), NewMemStore(), collectEvents(&events))

	require.NoError(t, tr.Update(ctx, Fix{Latitude: math.NaN(), Longitude: -120.5000}))
	require.NoError(t, tr.Update(ctx, Fix{Latitude: 35.5000, Longitude: math.Inf(1)}))
	require.NoError(t, tr.Update(ctx, Fix{Latitude: 35.5000, Longitude: -120.5000, Accuracy: 120}))
	assert.Empty(t, events, "junk fixes must not move the tracker")
	assert.False(t, tr.InZone())
}

func TestTrackerVisitRadius(t *testing.T) {
	ctx := context.Background()
	var events []Event
	tr := NewTracker(trackerCanyon(), NewMemStore(),
		collectEvents(&events), WithVisitRadius(5))

	// ~22m from the Shell House point: inside zone, outside visit radius.
	require.NoError(t, tr.Update(ctx, Fix{Latitude: 35.5002, Longitude: -120.5000}))
	require.Len(t, events, 1)
	assert.Equal(t, ZoneEntered, events[0].Type)
}

type failingStore struct {
	*MemStore
}

func (f *failingStore) MarkVisited(context.Context, Visit) (bool, error) {
	return false, errors.New("disk full")
}

func TestTrackerPropagatesStoreErrors(t *testing.T) {
	tr := NewTracker(trackerCanyon(), &failingStore{NewMemStore()})
	err := tr.Update(context.Background(), Fix{Latitude: 35.5000, Longitude: -120.5000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestTrackerRun(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	var events []Event
	tr := NewTracker(trackerCanyon(), store, collectEvents(&events))

	fixes := make(chan Fix)
	done := make(chan error, 1)
	go func() {
		done <- tr.Run(ctx, fixes)
	}()

	fixes <- Fix{Latitude: 35.5000, Longitude: -120.5000, Time: time.Now()}
	fixes <- Fix{Latitude: 35.5100, Longitude: -120.5000, Time: time.Now()}
	close(fixes)

	require.NoError(t, <-done)
	visits, err := store.Visits(ctx)
	require.NoError(t, err)
	assert.Len(t, visits, 2)
}

func TestTrackerRunHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := NewTracker(trackerCanyon(), NewMemStore())

	fixes := make(chan Fix)
	done := make(chan error, 1)
	go func() {
		done <- tr.Run(ctx, fixes)
	}()

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	close(fixes)
}
