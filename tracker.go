package polycanyon

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fix is a single GPS reading.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64   // Horizontal accuracy in meters; 0 = unknown
	Time      time.Time // Zero time means "now"
}

// EventType identifies a tracker event.
type EventType string

const (
	ZoneEntered      EventType = "zone_entered"
	ZoneExited       EventType = "zone_exited"
	StructureVisited EventType = "structure_visited"
)

// Event is emitted by the tracker on zone transitions and first visits.
type Event struct {
	Type      EventType
	Structure Structure // Set for StructureVisited
	Fix       Fix
	Session   string
}

// EventHandler receives tracker events. Handlers are called synchronously
// from Update; long-running work belongs on the handler's own goroutine.
type EventHandler func(Event)

// Tracker defaults.
const (
	// defaultVisitRadiusMeters is how close the nearest map point must be
	// for a structure to count as visited. GPS in the canyon drifts ~10m
	// under the ridge, so the radius is looser than the point spacing.
	defaultVisitRadiusMeters = 30

	// defaultMaxAccuracyMeters drops fixes whose reported accuracy is worse
	// than this. Cold-start fixes routinely report 100m+.
	defaultMaxAccuracyMeters = 50
)

// TrackerOption is a functional option for configuring a Tracker.
type TrackerOption func(*Tracker)

// WithLogger sets the tracker's logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) TrackerOption {
	return func(t *Tracker) {
		t.log = log
	}
}

// WithEventHandler registers a handler for tracker events.
func WithEventHandler(h EventHandler) TrackerOption {
	return func(t *Tracker) {
		t.handler = h
	}
}

// WithVisitRadius overrides the visit detection radius in meters.
func WithVisitRadius(meters float64) TrackerOption {
	return func(t *Tracker) {
		t.visitRadius = meters
	}
}

// WithMaxAccuracy overrides the worst acceptable fix accuracy in meters.
func WithMaxAccuracy(meters float64) TrackerOption {
	return func(t *Tracker) {
		t.maxAccuracy = meters
	}
}

// Tracker consumes a stream of GPS fixes, detects safe-zone transitions and
// marks structures visited through a VisitStore. Marking is idempotent: the
// store decides whether a visit is new, and only new visits produce events.
type Tracker struct {
	canyon  *Canyon
	visits  VisitStore
	log     *zap.Logger
	handler EventHandler
	session string

	visitRadius float64
	maxAccuracy float64

	mu     sync.Mutex
	inZone bool
	sawFix bool
}

// NewTracker creates a tracker for one session. Each tracker gets a fresh
// session id recorded on the visits it produces.
func NewTracker(c *Canyon, visits VisitStore, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		canyon:      c,
		visits:      visits,
		log:         zap.NewNop(),
		session:     uuid.NewString(),
		visitRadius: defaultVisitRadiusMeters,
		maxAccuracy: defaultMaxAccuracyMeters,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Session returns the tracker's session id.
func (t *Tracker) Session() string {
	return t.session
}

// InZone reports whether the last accepted fix was inside the safe zone.
func (t *Tracker) InZone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sawFix && t.inZone
}

// Update processes one fix. Invalid or inaccurate fixes are dropped, not
// errors: a GPS stream always contains junk and the tracker must keep going.
// Store failures are returned to the caller.
func (t *Tracker) Update(ctx context.Context, fix Fix) error {
	if math.IsNaN(fix.Latitude) || math.IsNaN(fix.Longitude) ||
		math.IsInf(fix.Latitude, 0) || math.IsInf(fix.Longitude, 0) {
		t.log.Debug("dropping invalid fix", zap.String("session", t.session))
		return nil
	}
	if t.maxAccuracy > 0 && fix.Accuracy > t.maxAccuracy {
		t.log.Debug("dropping inaccurate fix",
			zap.Float64("accuracy", fix.Accuracy),
			zap.Float64("max", t.maxAccuracy))
		return nil
	}
	if fix.Time.IsZero() {
		fix.Time = time.Now()
	}

	in := t.canyon.InZone(fix.Latitude, fix.Longitude)

	t.mu.Lock()
	transitioned := !t.sawFix && in || t.sawFix && in != t.inZone
	t.sawFix = true
	t.inZone = in
	t.mu.Unlock()

	if transitioned {
		if in {
			t.log.Info("entered safe zone",
				zap.Float64("lat", fix.Latitude), zap.Float64("lng", fix.Longitude))
			t.emit(Event{Type: ZoneEntered, Fix: fix, Session: t.session})
		} else {
			t.log.Info("exited safe zone",
				zap.Float64("lat", fix.Latitude), zap.Float64("lng", fix.Longitude))
			t.emit(Event{Type: ZoneExited, Fix: fix, Session: t.session})
		}
	}

	if !in {
		return nil
	}

	s, dist, ok := t.canyon.NearestStructure(fix.Latitude, fix.Longitude)
	if !ok || dist > t.visitRadius {
		return nil
	}

	marked, err := t.visits.MarkVisited(ctx, Visit{
		Structure: s.Number,
		Session:   t.session,
		At:        fix.Time,
	})
	if err != nil {
		return err
	}
	if marked {
		t.log.Info("structure visited",
			zap.Int("structure", s.Number),
			zap.String("name", s.Name),
			zap.Float64("distance_m", dist))
		t.emit(Event{Type: StructureVisited, Structure: s, Fix: fix, Session: t.session})
	}
	return nil
}

// Run consumes fixes until the channel closes or the context is canceled.
func (t *Tracker) Run(ctx context.Context, fixes <-chan Fix) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fix, ok := <-fixes:
			if !ok {
				return nil
			}
			if err := t.Update(ctx, fix); err != nil {
				return err
			}
		}
	}
}

func (t *Tracker) emit(ev Event) {
	if t.handler != nil {
		t.handler(ev)
	}
}
