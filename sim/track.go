// sim/track.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"io"

	"github.com/blueboat-sim/blueboat/math"
	"github.com/blueboat-sim/blueboat/nav"
	"github.com/blueboat-sim/blueboat/util"
)

const (
	TrackVersion = 1

	// Positions are stored in hundredths of a display unit and headings
	// in milliradians.
	trackPositionScale = 100
	trackHeadingScale  = 1000
)

// TrackSample is the boat's state at the end of a tick.
type TrackSample struct {
	Tick      int
	Position  math.Vector2
	Heading   float64
	Speed     float64
	State     nav.BoatState
	PathIndex int
}

// Track is a full per-tick record of a mission.
type Track struct {
	Seed      int64
	DT        float64
	Scenario  Scenario
	Samples   []TrackSample
	Events    []nav.Event
	Completed bool
}

// Recorder builds a Track from a running Mission. The zero-value
// *Recorder (nil) records nothing.
type Recorder struct {
	track Track
	sub   *EventsSubscription
}

// NewRecorder returns a Recorder for a mission of the given scenario. If
// stream is non-nil, the guidance events posted to it are saved in the
// track as well.
func NewRecorder(sc Scenario, seed int64, dt float64, stream *EventStream) *Recorder {
	r := &Recorder{track: Track{Seed: seed, DT: dt, Scenario: sc}}
	if stream != nil {
		r.sub = stream.Subscribe()
	}
	return r
}

// Record appends a sample of the mission's current state.
func (r *Recorder) Record(m *Mission) {
	if r == nil {
		return
	}

	b := m.Boat()
	r.track.Samples = append(r.track.Samples, TrackSample{
		Tick:      m.Ticks(),
		Position:  b.Position,
		Heading:   b.Heading,
		Speed:     b.Velocity.Length(),
		State:     b.State,
		PathIndex: b.PathIndex,
	})
	r.track.Completed = m.Completed()
	if r.sub != nil {
		r.track.Events = append(r.track.Events, r.sub.Get()...)
	}
}

// Track returns the recording so far and stops collecting events.
func (r *Recorder) Track() *Track {
	if r.sub != nil {
		r.track.Events = append(r.track.Events, r.sub.Get()...)
		r.sub.Unsubscribe()
		r.sub = nil
	}
	return &r.track
}

///////////////////////////////////////////////////////////////////////////
// Summary

type TrackSummary struct {
	Samples      int
	Duration     float64
	Completed    bool
	Distance     float64
	MinClearance float64
	StateTicks   map[nav.BoatState]int
	EventCounts  map[string]int
	// Tick at which the boat first started following the route, or -1
	// if it never did.
	FirstTrackingTick int
}

func (t *Track) Summary() TrackSummary {
	s := TrackSummary{
		Samples:           len(t.Samples),
		Duration:          float64(len(t.Samples)) * t.DT,
		Completed:         t.Completed,
		EventCounts:       make(map[string]int),
		FirstTrackingTick: -1,
	}

	stats := makeMissionStats(t.Scenario.Spawn)
	for _, sample := range t.Samples {
		stats.add(sample.Position, sample.State, t.Scenario.Obstacles)
		if sample.State == nav.StateTracking && s.FirstTrackingTick == -1 {
			s.FirstTrackingTick = sample.Tick
		}
	}
	s.Distance = stats.distance
	s.MinClearance = stats.clearance()
	s.StateTicks = stats.stateTicks

	for _, e := range t.Events {
		s.EventCounts[e.Type.String()]++
	}
	return s
}

///////////////////////////////////////////////////////////////////////////
// Track files

// trackFile is the on-disk representation of a Track: samples are stored
// column-wise as quantized, delta-encoded integers.
type trackFile struct {
	Version   int         `msgpack:"v"`
	Seed      int64       `msgpack:"seed"`
	DT        float64     `msgpack:"dt"`
	Scenario  Scenario    `msgpack:"scenario"`
	Completed bool        `msgpack:"completed"`
	Events    []nav.Event `msgpack:"events"`
	Ticks     []int32     `msgpack:"tick"`
	X         []int32     `msgpack:"x"`
	Y         []int32     `msgpack:"y"`
	Heading   []int32     `msgpack:"heading"`
	Speed     []float32   `msgpack:"speed"`
	State     []int8      `msgpack:"state"`
	PathIndex []int32     `msgpack:"path_index"`
}

func quantize(v, scale float64) int32 {
	if v < 0 {
		return int32(v*scale - 0.5)
	}
	return int32(v*scale + 0.5)
}

func makeTrackFile(t *Track) trackFile {
	n := len(t.Samples)
	tf := trackFile{
		Version:   TrackVersion,
		Seed:      t.Seed,
		DT:        t.DT,
		Scenario:  t.Scenario,
		Completed: t.Completed,
		Events:    t.Events,
		Ticks:     make([]int32, n),
		X:         make([]int32, n),
		Y:         make([]int32, n),
		Heading:   make([]int32, n),
		Speed:     make([]float32, n),
		State:     make([]int8, n),
		PathIndex: make([]int32, n),
	}
	for i, s := range t.Samples {
		tf.Ticks[i] = int32(s.Tick)
		tf.X[i] = quantize(s.Position.X, trackPositionScale)
		tf.Y[i] = quantize(s.Position.Y, trackPositionScale)
		tf.Heading[i] = quantize(s.Heading, trackHeadingScale)
		tf.Speed[i] = float32(s.Speed)
		tf.State[i] = int8(s.State)
		tf.PathIndex[i] = int32(s.PathIndex)
	}
	tf.Ticks = util.DeltaEncode(tf.Ticks)
	tf.X = util.DeltaEncode(tf.X)
	tf.Y = util.DeltaEncode(tf.Y)
	tf.Heading = util.DeltaEncode(tf.Heading)
	tf.PathIndex = util.DeltaEncode(tf.PathIndex)

	return tf
}

// track checks the decoded file and reconstructs the Track from it.
func (tf trackFile) track() (*Track, error) {
	if tf.Version != TrackVersion {
		return nil, fmt.Errorf("version %d: %w", tf.Version, ErrInvalidTrack)
	}

	n := len(tf.Ticks)
	if len(tf.X) != n || len(tf.Y) != n || len(tf.Heading) != n || len(tf.Speed) != n ||
		len(tf.State) != n || len(tf.PathIndex) != n {
		return nil, fmt.Errorf("mismatched sample columns: %w", ErrInvalidTrack)
	}
	for i, st := range tf.State {
		if st < int8(nav.StateIdle) || st > int8(nav.StateCompleted) {
			return nil, fmt.Errorf("sample %d: state %d: %w", i, st, ErrInvalidTrack)
		}
	}
	for i, e := range tf.Events {
		if e.Type < 0 || e.Type >= nav.NumEventTypes {
			return nil, fmt.Errorf("event %d: type %d: %w", i, int(e.Type), ErrInvalidTrack)
		}
	}

	ticks := util.DeltaDecode(tf.Ticks)
	xs, ys := util.DeltaDecode(tf.X), util.DeltaDecode(tf.Y)
	headings := util.DeltaDecode(tf.Heading)
	indices := util.DeltaDecode(tf.PathIndex)

	t := &Track{
		Seed:      tf.Seed,
		DT:        tf.DT,
		Scenario:  tf.Scenario,
		Events:    tf.Events,
		Completed: tf.Completed,
		Samples:   make([]TrackSample, n),
	}
	for i := range t.Samples {
		t.Samples[i] = TrackSample{
			Tick:      int(ticks[i]),
			Position:  math.V2(float64(xs[i])/trackPositionScale, float64(ys[i])/trackPositionScale),
			Heading:   float64(headings[i]) / trackHeadingScale,
			Speed:     float64(tf.Speed[i]),
			State:     nav.BoatState(tf.State[i]),
			PathIndex: int(indices[i]),
		}
	}
	return t, nil
}

// SaveTrack writes t to w as zstd-compressed msgpack. Positions are
// rounded to the nearest hundredth and headings to the nearest
// milliradian.
func SaveTrack(w io.Writer, t *Track) error {
	return util.EncodeObject(w, makeTrackFile(t))
}

// StoreTrack saves t to the file at path.
func StoreTrack(path string, t *Track) error {
	return util.StoreObject(path, makeTrackFile(t))
}

// LoadTrack reads a track written by SaveTrack. Files from other versions
// or with out-of-range samples or events give ErrInvalidTrack.
func LoadTrack(r io.Reader) (*Track, error) {
	var tf trackFile
	if err := util.DecodeObject(r, &tf); err != nil {
		return nil, err
	}
	return tf.track()
}

// RetrieveTrack loads the track stored in the file at path.
func RetrieveTrack(path string) (*Track, error) {
	var tf trackFile
	if err := util.RetrieveObject(path, &tf); err != nil {
		return nil, err
	}
	t, err := tf.track()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
