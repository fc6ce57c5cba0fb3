// nav/state.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import "fmt"

// BoatState summarizes what the guidance is doing. Apart from
// StateCompleted, it is recomputed every tick from the current
// conditions; StateCompleted is only set by the owner of the Boat (see
// Boat.MarkCompleted) once Update has reported arrival.
type BoatState int

const (
	StateIdle BoatState = iota
	StateApproaching
	StateTracking
	StateAvoiding
	StateCompleted
)

func (s BoatState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateApproaching:
		return "Approaching"
	case StateTracking:
		return "Tracking"
	case StateAvoiding:
		return "Avoiding"
	case StateCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("BoatState(%d)", int(s))
	}
}

// Label returns the text shown in the HUD.
func (s BoatState) Label() string {
	switch s {
	case StateIdle:
		return "Waiting"
	case StateApproaching:
		return "Seeking entry"
	case StateTracking:
		return "Following route"
	case StateAvoiding:
		return "Avoiding obstacle"
	case StateCompleted:
		return "Mission complete"
	default:
		return s.String()
	}
}

// deriveState returns the tracking state given the distance to the
// pursuit target; avoidance overrides it separately.
func deriveState(distToTarget, lookahead float64) BoatState {
	if distToTarget > 2*lookahead {
		return StateApproaching
	}
	return StateTracking
}

func (s BoatState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *BoatState) UnmarshalText(b []byte) error {
	for st := StateIdle; st <= StateCompleted; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("%s: unknown boat state", string(b))
}
