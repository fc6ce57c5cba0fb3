// sim/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrInvalidScenarioConfig = errors.New("Invalid scenario configuration")
	ErrInvalidBatchConfig    = errors.New("Invalid batch configuration")
	ErrTickLimit             = errors.New("Mission did not complete within the tick limit")
	ErrInvalidTimeStep       = errors.New("Time step must be positive")
	ErrInvalidTrack          = errors.New("Invalid track")
)
