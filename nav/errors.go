// nav/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import "errors"

// Errors used by the nav package. The guidance itself never fails; these
// are only returned when validating configuration.
var (
	ErrInvalidParams = errors.New("Invalid boat parameters")
)
