// log/stack.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"path/filepath"
	"runtime"
	"strings"
)

// StackFrame is one entry in the "callstack" attribute of a log record.
type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

const (
	modulePrefix  = "github.com/blueboat-sim/blueboat/"
	maxStackDepth = 8
)

// callstack returns the stack starting skip frames above its caller. Only
// frames in this module are kept; it stops at the first one outside it.
func callstack(skip int) []StackFrame {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(2+skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var fr []StackFrame
	for {
		frame, more := frames.Next()
		fn, ok := strings.CutPrefix(frame.Function, modulePrefix)
		if !ok {
			fn, ok = strings.CutPrefix(frame.Function, "main.")
		}
		if !ok {
			break
		}

		fr = append(fr, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: fn,
		})
		if !more || fn == "main" {
			break
		}
	}
	return fr
}
