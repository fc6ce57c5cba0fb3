// util/json.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

func UnmarshalJSON[T any](r io.Reader, out *T) error {
	// The contents are needed as bytes to turn error offsets into line
	// numbers.
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return UnmarshalJSONBytes(b, out)
}

// UnmarshalJSONBytes decodes b into out, rejecting unknown fields. Syntax
// and type errors are reported with the line and character where they
// occurred.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	err := dec.Decode(out)
	if err == nil {
		if dec.More() {
			return errors.New("Unexpected content after JSON value")
		}
		return nil
	}

	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &serr):
		line, char := decodeOffset(b, serr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %v", line, char, serr)
	case errors.As(err, &terr):
		line, char := decodeOffset(b, terr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %s value for %s.%s invalid for type %s",
			line, char, terr.Value, terr.Struct, terr.Field, terr.Type.String())
	default:
		return err
	}
}

func decodeOffset(b []byte, offset int64) (line, char int) {
	line, char = 1, 1
	for i := 0; i < int(offset) && i < len(b); i++ {
		if b[i] == '\n' {
			line++
			char = 1
		} else {
			char++
		}
	}
	return
}
