// Package typeguard checks untrusted values read from a storage backend
// before they are treated as domain types. Checks never panic and never
// coerce: a value either has the right shape or it is rejected.
package typeguard

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/soccer-coach/internal/domain/game"
)

// Result is the outcome of a validator. Data is only meaningful when
// IsValid is true; Error is only set when it is false.
type Result[T any] struct {
	IsValid bool
	Data    T
	Error   string
}

func valid[T any](data T) Result[T] {
	return Result[T]{IsValid: true, Data: data}
}

func invalid[T any](format string, args ...any) Result[T] {
	return Result[T]{Error: fmt.Sprintf(format, args...)}
}

// IsRecord is true only for decoded JSON objects.
func IsRecord(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

type kind struct {
	name  string
	check func(any) bool
}

var (
	kindString = kind{name: "string", check: isString}
	kindNumber = kind{name: "number", check: isNumber}
	kindBool   = kind{name: "boolean", check: isBool}
	kindArray  = kind{name: "array", check: isArray}
	kindRecord = kind{name: "object", check: IsRecord}
)

type field struct {
	name string
	kind kind
}

// checkFields verifies presence and primitive type of every required field
// in order, then the type of every optional field that is present.
func checkFields(rec map[string]any, required, optional []field) string {
	for _, f := range required {
		value, ok := rec[f.name]
		if !ok || value == nil {
			return "Missing required field: " + f.name
		}
		if !f.kind.check(value) {
			return fmt.Sprintf("Invalid type for field %s: expected %s", f.name, f.kind.name)
		}
	}
	for _, f := range optional {
		value, ok := rec[f.name]
		if !ok || value == nil {
			continue
		}
		if !f.kind.check(value) {
			return fmt.Sprintf("Invalid type for field %s: expected %s", f.name, f.kind.name)
		}
	}
	return ""
}

// checkEach runs check on every element of the array stored under name and
// reports the first failing index.
func checkEach(rec map[string]any, name, label string, check func(any) string) string {
	items, _ := rec[name].([]any)
	for i, item := range items {
		if msg := check(item); msg != "" {
			return fmt.Sprintf("Invalid %s at index %d: %s", label, i, msg)
		}
	}
	return ""
}

func oneOf[T ~string](value any, allowed map[T]struct{}) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, ok = allowed[T(s)]
	return ok
}

var homeOrAwayValues = map[game.HomeOrAway]struct{}{
	game.Home: {},
	game.Away: {},
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
