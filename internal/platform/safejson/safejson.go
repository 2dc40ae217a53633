// Package safejson decodes persisted JSON without letting malformed input
// escape as a panic or a half-filled value.
package safejson

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

// Result is the outcome of a parse. On failure Data holds the fallback.
type Result[T any] struct {
	Success bool
	Data    T
	Error   string
}

// Parse decodes input, which must be a string or []byte holding non-blank
// JSON. The first fallback, or the zero value, is returned on failure.
func Parse[T any](input any, fallback ...T) Result[T] {
	var fb T
	if len(fallback) > 0 {
		fb = fallback[0]
	}

	var raw []byte
	switch v := input.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return Result[T]{Data: fb, Error: fmt.Sprintf("Invalid input: expected string, got %T", input)}
	}
	if strings.TrimSpace(string(raw)) == "" {
		return Result[T]{Data: fb, Error: "Empty input"}
	}

	var out T
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return Result[T]{Data: fb, Error: "JSON parse error: " + err.Error()}
	}
	return Result[T]{Success: true, Data: out}
}

// ParseWithValidator parses into a generic JSON value and hands it to
// validate. A rejected shape fails closed with the fallback.
func ParseWithValidator[T any](input any, validate func(any) (T, error), fallback ...T) Result[T] {
	var fb T
	if len(fallback) > 0 {
		fb = fallback[0]
	}

	parsed := Parse[any](input)
	if !parsed.Success {
		return Result[T]{Data: fb, Error: parsed.Error}
	}
	if validate == nil {
		return Result[T]{Data: fb, Error: "Validation failed: validator is required"}
	}

	out, err := validate(parsed.Data)
	if err != nil {
		return Result[T]{Data: fb, Error: "Validation failed: " + err.Error()}
	}
	return Result[T]{Success: true, Data: out}
}

// Getter is the read side of a key/value store.
type Getter interface {
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
}

// StorageGet reads key and parses it. A missing key returns fallback
// quietly; access and parse failures return fallback with a warning.
func StorageGet[T any](ctx context.Context, getter Getter, key string, fallback T, logger *logging.Logger) T {
	if logger == nil {
		logger = logging.Default()
	}
	if getter == nil {
		logger.WarnContext(ctx, "storage unavailable, using fallback", "key", key)
		return fallback
	}

	raw, ok, err := getter.GetItem(ctx, key)
	if err != nil {
		logger.WarnContext(ctx, "storage read failed, using fallback", "key", key, "error", err)
		return fallback
	}
	if !ok {
		logger.DebugContext(ctx, "storage key not found, using fallback", "key", key)
		return fallback
	}

	res := Parse(raw, fallback)
	if !res.Success {
		logger.WarnContext(ctx, "stored value is not valid JSON, using fallback", "key", key, "reason", res.Error)
		return fallback
	}
	return res.Data
}

func Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// Encode streams v to w as a single JSON document.
func Encode(w io.Writer, v any) error {
	return sonic.ConfigDefault.NewEncoder(w).Encode(v)
}
