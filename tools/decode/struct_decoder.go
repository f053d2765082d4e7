package decode

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Options customizes Decode behavior.
type Options struct {
	// WeaklyTypedInput enables lenient decoding (default true):
	// "123" -> int, 1.0 -> int64, and so on.
	WeaklyTypedInput bool
}

func DefaultOptions() Options {
	return Options{
		WeaklyTypedInput: true,
	}
}

func WithWeaklyTypedInput(v bool) Options {
	return Options{WeaklyTypedInput: v}
}

// DecodeMap decodes a dynamic payload map into an arbitrary struct T.
// Struct fields are matched by their `json` tag, so the same types can be
// shared between the ws frame codec and the HTTP surface.
func DecodeMap[T any](m map[string]any, opts ...Options) (*T, error) {
	if m == nil {
		return nil, fmt.Errorf("payload map is nil")
	}

	cfg := DefaultOptions()
	if len(opts) > 0 {
		cfg = opts[0]
	}

	var out T

	decCfg := &mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: cfg.WeaklyTypedInput,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			floatToIntHook(),
			sliceAnyToSliceStringHook(),
		),
	}

	dec, err := mapstructure.NewDecoder(decCfg)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}

	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &out, nil
}

// floatToIntHook converts JSON numbers (always float64) into integer
// targets without mapstructure complaining about precision.
func floatToIntHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.Float64 {
			return data, nil
		}
		f := data.(float64)
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return int64(f), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return uint64(f), nil
		case reflect.String:
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		return data, nil
	}
}

// sliceAnyToSliceStringHook converts []any into []string when every
// element is a string; JSON arrays always arrive as []any.
func sliceAnyToSliceStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.Slice || to != reflect.TypeOf([]string(nil)) {
			return data, nil
		}
		raw, ok := data.([]any)
		if !ok {
			return data, nil
		}
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			s, ok := v.(string)
			if !ok {
				return data, nil
			}
			out = append(out, s)
		}
		return out, nil
	}
}
