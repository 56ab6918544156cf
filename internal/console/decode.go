package console

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/mesh-intelligence/backstage/pkg/types"
)

var validate = newValidator()

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// convertScalars lets form-style payloads carry numbers as strings and
// lets numeric JSON land in string fields. JSON numbers bound for an int
// field must be whole.
func convertScalars(f, t reflect.Kind, data any) (any, error) {
	v := reflect.ValueOf(data)
	switch {
	case f == reflect.Float64 && t == reflect.Int:
		x := v.Float()
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return nil, fmt.Errorf("%v is not a whole number", x)
		}
		return int(x), nil
	case f == reflect.String && t == reflect.Int:
		return strconv.Atoi(strings.TrimSpace(v.String()))
	case f == reflect.String && t == reflect.Float64:
		return strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
	case f == reflect.String && t == reflect.Bool:
		return strconv.ParseBool(strings.TrimSpace(v.String()))
	case f == reflect.Float64 && t == reflect.String:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	case f == reflect.Int && t == reflect.String:
		return strconv.FormatInt(v.Int(), 10), nil
	case f == reflect.Bool && t == reflect.String:
		return strconv.FormatBool(v.Bool()), nil
	}
	return data, nil
}

// decodeInto merges input onto out. Only keys present in input change;
// keys out does not have are an error.
func decodeInto(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Squash:      true,
		ErrorUnused: true,
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(convertScalars),
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return nil
}

// stripImmutable returns input without the keys clients may not set.
func stripImmutable(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for k, v := range input {
		out[k] = v
	}
	for _, k := range types.ImmutableFields {
		delete(out, k)
	}
	return out
}

// checkRecord runs the struct validation tags and the table's status list.
func checkRecord(r types.Record, statuses []string) error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", types.ErrInvalidData, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if len(statuses) == 0 {
		return nil
	}
	status := r.Meta().Status
	for _, s := range statuses {
		if s == status {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (want one of %s)", types.ErrInvalidStatus, status, strings.Join(statuses, ", "))
}
