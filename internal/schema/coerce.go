package schema

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// jsonNumber matches the number type produced by a decoder with UseNumber enabled.
type jsonNumber interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

// Validate runs the full field pipeline on one raw value: absence check, type coercion,
// constraints in declaration order, then the field check. A nil raw value is treated as absent.
func (f *Field) Validate(raw any) (any, Errors) {
	return f.validate(raw, nil)
}

func (f *Field) validate(raw any, sofar Values) (any, Errors) {
	if raw == nil {
		switch {
		case f.Optional:
			if f.hasDefault {
				return f.defaultValue(), nil
			}
			return nil, nil
		case f.hasDefault:
			return f.defaultValue(), nil
		default:
			return nil, Errors{missingError()}
		}
	}

	v, errs := f.coerce(raw)
	if len(errs) > 0 {
		return nil, errs
	}

	for _, c := range f.Constraints {
		if err := c.Evaluate(v); err != nil {
			return nil, Errors{err}
		}
	}

	if f.Check != nil {
		if err := f.Check(v, sofar); err != nil {
			return nil, Errors{newError(KindPredicate, raw, "Value error, %s", err.Error())}
		}
	}

	return v, nil
}

func (f *Field) coerce(raw any) (any, Errors) {
	if n, ok := raw.(jsonNumber); ok && f.Type != TypeInt && f.Type != TypeFloat {
		raw = normalizeNumber(n)
	}
	raw = widen(raw)

	var (
		v   any
		err *Error
	)
	switch f.Type {
	case TypeInt:
		v, err = toInt(raw)
	case TypeFloat:
		v, err = toFloat(raw)
	case TypeString:
		v, err = toString(raw)
	case TypeBool:
		v, err = toBool(raw)
	case TypeTimestamp:
		v, err = toTimestamp(raw)
	case TypeTime:
		v, err = toTimeOfDay(raw)
	case TypeDuration:
		v, err = toDuration(raw)
	case TypeUUID:
		v, err = toUUID(raw)
	case TypeURL:
		v, err = toURL(raw)
	case TypeEmail:
		v, err = toEmail(raw)
	case TypeEnum:
		v, err = f.toEnum(raw)
	case TypeFile:
		v, err = toUpload(raw)
	case TypeAny:
		v = normalizeJSON(raw)
	case TypeObject:
		return f.toObject(raw)
	case TypeList:
		return f.toList(raw, false)
	case TypeSet:
		return f.toList(raw, true)
	case TypeMap:
		return f.toMap(raw)
	default:
		panic(fmt.Sprintf("schema: unknown field type %q", f.Type))
	}

	if err != nil {
		return nil, Errors{err}
	}
	return v, nil
}

func typeError(raw any, format string, args ...any) *Error {
	return newError(KindTypeMismatch, raw, format, args...)
}

func toInt(raw any) (any, *Error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, typeError(raw, "Input should be a valid integer")
		}
		return int64(v), nil
	case float64:
		return floatToInt(raw, v)
	case jsonNumber:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		if f, err := v.Float64(); err == nil {
			return floatToInt(raw, f)
		}
	case string:
		s := strings.TrimSpace(v)
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return nil, typeError(raw, "Input should be a valid integer")
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return floatToInt(raw, f)
		}
		return nil, typeError(raw, "Input should be a valid integer, unable to parse string as an integer")
	}
	return nil, typeError(raw, "Input should be a valid integer")
}

func floatToInt(raw any, f float64) (any, *Error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, typeError(raw, "Input should be a finite number")
	}
	if f != math.Trunc(f) {
		return nil, typeError(raw, "Input should be a valid integer, got a number with a fractional part")
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= 9223372036854775808.0 || f < -9223372036854775808.0 {
		return nil, typeError(raw, "Input should be a valid integer")
	}
	return int64(f), nil
}

func toFloat(raw any) (any, *Error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case jsonNumber:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, nil
		}
		return nil, typeError(raw, "Input should be a valid number, unable to parse string as a number")
	case bool:
	default:
		if n, err := toInt(raw); err == nil {
			return float64(n.(int64)), nil
		}
	}
	return nil, typeError(raw, "Input should be a valid number")
}

func toString(raw any) (any, *Error) {
	if s, ok := raw.(string); ok {
		return s, nil
	}
	return nil, typeError(raw, "Input should be a valid string")
}

func toBool(raw any) (any, *Error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case float64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on", "t", "y":
			return true, nil
		case "false", "0", "no", "off", "f", "n":
			return false, nil
		}
	}
	return nil, typeError(raw, "Input should be a valid boolean, unable to interpret input")
}

func toTimestamp(raw any) (any, *Error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		if t, ok := parseTimestamp(v); ok {
			return t, nil
		}
	case int64:
		return unixSeconds(float64(v)), nil
	case float64:
		return unixSeconds(v), nil
	}
	return nil, typeError(raw, "Input should be a valid datetime")
}

func toTimeOfDay(raw any) (any, *Error) {
	switch v := raw.(type) {
	case TimeOfDay:
		return v, nil
	case time.Time:
		return TimeOfDay{Hour: v.Hour(), Minute: v.Minute(), Second: v.Second(), Nanosecond: v.Nanosecond()}, nil
	case string:
		if t, ok := parseTimeOfDay(v); ok {
			return t, nil
		}
	}
	return nil, typeError(raw, "Input should be a valid time")
}

func toDuration(raw any) (any, *Error) {
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		if d, ok := parseDuration(v); ok {
			return d, nil
		}
	}
	return nil, typeError(raw, "Input should be a valid duration")
}

func toUUID(raw any) (any, *Error) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		if id, err := uuid.Parse(strings.TrimSpace(v)); err == nil {
			return id, nil
		}
	}
	return nil, typeError(raw, "Input should be a valid UUID")
}

func toURL(raw any) (any, *Error) {
	s, ok := raw.(string)
	if ok {
		u, err := url.Parse(strings.TrimSpace(s))
		if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return u.String(), nil
		}
	}
	return nil, typeError(raw, "Input should be a valid URL")
}

func toEmail(raw any) (any, *Error) {
	s, ok := raw.(string)
	if ok && validate.Var(s, "required,email") == nil {
		return s, nil
	}
	return nil, typeError(raw, "value is not a valid email address")
}

func (f *Field) toEnum(raw any) (any, *Error) {
	s, ok := raw.(string)
	if !ok {
		s = fmt.Sprint(raw)
	}
	for _, c := range f.Choices {
		if c == s {
			return s, nil
		}
	}
	return nil, newError(KindInvalidChoice, raw, "Input should be %s", choiceList(f.Choices))
}

func toUpload(raw any) (any, *Error) {
	switch v := raw.(type) {
	case *Upload:
		return v, nil
	case *multipart.FileHeader:
		return NewUpload(v), nil
	}
	return nil, typeError(raw, "Expected UploadFile, received: %T", raw)
}

func (f *Field) toObject(raw any) (any, Errors) {
	if inst, ok := raw.(*Instance); ok && inst.schema == f.Schema {
		return inst.Clone(), nil
	}
	inst, errs := f.Schema.Validate(raw)
	if len(errs) > 0 {
		return nil, errs
	}
	return inst, nil
}

func (f *Field) toList(raw any, unique bool) (any, Errors) {
	items, ok := asList(raw)
	if !ok {
		if unique {
			return nil, Errors{typeError(raw, "Input should be a valid set")}
		}
		return nil, Errors{typeError(raw, "Input should be a valid list")}
	}

	out := make([]any, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	var errs Errors
	for i, item := range items {
		v, itemErrs := f.Elem.validate(item, nil)
		if len(itemErrs) > 0 {
			errs = append(errs, itemErrs.Within(i)...)
			continue
		}
		if unique {
			key := identity(v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, v)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func (f *Field) toMap(raw any) (any, Errors) {
	m, ok := raw.(map[string]any)
	if !ok {
		if inst, isInst := raw.(*Instance); isInst {
			m, ok = inst.Dump(), true
		}
	}
	if !ok {
		return nil, Errors{typeError(raw, "Input should be a valid dictionary")}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(m))
	var errs Errors
	for _, k := range keys {
		key := any(k)
		if f.Key != nil {
			coerced, keyErrs := f.Key.validate(k, nil)
			if len(keyErrs) > 0 {
				errs = append(errs, keyErrs.Within(k, "[key]")...)
				continue
			}
			key = coerced
		}
		v, valErrs := f.Elem.validate(m[k], nil)
		if len(valErrs) > 0 {
			errs = append(errs, valErrs.Within(k)...)
			continue
		}
		out[identity(key)] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []*multipart.FileHeader:
		out := make([]any, len(v))
		for i, fh := range v {
			out[i] = fh
		}
		return out, true
	}
	return nil, false
}

// identity is the canonical string form used for set membership and map keys.
func identity(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return formatNumber(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return FormatISODuration(x)
	}
	return fmt.Sprint(v)
}

// widen maps Go's sized numeric types onto int64 and float64.
func widen(raw any) any {
	switch v := raw.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case uint32:
		return int64(v)
	case uint16:
		return int64(v)
	case uint8:
		return int64(v)
	case float32:
		return float64(v)
	}
	return raw
}

func normalizeNumber(n jsonNumber) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// normalizeJSON replaces decoder number values inside arbitrary JSON with int64 or float64.
func normalizeJSON(v any) any {
	switch x := v.(type) {
	case jsonNumber:
		return normalizeNumber(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeJSON(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalizeJSON(item)
		}
		return out
	}
	return v
}
