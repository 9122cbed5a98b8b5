package validation

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// Bound is the result of a successful Bind: the validated values of every parameter, addressable
// by field name through the embedded instance.
type Bound struct {
	*schema.Instance

	plan    *Plan
	present map[string]bool
	body    any
}

// BoundValue describes how one parameter was bound.
type BoundValue struct {
	Field   string
	Source  Source
	Value   any
	Present bool
}

// Values lists every parameter in plan order.
func (b *Bound) Values() []BoundValue {
	out := make([]BoundValue, 0, len(b.plan.params))
	for _, p := range b.plan.params {
		out = append(out, BoundValue{
			Field:   p.Field.Name,
			Source:  p.Source,
			Value:   b.Get(p.Field.Name),
			Present: b.present[p.Field.Name],
		})
	}
	return out
}

// Body is the decoded JSON body as received, or nil when the plan reads no body.
func (b *Bound) Body() any { return b.body }

type request struct {
	c         echo.Context
	body      any
	hasBody   bool
	wholeBody bool
	form      url.Values
	files     map[string][]*multipart.FileHeader
}

// Bind reads and validates every parameter of plan from the request. All failures are returned
// together in one *errs.ValidationError.
func Bind(c echo.Context, plan *Plan) (*Bound, error) {
	r := &request{c: c, wholeBody: plan.wholeBody()}

	if plan.has(SourceBody) {
		raw, body, present, err := decodeBody(c.Request())
		if err != nil {
			return nil, errs.NewValidationError(schema.Errors{{
				Source: string(SourceBody),
				Loc:    []any{},
				Kind:   schema.KindJSONInvalid,
				Msg:    "JSON decode error",
				Input:  raw,
			}}, raw)
		}
		r.body, r.hasBody = body, present
	}

	if plan.has(SourceForm, SourceFile) {
		r.form, r.files = readForm(c)
	}

	values := make(schema.Values, len(plan.params))
	present := make(map[string]bool, len(plan.params))
	set := make([]string, 0, len(plan.params))
	var failures schema.Errors

	for _, p := range plan.params {
		raw, ok := r.lookup(p)

		// Validate treats nil as absent: required fields report "missing", the rest get defaults.
		if !ok {
			raw = nil
		}
		v, fieldErrs := p.Field.Validate(raw)
		if len(fieldErrs) > 0 {
			if !(p.Source == SourceBody && r.wholeBody) {
				fieldErrs = fieldErrs.Within(p.Name())
			}
			failures = append(failures, fieldErrs.From(p.Source.errorSource())...)
			continue
		}

		values[p.Field.Name] = v
		if ok && raw != nil {
			present[p.Field.Name] = true
			set = append(set, p.Field.Name)
		}
	}

	if len(failures) > 0 {
		return nil, errs.NewValidationError(failures, r.body)
	}

	return &Bound{
		Instance: schema.Assemble(plan.schema, values, set),
		plan:     plan,
		present:  present,
		body:     r.body,
	}, nil
}

func (r *request) lookup(p Param) (any, bool) {
	name := p.Name()
	multi := p.Field.Type == schema.TypeList || p.Field.Type == schema.TypeSet

	switch p.Source {
	case SourcePath:
		for _, n := range r.c.ParamNames() {
			if n == name {
				return r.c.Param(name), true
			}
		}
		return nil, false

	case SourceQuery:
		return pick(r.c.QueryParams()[name], multi)

	case SourceHeader:
		return pick(r.c.Request().Header.Values(name), multi)

	case SourceCookie:
		ck, err := r.c.Cookie(name)
		if err != nil {
			return nil, false
		}
		return ck.Value, true

	case SourceBody:
		if !r.hasBody {
			return nil, false
		}
		if r.wholeBody {
			return r.body, true
		}
		obj, ok := r.body.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := obj[name]
		return v, ok

	case SourceForm:
		return pick(r.form[name], multi)

	case SourceFile:
		fhs := r.files[name]
		if len(fhs) == 0 {
			return nil, false
		}
		if multi {
			return fhs, true
		}
		return fhs[0], true
	}

	return nil, false
}

// pick returns all values for list-like fields and the last one otherwise.
func pick(vals []string, multi bool) (any, bool) {
	if len(vals) == 0 {
		return nil, false
	}
	if multi {
		return vals, true
	}
	return vals[len(vals)-1], true
}

// decodeBody reads the JSON body, keeping numbers as json.Number so integer precision survives.
// The request body is restored so later readers still see it.
func decodeBody(req *http.Request) (string, any, bool, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return "", nil, false, nil
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return "", nil, false, err
	}
	req.Body = io.NopCloser(bytes.NewReader(data))

	if len(bytes.TrimSpace(data)) == 0 {
		return "", nil, false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return string(data), nil, false, err
	}
	// Exactly one JSON value per body.
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return string(data), nil, false, errors.New("unexpected data after JSON body")
	}
	return string(data), body, true, nil
}

func readForm(c echo.Context) (url.Values, map[string][]*multipart.FileHeader) {
	form, err := c.FormParams()
	if err != nil {
		form = url.Values{}
	}

	var files map[string][]*multipart.FileHeader
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		files = mf.File
	}
	return form, files
}
