// Package validation binds HTTP requests to schemas.
//
// A Plan lists the parameters of one endpoint: where each value comes from (path, query,
// header, cookie, body, form, file), its external name, and the schema field that validates it.
// Bind reads every parameter, validates all of them and either returns the bound instance or a
// single *errs.ValidationError holding every problem found.
package validation

import (
	"strings"

	"github.com/deppfellow/apiplayground/internal/schema"
)

// Source is the request location a parameter is read from.
type Source string

const (
	SourcePath   Source = "path"
	SourceQuery  Source = "query"
	SourceHeader Source = "header"
	SourceCookie Source = "cookie"
	SourceBody   Source = "body"
	SourceForm   Source = "form"
	SourceFile   Source = "file"
)

// errorSource is the first "loc" segment reported to clients. Form fields and files are part
// of the request body as far as clients are concerned.
func (s Source) errorSource() string {
	switch s {
	case SourceForm, SourceFile:
		return string(SourceBody)
	}
	return string(s)
}

// Param binds one schema field to a request location.
type Param struct {
	Field  *schema.Field
	Source Source
	Hidden bool
	Embed  bool

	alias string
}

type ParamOption func(*Param)

// Alias changes the external name. The bound value keeps the field name.
func Alias(name string) ParamOption {
	return func(p *Param) { p.alias = name }
}

// Hidden leaves the parameter out of generated documentation. It still binds.
func Hidden() ParamOption {
	return func(p *Param) { p.Hidden = true }
}

// Embed makes a lone body parameter read its own key of the JSON body instead of the whole body.
func Embed() ParamOption {
	return func(p *Param) { p.Embed = true }
}

func newParam(source Source, f *schema.Field, opts []ParamOption) Param {
	p := Param{Field: f, Source: source}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func Path(f *schema.Field, opts ...ParamOption) Param   { return newParam(SourcePath, f, opts) }
func Query(f *schema.Field, opts ...ParamOption) Param  { return newParam(SourceQuery, f, opts) }
func Header(f *schema.Field, opts ...ParamOption) Param { return newParam(SourceHeader, f, opts) }
func Cookie(f *schema.Field, opts ...ParamOption) Param { return newParam(SourceCookie, f, opts) }
func Body(f *schema.Field, opts ...ParamOption) Param   { return newParam(SourceBody, f, opts) }
func Form(f *schema.Field, opts ...ParamOption) Param   { return newParam(SourceForm, f, opts) }
func File(f *schema.Field, opts ...ParamOption) Param   { return newParam(SourceFile, f, opts) }

// Name is the external name of the parameter. Headers default to the field name with
// underscores turned into hyphens, so user_agent reads User-Agent.
func (p Param) Name() string {
	if p.alias != "" {
		return p.alias
	}
	if p.Source == SourceHeader {
		return strings.ReplaceAll(p.Field.Name, "_", "-")
	}
	return p.Field.Name
}

// Plan is the binding plan of one endpoint.
type Plan struct {
	Name string

	params []Param
	schema *schema.Schema
}

// NewPlan builds a plan. Two parameters with the same field name panic.
func NewPlan(name string, params ...Param) *Plan {
	fields := make([]*schema.Field, 0, len(params))
	for _, p := range params {
		fields = append(fields, p.Field)
	}
	return &Plan{
		Name:   name,
		params: params,
		schema: schema.New(name, fields...),
	}
}

func (p *Plan) Params() []Param { return p.params }

func (p *Plan) Schema() *schema.Schema { return p.schema }

// Documented returns the parameters that appear in generated documentation.
func (p *Plan) Documented() []Param {
	out := make([]Param, 0, len(p.params))
	for _, param := range p.params {
		if !param.Hidden {
			out = append(out, param)
		}
	}
	return out
}

// WholeBody reports whether the request body is the value of a single body parameter rather than
// an object keyed by parameter name.
func (p *Plan) WholeBody() bool { return p.wholeBody() }

// wholeBody reports whether the single body parameter receives the entire decoded body.
func (p *Plan) wholeBody() bool {
	n := 0
	for _, param := range p.params {
		if param.Source != SourceBody {
			continue
		}
		if param.Embed {
			return false
		}
		n++
	}
	return n == 1
}

func (p *Plan) has(sources ...Source) bool {
	for _, param := range p.params {
		for _, s := range sources {
			if param.Source == s {
				return true
			}
		}
	}
	return false
}
