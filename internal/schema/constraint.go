package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

type ConstraintKind string

const (
	ConstraintGe        ConstraintKind = "ge"
	ConstraintGt        ConstraintKind = "gt"
	ConstraintLe        ConstraintKind = "le"
	ConstraintLt        ConstraintKind = "lt"
	ConstraintMinLength ConstraintKind = "min_length"
	ConstraintMaxLength ConstraintKind = "max_length"
	ConstraintPattern   ConstraintKind = "pattern"
	ConstraintOneOf     ConstraintKind = "one_of"
)

// Constraint is a single declarative rule evaluated after type coercion.
// Message, when set, replaces the generated failure message.
type Constraint struct {
	Kind    ConstraintKind
	Value   any
	Message string

	re *regexp.Regexp
}

func withConstraint(c Constraint) Option {
	return func(f *Field) { f.Constraints = append(f.Constraints, c) }
}

// Ge requires value >= n.
func Ge(n float64) Option { return withConstraint(Constraint{Kind: ConstraintGe, Value: n}) }

// Gt requires value > n.
func Gt(n float64) Option { return withConstraint(Constraint{Kind: ConstraintGt, Value: n}) }

// Le requires value <= n.
func Le(n float64) Option { return withConstraint(Constraint{Kind: ConstraintLe, Value: n}) }

// Lt requires value < n.
func Lt(n float64) Option { return withConstraint(Constraint{Kind: ConstraintLt, Value: n}) }

// MinLength counts code points for strings and items for lists, sets and maps.
func MinLength(n int) Option { return withConstraint(Constraint{Kind: ConstraintMinLength, Value: n}) }

func MaxLength(n int) Option { return withConstraint(Constraint{Kind: ConstraintMaxLength, Value: n}) }

// Pattern requires the whole string to match expr. The expression is compiled here, so an invalid
// pattern panics at startup rather than on the first request.
func Pattern(expr string) Option {
	re := regexp.MustCompile(`^(?:` + expr + `)$`)
	return withConstraint(Constraint{Kind: ConstraintPattern, Value: expr, re: re})
}

// OneOf restricts the value to a fixed set, compared on its canonical string form.
func OneOf(values ...any) Option {
	return withConstraint(Constraint{Kind: ConstraintOneOf, Value: values})
}

// WithMessage overrides the message of the most recently added constraint.
func WithMessage(msg string) Option {
	return func(f *Field) {
		if n := len(f.Constraints); n > 0 {
			f.Constraints[n-1].Message = msg
		}
	}
}

// Evaluate checks an already coerced value. Values of a shape the constraint does not apply to
// (a length bound on a number, say) pass.
func (c Constraint) Evaluate(value any) *Error {
	err := c.evaluate(value)
	if err != nil && c.Message != "" {
		err.Msg = c.Message
	}
	return err
}

func (c Constraint) evaluate(value any) *Error {
	switch c.Kind {
	case ConstraintGe, ConstraintGt, ConstraintLe, ConstraintLt:
		n, ok := numeric(value)
		if !ok {
			return nil
		}
		bound := c.Value.(float64)
		var pass bool
		var phrase string
		switch c.Kind {
		case ConstraintGe:
			pass, phrase = n >= bound, "greater than or equal to"
		case ConstraintGt:
			pass, phrase = n > bound, "greater than"
		case ConstraintLe:
			pass, phrase = n <= bound, "less than or equal to"
		case ConstraintLt:
			pass, phrase = n < bound, "less than"
		}
		if pass {
			return nil
		}
		return newError(KindOutOfRange, value, "Input should be %s %s", phrase, formatNumber(bound))

	case ConstraintMinLength, ConstraintMaxLength:
		size, noun, ok := length(value)
		if !ok {
			return nil
		}
		limit := c.Value.(int)
		if c.Kind == ConstraintMinLength && size < limit {
			return newError(KindTooShort, value, "%s should have at least %s", noun.title, noun.count(limit))
		}
		if c.Kind == ConstraintMaxLength && size > limit {
			return newError(KindTooLong, value, "%s should have at most %s", noun.title, noun.count(limit))
		}
		return nil

	case ConstraintPattern:
		s, ok := value.(string)
		if !ok || c.re.MatchString(s) {
			return nil
		}
		return newError(KindPatternMismatch, value, "String should match pattern '%s'", c.Value)

	case ConstraintOneOf:
		allowed := c.Value.([]any)
		got := fmt.Sprint(value)
		for _, a := range allowed {
			if fmt.Sprint(a) == got {
				return nil
			}
		}
		return newError(KindInvalidChoice, value, "Input should be %s", choiceList(allowed))
	}

	return nil
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

type lengthNoun struct {
	title    string
	singular string
	plural   string
}

func (n lengthNoun) count(limit int) string {
	if limit == 1 {
		return "1 " + n.singular
	}
	return strconv.Itoa(limit) + " " + n.plural
}

var (
	stringNoun = lengthNoun{"String", "character", "characters"}
	listNoun   = lengthNoun{"List", "item", "items"}
	mapNoun    = lengthNoun{"Dictionary", "item", "items"}
)

func length(v any) (int, lengthNoun, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), stringNoun, true
	case []any:
		return len(x), listNoun, true
	case map[string]any:
		return len(x), mapNoun, true
	}
	return 0, lengthNoun{}, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// choiceList renders "'a', 'b' or 'c'".
func choiceList[T any](values []T) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "'"+fmt.Sprint(v)+"'")
	}
	if len(quoted) <= 1 {
		return strings.Join(quoted, "")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}
