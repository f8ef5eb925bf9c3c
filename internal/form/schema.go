package form

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// Spec declares one field.
type Spec struct {
	Kind Kind
	// Options restricts enum and enum_list values. Matching is case-insensitive;
	// stored values take the option's canonical spelling.
	Options []string
	// MaxLength bounds string values; 0 means the package default.
	MaxLength int
	// Min and Max bound number values when Max > Min.
	Min, Max float64
	// Integer rejects number values with a fractional part.
	Integer bool
}

const defaultMaxLength = 256

// Schema maps field names to their specs.
type Schema map[string]Spec

// Values holds the fields entered so far, keyed by field name.
type Values map[string]Value

// FieldError describes one rejected field update.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the set of rejected updates.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// Apply validates updates against the schema and returns a new Values with
// them merged over current. A zero Value clears the field. Nothing is applied
// if any update is rejected.
func (s Schema) Apply(current Values, updates Values) (Values, error) {
	var errs Errors
	next := maps.Clone(current)
	if next == nil {
		next = Values{}
	}

	for _, name := range slices.Sorted(maps.Keys(updates)) {
		v := updates[name]
		spec, ok := s[name]
		if !ok {
			errs = append(errs, FieldError{Field: name, Message: "field is not editable in this step"})
			continue
		}
		if v.IsZero() {
			delete(next, name)
			continue
		}
		normalized, err := spec.normalize(v)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Message: err.Error()})
			continue
		}
		next[name] = normalized
	}

	if len(errs) > 0 {
		return current, errs
	}
	return next, nil
}

func (spec Spec) normalize(v Value) (Value, error) {
	if v.kind != spec.Kind {
		return Value{}, fmt.Errorf("expected %s value, got %s", spec.Kind, v.kind)
	}
	switch spec.Kind {
	case KindString:
		limit := spec.MaxLength
		if limit == 0 {
			limit = defaultMaxLength
		}
		s := strings.TrimSpace(v.str)
		if len(s) > limit {
			return Value{}, fmt.Errorf("must be at most %d characters", limit)
		}
		return String(s), nil
	case KindNumber:
		if spec.Integer && v.num != math.Trunc(v.num) {
			return Value{}, fmt.Errorf("must be a whole number")
		}
		if spec.Max > spec.Min && (v.num < spec.Min || v.num > spec.Max) {
			return Value{}, fmt.Errorf("must be between %g and %g", spec.Min, spec.Max)
		}
		return v, nil
	case KindEnum:
		opt, ok := spec.option(v.str)
		if !ok {
			return Value{}, fmt.Errorf("must be one of %s", strings.Join(spec.Options, ", "))
		}
		return Enum(opt), nil
	case KindEnumList:
		out := make([]string, 0, len(v.list))
		for _, item := range v.list {
			opt, ok := spec.option(item)
			if !ok {
				return Value{}, fmt.Errorf("%q is not one of %s", item, strings.Join(spec.Options, ", "))
			}
			if !slices.Contains(out, opt) {
				out = append(out, opt)
			}
		}
		return EnumList(out...), nil
	}
	return v, nil
}

func (spec Spec) option(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, o := range spec.Options {
		if strings.EqualFold(o, s) {
			return o, true
		}
	}
	return "", false
}

// Merge combines schemas; later schemas win on name clashes.
func Merge(schemas ...Schema) Schema {
	out := Schema{}
	for _, s := range schemas {
		maps.Copy(out, s)
	}
	return out
}

// Typed readers. Missing or mismatched fields read as the zero value.

func (vs Values) String(name string) string {
	if s, ok := vs[name].AsString(); ok {
		return s
	}
	if s, ok := vs[name].AsEnum(); ok {
		return s
	}
	return ""
}

func (vs Values) Number(name string) float64 {
	n, _ := vs[name].AsNumber()
	return n
}

func (vs Values) Bool(name string) bool {
	b, _ := vs[name].AsBool()
	return b
}

func (vs Values) List(name string) []string {
	l, _ := vs[name].AsEnumList()
	return l
}

// Has reports whether name has a value.
func (vs Values) Has(name string) bool {
	_, ok := vs[name]
	return ok
}
