package template

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formkit/pkg/conditional"
	"github.com/goliatone/go-formkit/pkg/data"
	"github.com/goliatone/go-formkit/pkg/render"
)

// Filter names available to every engine.
const (
	FilterConditions = "tr_conditions"
	FilterWalk       = "walk"
	FilterCast       = "cast"
	FilterTrim       = "trim"
	FilterErrors     = "field_errors"
)

var (
	filtersOnce sync.Once
	filtersErr  error
)

// registerFilters installs the field helper filters. pongo2 filters are
// process wide, so this runs once.
func registerFilters() error {
	filtersOnce.Do(func() {
		filters := []struct {
			name string
			fn   pongo2.FilterFunction
		}{
			{FilterConditions, filterConditions},
			{FilterWalk, filterWalk},
			{FilterCast, filterCast},
			{FilterTrim, filterTrim},
			{FilterErrors, filterFieldErrors},
		}
		for _, f := range filters {
			if pongo2.FilterExists(f.name) {
				continue
			}
			if err := pongo2.RegisterFilter(f.name, f.fn); err != nil {
				filtersErr = fmt.Errorf("template: register filter %q: %w", f.name, err)
				return
			}
		}
	})
	return filtersErr
}

// filterConditions renders {{ rules|tr_conditions }} as the escaped
// data-tr-conditions attribute, or "" for empty rule sets. Pass "value" as
// the parameter to emit only the escaped attribute value.
func filterConditions(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	set, err := ruleSetFrom(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:" + FilterConditions, OrigError: err}
	}
	if param != nil && strings.EqualFold(strings.TrimSpace(param.String()), "value") {
		return pongo2.AsSafeValue(set.AttributeValue()), nil
	}
	return pongo2.AsSafeValue(set.Attribute()), nil
}

// filterWalk reads a dotted path: {{ post|walk:"meta.title" }}. Missing
// paths render as nil.
func filterWalk(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if param == nil || param.IsNil() {
		return in, nil
	}
	return pongo2.AsValue(data.Walk(param.String(), in.Interface(), nil)), nil
}

// filterCast converts the input: {{ value|cast:"int" }}. Unknown type names
// leave the value untouched.
func filterCast(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if param == nil || param.IsNil() {
		return in, nil
	}
	return pongo2.AsValue(data.CastNamed(in.Interface(), param.String())), nil
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterFieldErrors lists the messages an error mapping holds for a field:
// {% for msg in errors|field_errors:"post_types.0.singular" %}. Without a
// parameter it lists the form-level messages.
func filterFieldErrors(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	mapping, err := errorMappingFrom(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:" + FilterErrors, OrigError: err}
	}
	if param == nil || param.IsNil() || param.String() == "" {
		return pongo2.AsValue(mapping.Form), nil
	}
	return pongo2.AsValue(mapping.For(param.String())), nil
}

func errorMappingFrom(value any) (render.ErrorMapping, error) {
	switch typed := value.(type) {
	case nil:
		return render.ErrorMapping{}, nil
	case render.ErrorMapping:
		return typed, nil
	case *render.ErrorMapping:
		if typed == nil {
			return render.ErrorMapping{}, nil
		}
		return *typed, nil
	default:
		return render.ErrorMapping{}, fmt.Errorf("unsupported error mapping %T", value)
	}
}

// ruleSetFrom accepts rule sets, rule slices, encoded attribute text and
// rule lists read from a stored document.
func ruleSetFrom(value any) (*conditional.RuleSet, error) {
	switch typed := value.(type) {
	case nil:
		return conditional.New(), nil
	case *conditional.RuleSet:
		return typed, nil
	case conditional.RuleSet:
		return &typed, nil
	case []conditional.Rule:
		return conditional.FromRules(typed...), nil
	case string:
		rules, err := conditional.ParseAttribute(typed)
		if err != nil {
			return nil, err
		}
		return conditional.FromRules(rules...), nil
	case []any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return nil, fmt.Errorf("encode rules: %w", err)
		}
		var rules []conditional.Rule
		if err := json.Unmarshal(raw, &rules); err != nil {
			return nil, fmt.Errorf("decode rules: %w", err)
		}
		return conditional.FromRules(rules...), nil
	default:
		return nil, fmt.Errorf("unsupported rule set %T", value)
	}
}
