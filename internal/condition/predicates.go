package condition

import (
	"errors"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"marquee/internal/textutil"
)

type predicate struct {
	arity int
	fn    func(env *Env, args []Value) (Value, error)
}

var identifiers = map[string]func(*Env) Value{
	"movieCount": func(env *Env) Value { return numberValue(float64(env.MovieCount)) },
	"filmCount":  func(env *Env) Value { return numberValue(float64(len(env.FilmNames))) },
	"targetName": func(env *Env) Value { return stringValue(env.TargetName) },
	"filmNames":  func(env *Env) Value { return listValue(env.FilmNames) },
}

var predicates = map[string]predicate{
	"contains":        {arity: 2, fn: containsFn},
	"equals":          {arity: 2, fn: equalsFn},
	"gt":              {arity: 2, fn: gtFn},
	"lt":              {arity: 2, fn: ltFn},
	"anyFilmContains": {arity: 1, fn: anyFilmContainsFn},
	"field":           {arity: 1, fn: fieldFn},
	"len":             {arity: 1, fn: lenFn},
}

// contains is case-insensitive; a list haystack matches when any element does.
func containsFn(_ *Env, args []Value) (Value, error) {
	needle, err := asString(args[1])
	if err != nil {
		return Value{}, err
	}
	switch args[0].Kind {
	case KindList:
		for _, item := range args[0].L {
			if textutil.ContainsFold(item, needle) {
				return boolValue(true), nil
			}
		}
		return boolValue(false), nil
	case KindString:
		return boolValue(textutil.ContainsFold(args[0].S, needle)), nil
	}
	return Value{}, errors.New("first argument must be a string or list")
}

func equalsFn(_ *Env, args []Value) (Value, error) {
	eq, err := equalValues(args[0], args[1])
	if err != nil {
		return Value{}, err
	}
	return boolValue(eq), nil
}

func gtFn(_ *Env, args []Value) (Value, error) {
	cmp, err := compareValues(args[0], args[1])
	if err != nil {
		return Value{}, err
	}
	return boolValue(cmp > 0), nil
}

func ltFn(_ *Env, args []Value) (Value, error) {
	cmp, err := compareValues(args[0], args[1])
	if err != nil {
		return Value{}, err
	}
	return boolValue(cmp < 0), nil
}

func anyFilmContainsFn(env *Env, args []Value) (Value, error) {
	needle, err := asString(args[0])
	if err != nil {
		return Value{}, err
	}
	for _, name := range env.FilmNames {
		if textutil.ContainsFold(name, needle) {
			return boolValue(true), nil
		}
	}
	return boolValue(false), nil
}

// field reads the raw response with a gjson path. Arrays become lists of
// their elements' string forms; a missing path is null.
func fieldFn(env *Env, args []Value) (Value, error) {
	path, err := asString(args[0])
	if err != nil {
		return Value{}, err
	}
	res := gjson.Get(env.Raw, path)
	switch {
	case !res.Exists():
		return nullValue(), nil
	case res.IsArray():
		items := res.Array()
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.String())
		}
		return listValue(out), nil
	}
	switch res.Type {
	case gjson.True, gjson.False:
		return boolValue(res.Bool()), nil
	case gjson.Number:
		return numberValue(res.Num), nil
	case gjson.Null:
		return nullValue(), nil
	}
	return stringValue(res.String()), nil
}

func lenFn(_ *Env, args []Value) (Value, error) {
	switch args[0].Kind {
	case KindList:
		return numberValue(float64(len(args[0].L))), nil
	case KindString:
		return numberValue(float64(utf8.RuneCountInString(args[0].S))), nil
	case KindNull:
		return numberValue(0), nil
	}
	return Value{}, errors.New("argument must be a string or list")
}

func asString(v Value) (string, error) {
	switch v.Kind {
	case KindString:
		return v.S, nil
	case KindNumber:
		return v.String(), nil
	}
	return "", errors.New("argument must be a string")
}
