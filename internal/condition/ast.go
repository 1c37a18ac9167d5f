package condition

import "fmt"

type node interface {
	eval(env *Env) (Value, error)
}

type literalNode struct{ v Value }

func (n literalNode) eval(*Env) (Value, error) { return n.v, nil }

type identNode struct {
	name string
	get  func(*Env) Value
}

func (n identNode) eval(env *Env) (Value, error) { return n.get(env), nil }

type notNode struct{ x node }

func (n notNode) eval(env *Env) (Value, error) {
	v, err := n.x.eval(env)
	if err != nil {
		return Value{}, err
	}
	return boolValue(!v.Truthy()), nil
}

type logicalNode struct {
	and  bool
	l, r node
}

func (n logicalNode) eval(env *Env) (Value, error) {
	l, err := n.l.eval(env)
	if err != nil {
		return Value{}, err
	}
	if n.and && !l.Truthy() {
		return boolValue(false), nil
	}
	if !n.and && l.Truthy() {
		return boolValue(true), nil
	}
	r, err := n.r.eval(env)
	if err != nil {
		return Value{}, err
	}
	return boolValue(r.Truthy()), nil
}

type compareNode struct {
	op   string
	l, r node
}

func (n compareNode) eval(env *Env) (Value, error) {
	l, err := n.l.eval(env)
	if err != nil {
		return Value{}, err
	}
	r, err := n.r.eval(env)
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case "==", "!=":
		eq, err := equalValues(l, r)
		if err != nil {
			return Value{}, err
		}
		return boolValue(eq == (n.op == "==")), nil
	}
	cmp, err := compareValues(l, r)
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case ">":
		return boolValue(cmp > 0), nil
	case "<":
		return boolValue(cmp < 0), nil
	case ">=":
		return boolValue(cmp >= 0), nil
	case "<=":
		return boolValue(cmp <= 0), nil
	}
	return Value{}, fmt.Errorf("unknown operator %q", n.op)
}

type callNode struct {
	name string
	pred predicate
	args []node
}

func (n callNode) eval(env *Env) (Value, error) {
	args := make([]Value, 0, len(n.args))
	for _, arg := range n.args {
		v, err := arg.eval(env)
		if err != nil {
			return Value{}, err
		}
		args = append(args, v)
	}
	v, err := n.pred.fn(env, args)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", n.name, err)
	}
	return v, nil
}
