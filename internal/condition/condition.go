package condition

import (
	"strings"

	"marquee/internal/services"
)

// DefaultExpression applies when neither keyword sets, a target name nor a
// condition is configured.
const DefaultExpression = "movieCount > 0"

// Env is the evaluation context derived from one listing response.
type Env struct {
	Raw        string
	MovieCount int
	FilmNames  []string
	TargetName string
}

// Program is a compiled condition. It is immutable and safe for concurrent use.
type Program struct {
	source string
	root   node
}

// Compile parses src. Errors carry services.ErrExpression.
func Compile(src string) (*Program, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, services.Wrap(services.ErrExpression, "condition", "compile", "empty expression", nil)
	}
	root, err := parse(src)
	if err != nil {
		return nil, services.Wrap(services.ErrExpression, "condition", "compile", src, err)
	}
	return &Program{source: src, root: root}, nil
}

// Source returns the trimmed expression text.
func (p *Program) Source() string { return p.source }

// Eval runs the program against env and returns its truthiness. Errors carry
// services.ErrExpression; callers treat them as "not met".
func (p *Program) Eval(env Env) (bool, error) {
	v, err := p.root.eval(&env)
	if err != nil {
		return false, services.Wrap(services.ErrExpression, "condition", "evaluate", p.source, err)
	}
	return v.Truthy(), nil
}

// Evaluate compiles and runs src in one step.
func Evaluate(src string, env Env) (bool, error) {
	prog, err := Compile(src)
	if err != nil {
		return false, err
	}
	return prog.Eval(env)
}
