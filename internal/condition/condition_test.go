package condition

import (
	"errors"
	"testing"

	"marquee/internal/services"
)

func testEnv() Env {
	return Env{
		Raw:        `{"data":{"movies":[{"name":"Dune"},{"name":"Wicked"}],"status":"ok","open":true,"count":2}}`,
		MovieCount: 2,
		FilmNames:  []string{"Dune: Part Two", "Wicked"},
		TargetName: "dune",
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{DefaultExpression, true},
		{"movieCount > 5", false},
		{"movieCount >= 2 && filmCount == 2", true},
		{"anyFilmContains('WICKED')", true},
		{`anyFilmContains("Avatar")`, false},
		{"anyFilmContains(targetName)", true},
		{`contains(filmNames, "part two")`, true},
		{`contains("Spider-Man", "man") && !contains("Spider-Man", "bat")`, true},
		{`equals(targetName, "dune")`, true},
		{`gt(movieCount, 1) || lt(movieCount, 0)`, true},
		{`lt(len(filmNames), 2)`, false},
		{`field("data.status") == "ok"`, true},
		{`field("data.open")`, true},
		{`field("data.count") > 1`, true},
		{`len(field("data.movies.#.name")) == 2`, true},
		{`contains(field("data.movies.#.name"), "wick")`, true},
		{`field("data.missing")`, false},
		{"!(movieCount > 0)", false},
		{"(movieCount > 0 || false) && true", true},
		{"movieCount", true},
		{`targetName != "x"`, true},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.expr, testEnv())
		if err != nil {
			t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
		}
		if got != tt.want {
			t.Fatalf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"movieCount >",
		"unknownThing > 1",
		"exec('rm -rf /')",
		"contains(filmNames)",
		"(movieCount > 0",
		`"unterminated`,
		"movieCount > 0 garbage",
		"movieCount # 2",
		"1.2.3 > 0",
	} {
		if _, err := Compile(expr); err == nil {
			t.Fatalf("expected compile error for %q", expr)
		} else if !errors.Is(err, services.ErrExpression) {
			t.Fatalf("expected expression marker for %q, got %v", expr, err)
		}
	}
}

func TestEvalErrorsAreExpressionErrors(t *testing.T) {
	for _, expr := range []string{
		`targetName > 3`,
		`gt(filmNames, 1)`,
		`len(true)`,
		`movieCount == true`,
	} {
		prog, err := Compile(expr)
		if err != nil {
			t.Fatalf("Compile(%q): %v", expr, err)
		}
		ok, err := prog.Eval(testEnv())
		if err == nil {
			t.Fatalf("expected evaluation error for %q", expr)
		}
		if ok {
			t.Fatalf("failed evaluation must not be met: %q", expr)
		}
		if !errors.Is(err, services.ErrExpression) {
			t.Fatalf("expected expression marker, got %v", err)
		}
	}
}

func TestShortCircuitSkipsErrors(t *testing.T) {
	got, err := Evaluate("movieCount == 0 && targetName > 3", testEnv())
	if err != nil || got {
		t.Fatalf("expected short-circuit false, got %v %v", got, err)
	}
	got, err = Evaluate("movieCount > 0 || targetName > 3", testEnv())
	if err != nil || !got {
		t.Fatalf("expected short-circuit true, got %v %v", got, err)
	}
}

func TestEmptyEnvDefaultNotMet(t *testing.T) {
	got, err := Evaluate(DefaultExpression, Env{})
	if err != nil || got {
		t.Fatalf("expected default condition to be unmet on empty listing, got %v %v", got, err)
	}
}
