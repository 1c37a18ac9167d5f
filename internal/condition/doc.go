// Package condition compiles and evaluates the free-form match condition used
// when no keyword sets are configured.
//
// Conditions are parsed into a small typed AST and interpreted against an Env
// built from the current listing. Only the identifiers and predicates
// registered here are reachable; there is no general code execution. Grammar:
//
//	or    := and ("||" and)*
//	and   := unary ("&&" unary)*
//	unary := "!" unary | cmp
//	cmp   := term (("=="|"!="|">"|"<"|">="|"<=") term)?
//	term  := string | number | true | false | ident | call | "(" or ")"
//	call  := ident "(" [or ("," or)*] ")"
//
// Identifiers: movieCount, filmCount, targetName, filmNames.
// Predicates: contains, equals, gt, lt, anyFilmContains, field, len.
package condition
