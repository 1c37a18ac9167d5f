// Package keywords implements keyword-set matching over candidate names.
//
// A Config is an ordered list of keyword sets. Keywords inside a set are
// AND-combined, sets are OR-combined, and every comparison is a
// case-insensitive substring check. The same matcher serves film names and
// theatre names; the legacy single target name is a one-set, one-keyword
// Config built with Single.
package keywords
