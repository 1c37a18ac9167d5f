// Package textutil provides the text normalization shared by film and theatre
// matching.
//
// Names arrive from listing APIs in mixed case, with full-width or composed
// characters depending on the upstream. Fold reduces both sides of a
// comparison to the same form so substring checks behave case-insensitively.
package textutil
