// Package listing turns a raw cinema-listing response into the movie records
// and name set the matchers work on, and back-maps matched names to film
// identifiers with their best-known release date.
//
// Payload shapes vary between upstreams, so every field is read through a
// short list of aliases with github.com/tidwall/gjson. A response that is not
// valid JSON, or that has no movie array at the configured path, yields an
// empty Catalog rather than an error.
package listing
