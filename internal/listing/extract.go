package listing

import (
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultMoviesPath is the gjson path of the movie array when none is configured.
const DefaultMoviesPath = "data.movies"

var (
	movieNameKeys = []string{"name", "movieName", "title"}
	subListKeys   = []string{"films", "subFilms", "filmList", "versions"}
	subNameKeys   = []string{"name", "filmName", "title"}
	codeKeys      = []string{"code", "filmCode", "filmId", "id"}
	dateKeys      = []string{"releaseDate", "release_date", "openDate"}
	yearKeys      = []string{"releaseYear", "year"}
	monthKeys     = []string{"releaseMonth", "month"}
	dayKeys       = []string{"releaseDay", "day"}
)

// SubFilm is a nested per-format or per-version record of a movie.
type SubFilm struct {
	Name        string
	Code        string
	ReleaseDate string
}

// Movie is one top-level movie record. ReleaseDate holds the raw movie-level
// hint; Year, Month and Day are zero when absent.
type Movie struct {
	Name        string
	Code        string
	ReleaseDate string
	Year        int
	Month       int
	Day         int
	Subs        []SubFilm
}

// Catalog is the per-cycle extraction result. It is never mutated after Extract.
type Catalog struct {
	raw    string
	movies []Movie
	names  []string
}

// Extract parses body and collects movie records found at moviesPath.
func Extract(body []byte, moviesPath string) Catalog {
	raw := string(body)
	cat := Catalog{raw: raw}
	if !gjson.Valid(raw) {
		return cat
	}
	path := strings.TrimSpace(moviesPath)
	if path == "" {
		path = DefaultMoviesPath
	}
	list := gjson.Get(raw, path)
	if !list.IsArray() {
		return cat
	}

	seen := make(map[string]struct{})
	addName := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		cat.names = append(cat.names, name)
	}

	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		movie := parseMovie(item)
		cat.movies = append(cat.movies, movie)
		addName(movie.Name)
		for _, sub := range movie.Subs {
			addName(sub.Name)
		}
		return true
	})
	sort.Strings(cat.names)
	return cat
}

// Raw returns the unparsed response body.
func (c Catalog) Raw() string { return c.raw }

// Movies returns the extracted movie records in response order.
func (c Catalog) Movies() []Movie { return c.movies }

// MovieCount returns the number of movie records.
func (c Catalog) MovieCount() int { return len(c.movies) }

// Names returns the sorted set of movie and sub-film names.
func (c Catalog) Names() []string { return c.names }

func parseMovie(item gjson.Result) Movie {
	movie := Movie{
		Name:        firstString(item, movieNameKeys),
		Code:        firstString(item, codeKeys),
		ReleaseDate: dateString(item),
		Year:        firstInt(item, yearKeys),
		Month:       firstInt(item, monthKeys),
		Day:         firstInt(item, dayKeys),
	}
	for _, key := range subListKeys {
		subs := item.Get(key)
		if !subs.IsArray() {
			continue
		}
		subs.ForEach(func(_, sub gjson.Result) bool {
			if !sub.IsObject() {
				return true
			}
			movie.Subs = append(movie.Subs, SubFilm{
				Name:        firstString(sub, subNameKeys),
				Code:        firstString(sub, codeKeys),
				ReleaseDate: dateString(sub),
			})
			return true
		})
		break
	}
	return movie
}

func firstString(item gjson.Result, keys []string) string {
	for _, key := range keys {
		v := item.Get(key)
		switch v.Type {
		case gjson.String:
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		case gjson.Number:
			return v.Raw
		}
	}
	return ""
}

func firstInt(item gjson.Result, keys []string) int {
	for _, key := range keys {
		v := item.Get(key)
		switch v.Type {
		case gjson.Number:
			return int(v.Int())
		case gjson.String:
			if n := v.Int(); n > 0 {
				return int(n)
			}
		}
	}
	return 0
}

// dateString reads a release date hint. Structured dates ({"year":..})
// are flattened to YYYY-MM-DD here; strings are passed through raw.
func dateString(item gjson.Result) string {
	for _, key := range dateKeys {
		v := item.Get(key)
		switch {
		case v.Type == gjson.String:
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		case v.IsObject():
			if s := assembleDate(
				firstInt(v, []string{"year", "y"}),
				firstInt(v, []string{"month", "m"}),
				firstInt(v, []string{"day", "d"}),
			); s != "" {
				return s
			}
		}
	}
	return ""
}
