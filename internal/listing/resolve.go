package listing

import "fmt"

// FilmInfo is one distinct film identifier with its release date hint.
// ReleaseDate is empty when no level of the record carried a date.
type FilmInfo struct {
	Code        string
	ReleaseDate string
}

// HasDate reports whether a release date hint was found.
func (f FilmInfo) HasDate() bool { return f.ReleaseDate != "" }

// ResolveFilmInfo maps matched names back to film identifiers.
//
// A movie qualifies when its own name or a sub-film name is in matched. When
// the movie name itself matched, every sub-film contributes its code;
// otherwise only the matching sub-films do. A movie without sub-films, or a
// sub-film without a code, contributes the movie code. Date priority per occurrence is sub-film date,
// then movie date, then the year/month/day fields. The first non-empty date
// seen for a code is kept; later occurrences never clear it.
func (c Catalog) ResolveFilmInfo(matched []string) []FilmInfo {
	if len(matched) == 0 || len(c.movies) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(matched))
	for _, name := range matched {
		want[name] = struct{}{}
	}

	var infos []FilmInfo
	index := make(map[string]int)
	record := func(code, date string) {
		if code == "" {
			return
		}
		if pos, ok := index[code]; ok {
			if infos[pos].ReleaseDate == "" && date != "" {
				infos[pos].ReleaseDate = date
			}
			return
		}
		index[code] = len(infos)
		infos = append(infos, FilmInfo{Code: code, ReleaseDate: date})
	}

	for _, movie := range c.movies {
		_, movieMatched := want[movie.Name]
		movieDate := movie.ReleaseDate
		if movieDate == "" {
			movieDate = assembleDate(movie.Year, movie.Month, movie.Day)
		}

		for _, sub := range movie.Subs {
			if !movieMatched {
				if _, ok := want[sub.Name]; !ok {
					continue
				}
			}
			date := sub.ReleaseDate
			if date == "" {
				date = movieDate
			}
			code := sub.Code
			if code == "" {
				code = movie.Code
			}
			record(code, date)
		}
		if movieMatched && len(movie.Subs) == 0 {
			record(movie.Code, movieDate)
		}
	}
	return infos
}

// Codes returns the identifiers of infos in order.
func Codes(infos []FilmInfo) []string {
	out := make([]string, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.Code)
	}
	return out
}

func assembleDate(year, month, day int) string {
	if year <= 0 || month <= 0 || month > 12 || day <= 0 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
