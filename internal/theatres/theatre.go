package theatres

import (
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultPath is the gjson path of the theatre array when none is configured.
const DefaultPath = "data.theatres"

var (
	nameKeys    = []string{"name", "theatreName", "cinemaName"}
	idKeys      = []string{"id", "theatreId", "cinemaId"}
	showKeys    = []string{"showCount", "shows", "sessions"}
	cityKeys    = []string{"cityName", "city"}
	addressKeys = []string{"address"}
)

// Theatre is one venue returned by a lookup.
type Theatre struct {
	Name      string
	ID        string
	ShowCount int
	CityName  string
	Address   string
}

// Parse reads theatres at path from body. Malformed payloads and records
// without a name are dropped; Parse never fails.
func Parse(body []byte, path string) []Theatre {
	raw := string(body)
	if !gjson.Valid(raw) {
		return nil
	}
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	list := gjson.Get(raw, path)
	if !list.IsArray() {
		return nil
	}
	var out []Theatre
	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		th := Theatre{
			Name:      text(item, nameKeys),
			ID:        text(item, idKeys),
			ShowCount: showCount(item),
			CityName:  text(item, cityKeys),
			Address:   text(item, addressKeys),
		}
		if th.Name != "" {
			out = append(out, th)
		}
		return true
	})
	return out
}

// Dedupe collapses theatres by name. The first occurrence fixes the position,
// the last occurrence supplies the record.
func Dedupe(theatres []Theatre) []Theatre {
	if len(theatres) == 0 {
		return nil
	}
	index := make(map[string]int, len(theatres))
	out := make([]Theatre, 0, len(theatres))
	for _, th := range theatres {
		if pos, ok := index[th.Name]; ok {
			out[pos] = th
			continue
		}
		index[th.Name] = len(out)
		out = append(out, th)
	}
	return out
}

// Names returns the theatre names in order.
func Names(theatres []Theatre) []string {
	out := make([]string, 0, len(theatres))
	for _, th := range theatres {
		out = append(out, th.Name)
	}
	return out
}

func text(item gjson.Result, keys []string) string {
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

// showCount accepts either a numeric count or an array of shows.
func showCount(item gjson.Result) int {
	for _, key := range showKeys {
		v := item.Get(key)
		switch {
		case v.IsArray():
			return len(v.Array())
		case v.Type == gjson.Number:
			if n := int(v.Int()); n > 0 {
				return n
			}
			return 0
		}
	}
	return 0
}
