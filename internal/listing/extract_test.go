package listing

import (
	"reflect"
	"testing"
)

const sampleListing = `{
  "data": {
    "movies": [
      {
        "name": "Spider-Man: No Way Home",
        "releaseDate": "Dec 17, 2021",
        "films": [
          {"name": "Spider-Man: No Way Home (IMAX)", "code": "SM-IMAX"},
          {"name": "Spider-Man: No Way Home (2D)", "code": "SM-2D", "releaseDate": "2021-12-16"}
        ]
      },
      {
        "title": "Dune",
        "filmId": 4411,
        "releaseYear": 2021, "releaseMonth": 10, "releaseDay": 22
      },
      "not-an-object",
      {
        "movieName": "Encanto",
        "subFilms": [
          {"filmName": "Encanto (3D)", "filmCode": "EN-3D"},
          {"filmName": "Encanto (2D)", "filmCode": "EN-2D", "release_date": {"year": 2021, "month": 11, "day": 24}}
        ]
      },
      {"name": "Dune"}
    ]
  }
}`

func TestExtractCollectsNames(t *testing.T) {
	cat := Extract([]byte(sampleListing), "")
	if cat.MovieCount() != 4 {
		t.Fatalf("expected 4 movie records, got %d", cat.MovieCount())
	}
	want := []string{
		"Dune",
		"Encanto",
		"Encanto (2D)",
		"Encanto (3D)",
		"Spider-Man: No Way Home",
		"Spider-Man: No Way Home (2D)",
		"Spider-Man: No Way Home (IMAX)",
	}
	if !reflect.DeepEqual(cat.Names(), want) {
		t.Fatalf("names = %v, want %v", cat.Names(), want)
	}
	if cat.Movies()[1].Code != "4411" {
		t.Fatalf("expected numeric code to be kept as text, got %q", cat.Movies()[1].Code)
	}
}

func TestExtractDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
	}{
		{"malformed", `{"data":`, ""},
		{"missing path", `{"data":{}}`, ""},
		{"not an array", `{"data":{"movies":{"name":"x"}}}`, ""},
		{"custom path absent", sampleListing, "result.items"},
		{"empty body", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := Extract([]byte(tt.body), tt.path)
			if cat.MovieCount() != 0 || len(cat.Names()) != 0 {
				t.Fatalf("expected empty catalog, got %+v", cat)
			}
			if cat.Raw() != tt.body {
				t.Fatalf("expected raw body to be kept")
			}
		})
	}
}

func TestExtractCustomPath(t *testing.T) {
	body := `{"result":{"items":[{"name":"Wicked","code":"W1"}]}}`
	cat := Extract([]byte(body), "result.items")
	if !reflect.DeepEqual(cat.Names(), []string{"Wicked"}) {
		t.Fatalf("unexpected names %v", cat.Names())
	}
}
