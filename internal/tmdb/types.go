package tmdb

// Candidate is one movie record returned by a TMDB search, enriched with
// detail fields when the per-movie lookup succeeds. Fields are carried
// verbatim from the provider; callers order and truncate but never mutate.
type Candidate struct {
	ID            int
	Title         string
	OriginalTitle string
	Year          int // 0 when the release date is unknown
	Rating        float64
	VoteCount     int
	Overview      string
	PosterURL     string
	Runtime       int // minutes, 0 when unknown
	Genres        []string
	Tagline       string
	ReleaseDate   string
	Popularity    float64
}

// searchResponse is the wire shape of /search/movie.
type searchResponse struct {
	Page         int            `json:"page"`
	Results      []searchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

type searchResult struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	GenreIDs      []int   `json:"genre_ids"`
	Popularity    float64 `json:"popularity"`
}

// movieDetails is the wire shape of /movie/{id}.
type movieDetails struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	OriginalTitle string     `json:"original_title"`
	ReleaseDate   string     `json:"release_date"`
	VoteAverage   float64    `json:"vote_average"`
	VoteCount     int        `json:"vote_count"`
	Overview      string     `json:"overview"`
	PosterPath    string     `json:"poster_path"`
	Runtime       int        `json:"runtime"`
	Genres        []genreRef `json:"genres"`
	Tagline       string     `json:"tagline"`
	Popularity    float64    `json:"popularity"`
}

type genreRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// genreNames maps TMDB genre ids to names for search results, which only
// carry ids. Detail lookups return full genre objects and bypass this.
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}
