package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// SearchMovies searches TMDB for a title, optionally narrowed by release
// year, and returns up to limit candidates in the provider's relevance
// order. Each result is upgraded to full details (runtime, genres,
// tagline) when the per-movie lookup succeeds; on lookup failure the
// search-level fields are kept so one flaky detail call cannot sink the
// whole search.
func (c *Client) SearchMovies(ctx context.Context, query string, year int, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var resp searchResponse
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	results := resp.Results
	if len(results) > limit {
		results = results[:limit]
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		if full, err := c.GetMovie(ctx, r.ID); err == nil {
			candidates = append(candidates, *full)
			continue
		}
		candidates = append(candidates, c.fromSearchResult(r))
	}

	return candidates, nil
}

// GetMovie fetches full details for a movie by TMDB id.
func (c *Client) GetMovie(ctx context.Context, id int) (*Candidate, error) {
	var details movieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &details); err != nil {
		return nil, fmt.Errorf("getting movie %d: %w", id, err)
	}

	genres := make([]string, 0, len(details.Genres))
	for _, g := range details.Genres {
		genres = append(genres, g.Name)
	}

	return &Candidate{
		ID:            details.ID,
		Title:         details.Title,
		OriginalTitle: details.OriginalTitle,
		Year:          releaseYear(details.ReleaseDate),
		Rating:        details.VoteAverage,
		VoteCount:     details.VoteCount,
		Overview:      details.Overview,
		PosterURL:     c.posterURL(details.PosterPath),
		Runtime:       details.Runtime,
		Genres:        genres,
		Tagline:       details.Tagline,
		ReleaseDate:   details.ReleaseDate,
		Popularity:    details.Popularity,
	}, nil
}

// FetchPoster downloads poster image bytes from a full poster URL.
func (c *Client) FetchPoster(ctx context.Context, posterURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, posterURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating poster request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "poster fetch failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading poster body: %w", err)
	}
	return data, nil
}

func (c *Client) fromSearchResult(r searchResult) Candidate {
	var genres []string
	for _, id := range r.GenreIDs {
		if name, ok := genreNames[id]; ok {
			genres = append(genres, name)
		}
	}

	return Candidate{
		ID:            r.ID,
		Title:         r.Title,
		OriginalTitle: r.OriginalTitle,
		Year:          releaseYear(r.ReleaseDate),
		Rating:        r.VoteAverage,
		VoteCount:     r.VoteCount,
		Overview:      r.Overview,
		PosterURL:     c.posterURL(r.PosterPath),
		Genres:        genres,
		ReleaseDate:   r.ReleaseDate,
		Popularity:    r.Popularity,
	}
}

// releaseYear extracts the year from a TMDB release date (YYYY-MM-DD).
func releaseYear(date string) int {
	if date == "" {
		return 0
	}
	parts := strings.SplitN(date, "-", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	return year
}
