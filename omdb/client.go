// Package omdb contains a minimal client for the OMDb HTTP API, which resolves a
// movie or show title to structured metadata using an API key.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Record is the normalized result of a title lookup. Fields the provider did not
// supply are empty strings; the formatter substitutes placeholders. Absence of a
// record altogether (not found / provider failure) is signaled separately.
type Record struct {
	Title     string `json:"title"`
	Year      string `json:"year"`
	Genre     string `json:"genre"`
	Director  string `json:"director"`
	Actors    string `json:"actors"`
	Rating    string `json:"rating"`
	Plot      string `json:"plot"`
	Awards    string `json:"awards"`
	Runtime   string `json:"runtime"`
	PosterURL string `json:"poster_url"`
	IMDBID    string `json:"imdb_id"`
}

// ErrNotFound is returned when the provider answers successfully but reports
// no match for the title (Response: "False").
var ErrNotFound = errors.New("title not found")

// Client issues title lookups against the OMDb API.
type Client struct {
	APIKey     string
	BaseURL    string // e.g. https://www.omdbapi.com
	HTTPClient *http.Client
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// omdbResponse mirrors the provider's wire schema. The provider uses the literal
// string "N/A" for fields it has no value for.
type omdbResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	IMDBRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Awards     string `json:"Awards"`
	Runtime    string `json:"Runtime"`
	Poster     string `json:"Poster"`
	IMDBID     string `json:"imdbID"`
}

// napless maps the provider's "N/A" placeholder to an empty string so that
// downstream code has a single notion of "no value".
func napless(s string) string {
	if s == "N/A" {
		return ""
	}
	return s
}

// Lookup fetches full-plot metadata for a title. It returns ErrNotFound when the
// provider reports no match, and other errors for transport, status, or decode
// failures. Exactly one request is issued per call; there is no retry loop.
func (c *Client) Lookup(ctx context.Context, title string) (Record, error) {
	if title == "" {
		return Record{}, fmt.Errorf("title empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return Record{}, err
	}
	q := req.URL.Query()
	q.Set("t", title)
	q.Set("apikey", c.APIKey)
	q.Set("plot", "full")
	req.URL.RawQuery = q.Encode()
	resp, err := c.http().Do(req)
	if err != nil {
		return Record{}, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Record{}, fmt.Errorf("omdb request failed: %s: %s", resp.Status, string(b))
	}
	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Record{}, err
	}
	if body.Response != "True" {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, body.Error)
	}
	return Record{
		Title:     napless(body.Title),
		Year:      napless(body.Year),
		Genre:     napless(body.Genre),
		Director:  napless(body.Director),
		Actors:    napless(body.Actors),
		Rating:    napless(body.IMDBRating),
		Plot:      napless(body.Plot),
		Awards:    napless(body.Awards),
		Runtime:   napless(body.Runtime),
		PosterURL: napless(body.Poster),
		IMDBID:    napless(body.IMDBID),
	}, nil
}

// IMDBLink builds the canonical IMDb URL for the record. An empty id still
// yields a well-formed (if non-resolving) link.
func (r Record) IMDBLink() string {
	return "https://www.imdb.com/title/" + url.PathEscape(r.IMDBID)
}
