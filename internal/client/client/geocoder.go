package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/consultbook/internal/client/models"
)

// NominatimGeocoder queries a Nominatim-compatible /search endpoint.
type NominatimGeocoder struct {
	baseURL string
	limit   int
	client  *http.Client
}

func NewNominatimGeocoder(baseURL string, timeout time.Duration) *NominatimGeocoder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NominatimGeocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   5,
		client:  &http.Client{Timeout: timeout},
	}
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (g *NominatimGeocoder) SearchPlaces(ctx context.Context, query string) ([]models.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(g.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "consultbook-client")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: place search: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place search: status %d", resp.StatusCode)
	}

	var raw []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: place search: %v", ErrMalformedResponse, err)
	}

	places := make([]models.Place, 0, len(raw))
	for _, p := range raw {
		places = append(places, models.Place{DisplayName: p.DisplayName, Lat: p.Lat, Lon: p.Lon})
	}
	return places, nil
}
