package visuals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"shorts-studio/config"
	"shorts-studio/stage"
)

// UnsplashFetcher downloads a random stock photo for a keyword
type UnsplashFetcher struct {
	endpoint   string
	httpClient *http.Client
}

// NewUnsplashFetcher creates a new fetcher
func NewUnsplashFetcher(cfg *config.Config) *UnsplashFetcher {
	return &UnsplashFetcher{
		endpoint:   cfg.Image.Endpoint,
		httpClient: &http.Client{},
	}
}

type randomPhoto struct {
	URLs *struct {
		Regular string `json:"regular"`
	} `json:"urls"`
}

// Fetch looks up a random photo matching keyword and saves it to savePath.
// Nothing is written unless both requests succeed.
func (u *UnsplashFetcher) Fetch(ctx context.Context, keyword, accessKey, savePath string) error {
	log.Printf("[visuals] Searching Unsplash for %q...", keyword)

	imageURL, err := u.lookup(ctx, keyword, accessKey)
	if err != nil {
		return err
	}

	data, err := u.download(ctx, imageURL)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return stage.Local(stage.Image, "create image dir", err)
	}
	if err := os.WriteFile(savePath, data, 0o644); err != nil {
		return stage.Local(stage.Image, "write image", err)
	}

	log.Printf("[visuals] ✅ Image saved: %s", savePath)
	return nil
}

func (u *UnsplashFetcher) lookup(ctx context.Context, keyword, accessKey string) (string, error) {
	query := url.Values{}
	query.Set("query", keyword)
	query.Set("client_id", accessKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", stage.Local(stage.Image, "build search request", err)
	}
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", stage.Service(stage.Image, "unsplash search", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", stage.Service(stage.Image, "read unsplash response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", stage.Service(stage.Image, fmt.Sprintf("unsplash returned HTTP %d", resp.StatusCode), nil).
			WithBody(string(body))
	}

	var photo randomPhoto
	if err := json.Unmarshal(body, &photo); err != nil {
		return "", stage.Malformed(stage.Image, "decode unsplash response", err).WithBody(string(body))
	}
	if photo.URLs == nil || photo.URLs.Regular == "" {
		return "", stage.Malformed(stage.Image, "response has no urls.regular", nil).WithBody(string(body))
	}
	return photo.URLs.Regular, nil
}

func (u *UnsplashFetcher) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, stage.Malformed(stage.Image, "invalid image url", err)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, stage.Service(stage.Image, "image download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, stage.Service(stage.Image, fmt.Sprintf("image host returned HTTP %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, stage.Service(stage.Image, "read image body", err)
	}
	return data, nil
}
