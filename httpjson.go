package clipsave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/clipsave/clipsave/generic"
)

// urlPlaceholder is substituted with the (escaped) source URL when
// expanding an endpoint template.
const urlPlaceholder = "{url}"

// A NormalizeFunc maps one provider's raw JSON response body to a
// VideoDescriptor, or None when the response is well-formed but carries
// no playable video. Shape assumptions live entirely inside each
// provider's NormalizeFunc.
type NormalizeFunc = func(body []byte) generic.Option[VideoDescriptor]

// HTTPProvider describes a provider backed by a single JSON-over-HTTP
// endpoint: an endpoint template taking the source URL as parameter, and a
// normalization rule for the provider-specific response shape.
type HTTPProvider struct {
	Name     string
	Platform Platform
	Priority int16
	// EndpointTemplate is the API URL with a {url} placeholder. When
	// Method is POST the placeholder is optional; the source URL is sent
	// in the JSON body instead.
	EndpointTemplate string
	// Method is "GET" or "POST"; empty means GET.
	Method string
	// Quality is included in POST bodies when set.
	Quality   string
	Normalize NormalizeFunc
}

// Provider builds the registry entry for this descriptor.
func (h HTTPProvider) Provider() Provider {
	return Provider{
		Name:     h.Name,
		Platform: h.Platform,
		Priority: h.Priority,
		Resolve:  h.resolve,
	}
}

func (h HTTPProvider) resolve(ctx context.Context, client *http.Client, sourceURL string) (generic.Option[VideoDescriptor], error) {
	none := generic.None[VideoDescriptor]()
	if h.Normalize == nil {
		return none, fmt.Errorf("%w: no normalize rule", ErrInvalidProvider)
	}
	req, err := h.newRequest(ctx, sourceURL)
	if err != nil {
		return none, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return none, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return none, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return none, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(body) {
		return none, fmt.Errorf("response is not valid JSON")
	}
	return h.Normalize(body), nil
}

func (h HTTPProvider) newRequest(ctx context.Context, sourceURL string) (*http.Request, error) {
	endpoint := strings.ReplaceAll(h.EndpointTemplate, urlPlaceholder, url.QueryEscape(sourceURL))
	if h.Method == http.MethodPost {
		payload := struct {
			URL     string `json:"url"`
			Quality string `json:"quality,omitempty"`
		}{URL: sourceURL, Quality: h.Quality}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
}
