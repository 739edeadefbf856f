package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/poiesic/recall/core"
)

const defaultEndpointTimeout = 30 * time.Second

// Endpoint fetches documents from an HTTP URL. A JSON array response
// produces one document per element; any other JSON value becomes a
// single document. A body that is not JSON is a load failure.
type Endpoint struct {
	url    string
	client *resty.Client
}

var _ Source = (*Endpoint)(nil)

// EndpointOption configures an Endpoint source.
type EndpointOption func(*Endpoint)

// WithClient substitutes the HTTP client, mainly for tests.
func WithClient(client *resty.Client) EndpointOption {
	return func(e *Endpoint) {
		e.client = client
	}
}

// NewEndpoint creates an endpoint source for url.
func NewEndpoint(url string, opts ...EndpointOption) *Endpoint {
	e := &Endpoint{
		url:    url,
		client: resty.New().SetTimeout(defaultEndpointTimeout),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the endpoint URL.
func (e *Endpoint) Name() string { return e.url }

// Load fetches the URL and converts the response body into documents.
func (e *Endpoint) Load(ctx context.Context) ([]core.Document, error) {
	resp, err := e.client.R().SetContext(ctx).Get(e.url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", core.ErrSourceUnavailable, e.url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: fetching %s: status %s", core.ErrSourceUnavailable, e.url, resp.Status())
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: fetching %s: response body is not JSON", core.ErrSourceUnavailable, e.url)
	}

	// A JSON array becomes one document per element, keeping the element
	// index as provenance.
	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err == nil {
		docs := make([]core.Document, 0, len(elements))
		for i, raw := range elements {
			text := strings.TrimSpace(renderJSONValue(raw))
			if text == "" {
				continue
			}
			docs = append(docs, core.Document{
				Content: text,
				Metadata: map[string]string{
					core.MetaSource: e.url,
					core.MetaIndex:  strconv.Itoa(i),
				},
			})
		}
		return docs, nil
	}

	// Any other JSON value becomes a single document.
	text := strings.TrimSpace(renderJSONValue(body))
	if text == "" {
		return nil, nil
	}
	return []core.Document{{
		Content:  text,
		Metadata: map[string]string{core.MetaSource: e.url},
	}}, nil
}

// renderJSONValue turns a JSON array element into text. Strings are
// unquoted, everything else keeps its JSON form.
func renderJSONValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
