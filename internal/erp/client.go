package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL  = "https://api.contifico.com/sistema/api/v1"
	defaultPageSize = 200
)

// ErrConfiguration marks a client built without the mandatory credentials.
var ErrConfiguration = errors.New("invalid contifico configuration")

// APIError is a non-2xx reply from the Contifico API.
type APIError struct {
	StatusCode int
	Detail     string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("contifico api error on %s: %s (status=%d)", e.Endpoint, e.Detail, e.StatusCode)
}

// Endpoint describes how to page through one Contifico collection. Some
// deployments still paginate with the historical result_* aliases, and two
// endpoints reject them outright, so the flag is per endpoint.
type Endpoint struct {
	Path              string
	LegacyAliases     bool
	UpdatedSinceField string // query field for incremental syncs
	ExtraParams       url.Values
}

// Endpoints maps every local store resource to its upstream collection.
// Purchases and sales are views over the registry document endpoint filtered
// by document and registry type.
func Endpoints() map[string]Endpoint {
	return map[string]Endpoint{
		"categories": {Path: "categoria/", LegacyAliases: true},
		"brands":     {Path: "marca/", LegacyAliases: true},
		"variants":   {Path: "variante/", LegacyAliases: true},
		"products":   {Path: "producto/", LegacyAliases: true},
		"warehouses": {Path: "bodega/", LegacyAliases: true},
		"purchases": {
			Path: "registro/documento/", LegacyAliases: true,
			ExtraParams: url.Values{"tipo": {"LQC"}, "tipo_registro": {"PRO"}},
		},
		"sales": {
			Path: "registro/documento/", LegacyAliases: true,
			ExtraParams: url.Values{"tipo": {"FAC"}, "tipo_registro": {"CLI"}},
		},
		// The core document endpoint only filters by emission date and still
		// requires the legacy aliases; the new names make it ignore paging.
		"documents":             {Path: "documento/", LegacyAliases: true, UpdatedSinceField: "fecha_emision__gte"},
		"registry_transactions": {Path: "registro/transaccion/", LegacyAliases: true},
		"persons":               {Path: "persona/", LegacyAliases: true},
		"remission_guides":      {Path: "inventario/guia/"},
		"cost_centers":          {Path: "contabilidad/centro-costo/"},
	}
}

// Client is a thin wrapper over the Contifico REST API.
type Client struct {
	baseURL    string
	apiKey     string
	apiToken   string
	pageSize   int
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient validates credentials and builds a Client. baseURL and pageSize
// fall back to the public defaults when empty.
func NewClient(baseURL, apiKey, apiToken string, pageSize int, logger *logrus.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	apiToken = strings.TrimSpace(apiToken)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: CONTIFICO_API_KEY is required", ErrConfiguration)
	}
	if apiToken == "" {
		return nil, fmt.Errorf("%w: CONTIFICO_API_TOKEN is required", ErrConfiguration)
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiToken:   apiToken,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// FetchAll pages through an endpoint and returns every record, optionally
// restricted to records modified since the given time. The API serves two
// payload shapes: a bare list (legacy, next page implied by a full page) and
// the paginated object with results and next.
func (c *Client) FetchAll(ctx context.Context, endpoint Endpoint, updatedSince *time.Time) ([]map[string]any, error) {
	var records []map[string]any
	for page := 1; ; page++ {
		items, hasNext, err := c.fetchPage(ctx, endpoint, page, updatedSince)
		if err != nil {
			return nil, err
		}
		records = append(records, items...)
		if !hasNext || len(items) == 0 {
			break
		}
	}
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint Endpoint, page int, updatedSince *time.Time) ([]map[string]any, bool, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(c.pageSize))
	if endpoint.LegacyAliases {
		params.Set("result_page", strconv.Itoa(page))
		params.Set("result_size", strconv.Itoa(c.pageSize))
	}
	if updatedSince != nil {
		field := endpoint.UpdatedSinceField
		if field == "" {
			field = "fecha_modificacion__gte"
		}
		params.Set(field, updatedSince.Format(time.RFC3339))
	}
	for key, values := range endpoint.ExtraParams {
		for _, value := range values {
			params.Add(key, value)
		}
	}

	requestURL := c.baseURL + "/" + strings.TrimLeft(endpoint.Path, "/") + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request for %s: %w", endpoint.Path, err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("X-Api-Token", c.apiToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	c.logger.WithFields(logrus.Fields{"endpoint": endpoint.Path, "page": page}).Debug("contifico request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reach contifico %s: %w", endpoint.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read contifico response for %s: %w", endpoint.Path, err)
	}

	if resp.StatusCode >= 400 {
		return nil, false, &APIError{
			StatusCode: resp.StatusCode,
			Detail:     extractErrorMessage(body, resp.StatusCode),
			Endpoint:   endpoint.Path,
		}
	}
	if len(body) == 0 {
		return nil, false, nil
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("failed to decode contifico response for %s: %w", endpoint.Path, err)
	}

	switch v := payload.(type) {
	case []any:
		items := objectItems(v)
		return items, len(items) >= c.pageSize, nil
	case map[string]any:
		results, ok := v["results"].([]any)
		if !ok {
			return nil, false, &APIError{
				StatusCode: resp.StatusCode,
				Detail:     fmt.Sprintf("unexpected response shape for %s", endpoint.Path),
				Endpoint:   endpoint.Path,
			}
		}
		next, _ := v["next"].(string)
		return objectItems(results), next != "", nil
	default:
		return nil, false, &APIError{
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("unexpected response shape for %s", endpoint.Path),
			Endpoint:   endpoint.Path,
		}
	}
}

func objectItems(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// extractErrorMessage pulls the human readable detail out of an error payload.
// Contifico uses mensaje, message, or detail depending on the endpoint.
func extractErrorMessage(body []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"mensaje", "message", "detail"} {
			if value, ok := payload[key].(string); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("error %d from contifico", status)
}
