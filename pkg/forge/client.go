package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the fixed host the client talks to unless a test
// overrides it.
const DefaultBaseURL = "https://forge.laravel.com"

// DeploymentID identifies one deployment on the platform. The API has
// returned both numeric and string identifiers, so it decodes either.
type DeploymentID string

// UnmarshalJSON accepts a JSON string or number.
func (d *DeploymentID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = DeploymentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("deployment id is neither string nor number: %s", data)
	}
	*d = DeploymentID(n.String())
	return nil
}

// Config holds everything needed to address one site's deployments.
type Config struct {
	// Token is the API bearer token
	Token string

	// Organization slug
	Organization string

	// Server numeric identifier
	Server string

	// Site numeric identifier
	Site string

	// BaseURL overrides the default host (used by tests) - optional
	BaseURL string

	// HTTPClient overrides the default HTTP client - optional
	HTTPClient *http.Client
}

// Client issues authenticated requests against the Forge API for a
// single site.
//
// Example:
//
//	client := forge.NewClient(&forge.Config{
//	    Token:        token,
//	    Organization: "acme",
//	    Server:       "123",
//	    Site:         "456",
//	})
//	id, err := client.CreateDeployment(ctx)
type Client struct {
	baseURL    string
	token      string
	org        string
	server     string
	site       string
	httpClient *http.Client
}

// NewClient creates a client for the site identified by the config.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		org:        cfg.Organization,
		server:     cfg.Server,
		site:       cfg.Site,
		httpClient: httpClient,
	}
}

// Response is the outcome of one API request. Body is nil when the
// response had no content (e.g., HTTP 204).
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// request performs one HTTP round trip. A non-nil body is serialized to
// JSON. Network failures return a transport-kind error; a non-empty
// response body that is not valid JSON returns a parse-kind error. Any
// received status code, success or not, is returned to the caller for
// classification.
func (c *Client) request(ctx context.Context, method, path string, body any) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, Err: err}
	}

	if len(data) == 0 {
		return &Response{StatusCode: resp.StatusCode}, nil
	}
	if !json.Valid(data) {
		return nil, &APIError{
			Kind:       KindParse,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("response body is not valid JSON"),
		}
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// statusError builds a classified error for a non-success response,
// appending the platform's message field when the payload carries one.
func statusError(resp *Response) error {
	apiErr := &APIError{
		Kind:       classifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
	}
	if len(resp.Body) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(resp.Body, &payload) == nil {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}

func (c *Client) deploymentsPath() string {
	return fmt.Sprintf("/api/orgs/%s/servers/%s/sites/%s/deployments", c.org, c.server, c.site)
}

// deploymentEnvelope matches the API's {data: {...}} wrapper.
type deploymentEnvelope struct {
	Data struct {
		ID         DeploymentID `json:"id"`
		Attributes struct {
			Status string `json:"status"`
			Output string `json:"output"`
		} `json:"attributes"`
	} `json:"data"`
}

// CreateDeployment triggers a new deployment and returns its identifier.
// The platform acknowledges a trigger with HTTP 202; any other status is
// a classified failure. A 202 without an identifier in the payload is a
// malformed response, not a success.
func (c *Client) CreateDeployment(ctx context.Context) (DeploymentID, error) {
	resp, err := c.request(ctx, http.MethodPost, c.deploymentsPath(), nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusAccepted {
		return "", statusError(resp)
	}

	var envelope deploymentEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return "", &APIError{Kind: KindParse, StatusCode: resp.StatusCode, Err: err}
	}
	if envelope.Data.ID == "" {
		return "", &APIError{
			Kind:       KindParse,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("deployment accepted but response contained no id"),
		}
	}
	return envelope.Data.ID, nil
}

// GetDeployment fetches the current status of a deployment.
func (c *Client) GetDeployment(ctx context.Context, id DeploymentID) (string, error) {
	path := fmt.Sprintf("%s/%s", c.deploymentsPath(), id)
	resp, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var envelope deploymentEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return "", &APIError{Kind: KindParse, StatusCode: resp.StatusCode, Err: err}
	}
	return envelope.Data.Attributes.Status, nil
}

// GetDeploymentLog fetches the accumulated log output of a deployment.
// A payload without an output field yields an empty string.
func (c *Client) GetDeploymentLog(ctx context.Context, id DeploymentID) (string, error) {
	path := fmt.Sprintf("%s/%s/log", c.deploymentsPath(), id)
	resp, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var envelope deploymentEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return "", &APIError{Kind: KindParse, StatusCode: resp.StatusCode, Err: err}
	}
	return envelope.Data.Attributes.Output, nil
}
