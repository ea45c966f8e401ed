// Package paymentsapi provides methods to pull completed payments from the
// platform's payments gateway feed.
package paymentsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBasePath is the default base path for the payments feed.
	DefaultBasePath = "/api"
)

var errHTTPUnexpectedStatusCode = errors.New("unexpected http status code")
var errHTTPBasePathFormatting = errors.New("error formatting HTTP base path")
var errHTTPBodyUnmarshall = errors.New("error unmarshalling HTTP response body")
var errPaymentsAPI = errors.New("error returned from payments api")

// HTTPUnexpectedStatusCodeError is an error wrapper.
func HTTPUnexpectedStatusCodeError(statusCode int) error {
	return fmt.Errorf("%w, %d", errHTTPUnexpectedStatusCode, statusCode)
}

// HTTPBasePathFormattingError reports an unparseable base path.
func HTTPBasePathFormattingError(basePath string) error {
	return fmt.Errorf("%w, %s", errHTTPBasePathFormatting, basePath)
}

// HTTPBodyUnmarshallError wraps a body decode failure.
func HTTPBodyUnmarshallError(baseErr error) error {
	return fmt.Errorf("%w, %w", errHTTPBodyUnmarshall, baseErr)
}

// PaymentsAPIError wraps an error message returned by the gateway.
func PaymentsAPIError(errorMsg string) error {
	return fmt.Errorf("%w, %s", errPaymentsAPI, errorMsg)
}

// Client manages requests against the payments gateway feed.
type Client struct {
	// a pointer to the http client to use.
	HTTPClient *http.Client
	// the url used as a base url for all requests.
	BasePath *url.URL
	// bearer token attached to every request.
	APIKey string
}

// NewClient creates a new payments feed Client.
func NewClient(httpClient *http.Client, basePath string, apiKey string) (*Client, error) {
	// Use a default http client if none is provided.
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	basePathURL, err := url.Parse(basePath)
	if err != nil {
		return nil, HTTPBasePathFormattingError(basePath)
	}

	return &Client{
		HTTPClient: httpClient,
		BasePath:   basePathURL,
		APIKey:     apiKey,
	}, nil
}

// CompletedPayment is one entry of the completed-payments feed. AmountUSD is
// the USD amount precomputed by the gateway.
type CompletedPayment struct {
	PaymentID   string    `json:"paymentId"`
	AmountUSD   float64   `json:"amountUsd"`
	Category    string    `json:"category"`
	CompletedAt time.Time `json:"completedAt"`
}

// CompletedPaymentsResponse is the feed page returned by the gateway.
type CompletedPaymentsResponse struct {
	Payments []CompletedPayment `json:"payments"`
}

// errorMessageResponse represents an error message attached to an HTTP response.
type errorMessageResponse struct {
	Message string `json:"message,omitempty"`
}

// CompletedPayments sends a GET request to the /payments/completed endpoint
// and returns every payment completed at or after the given instant.
func (c *Client) CompletedPayments(
	ctx context.Context,
	since time.Time) (*http.Response, *CompletedPaymentsResponse, error) {
	localVarPath := c.BasePath.ResolveReference(&url.URL{Path: "/payments/completed"})

	// Add query parameters.
	q := url.Values{}
	q.Add("since", since.UTC().Format(time.RFC3339))
	localVarPath.RawQuery = q.Encode()

	// Create the request.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, localVarPath.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Add("Authorization", "Bearer "+c.APIKey)
	}

	// Send the request.
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return resp, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	// Handle response based on status code.
	if resp.StatusCode == http.StatusOK {
		return completedPaymentsResponseUnmarshall(resp)
	} else if resp.StatusCode >= http.StatusBadRequest {
		var errMsg errorMessageResponse

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return resp, nil, fmt.Errorf("error reading response body for error: %w", readErr)
		}

		if err := json.Unmarshal(body, &errMsg); err != nil {
			return resp, nil, HTTPBodyUnmarshallError(err)
		}

		return resp, nil, PaymentsAPIError(errMsg.Message)
	}

	return resp, nil, HTTPUnexpectedStatusCodeError(resp.StatusCode)
}

// completedPaymentsResponseUnmarshall validates the http response and
// unmarshalls the result. Return an error if one exists.
func completedPaymentsResponseUnmarshall(
	resp *http.Response) (*http.Response, *CompletedPaymentsResponse, error) {
	var result CompletedPaymentsResponse

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("error reading response body: %w", err)
	}

	err = json.Unmarshal(body, &result)
	if err != nil {
		return resp, nil, HTTPBodyUnmarshallError(err)
	}

	return resp, &result, nil
}
