// ABOUTME: Error taxonomy for the embedding and completion collaborators
// ABOUTME: Maps OpenAI API failures onto unavailable vs quota-exceeded sentinels
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrEmbeddingUnavailable means the embedding provider could not be reached or is misconfigured
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrEmbeddingQuotaExceeded means the embedding provider rejected the request for quota reasons
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrCompletionUnavailable means the completion endpoint could not be reached or is misconfigured
	ErrCompletionUnavailable = errors.New("completion endpoint unavailable")
	// ErrCompletionQuotaExceeded means the completion endpoint rejected the request for quota reasons
	ErrCompletionQuotaExceeded = errors.New("completion quota exceeded")
)

// isQuotaError reports whether err is an OpenAI quota or rate limit rejection
func isQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return true
		}
		switch code := apiErr.Code.(type) {
		case string:
			return code == "insufficient_quota" || code == "rate_limit_exceeded"
		}
		return apiErr.Type == "insufficient_quota"
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// isPermanent reports whether retrying err cannot help
func isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) || isQuotaError(err) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return true
		}
	}
	return false
}

// classify wraps err with the quota sentinel when it is a quota failure and the
// unavailable sentinel otherwise
func classify(err error, unavailable, quota error) error {
	if isQuotaError(err) {
		return fmt.Errorf("%w: %v", quota, err)
	}
	return fmt.Errorf("%w: %v", unavailable, err)
}
