package llmprovider

import (
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/vnagri/claimfusion/internal/claimerr"
	"google.golang.org/genai"
)

// classifyHTTPStatus maps a provider HTTP status code to a Kind,
// shared by every provider's classifier.
func classifyHTTPStatus(code int) claimerr.Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return claimerr.KindProviderRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return claimerr.KindProviderFatal
	case code >= 500:
		return claimerr.KindProviderTransient
	case code >= 400:
		return claimerr.KindInvalidInput
	default:
		return claimerr.KindInternal
	}
}

// classifyGemini recovers a genai.APIError's HTTP code to classify the
// failure; Gemini reports quota exhaustion as RESOURCE_EXHAUSTED / 429.
func classifyGemini(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return claimerr.New(classifyHTTPStatus(apiErr.Code), apiErr.Message, err)
	}
	return classifyGeneric(err)
}

// classifyOpenAI recovers an *openai.Error's StatusCode to classify the
// failure.
func classifyOpenAI(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return claimerr.New(classifyHTTPStatus(apiErr.StatusCode), apiErr.Message, err)
	}
	return classifyGeneric(err)
}

// classifyOllama treats every failure from a local Ollama server as
// transient: there is no quota concept for a self-hosted model, only
// the server being temporarily unreachable or overloaded.
func classifyOllama(err error) error {
	if err == nil {
		return nil
	}
	return claimerr.New(claimerr.KindProviderTransient, err.Error(), err)
}

// classifyGeneric is the fallback for providers (or wrapped transport
// errors) that don't expose a structured status code.
func classifyGeneric(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted"):
		return claimerr.New(claimerr.KindProviderRateLimited, err.Error(), err)
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden") || strings.Contains(msg, "invalid api key"):
		return claimerr.New(claimerr.KindProviderFatal, err.Error(), err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "eof"):
		return claimerr.New(claimerr.KindProviderTransient, err.Error(), err)
	default:
		return claimerr.New(claimerr.KindProviderTransient, err.Error(), err)
	}
}
