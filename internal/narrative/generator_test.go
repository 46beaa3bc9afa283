package narrative

import (
	"errors"
	"testing"

	"github.com/openai/openai-go/v3"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "", "grok-4-fast"); err == nil {
		t.Fatalf("missing api key accepted")
	}
	if _, err := NewClient("key", "", ""); err == nil {
		t.Fatalf("missing model accepted")
	}
}

func TestClassifyQuotaExhausted(t *testing.T) {
	err := classify(&openai.Error{StatusCode: 429, Message: "You exceeded your current quota"})
	if !types.IsKind(err, types.KindQuotaExhausted) {
		t.Fatalf("got kind %q, want quota_exhausted", types.KindOf(err))
	}
}

func TestClassifyRateLimited(t *testing.T) {
	err := classify(&openai.Error{StatusCode: 429, Message: "Too many requests"})
	if !types.IsKind(err, types.KindRateLimited) {
		t.Fatalf("got kind %q, want rate_limited", types.KindOf(err))
	}
}

func TestClassifyServerErrorUnavailable(t *testing.T) {
	err := classify(&openai.Error{StatusCode: 503, Message: "Service unavailable"})
	if !types.IsKind(err, types.KindBackendUnavailable) {
		t.Fatalf("got kind %q, want backend_unavailable", types.KindOf(err))
	}
}

func TestClassifyTransportErrorUnavailable(t *testing.T) {
	err := classify(errors.New("dial tcp: connection refused"))
	if !types.IsKind(err, types.KindBackendUnavailable) {
		t.Fatalf("got kind %q, want backend_unavailable", types.KindOf(err))
	}
}

func TestClassifyKeepsUnderlyingError(t *testing.T) {
	underlying := &openai.Error{StatusCode: 429, Message: "Too many requests"}
	err := classify(underlying)
	var apierr *openai.Error
	if !errors.As(err, &apierr) {
		t.Fatalf("underlying api error lost")
	}
}
