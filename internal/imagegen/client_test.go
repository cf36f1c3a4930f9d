package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(rt roundTripFunc) *Client {
	return NewClient(Options{
		AccessKey:    "ak",
		SecretKey:    "sk",
		HTTPClient:   &http.Client{Transport: rt},
		Logger:       zerolog.New(io.Discard),
		PollInterval: time.Millisecond,
		PollBudget:   time.Second,
	})
}

func TestIsConfigured(t *testing.T) {
	if NewClient(Options{AccessKey: "a"}).IsConfigured() {
		t.Fatal("missing secret key must not report configured")
	}
	if !NewClient(Options{AccessKey: "a", SecretKey: "b"}).IsConfigured() {
		t.Fatal("both keys present must report configured")
	}
}

func TestGenerateUnconfigured(t *testing.T) {
	c := NewClient(Options{Logger: zerolog.New(io.Discard)})
	if _, err := c.Generate(context.Background(), GenerateRequest{Prompt: "cafe"}); err == nil {
		t.Fatal("expected error when called unconfigured")
	}
}

func TestGenerateSubmitThenPoll(t *testing.T) {
	polls := 0
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		if r.Method == http.MethodPost {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				t.Errorf("missing bearer token")
			}
			var payload map[string]any
			_ = json.NewDecoder(r.Body).Decode(&payload)
			if payload["model_name"] != "kling-v1" {
				t.Errorf("model_name = %v", payload["model_name"])
			}
			return jsonResponse(200, `{"code":0,"data":{"task_id":"t-1"}}`), nil
		}
		polls++
		if polls < 2 {
			return jsonResponse(200, `{"code":0,"data":{"task_id":"t-1","task_status":"submitted"}}`), nil
		}
		return jsonResponse(200, `{"code":0,"data":{"task_id":"t-1","task_status":"succeed",`+
			`"task_result":{"images":[{"url":"https://img.example/1.png"},{"url":"https://img.example/2.png"}]}}}`), nil
	})
	urls, err := c.Generate(context.Background(), GenerateRequest{Prompt: "서울 카페", Count: 2})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://img.example/1.png" {
		t.Fatalf("urls = %#v", urls)
	}
	if polls < 2 {
		t.Fatalf("expected at least two polls, got %d", polls)
	}
}

func TestGenerateProviderErrorCode(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"code":1102,"message":"insufficient balance"}`), nil
	})
	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "insufficient balance") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateTaskFailure(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		if r.Method == http.MethodPost {
			return jsonResponse(200, `{"code":0,"data":{"task_id":"t-9"}}`), nil
		}
		return jsonResponse(200, `{"code":0,"data":{"task_id":"t-9","task_status":"failed","task_status_msg":"content policy"}}`), nil
	})
	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "content policy") {
		t.Fatalf("err = %v", err)
	}
}

func TestGeneratePollBudgetExhausted(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		if r.Method == http.MethodPost {
			return jsonResponse(200, `{"code":0,"data":{"task_id":"t-2"}}`), nil
		}
		return jsonResponse(200, `{"code":0,"data":{"task_id":"t-2","task_status":"processing"}}`), nil
	})
	c.pollBudget = 10 * time.Millisecond
	_, err := c.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("err = %v", err)
	}
}

func TestTokenSignerCachesUntilExpiryBuffer(t *testing.T) {
	s := newTokenSigner("ak", "sk")
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	first := s.Token()
	s.now = func() time.Time { return base.Add(5 * time.Minute) }
	if s.Token() != first {
		t.Fatal("token inside validity must be reused")
	}

	// Inside the expiry buffer a fresh token must be minted.
	s.now = func() time.Time { return base.Add(tokenTTL - 30*time.Second) }
	second := s.Token()
	if second == first {
		t.Fatal("token near expiry must be re-signed")
	}

	parts := strings.Split(second, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var claims apiTokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("unmarshal claims: %v", err)
	}
	if claims.Issuer != "ak" {
		t.Fatalf("iss = %q", claims.Issuer)
	}
	if claims.Exp <= claims.IssuedAt || claims.NotBefore >= claims.IssuedAt {
		t.Fatalf("claim ordering wrong: %+v", claims)
	}
}
