package common_test

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/llenroc/mvpapi/common"
)

func TestNewMvpHttpClient(t *testing.T) {
	base := &http.Client{}
	client := common.NewMvpHttpClient("MyUserAgent", base)
	if client == nil {
		t.Fatal("expected non-nil HttpClient")
	}
}

func TestHttpClient_Do(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "TestUserAgent" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "wrong user-agent")
			return
		}
		if r.Header.Get(common.RequestIDHeader) == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "missing request id")
			return
		}
		fmt.Fprint(w, "hello world")
	}))
	defer ts.Close()

	base := &http.Client{}
	hc := common.NewMvpHttpClient("TestUserAgent", base)

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "hello world" {
		t.Errorf("unexpected response: %s", string(body))
	}
}

func TestHttpClient_RequestIDChangesPerRequest(t *testing.T) {
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(common.RequestIDHeader))
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	hc := common.NewMvpHttpClient("UA", &http.Client{})
	for i := 0; i < 2; i++ {
		resp, err := hc.Get(ts.URL)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	if len(seen) != 2 || seen[0] == "" || seen[0] == seen[1] {
		t.Errorf("expected two distinct request IDs, got %v", seen)
	}
}

func TestHttpClient_RetryWithExponentialBackoff(t *testing.T) {
	called := 0
	operation := func() (interface{}, error) {
		called++
		if called < 3 {
			// simulate a 503
			return nil, &common.HTTPError{
				StatusCode: http.StatusServiceUnavailable,
				Body:       []byte("temporary issue"),
			}
		}
		return "success", nil
	}

	hc := common.NewMvpHttpClient("UA", &http.Client{})
	// disable real sleep
	hc.SetRandAndSleepForTest(func(d time.Duration) {}, rand.Int63())

	res, err := hc.RetryWithExponentialBackoff(operation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.(string) != "success" {
		t.Errorf("expected 'success', got %v", res)
	}
	if called != 3 {
		t.Errorf("expected 3 calls, got %d", called)
	}
}

func TestHttpClient_RetryWithExponentialBackoff_NotRetryable(t *testing.T) {
	called := 0
	operation := func() (interface{}, error) {
		called++
		return nil, &common.HTTPError{
			StatusCode: http.StatusUnauthorized,
			Body:       []byte("nope"),
		}
	}

	hc := common.NewMvpHttpClient("UA", &http.Client{})
	hc.SetRandAndSleepForTest(func(d time.Duration) {}, rand.Int63())

	if _, err := hc.RetryWithExponentialBackoff(operation); err == nil {
		t.Fatal("expected error")
	}
	if called != 1 {
		t.Errorf("expected 1 call for a 401, got %d", called)
	}
}
