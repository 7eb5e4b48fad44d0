package factcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newFakeService(t *testing.T) (*httptest.Server, *HTTPClient) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			URL  string `json:"url"`
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Mode == "bogus" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-abc"})
	})
	mux.HandleFunc("GET /v1/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "job-abc" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(JobStatus{State: StatusStarted, Progress: 40})
	})
	mux.HandleFunc("GET /v1/jobs/{id}/result", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "job-abc" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"claims":[{"claim":"c","validation_result":{"verdict":"TRUE"}}]}`))
	})
	mux.HandleFunc("DELETE /v1/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "job-abc" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, NewHTTPClient(srv.URL, "test-key")
}

func TestHTTPClientSubmit(t *testing.T) {
	t.Parallel()

	_, client := newFakeService(t)
	jobID, err := client.Submit(context.Background(), "https://example.com/a", ModeSummary)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if jobID != "job-abc" {
		t.Fatalf("job id = %q", jobID)
	}
}

func TestHTTPClientSubmitRejectedMode(t *testing.T) {
	t.Parallel()

	_, client := newFakeService(t)
	_, err := client.Submit(context.Background(), "https://example.com/a", "bogus")
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Fatalf("err = %v, want status 422 surfaced", err)
	}
}

func TestHTTPClientStatus(t *testing.T) {
	t.Parallel()

	_, client := newFakeService(t)
	st, err := client.Status(context.Background(), "job-abc")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.State != StatusStarted || st.Progress != 40 {
		t.Fatalf("status = %+v", st)
	}
}

func TestHTTPClientResult(t *testing.T) {
	t.Parallel()

	_, client := newFakeService(t)
	raw, err := client.Result(context.Background(), "job-abc")
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	input, _ := ParseResult(raw)
	if len(input) != 1 || input[0].Verdict != "TRUE" {
		t.Fatalf("parsed = %+v", input)
	}
}

func TestHTTPClientCancel(t *testing.T) {
	t.Parallel()

	_, client := newFakeService(t)
	if err := client.Cancel(context.Background(), "job-abc"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestHTTPClientNotFound(t *testing.T) {
	t.Parallel()

	_, client := newFakeService(t)
	ctx := context.Background()

	if _, err := client.Status(ctx, "no-such-job"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("status err = %v, want ErrJobNotFound", err)
	}
	if _, err := client.Result(ctx, "no-such-job"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("result err = %v, want ErrJobNotFound", err)
	}
	if err := client.Cancel(ctx, "no-such-job"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("cancel err = %v, want ErrJobNotFound", err)
	}
}
