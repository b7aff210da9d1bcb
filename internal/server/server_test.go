package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/felnanuke2/rapid-crak/config"
	"github.com/felnanuke2/rapid-crak/internal/archive/archivetest"
	"github.com/felnanuke2/rapid-crak/internal/cracker"
	"github.com/felnanuke2/rapid-crak/internal/jobstore"
	"github.com/felnanuke2/rapid-crak/pkg/api"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(config.DefaultConfig(), jobstore.NewStore())
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestEstimateEndpoint(t *testing.T) {
	ts := testServer(t)
	resp := postJSON(t, ts.URL+"/api/estimate", api.EstimateRequest{
		Config: api.CrackConfig{MinLength: 1, MaxLength: 2, UseNumbers: true},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out api.EstimateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Combinations != "110" {
		t.Fatalf("combinations = %q", out.Combinations)
	}

	bad := postJSON(t, ts.URL+"/api/estimate", api.EstimateRequest{
		Config: api.CrackConfig{MinLength: 3, MaxLength: 1, UseNumbers: true},
	})
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid config status = %d", bad.StatusCode)
	}
}

func TestPauseEndpoint(t *testing.T) {
	t.Cleanup(func() { cracker.SetPaused(false) })
	ts := testServer(t)
	resp := postJSON(t, ts.URL+"/api/pause", api.PauseRequest{Paused: true})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !cracker.IsPaused() {
		t.Fatal("pause flag not set")
	}
	resp = postJSON(t, ts.URL+"/api/pause", api.PauseRequest{Paused: false})
	resp.Body.Close()
	if cracker.IsPaused() {
		t.Fatal("pause flag not cleared")
	}
}

func pollStatus(t *testing.T, ts *httptest.Server, id string) api.StatusResponse {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/api/crack/status?requestId=" + id)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		var out api.StatusResponse
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Status != string(jobstore.StatusRunning) {
			return out
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal status")
	return api.StatusResponse{}
}

func TestCrackJobLifecycle(t *testing.T) {
	ts := testServer(t)
	data := archivetest.Build(archivetest.Entry{
		Name: "hello.txt", Content: []byte("Hi"), Password: "42",
	})
	resp := postJSON(t, ts.URL+"/api/crack", api.CrackRequest{
		Archive: base64.StdEncoding.EncodeToString(data),
		Config:  api.CrackConfig{MinLength: 1, MaxLength: 2, UseNumbers: true},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var created api.CrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	status := pollStatus(t, ts, created.RequestId)
	if status.Status != string(jobstore.StatusReady) {
		t.Fatalf("status = %q (%s)", status.Status, status.Error)
	}
	if status.Password != "42" {
		t.Fatalf("password = %q", status.Password)
	}

	// Terminal delivery evicts the job.
	gone, err := http.Get(ts.URL + "/api/crack/status?requestId=" + created.RequestId)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Fatalf("evicted job status = %d", gone.StatusCode)
	}
}

func TestCrackJobError(t *testing.T) {
	ts := testServer(t)
	resp := postJSON(t, ts.URL+"/api/crack", api.CrackRequest{
		Archive: base64.StdEncoding.EncodeToString([]byte("not an archive")),
		Config:  api.CrackConfig{MinLength: 1, MaxLength: 2, UseNumbers: true},
	})
	defer resp.Body.Close()
	var created api.CrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	status := pollStatus(t, ts, created.RequestId)
	if status.Status != string(jobstore.StatusError) {
		t.Fatalf("status = %q", status.Status)
	}
	if status.Error == "" {
		t.Fatal("missing error reason")
	}
}

func TestCrackJobCancel(t *testing.T) {
	ts := testServer(t)
	data := archivetest.Build(archivetest.Entry{
		Name: "slow.txt", Content: []byte("long search space"), Password: "zzZZzz99",
	})
	resp := postJSON(t, ts.URL+"/api/crack", api.CrackRequest{
		Archive: base64.StdEncoding.EncodeToString(data),
		Config: api.CrackConfig{
			MinLength: 8, MaxLength: 8,
			UseLowercase: true, UseUppercase: true, UseNumbers: true,
		},
	})
	defer resp.Body.Close()
	var created api.CrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/crack?requestId="+created.RequestId, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusAccepted {
		t.Fatalf("delete status = %d", del.StatusCode)
	}

	status := pollStatus(t, ts, created.RequestId)
	if status.Status != string(jobstore.StatusCancelled) {
		t.Fatalf("status = %q", status.Status)
	}
}

func TestStatusMissingRequest(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/crack/status?requestId=nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
