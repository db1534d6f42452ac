package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeSource struct {
	snap Snapshot
}

func (f *fakeSource) StatusSnapshot() Snapshot { return f.snap }

func TestHealthz(t *testing.T) {
	s := NewServer(":0", &fakeSource{}, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestStatus(t *testing.T) {
	src := &fakeSource{snap: Snapshot{
		Uptime:         "1h2m",
		ActiveSessions: 3,
		FilesReceived:  10,
		PostsPublished: 7,
	}}
	s := NewServer(":0", src, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if snap.ActiveSessions != 3 || snap.FilesReceived != 10 || snap.PostsPublished != 7 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestUnknownPath(t *testing.T) {
	s := NewServer(":0", &fakeSource{}, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
