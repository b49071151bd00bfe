package transcripts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lexbridge/meetsync/internal/domain"
)

func newTestAPI(t *testing.T) (*httptest.Server, Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := NewMemStore()
	r := gin.New()
	NewHandler(store).Register(r.Group("/api"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func TestCreateTranscript(t *testing.T) {
	srv, _ := newTestAPI(t)

	body := `{"meetingId":"m1","content":"Alice: for the record","participants":[{"name":"Alice"}]}`
	resp, err := http.Post(srv.URL+"/api/transcripts", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got domain.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == "" || got.MeetingID != "m1" {
		t.Errorf("record = %+v", got)
	}
}

func TestCreateTranscriptRequiresFields(t *testing.T) {
	srv, _ := newTestAPI(t)

	for _, body := range []string{
		`{"content":"no meeting"}`,
		`{"meetingId":"m1"}`,
	} {
		resp, err := http.Post(srv.URL+"/api/transcripts", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestListTranscriptsFilteredByMeeting(t *testing.T) {
	srv, store := newTestAPI(t)
	seed := func(meeting string) {
		if _, err := store.Create(t.Context(), domain.TranscriptDraft{MeetingID: meeting, Content: "c"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	seed("m1")
	seed("m2")

	resp, err := http.Get(srv.URL + "/api/transcripts?meetingId=m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var got []domain.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].MeetingID != "m1" {
		t.Errorf("filtered list = %+v", got)
	}
}

func TestGetTranscriptNotFound(t *testing.T) {
	srv, _ := newTestAPI(t)
	resp, err := http.Get(srv.URL + "/api/transcripts/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
