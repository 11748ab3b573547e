// ABOUTME: Tests for the NextStep API client
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ParthhMahajann/Nextstep-AI/internal/credstore"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL+"/api", credstore.NewMemoryStore(credstore.Credentials{Access: "tok", Refresh: "ref"}))
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login/" {
			t.Errorf("expected path /api/auth/login/, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "ada@example.com" || body["password"] != "s3cret" {
			t.Errorf("unexpected login body: %v", body)
		}
		json.NewEncoder(w).Encode(Tokens{Access: "a1", Refresh: "r1"})
	})

	tokens, err := c.Login(context.Background(), "ada@example.com", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens.Access != "a1" || tokens.Refresh != "r1" {
		t.Errorf("unexpected tokens: %+v", tokens)
	}
}

func TestLogin_MissingAccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	})

	if _, err := c.Login(context.Background(), "ada", "pw"); err == nil {
		t.Error("expected error for response without access credential")
	}
}

func TestRegister_FieldErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string][]string{
			"username": {"A user with that username already exists."},
			"email":    {"Enter a valid email address."},
		})
	})

	_, err := c.Register(context.Background(), RegisterInput{Username: "ada"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.StatusCode)
	}
	want := "backend error: email: Enter a valid email address.; username: A user with that username already exists."
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestRegister_NestedUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("register must not send a bearer header")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"user": {"id": 3, "username": "ada"}, "message": "User registered successfully"}`))
	})

	user, err := c.Register(context.Background(), RegisterInput{Username: "ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 3 || user.Username != "ada" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestRecommendedJobs_AcceptsArrayAndEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id": 1, "title": "Go Dev"}, {"id": 2, "title": "SRE"}]`},
		{"paginated", `{"count": 2, "results": [{"id": 1, "title": "Go Dev"}, {"id": 2, "title": "SRE"}]}`},
		{"jobs envelope", `{"jobs": [{"id": 1, "title": "Go Dev"}, {"id": 2, "title": "SRE"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/jobs/recommended/" {
					t.Errorf("expected path /api/jobs/recommended/, got %s", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})

			jobs, err := c.RecommendedJobs(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(jobs) != 2 || jobs[1].Title != "SRE" {
				t.Errorf("unexpected jobs: %+v", jobs)
			}
		})
	}
}

func TestRecommendedJobs_MatchScoreOptional(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "match_score": 0.82, "matched_skills": ["go", "sql"]}, {"id": 2}]`))
	})

	jobs, err := c.RecommendedJobs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := jobs[0].MatchPercent(); got < 81.9 || got > 82.1 {
		t.Errorf("expected 82%%, got %v", got)
	}
	if jobs[1].MatchPercent() != -1 {
		t.Errorf("expected -1 for absent score, got %v", jobs[1].MatchPercent())
	}
}

func TestMatchScore_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/jobs/99/match_score/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not found."})
	})

	_, err := c.MatchScore(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSavedJobs_CRUD(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"id": 1, "job": {"id": 10, "title": "Go Dev"}, "status": "saved"}]`))
		case http.MethodPost:
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["job"] != float64(10) || body["status"] != "applied" {
				t.Errorf("unexpected create body: %v", body)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 2, "job": 10, "status": "applied"}`))
		case http.MethodPatch:
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if _, ok := body["job"]; ok {
				t.Error("status update must not resend the job")
			}
			w.Write([]byte(`{"id": 1, "job": {"id": 10}, "status": "applied"}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	saved, err := c.SavedJobs(ctx)
	if err != nil || len(saved) != 1 || saved[0].Job.Title != "Go Dev" {
		t.Fatalf("SavedJobs: %v %+v", err, saved)
	}
	created, err := c.CreateSavedJob(ctx, 10, StatusApplied)
	if err != nil || created.Status != StatusApplied || created.Job.ID != 10 {
		t.Fatalf("CreateSavedJob: %v %+v", err, created)
	}
	updated, err := c.UpdateSavedJob(ctx, 1, StatusApplied)
	if err != nil || updated.Status != StatusApplied {
		t.Fatalf("UpdateSavedJob: %v %+v", err, updated)
	}
	if err := c.DeleteSavedJob(ctx, 1); err != nil {
		t.Fatalf("DeleteSavedJob: %v", err)
	}

	want := []string{
		"GET /api/saved-jobs/",
		"POST /api/saved-jobs/",
		"PATCH /api/saved-jobs/1/",
		"DELETE /api/saved-jobs/1/",
	}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Errorf("expected calls %v, got %v", want, calls)
	}
}

func TestUpdateSavedJob_PartialResponseKeepsID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "applied", "notes": "", "applied_at": null}`))
	})

	updated, err := c.UpdateSavedJob(context.Background(), 41, StatusApplied)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != 41 || updated.Status != StatusApplied {
		t.Errorf("expected id 41 applied, got %+v", updated)
	}
}

func TestCreateSavedJob_RejectsUnknownStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.CreateSavedJob(context.Background(), 1, JobStatus("interviewing"))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGenerateEmail(t *testing.T) {
	tests := []struct {
		name    string
		req     EmailRequest
		wantErr bool
	}{
		{"job id", EmailRequest{JobID: 4, Tone: "casual"}, false},
		{"title and company", EmailRequest{JobTitle: "SRE", Company: "Acme"}, false},
		{"missing job", EmailRequest{JobTitle: "SRE"}, true},
		{"bad tone", EmailRequest{JobID: 4, Tone: "angry"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.wantErr {
					t.Error("invalid request reached the server")
				}
				json.NewEncoder(w).Encode(EmailDraft{Subject: "Hello", Body: "Hi there", Tone: "casual", WordCount: 2})
			})

			draft, err := c.GenerateEmail(context.Background(), tt.req)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if draft.Subject != "Hello" {
				t.Errorf("unexpected draft: %+v", draft)
			}
		})
	}
}

func TestAnalyzeResumeFile_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		file, header, err := r.FormFile("resume_file")
		if err != nil {
			t.Errorf("missing resume_file: %v", err)
			return
		}
		data, _ := io.ReadAll(file)
		if string(data) != "%PDF-1.4 resume" {
			t.Errorf("unexpected file content %q", data)
		}
		if header.Filename != "cv.pdf" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		if header.Header.Get("Content-Type") != "application/pdf" {
			t.Errorf("unexpected part content type %q", header.Header.Get("Content-Type"))
		}
		if r.FormValue("job_id") != "12" {
			t.Errorf("expected job_id 12, got %q", r.FormValue("job_id"))
		}
		json.NewEncoder(w).Encode(ResumeAnalysis{Strengths: []string{"Go"}, KeywordsMissing: []string{"k8s"}})
	})

	analysis, err := c.AnalyzeResumeFile(context.Background(), &ResumeFile{
		Name:        "cv.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4 resume"),
	}, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(analysis.Strengths) != 1 || analysis.KeywordsMissing[0] != "k8s" {
		t.Errorf("unexpected analysis: %+v", analysis)
	}
}

func TestAnalyzeResumeText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["resume_text"] != "Go engineer" {
			t.Errorf("unexpected body: %v", body)
		}
		if _, ok := body["job_id"]; ok {
			t.Error("job_id must be omitted when zero")
		}
		json.NewEncoder(w).Encode(ResumeAnalysis{Suggestions: "add metrics"})
	})

	analysis, err := c.AnalyzeResumeText(context.Background(), "Go engineer", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Suggestions != "add metrics" {
		t.Errorf("unexpected analysis: %+v", analysis)
	}
}

func TestAPIInfo_UsesHostRoot(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("expected host root, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(APIInfo{Name: "NextStep API", Version: "1.0"})
	})

	info, err := c.APIInfo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "NextStep API" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestAPIError_NoBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Profile(context.Background())
	if err == nil || err.Error() != "backend returned status 500" {
		t.Errorf("expected status error, got %v", err)
	}
}
