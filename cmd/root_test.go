// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Also holds the fake backend shared by the command tests

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/credstore"
)

// fakeAPI is an in-memory NextStep backend
type fakeAPI struct {
	mu         sync.Mutex
	jobs       map[int64]client.Job
	saved      []savedRow
	nextID     int64
	posts      int
	patches    int
	catalog    []client.Skill
	userSkills []client.UserSkill
}

type savedRow struct {
	ID     int64
	JobID  int64
	Status string
}

func newFakeAPI() *fakeAPI {
	score := 0.87
	return &fakeAPI{
		jobs: map[int64]client.Job{
			12: {ID: 12, Title: "Go Engineer", Company: "Acme", Location: "Remote", JobType: "full_time", MatchScore: &score},
			13: {ID: 13, Title: "Platform Engineer", Company: "Globex", Location: "Berlin"},
			14: {ID: 14, Title: "SRE", Company: "Initech"},
		},
		nextID: 100,
		catalog: []client.Skill{
			{ID: 1, Name: "Go", Category: "programming"},
			{ID: 2, Name: "SQL", Category: "data"},
			{ID: 3, Name: "Kubernetes", Category: "devops"},
		},
	}
}

func (f *fakeAPI) rowJSON(r savedRow) map[string]any {
	return map[string]any{
		"id":       r.ID,
		"job":      f.jobs[r.JobID],
		"status":   r.Status,
		"saved_at": time.Now().Add(-48 * time.Hour),
	}
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	authed := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer access-1"
	}
	deny := func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Given token not valid"})
	}
	savedID := func(r *http.Request) int64 {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		return id
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.APIInfo{
			Name:      "NextStep API",
			Version:   "1.0",
			Endpoints: map[string]string{"jobs": "/api/jobs/", "auth": "/api/auth/"},
		})
	})
	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "ada" || body["password"] != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		json.NewEncoder(w).Encode(client.Tokens{Access: "access-1", Refresh: "refresh-1"})
	})
	mux.HandleFunc("POST /api/auth/register/", func(w http.ResponseWriter, r *http.Request) {
		var in client.RegisterInput
		json.NewDecoder(r.Body).Decode(&in)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"user": client.User{ID: 8, Username: in.Username, Email: in.Email}})
	})
	mux.HandleFunc("GET /api/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			deny(w)
			return
		}
		json.NewEncoder(w).Encode(client.User{ID: 7, Username: "ada", Email: "ada@example.com",
			FirstName: "Ada", LastName: "Lovelace", DateJoined: time.Now().Add(-72 * time.Hour)})
	})
	mux.HandleFunc("GET /api/profile/", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			deny(w)
			return
		}
		json.NewEncoder(w).Encode(client.Profile{ID: 1, Skills: []client.UserSkill{
			{ID: 1, Skill: client.Skill{ID: 1, Name: "Go"}},
			{ID: 2, Skill: client.Skill{ID: 2, Name: "SQL"}},
		}})
	})
	mux.HandleFunc("GET /api/jobs/recommended/", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			deny(w)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		jobs := []client.Job{f.jobs[12], f.jobs[13], f.jobs[14]}
		json.NewEncoder(w).Encode(map[string]any{"count": len(jobs), "results": jobs})
	})
	mux.HandleFunc("GET /api/jobs/{id}/match_score/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.MatchScore{
			JobID:         savedID(r),
			MatchScore:    0.64,
			MatchedSkills: []string{"Go"},
			MissingSkills: []string{"Kubernetes"},
		})
	})
	mux.HandleFunc("GET /api/saved-jobs/{$}", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			deny(w)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		rows := make([]map[string]any, 0, len(f.saved))
		for _, row := range f.saved {
			rows = append(rows, f.rowJSON(row))
		}
		json.NewEncoder(w).Encode(rows)
	})
	mux.HandleFunc("POST /api/saved-jobs/{$}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Job    int64  `json:"job"`
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode saved-job body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.posts++
		f.nextID++
		row := savedRow{ID: f.nextID, JobID: body.Job, Status: body.Status}
		f.saved = append(f.saved, row)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(f.rowJSON(row))
	})
	mux.HandleFunc("PATCH /api/saved-jobs/{id}/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.patches++
		for i := range f.saved {
			if f.saved[i].ID == savedID(r) {
				f.saved[i].Status = body.Status
				json.NewEncoder(w).Encode(f.rowJSON(f.saved[i]))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("DELETE /api/saved-jobs/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := savedID(r)
		f.saved = slices.DeleteFunc(f.saved, func(row savedRow) bool { return row.ID == id })
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/ai/generate-email/", func(w http.ResponseWriter, r *http.Request) {
		var req client.EmailRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(client.EmailDraft{
			Subject: "Application for Go Engineer",
			Body:    "Dear Acme team, (" + req.Tone + ")",
			Tone:    req.Tone,
		})
	})
	mux.HandleFunc("GET /api/skills/{$}", func(w http.ResponseWriter, r *http.Request) {
		term := strings.ToLower(r.URL.Query().Get("search"))
		var found []client.Skill
		for _, sk := range f.catalog {
			if strings.Contains(strings.ToLower(sk.Name), term) {
				found = append(found, sk)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"count": len(found), "results": found})
	})
	mux.HandleFunc("GET /api/user-skills/{$}", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			deny(w)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"count": len(f.userSkills), "results": f.userSkills})
	})
	mux.HandleFunc("POST /api/user-skills/{$}", func(w http.ResponseWriter, r *http.Request) {
		var in client.UserSkillInput
		json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		us := client.UserSkill{ID: f.nextID, Proficiency: in.Proficiency, YearsExperience: in.YearsExperience}
		for _, sk := range f.catalog {
			if sk.ID == in.Skill {
				us.Skill = sk
			}
		}
		f.userSkills = append(f.userSkills, us)
		w.WriteHeader(http.StatusCreated)
		// the write serializer echoes the skill as a bare id
		json.NewEncoder(w).Encode(map[string]any{"skill": in.Skill, "proficiency": in.Proficiency})
	})
	mux.HandleFunc("DELETE /api/user-skills/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := savedID(r)
		n := len(f.userSkills)
		f.userSkills = slices.DeleteFunc(f.userSkills, func(us client.UserSkill) bool { return us.ID == id })
		if len(f.userSkills) == n {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Not found."})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/ai/generate-cover-letter/", func(w http.ResponseWriter, r *http.Request) {
		var ref client.JobRef
		json.NewDecoder(r.Body).Decode(&ref)
		json.NewEncoder(w).Encode(map[string]string{
			"cover_letter": "Dear Acme team,\n\nI would like to apply for job " + strconv.FormatInt(ref.JobID, 10) + ".\n",
		})
	})
	mux.HandleFunc("POST /api/ai/application-tips/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"tips": "1. Lead with Go projects"})
	})
	mux.HandleFunc("POST /api/ai/analyze-resume/", func(w http.ResponseWriter, r *http.Request) {
		score := 0.72
		source := "text"
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			source = "file"
		}
		json.NewEncoder(w).Encode(client.ResumeAnalysis{
			Strengths:       []string{"Clear impact (" + source + ")"},
			Improvements:    []string{"Add metrics"},
			KeywordsFound:   []string{"go"},
			KeywordsMissing: []string{"kubernetes"},
			Suggestions:     "Lead with results.",
			MatchScore:      &score,
		})
	})
	return mux
}

// useAPI points the global flags at a fake backend and a temp config dir.
// loggedIn stores a session first.
func useAPI(t *testing.T, loggedIn bool) (*fakeAPI, string) {
	t.Helper()
	api := newFakeAPI()
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	t.Setenv("NEXTSTEP_CONFIG_DIR", dir)
	apiURL = server.URL + "/api"
	configDir = dir
	t.Cleanup(resetFlags)

	if loggedIn {
		creds := credstore.Credentials{Access: "access-1", Refresh: "refresh-1", IsAuthenticated: true}
		if err := credstore.NewFileStore(dir).Save(creds); err != nil {
			t.Fatalf("store session: %v", err)
		}
	}
	return api, dir
}

func resetFlags() {
	apiURL = ""
	configDir = ""
	jsonOutput = false
	noPersist = false
	loginUsername = ""
	passwordStdin = false
	feedLimit = 10
	emailTone = "professional"
	analyzeFile, analyzeText, analyzeJobID = "", "", 0
	matchMin = 0
	skillLevel, skillYears = "intermediate", 0
}

func TestGetAPIURL_Default(t *testing.T) {
	t.Setenv("NEXTSTEP_CONFIG_DIR", t.TempDir())
	t.Setenv("NEXTSTEP_API_URL", "")
	apiURL = "" // Reset flag

	url := GetAPIURL()
	if url != "http://localhost:8000/api" {
		t.Errorf("expected default URL http://localhost:8000/api, got %s", url)
	}
}

func TestGetAPIURL_FromEnv(t *testing.T) {
	t.Setenv("NEXTSTEP_CONFIG_DIR", t.TempDir())
	t.Setenv("NEXTSTEP_API_URL", "https://backend.example.com/api/")
	apiURL = "" // Reset flag

	url := GetAPIURL()
	if url != "https://backend.example.com/api" {
		t.Errorf("expected https://backend.example.com/api, got %s", url)
	}
}

func TestGetAPIURL_FlagOverridesEnv(t *testing.T) {
	t.Setenv("NEXTSTEP_CONFIG_DIR", t.TempDir())
	t.Setenv("NEXTSTEP_API_URL", "https://backend.example.com/api")
	apiURL = "http://flag-override.example.com/api"
	defer resetFlags()

	url := GetAPIURL()
	if url != "http://flag-override.example.com/api" {
		t.Errorf("expected flag to override env, got %s", url)
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer resetFlags()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestSetup_NoPersistKeepsSessionInMemory(t *testing.T) {
	_, dir := useAPI(t, false)
	noPersist = true

	e, err := setup()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, ok := e.creds.(*credstore.MemoryStore); !ok {
		t.Errorf("expected MemoryStore, got %T", e.creds)
	}
	if e.cfg.ConfigDir != dir {
		t.Errorf("expected config dir %s, got %s", dir, e.cfg.ConfigDir)
	}
}

func TestRequireLogin(t *testing.T) {
	useAPI(t, false)

	e, err := setup()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	err = e.requireLogin()
	if err == nil {
		t.Fatal("expected an error without a stored session")
	}
	if msg := client.UserMessage(err); !strings.Contains(msg, "nextstep login") {
		t.Errorf("expected a login hint, got %q", msg)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseID("job", tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseID(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseID(%q) = %d, want %d", tt.arg, got, tt.want)
			}
		})
	}
}
