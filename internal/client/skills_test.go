// ABOUTME: Tests for the skill endpoints and the cover letter and tips calls
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestSkills_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/skills/" {
			t.Errorf("expected path /api/skills/, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != "go lang" {
			t.Errorf("expected search term, got %q", got)
		}
		w.Write([]byte(`{"count": 1, "results": [{"id": 3, "name": "Go", "category": "programming"}]}`))
	})

	skills, err := c.Skills(context.Background(), "go lang")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skills) != 1 || skills[0].Name != "Go" || skills[0].Category != "programming" {
		t.Errorf("unexpected skills: %+v", skills)
	}
}

func TestSkills_NoSearchSendsNoQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	})

	skills, err := c.Skills(context.Background(), "")
	if err != nil || len(skills) != 0 {
		t.Fatalf("Skills: %v %+v", err, skills)
	}
}

func TestUserSkills_DecodesProficiency(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 2, "results": [
			{"id": 1, "skill": {"id": 3, "name": "Go"}, "proficiency": 3, "proficiency_display": "Advanced", "years_experience": 2.5},
			{"id": 2, "skill": {"id": 4, "name": "SQL"}, "proficiency": 1}
		]}`))
	})

	skills, err := c.UserSkills(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(skills))
	}
	if skills[0].Proficiency != Advanced || skills[0].Level() != "Advanced" || skills[0].YearsExperience != 2.5 {
		t.Errorf("unexpected first skill: %+v", skills[0])
	}
	if skills[1].Level() != "Beginner" {
		t.Errorf("expected local level name, got %q", skills[1].Level())
	}
}

func TestAddUserSkill(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"full serializer", `{"id": 9, "skill": {"id": 3, "name": "Go"}, "proficiency": 4}`},
		{"write serializer", `{"skill": 3, "proficiency": 4, "years_experience": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/user-skills/" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				var body map[string]any
				json.NewDecoder(r.Body).Decode(&body)
				if body["skill"] != float64(3) || body["proficiency"] != float64(4) {
					t.Errorf("unexpected body: %v", body)
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(tt.response))
			})

			us, err := c.AddUserSkill(context.Background(), UserSkillInput{Skill: 3, Proficiency: Expert, YearsExperience: 1})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if us.Skill.ID != 3 || us.Proficiency != Expert {
				t.Errorf("unexpected user skill: %+v", us)
			}
		})
	}
}

func TestAddUserSkill_Validation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	for _, in := range []UserSkillInput{
		{},
		{Skill: 3, Proficiency: 5},
		{Skill: 3, YearsExperience: -1},
	} {
		if _, err := c.AddUserSkill(context.Background(), in); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("AddUserSkill(%+v): expected ErrInvalidRequest, got %v", in, err)
		}
	}
}

func TestRemoveUserSkill(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.RemoveUserSkill(context.Background(), 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "DELETE /api/user-skills/9/" {
		t.Errorf("unexpected request %q", got)
	}
}

func TestParseProficiency(t *testing.T) {
	tests := []struct {
		in      string
		want    Proficiency
		wantErr bool
	}{
		{"advanced", Advanced, false},
		{"Expert", Expert, false},
		{"1", Beginner, false},
		{"5", 0, true},
		{"guru", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseProficiency(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseProficiency(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseProficiency(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoverLetterAndTips(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var ref JobRef
		json.NewDecoder(r.Body).Decode(&ref)
		if ref.JobID != 12 {
			t.Errorf("expected job 12, got %+v", ref)
		}
		switch r.URL.Path {
		case "/api/ai/generate-cover-letter/":
			w.Write([]byte(`{"cover_letter": "Dear hiring manager"}`))
		case "/api/ai/application-tips/":
			w.Write([]byte(`{"tips": "Mention Go"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	letter, err := c.CoverLetter(ctx, JobRef{JobID: 12})
	if err != nil || letter != "Dear hiring manager" {
		t.Errorf("CoverLetter: %q %v", letter, err)
	}
	tips, err := c.ApplicationTips(ctx, JobRef{JobID: 12})
	if err != nil || tips != "Mention Go" {
		t.Errorf("ApplicationTips: %q %v", tips, err)
	}
}

func TestCoverLetter_NeedsJob(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.CoverLetter(context.Background(), JobRef{JobTitle: "Go Engineer"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
