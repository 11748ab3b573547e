// ABOUTME: Wire types for the NextStep API
// ABOUTME: Users, profiles, jobs, saved jobs and AI responses as the server sends them

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tokens is the login response
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterInput is the account creation payload
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
}

// User represents the authenticated account
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	DateJoined time.Time `json:"date_joined"`
}

// DisplayName returns the full name, falling back to the username
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// Skill is a catalog skill
type Skill struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Proficiency is the self-assessed level of a user skill
type Proficiency int

const (
	Beginner Proficiency = iota + 1
	Intermediate
	Advanced
	Expert
)

var proficiencyNames = map[Proficiency]string{
	Beginner:     "Beginner",
	Intermediate: "Intermediate",
	Advanced:     "Advanced",
	Expert:       "Expert",
}

func (p Proficiency) String() string {
	if name, ok := proficiencyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Level %d", int(p))
}

// ParseProficiency accepts a level name (any case) or its number
func ParseProficiency(s string) (Proficiency, error) {
	for p, name := range proficiencyNames {
		if strings.EqualFold(s, name) || s == strconv.Itoa(int(p)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown proficiency %q", s)
}

// UserSkill is a skill on the user's profile
type UserSkill struct {
	ID                 int64       `json:"id"`
	Skill              Skill       `json:"skill"`
	Proficiency        Proficiency `json:"proficiency"`
	ProficiencyDisplay string      `json:"proficiency_display,omitempty"`
	YearsExperience    float64     `json:"years_experience,omitempty"`
}

// Level returns the server's label for the proficiency, falling back to
// the local name
func (u UserSkill) Level() string {
	if u.ProficiencyDisplay != "" {
		return u.ProficiencyDisplay
	}
	return u.Proficiency.String()
}

// UserSkillInput adds a catalog skill to the profile
type UserSkillInput struct {
	Skill           int64       `json:"skill"`
	Proficiency     Proficiency `json:"proficiency,omitempty"`
	YearsExperience float64     `json:"years_experience,omitempty"`
}

// Profile represents the user's job-seeking profile
type Profile struct {
	ID                 int64       `json:"id"`
	Bio                string      `json:"bio"`
	ResumeText         string      `json:"resume_text"`
	PreferredJobTypes  []string    `json:"preferred_job_types"`
	PreferredLocations []string    `json:"preferred_locations"`
	Skills             []UserSkill `json:"skills"`
	SkillCount         int         `json:"skill_count"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// ProfileUpdate holds the writable profile fields; nil fields are not sent
type ProfileUpdate struct {
	Bio                *string  `json:"bio,omitempty"`
	ResumeText         *string  `json:"resume_text,omitempty"`
	PreferredJobTypes  []string `json:"preferred_job_types,omitempty"`
	PreferredLocations []string `json:"preferred_locations,omitempty"`
}

// Job is a recommended job. The client never edits it.
type Job struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	JobType          string   `json:"job_type"`
	Description      string   `json:"description"`
	ApplyLink        string   `json:"apply_link"`
	Source           string   `json:"source,omitempty"`
	MatchScore       *float64 `json:"match_score,omitempty"`
	MatchedSkills    []string `json:"matched_skills,omitempty"`
	MatchExplanation string   `json:"match_explanation,omitempty"`
}

// MatchPercent returns the match score as 0..100, or -1 when absent
func (j Job) MatchPercent() float64 {
	if j.MatchScore == nil {
		return -1
	}
	return *j.MatchScore * 100
}

// JobStatus is the status a saved job is tagged with
type JobStatus string

const (
	StatusSaved   JobStatus = "saved"
	StatusApplied JobStatus = "applied"
)

// ParseJobStatus converts a raw string to a JobStatus
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case StatusSaved, StatusApplied:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// SavedJob is a job the user saved or applied to
type SavedJob struct {
	ID         int64      `json:"id"`
	Job        Job        `json:"job"`
	Status     JobStatus  `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	EmailDraft string     `json:"email_draft,omitempty"`
	MatchScore *float64   `json:"match_score,omitempty"`
	SavedAt    time.Time  `json:"saved_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	AppliedAt  *time.Time `json:"applied_at,omitempty"`
}

// UnmarshalJSON accepts "job" either as a nested object or as a bare id
func (s *SavedJob) UnmarshalJSON(data []byte) error {
	type alias SavedJob
	aux := struct {
		*alias
		Job json.RawMessage `json:"job"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.Job)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{':
		return json.Unmarshal(raw, &s.Job)
	default:
		return json.Unmarshal(raw, &s.Job.ID)
	}
	return nil
}

// MatchScore is the per-job match breakdown
type MatchScore struct {
	JobID         int64    `json:"job_id"`
	MatchScore    float64  `json:"match_score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Email tones accepted by the generator
var EmailTones = []string{"professional", "casual", "enthusiastic"}

// EmailRequest asks for an outreach email. Either JobID or both JobTitle
// and Company must be set.
type EmailRequest struct {
	JobID          int64  `json:"job_id,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	Company        string `json:"company,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	Tone           string `json:"tone,omitempty"`
}

// EmailDraft is a generated outreach email
type EmailDraft struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Tone      string `json:"tone,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
}

// JobRef names a job either by id or by title and company
type JobRef struct {
	JobID          int64  `json:"job_id,omitempty"`
	JobTitle       string `json:"job_title,omitempty"`
	Company        string `json:"company,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
}

// ResumeFile is a validated resume ready for upload
type ResumeFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ResumeAnalysis is the analyzer's feedback
type ResumeAnalysis struct {
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	KeywordsFound   []string `json:"keywords_found"`
	KeywordsMissing []string `json:"keywords_missing"`
	Suggestions     string   `json:"suggestions"`
	MatchScore      *float64 `json:"match_score,omitempty"`
}

// APIInfo is the API root response
type APIInfo struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// decodeList accepts either a bare JSON array or a paginated envelope
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var env struct {
		Results []T `json:"results"`
		Jobs    []T `json:"jobs"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if env.Results != nil {
		return env.Results, nil
	}
	if env.Jobs != nil {
		return env.Jobs, nil
	}
	return []T{}, nil
}
