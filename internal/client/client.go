// ABOUTME: Typed API methods for the NextStep backend
// ABOUTME: Auth, profile, jobs, saved jobs and assistant endpoints on top of the Gateway

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/ParthhMahajann/Nextstep-AI/internal/credstore"
)

// Client is the API client for the NextStep backend
type Client struct {
	gw *Gateway
}

// New creates a new API client with the given base URL (including /api)
func New(baseURL string, store credstore.Store, opts ...Option) *Client {
	return &Client{gw: NewGateway(baseURL, store, opts...)}
}

// Gateway exposes the underlying request channel
func (c *Client) Gateway() *Gateway {
	return c.gw
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.gw.BaseURL()
}

// OnSessionExpired registers the callback run when a refresh fails
func (c *Client) OnSessionExpired(fn func()) {
	c.gw.SetSessionExpiredHook(fn)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, public bool) error {
	req := Request{Method: method, Path: path, Public: public}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to marshal input")
		}
		req.Body = body
		req.ContentType = "application/json"
	}
	return c.gw.Do(ctx, req, out)
}

// Register calls POST /auth/register/
func (c *Client) Register(ctx context.Context, input RegisterInput) (*User, error) {
	var resp struct {
		User
		Nested *User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register/", input, &resp, true); err != nil {
		return nil, err
	}
	if resp.Nested != nil {
		return resp.Nested, nil
	}
	return &resp.User, nil
}

// Login calls POST /auth/login/. identifier is the username or email.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*Tokens, error) {
	in := map[string]string{"username": identifier, "password": secret}
	var tokens Tokens
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login/", in, &tokens, true); err != nil {
		return nil, err
	}
	if tokens.Access == "" {
		return nil, errors.New("invalid response from backend: missing access credential")
	}
	return &tokens, nil
}

// Me calls GET /auth/me/
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me/", nil, &user, false); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile calls GET /profile/
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodGet, "/profile/", nil, &profile, false); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile calls PATCH /profile/
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodPatch, "/profile/", update, &profile, false); err != nil {
		return nil, err
	}
	return &profile, nil
}

// RecommendedJobs calls GET /jobs/recommended/
func (c *Client) RecommendedJobs(ctx context.Context) ([]Job, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/jobs/recommended/", nil, &raw, false); err != nil {
		return nil, err
	}
	jobs, err := decodeList[Job](raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid response from backend")
	}
	return jobs, nil
}

// MatchScore calls GET /jobs/:id/match_score/
func (c *Client) MatchScore(ctx context.Context, jobID int64) (*MatchScore, error) {
	var score MatchScore
	path := fmt.Sprintf("/jobs/%d/match_score/", jobID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &score, false); err != nil {
		return nil, err
	}
	if score.JobID == 0 {
		score.JobID = jobID
	}
	return &score, nil
}

// SavedJobs calls GET /saved-jobs/
func (c *Client) SavedJobs(ctx context.Context) ([]SavedJob, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/saved-jobs/", nil, &raw, false); err != nil {
		return nil, err
	}
	saved, err := decodeList[SavedJob](raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid response from backend")
	}
	return saved, nil
}

type savedJobInput struct {
	Job    int64     `json:"job,omitempty"`
	Status JobStatus `json:"status"`
}

// CreateSavedJob calls POST /saved-jobs/ with {job, status}. Some servers
// answer with only {job, notes}, so the returned ID and Status may be zero.
func (c *Client) CreateSavedJob(ctx context.Context, jobID int64, status JobStatus) (*SavedJob, error) {
	if _, err := ParseJobStatus(string(status)); err != nil {
		return nil, errors.Mark(err, ErrInvalidRequest)
	}
	var saved SavedJob
	in := savedJobInput{Job: jobID, Status: status}
	if err := c.doJSON(ctx, http.MethodPost, "/saved-jobs/", in, &saved, false); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateSavedJob calls PATCH /saved-jobs/:id/ with the new status
func (c *Client) UpdateSavedJob(ctx context.Context, id int64, status JobStatus) (*SavedJob, error) {
	if _, err := ParseJobStatus(string(status)); err != nil {
		return nil, errors.Mark(err, ErrInvalidRequest)
	}
	var saved SavedJob
	path := fmt.Sprintf("/saved-jobs/%d/", id)
	if err := c.doJSON(ctx, http.MethodPatch, path, savedJobInput{Status: status}, &saved, false); err != nil {
		return nil, err
	}
	// the update serializer echoes only the writable fields
	if saved.ID == 0 {
		saved.ID = id
	}
	if saved.Status == "" {
		saved.Status = status
	}
	return &saved, nil
}

// DeleteSavedJob calls DELETE /saved-jobs/:id/
func (c *Client) DeleteSavedJob(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/saved-jobs/%d/", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, false)
}

// GenerateEmail calls POST /ai/generate-email/
func (c *Client) GenerateEmail(ctx context.Context, req EmailRequest) (*EmailDraft, error) {
	if req.JobID == 0 && (req.JobTitle == "" || req.Company == "") {
		return nil, errors.Mark(
			errors.New("either a job id or a job title and company are required"),
			ErrInvalidRequest)
	}
	if req.Tone != "" && !slices.Contains(EmailTones, req.Tone) {
		return nil, errors.WithHintf(
			errors.Mark(errors.Newf("unknown tone %q", req.Tone), ErrInvalidRequest),
			"valid tones: %v", EmailTones)
	}

	var draft EmailDraft
	if err := c.doJSON(ctx, http.MethodPost, "/ai/generate-email/", req, &draft, false); err != nil {
		return nil, err
	}
	return &draft, nil
}

// CoverLetter calls POST /ai/generate-cover-letter/
func (c *Client) CoverLetter(ctx context.Context, ref JobRef) (string, error) {
	if err := ref.validate(); err != nil {
		return "", err
	}
	var resp struct {
		CoverLetter string `json:"cover_letter"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/ai/generate-cover-letter/", ref, &resp, false); err != nil {
		return "", err
	}
	return resp.CoverLetter, nil
}

// ApplicationTips calls POST /ai/application-tips/
func (c *Client) ApplicationTips(ctx context.Context, ref JobRef) (string, error) {
	if err := ref.validate(); err != nil {
		return "", err
	}
	var resp struct {
		Tips string `json:"tips"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/ai/application-tips/", ref, &resp, false); err != nil {
		return "", err
	}
	return resp.Tips, nil
}

func (r JobRef) validate() error {
	if r.JobID == 0 && (r.JobTitle == "" || r.Company == "") {
		return errors.Mark(
			errors.New("either a job id or a job title and company are required"),
			ErrInvalidRequest)
	}
	return nil
}

// AnalyzeResumeText calls POST /ai/analyze-resume/ with inline text.
// jobID of 0 analyzes the resume without a target job.
func (c *Client) AnalyzeResumeText(ctx context.Context, text string, jobID int64) (*ResumeAnalysis, error) {
	in := struct {
		ResumeText string `json:"resume_text"`
		JobID      int64  `json:"job_id,omitempty"`
	}{ResumeText: text, JobID: jobID}

	var analysis ResumeAnalysis
	if err := c.doJSON(ctx, http.MethodPost, "/ai/analyze-resume/", in, &analysis, false); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// AnalyzeResumeFile uploads a resume as multipart form field resume_file
func (c *Client) AnalyzeResumeFile(ctx context.Context, file *ResumeFile, jobID int64) (*ResumeAnalysis, error) {
	if file == nil || len(file.Data) == 0 {
		return nil, errors.Mark(errors.New("resume file is empty"), ErrInvalidRequest)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="resume_file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build upload")
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, errors.Wrap(err, "failed to build upload")
	}
	if jobID != 0 {
		if err := mw.WriteField("job_id", strconv.FormatInt(jobID, 10)); err != nil {
			return nil, errors.Wrap(err, "failed to build upload")
		}
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to build upload")
	}

	var analysis ResumeAnalysis
	req := Request{
		Method:      http.MethodPost,
		Path:        "/ai/analyze-resume/",
		Body:        buf.Bytes(),
		ContentType: mw.FormDataContentType(),
	}
	if err := c.gw.Do(ctx, req, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// APIInfo calls GET / on the API host (the root outside /api)
func (c *Client) APIInfo(ctx context.Context) (*APIInfo, error) {
	root := c.gw.BaseURL()
	if u, err := url.Parse(root); err == nil && u.Host != "" {
		root = u.Scheme + "://" + u.Host
	}

	var info APIInfo
	req := Request{Method: http.MethodGet, Path: "/", Public: true, BaseURL: root}
	if err := c.gw.Do(ctx, req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
