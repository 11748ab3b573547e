// ABOUTME: Skill catalog and profile skill endpoints
// ABOUTME: Match scores are computed from the skills kept here

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
)

// Skills calls GET /skills/, filtered by search when it is not empty
func (c *Client) Skills(ctx context.Context, search string) ([]Skill, error) {
	path := "/skills/"
	if search != "" {
		path += "?" + url.Values{"search": {search}}.Encode()
	}
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw, false); err != nil {
		return nil, err
	}
	skills, err := decodeList[Skill](raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid response from backend")
	}
	return skills, nil
}

// UserSkills calls GET /user-skills/
func (c *Client) UserSkills(ctx context.Context) ([]UserSkill, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/user-skills/", nil, &raw, false); err != nil {
		return nil, err
	}
	skills, err := decodeList[UserSkill](raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid response from backend")
	}
	return skills, nil
}

// AddUserSkill calls POST /user-skills/. The response may carry only the
// written fields, so the skill is filled in from the input when absent.
func (c *Client) AddUserSkill(ctx context.Context, in UserSkillInput) (*UserSkill, error) {
	if in.Skill <= 0 {
		return nil, errors.Mark(errors.New("a skill id is required"), ErrInvalidRequest)
	}
	if in.Proficiency != 0 && (in.Proficiency < Beginner || in.Proficiency > Expert) {
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("proficiency %d out of range", int(in.Proficiency)), ErrInvalidRequest),
			"use 1 (beginner) to 4 (expert)")
	}
	if in.YearsExperience < 0 {
		return nil, errors.Mark(errors.New("years of experience must not be negative"), ErrInvalidRequest)
	}

	var resp struct {
		UserSkill
		SkillID json.RawMessage `json:"skill"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/user-skills/", in, &resp, false); err != nil {
		return nil, err
	}

	us := resp.UserSkill
	if len(resp.SkillID) > 0 && resp.SkillID[0] == '{' {
		if err := json.Unmarshal(resp.SkillID, &us.Skill); err != nil {
			return nil, errors.Wrap(err, "invalid response from backend")
		}
	}
	if us.Skill.ID == 0 {
		us.Skill.ID = in.Skill
	}
	if us.Proficiency == 0 {
		us.Proficiency = in.Proficiency
	}
	return &us, nil
}

// RemoveUserSkill calls DELETE /user-skills/:id/
func (c *Client) RemoveUserSkill(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/user-skills/%d/", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, false)
}
