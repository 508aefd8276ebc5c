package gradebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/saberes-app/gradebook-api/internal/dto"
	"github.com/saberes-app/gradebook-api/internal/models"
	appErrors "github.com/saberes-app/gradebook-api/pkg/errors"
)

// Client talks to the gradebook REST API. It implements Saver, so a Session
// can be wired straight onto it, and loads snapshots for seeding a Store.
type Client struct {
	baseURL             string
	token               string
	teacherAssignmentID string
	periodID            string
	mode                models.GradingMode
	http                *http.Client
}

// NewClient builds a client scoped to one gradesheet. The mode decides which
// bulk endpoint saves go to.
func NewClient(baseURL, token, teacherAssignmentID, periodID string, mode models.GradingMode) *Client {
	return &Client{
		baseURL:             baseURL,
		token:               token,
		teacherAssignmentID: teacherAssignmentID,
		periodID:            periodID,
		mode:                mode,
		http:                &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

// Load fetches the full snapshot for the client's gradesheet.
func (c *Client) Load(ctx context.Context) (*models.GradebookSnapshot, error) {
	q := url.Values{}
	q.Set("teacher_assignment_id", c.teacherAssignmentID)
	q.Set("period_id", c.periodID)
	var snapshot models.GradebookSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/v1/gradebook?"+q.Encode(), nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Grants fetches the caller's active edit grants for the gradesheet's period.
func (c *Client) Grants(ctx context.Context) ([]models.EditGrant, error) {
	q := url.Values{}
	q.Set("teacher_assignment_id", c.teacherAssignmentID)
	q.Set("period_id", c.periodID)
	var grants []models.EditGrant
	if err := c.do(ctx, http.MethodGet, "/api/v1/edit-grants/mine?"+q.Encode(), nil, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

// Save implements Saver over the bulk upsert endpoint for the client's mode.
func (c *Client) Save(ctx context.Context, items []SaveItem) (*SaveResult, error) {
	var (
		path   string
		body   interface{}
		result dto.BulkScoresResult
	)
	if c.mode == models.ModeActivities {
		req := dto.BulkActivityScoresRequest{
			TeacherAssignmentID: c.teacherAssignmentID,
			PeriodID:            c.periodID,
		}
		for _, item := range items {
			req.Scores = append(req.Scores, dto.ActivityScoreWrite{
				EnrollmentID: item.Key.EnrollmentID,
				ColumnID:     item.Key.TargetID,
				Score:        item.Value,
			})
		}
		path, body = "/api/v1/gradebook/activity-scores/bulk", req
	} else {
		req := dto.BulkScoresRequest{
			TeacherAssignmentID: c.teacherAssignmentID,
			PeriodID:            c.periodID,
		}
		for _, item := range items {
			req.Scores = append(req.Scores, dto.ScoreWrite{
				EnrollmentID:  item.Key.EnrollmentID,
				AchievementID: item.Key.TargetID,
				Score:         item.Value,
			})
		}
		path, body = "/api/v1/gradebook/scores/bulk", req
	}
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}

	out := &SaveResult{Computed: result.Computed}
	for _, b := range result.Blocked {
		targetID := b.AchievementID
		if targetID == "" {
			targetID = b.ColumnID
		}
		out.Blocked = append(out.Blocked, BlockedItem{
			Key:    Key{EnrollmentID: b.EnrollmentID, TargetID: targetID},
			Reason: b.Reason,
		})
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Error != nil {
		return env.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return appErrors.New(appErrors.ErrInternal.Code, resp.StatusCode, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}
