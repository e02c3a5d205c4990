package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assignment_notifier_bot/internal/domain/assignment"

	"github.com/sirupsen/logrus"
)

// ErrUnauthorized means Canvas rejected the API token.
var ErrUnauthorized = errors.New("canvas: unauthorized")

const perPage = 100

// Client is a minimal Canvas REST API client covering what the digest
// pipeline needs: active courses, their upcoming assignments, and single
// assignment detail.
type Client struct {
	baseURL    string
	token      string
	location   *time.Location
	httpClient *http.Client
	logger     *logrus.Entry
}

var _ assignment.Source = (*Client)(nil)

func NewClient(baseURL, token string, location *time.Location, logger *logrus.Entry) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		location:   location,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// VerifyConnection checks that the base URL and token work by fetching the
// current user's profile.
func (c *Client) VerifyConnection(ctx context.Context) error {
	var self struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/users/self", &self); err != nil {
		return fmt.Errorf("verify canvas connection: %w", err)
	}
	c.logger.WithField("user", self.Name).Info("Connected to Canvas")
	return nil
}

// ListUpcoming fetches the upcoming assignments of every active course. A
// single failing course is logged and skipped; only a failure to list the
// courses themselves fails the call.
func (c *Client) ListUpcoming(ctx context.Context) ([]assignment.Assignment, error) {
	courses, err := c.listActiveCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	c.logger.WithField("count", len(courses)).Debug("Fetched active courses")

	var out []assignment.Assignment
	for _, course := range courses {
		raw, err := c.listCourseAssignments(ctx, course.ID)
		if err != nil {
			c.logger.WithField("course", course.Name).WithError(err).
				Error("Failed to fetch assignments for course, skipping")
			continue
		}
		for _, ra := range raw {
			out = append(out, ra.toDomain(course, c.location))
		}
	}
	return out, nil
}

// GetAssignment fetches one assignment with its full detail fields.
func (c *Client) GetAssignment(ctx context.Context, courseID, assignmentID int64) (*assignment.Assignment, error) {
	var course courseJSON
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/v1/courses/%d", c.baseURL, courseID), &course); err != nil {
		return nil, fmt.Errorf("get course %d: %w", courseID, err)
	}

	u := fmt.Sprintf("%s/api/v1/courses/%d/assignments/%d?include[]=submission", c.baseURL, courseID, assignmentID)
	var raw assignmentJSON
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("get assignment %d: %w", assignmentID, err)
	}

	a := raw.toDomain(course, c.location)
	return &a, nil
}

func (c *Client) listActiveCourses(ctx context.Context) ([]courseJSON, error) {
	u := fmt.Sprintf("%s/api/v1/courses?enrollment_state=active&per_page=%d", c.baseURL, perPage)
	var courses []courseJSON
	for u != "" {
		var page []courseJSON
		next, err := c.getJSONPage(ctx, u, &page)
		if err != nil {
			return nil, err
		}
		courses = append(courses, page...)
		u = next
	}
	return courses, nil
}

func (c *Client) listCourseAssignments(ctx context.Context, courseID int64) ([]assignmentJSON, error) {
	u := fmt.Sprintf("%s/api/v1/courses/%d/assignments?bucket=upcoming&per_page=%d", c.baseURL, courseID, perPage)
	var assignments []assignmentJSON
	for u != "" {
		var page []assignmentJSON
		next, err := c.getJSONPage(ctx, u, &page)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, page...)
		u = next
	}
	return assignments, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	_, err := c.getJSONPage(ctx, u, out)
	return err
}

// getJSONPage performs one authenticated GET, decodes the body into out and
// returns the rel="next" pagination URL, if any.
func (c *Client) getJSONPage(ctx context.Context, u string, out interface{}) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build canvas request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("canvas request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("canvas response status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("decode canvas response: %w", err)
	}
	return nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" target from a Canvas Link header.
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if strings.TrimSpace(section[1]) != `rel="next"` {
			continue
		}
		target := strings.Trim(strings.TrimSpace(section[0]), "<>")
		if _, err := url.Parse(target); err == nil {
			return target
		}
	}
	return ""
}
