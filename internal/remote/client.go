package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-cafe/saved-jobs/internal/savedjob"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://localhost:7100/api"

// Client talks to the job seeker API that owns saved jobs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	sanitizer  *bluemonday.Policy
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "saved-jobs-client/1.0",
		sanitizer:  bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForJobSeeker binds the client to one job seeker. accessToken is sent as
// a bearer token when not empty.
func (c *Client) ForJobSeeker(jobSeekerID, accessToken string) savedjob.Service {
	return &jobSeekerService{client: c, jobSeekerID: jobSeekerID, accessToken: accessToken}
}

// savedJobsResponse also carries a "total". The endpoint is not paginated,
// so counts come from the items, which stay right after removals.
type savedJobsResponse struct {
	Data []backendSavedJob `json:"data"`
}

type backendSavedJob struct {
	EmployerPostID int    `json:"employerPostId"`
	Title          string `json:"title"`
	Location       string `json:"location"`
	EmployerName   string `json:"employerName"`
	AddedAt        string `json:"addedAt"`
}

type savePayload struct {
	JobSeekerID    string  `json:"jobSeekerId"`
	EmployerPostID int     `json:"employerPostId"`
	Note           *string `json:"note"`
}

type errorResponse struct {
	Message      string `json:"message"`
	MessageUpper string `json:"Message"`
}

type jobSeekerService struct {
	client      *Client
	jobSeekerID string
	accessToken string
}

func (s *jobSeekerService) ListSaved(ctx context.Context) ([]savedjob.SavedJob, error) {
	endpoint := fmt.Sprintf("%s/JobSeekerPost/saved/%s", s.client.baseURL, url.PathEscape(s.jobSeekerID))
	body, err := s.do(ctx, savedjob.OpListSaved, "", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var out savedJobsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &savedjob.TransportError{Op: savedjob.OpListSaved, Message: "invalid saved jobs response", Err: errors.Wrap(err, "decode saved jobs")}
	}
	jobs := make([]savedjob.SavedJob, 0, len(out.Data))
	for _, bj := range out.Data {
		jobs = append(jobs, s.client.convert(bj))
	}
	return jobs, nil
}

func (s *jobSeekerService) Save(ctx context.Context, jobID string) error {
	return s.post(ctx, savedjob.OpSave, "save-job", jobID)
}

func (s *jobSeekerService) Unsave(ctx context.Context, jobID string) error {
	return s.post(ctx, savedjob.OpUnsave, "unsave-job", jobID)
}

func (s *jobSeekerService) post(ctx context.Context, op, path, jobID string) error {
	postID, err := strconv.Atoi(strings.TrimSpace(jobID))
	if err != nil {
		return &savedjob.TransportError{Op: op, JobID: jobID, Message: fmt.Sprintf("invalid job id %q", jobID), Err: err}
	}
	payload, err := json.Marshal(savePayload{JobSeekerID: s.jobSeekerID, EmployerPostID: postID})
	if err != nil {
		return &savedjob.TransportError{Op: op, JobID: jobID, Err: err}
	}
	endpoint := fmt.Sprintf("%s/JobSeekerPost/%s", s.client.baseURL, path)
	_, err = s.do(ctx, op, jobID, http.MethodPost, endpoint, payload)
	return err
}

func (s *jobSeekerService) do(ctx context.Context, op, jobID, method, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, &savedjob.TransportError{Op: op, JobID: jobID, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.client.userAgent != "" {
		req.Header.Set("User-Agent", s.client.userAgent)
	}
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, &savedjob.TransportError{Op: op, JobID: jobID, Err: errors.Wrapf(err, "%s %s", method, endpoint)}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &savedjob.TransportError{Op: op, JobID: jobID, StatusCode: resp.StatusCode, Err: errors.Wrap(err, "read response")}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(op, jobID, resp.StatusCode, body)
	}
	return body, nil
}

func decodeError(op, jobID string, statusCode int, body []byte) error {
	te := &savedjob.TransportError{
		Op:         op,
		JobID:      jobID,
		StatusCode: statusCode,
		Err:        fmt.Errorf("http status %d", statusCode),
	}
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		te.Message = er.Message
		if te.Message == "" {
			te.Message = er.MessageUpper
		}
	}
	return te
}

func (c *Client) convert(bj backendSavedJob) savedjob.SavedJob {
	return savedjob.SavedJob{
		ID:       strconv.Itoa(bj.EmployerPostID),
		Title:    c.clean(bj.Title),
		Company:  c.clean(bj.EmployerName),
		Location: c.clean(bj.Location),
		SavedAt:  bj.AddedAt,
	}
}

// clean drops markup from backend text; templates do their own escaping.
func (c *Client) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(s)))
}
