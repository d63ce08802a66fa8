package savedjob

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

// SavedJob is a job listing bookmarked by a job seeker.
type SavedJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	CompanyLogo string `json:"company_logo,omitempty"`
	SavedAt     string `json:"saved_at"`
}

var savedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
}

// SavedAtTime parses the ISO-8601 saved timestamp.
func (j SavedJob) SavedAtTime() (time.Time, error) {
	var lastErr error
	for _, layout := range savedAtLayouts {
		t, err := time.Parse(layout, j.SavedAt)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// URL is the job detail page of the saved listing.
func (j SavedJob) URL() string {
	if j.Title == "" {
		return fmt.Sprintf("/job/%s", j.ID)
	}
	return fmt.Sprintf("/job/%s-%s", slug.Make(j.Title), j.ID)
}
