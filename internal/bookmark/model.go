package bookmark

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang-cafe/saved-jobs/internal/savedjob"
)

// Bookmark is a row of the bookmark table joined with its job post.
type Bookmark struct {
	UserID    string
	CreatedAt time.Time

	JobExternalID      string
	JobTitle           string
	CompanyName        string
	JobLocation        string
	JobSalaryMin       int64
	JobSalaryMax       int64
	JobSalaryCurrency  string
	CompanyIconImageID sql.NullString
}

func (b Bookmark) SalaryRange() string {
	if b.JobSalaryMin == 0 && b.JobSalaryMax == 0 {
		return ""
	}
	return fmt.Sprintf("%s%s to %s%s", b.JobSalaryCurrency, humanize.Comma(b.JobSalaryMin), b.JobSalaryCurrency, humanize.Comma(b.JobSalaryMax))
}

func (b Bookmark) SavedJob() savedjob.SavedJob {
	job := savedjob.SavedJob{
		ID:       b.JobExternalID,
		Title:    b.JobTitle,
		Company:  b.CompanyName,
		Location: b.JobLocation,
		Salary:   b.SalaryRange(),
		SavedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.CompanyIconImageID.Valid && b.CompanyIconImageID.String != "" {
		job.CompanyLogo = fmt.Sprintf("/x/s/m/%s", b.CompanyIconImageID.String)
	}
	return job
}
