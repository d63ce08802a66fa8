package bookmark

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-cafe/saved-jobs/internal/savedjob"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Table Structure:
//
// CREATE TABLE IF NOT EXISTS bookmark (
// 	user_id CHAR(27) NOT NULL,
// 	job_id INTEGER NOT NULL REFERENCES job (id),
// 	created_at TIMESTAMP NOT NULL,
// 	applied_at TIMESTAMP DEFAULT NULL,
// 	PRIMARY KEY (user_id, job_id)
// );

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) GetBookmarksForUser(ctx context.Context, userID string) ([]Bookmark, error) {
	bookmarks := []Bookmark{}
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.user_id, b.created_at, j.external_id, j.job_title, j.company, j.location, j.salary_min, j.salary_max, j.salary_currency, j.company_icon_image_id
		FROM bookmark b
		JOIN job j ON j.id = b.job_id
		WHERE b.user_id = $1
		ORDER BY b.created_at ASC`, userID)
	if err != nil {
		return bookmarks, err
	}
	defer rows.Close()
	for rows.Next() {
		var b Bookmark
		err := rows.Scan(
			&b.UserID,
			&b.CreatedAt,
			&b.JobExternalID,
			&b.JobTitle,
			&b.CompanyName,
			&b.JobLocation,
			&b.JobSalaryMin,
			&b.JobSalaryMax,
			&b.JobSalaryCurrency,
			&b.CompanyIconImageID,
		)
		if err != nil {
			return bookmarks, err
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return bookmarks, err
	}
	return bookmarks, nil
}

// BookmarkJob stores a bookmark for the job with the given external id.
// Bookmarking the same job twice is not an error.
func (r *Repository) BookmarkJob(ctx context.Context, userID, jobExternalID string) error {
	var jobID int
	err := r.db.QueryRowContext(ctx, `SELECT id FROM job WHERE external_id = $1`, jobExternalID).Scan(&jobID)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO bookmark (user_id, job_id, created_at, applied_at)
		VALUES ($1, $2, NOW(), NULL)
		ON CONFLICT (user_id, job_id) DO NOTHING`, userID, jobID)
	return err
}

func (r *Repository) RemoveBookmark(ctx context.Context, userID, jobExternalID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmark b USING job j
		WHERE b.job_id = j.id AND b.user_id = $1 AND j.external_id = $2`, userID, jobExternalID)
	return err
}

// ForUser binds the repository to one job seeker.
func (r *Repository) ForUser(userID string) savedjob.Service {
	return &userBookmarks{repo: r, userID: userID}
}

type userBookmarks struct {
	repo   *Repository
	userID string
}

func (u *userBookmarks) ListSaved(ctx context.Context) ([]savedjob.SavedJob, error) {
	bookmarks, err := u.repo.GetBookmarksForUser(ctx, u.userID)
	if err != nil {
		return nil, transportError(savedjob.OpListSaved, "", err)
	}
	jobs := make([]savedjob.SavedJob, 0, len(bookmarks))
	for _, b := range bookmarks {
		jobs = append(jobs, b.SavedJob())
	}
	return jobs, nil
}

func (u *userBookmarks) Save(ctx context.Context, jobID string) error {
	if err := u.repo.BookmarkJob(ctx, u.userID, jobID); err != nil {
		return transportError(savedjob.OpSave, jobID, err)
	}
	return nil
}

func (u *userBookmarks) Unsave(ctx context.Context, jobID string) error {
	if err := u.repo.RemoveBookmark(ctx, u.userID, jobID); err != nil {
		return transportError(savedjob.OpUnsave, jobID, err)
	}
	return nil
}

var defaultMessages = map[string]string{
	savedjob.OpListSaved: savedjob.DefaultFetchError,
	savedjob.OpSave:      savedjob.DefaultSaveError,
	savedjob.OpUnsave:    savedjob.DefaultUnsaveError,
}

// transportError keeps driver detail in Err for logs; Message is what a
// job seeker may see.
func transportError(op, jobID string, err error) error {
	te := &savedjob.TransportError{Op: op, JobID: jobID, Err: errors.Wrap(err, op)}
	switch e := err.(type) {
	case *pq.Error:
		te.Message = fmt.Sprintf("database error %s: %s", e.Code.Name(), e.Message)
	default:
		if err == sql.ErrNoRows {
			te.Message = "job not found"
		} else {
			te.Message = defaultMessages[op]
		}
	}
	return te
}
