package bookmark

import (
	"context"
	"database/sql"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-cafe/saved-jobs/internal/savedjob"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestListSaved(t *testing.T) {
	repo, mock := newMock(t)
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"user_id", "created_at", "external_id", "job_title", "company", "location", "salary_min", "salary_max", "salary_currency", "company_icon_image_id"}).
		AddRow("u1", createdAt, "ext-1", "Go Developer", "Acme", "Remote", int64(90000), int64(120000), "$", "img-1").
		AddRow("u1", createdAt.Add(time.Hour), "ext-2", "SRE", "Globex", "Berlin", int64(0), int64(0), "€", nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookmark b")).WithArgs("u1").WillReturnRows(rows)

	jobs, err := repo.ForUser("u1").ListSaved(context.Background())
	if err != nil {
		t.Fatalf("ListSaved: %v", err)
	}
	want := []savedjob.SavedJob{
		{ID: "ext-1", Title: "Go Developer", Company: "Acme", Location: "Remote", Salary: "$90,000 to $120,000", CompanyLogo: "/x/s/m/img-1", SavedAt: "2024-05-01T10:00:00Z"},
		{ID: "ext-2", Title: "SRE", Company: "Globex", Location: "Berlin", SavedAt: "2024-05-01T11:00:00Z"},
	}
	if !reflect.DeepEqual(jobs, want) {
		t.Fatalf("jobs = %#v, want %#v", jobs, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListSavedDriverError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookmark b")).
		WithArgs("u1").
		WillReturnError(&pq.Error{Code: "57P01", Message: "terminating connection"})

	_, err := repo.ForUser("u1").ListSaved(context.Background())
	te, ok := err.(*savedjob.TransportError)
	if !ok {
		t.Fatalf("err = %T, want *savedjob.TransportError", err)
	}
	if te.Op != savedjob.OpListSaved {
		t.Fatalf("op = %q, want %q", te.Op, savedjob.OpListSaved)
	}
	if want := "database error admin_shutdown: terminating connection"; te.Message != want {
		t.Fatalf("message = %q, want %q", te.Message, want)
	}
	if _, ok := errors.Cause(te.Err).(*pq.Error); !ok {
		t.Fatalf("cause = %T, want *pq.Error", errors.Cause(te.Err))
	}
}

func TestSave(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM job WHERE external_id = $1")).
		WithArgs("ext-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookmark")).
		WithArgs("u1", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ForUser("u1").Save(context.Background(), "ext-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveUnknownJob(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM job WHERE external_id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	err := repo.ForUser("u1").Save(context.Background(), "missing")
	te, ok := err.(*savedjob.TransportError)
	if !ok {
		t.Fatalf("err = %T, want *savedjob.TransportError", err)
	}
	if te.Message != "job not found" || te.JobID != "missing" {
		t.Fatalf("err = %+v, want job not found for missing", te)
	}
}

func TestUnsave(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookmark b USING job j")).
		WithArgs("u1", "ext-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.ForUser("u1").Unsave(context.Background(), "ext-9"); err != nil {
		t.Fatalf("Unsave: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConnectionErrorsKeepDetailOutOfMessage(t *testing.T) {
	dialErr := errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	tests := []struct {
		name string
		call func(svc savedjob.Service) error
		mock func(mock sqlmock.Sqlmock)
		want string
	}{
		{
			"list",
			func(svc savedjob.Service) error { _, err := svc.ListSaved(context.Background()); return err },
			func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM bookmark b")).WithArgs("u1").WillReturnError(dialErr)
			},
			savedjob.DefaultFetchError,
		},
		{
			"save",
			func(svc savedjob.Service) error { return svc.Save(context.Background(), "ext-1") },
			func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM job WHERE external_id = $1")).WithArgs("ext-1").WillReturnError(dialErr)
			},
			savedjob.DefaultSaveError,
		},
		{
			"unsave",
			func(svc savedjob.Service) error { return svc.Unsave(context.Background(), "ext-1") },
			func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookmark b USING job j")).WithArgs("u1", "ext-1").WillReturnError(dialErr)
			},
			savedjob.DefaultUnsaveError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t)
			tt.mock(mock)

			err := tt.call(repo.ForUser("u1"))
			te, ok := err.(*savedjob.TransportError)
			if !ok {
				t.Fatalf("err = %T, want *savedjob.TransportError", err)
			}
			if te.Error() != tt.want {
				t.Fatalf("Error() = %q, want %q", te.Error(), tt.want)
			}
			if errors.Cause(te.Err) != dialErr {
				t.Fatalf("cause = %v, want the dial error", errors.Cause(te.Err))
			}
		})
	}
}

func TestListSavedConnectionErrorReachesState(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookmark b")).WithArgs("u1").
		WillReturnError(errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))

	store := savedjob.NewStore(repo.ForUser("u1"))
	store.RequestFetch(context.Background())
	if st := store.State(); st.Status != savedjob.StatusFailed || st.Error != savedjob.DefaultFetchError {
		t.Fatalf("state = %+v, want failed with %q", st, savedjob.DefaultFetchError)
	}
}
