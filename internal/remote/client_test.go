package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/golang-cafe/saved-jobs/internal/savedjob"
)

func TestListSaved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/JobSeekerPost/saved/17" {
			t.Errorf("request = %s %s, want GET /api/JobSeekerPost/saved/17", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[
			{"employerPostId":12,"title":"Go <b>Developer</b>","location":"Ha Noi","employerName":"R&amp;D Labs","addedAt":"2024-05-01T10:00:00.000Z"},
			{"employerPostId":3,"title":"SRE","location":"Remote","employerName":"Globex","addedAt":"2024-05-02T10:00:00"}
		],"total":2}`)
	}))
	defer srv.Close()

	jobs, err := NewClient(srv.URL+"/api/").ForJobSeeker("17", "tok").ListSaved(context.Background())
	if err != nil {
		t.Fatalf("ListSaved: %v", err)
	}
	want := []savedjob.SavedJob{
		{ID: "12", Title: "Go Developer", Company: "R&D Labs", Location: "Ha Noi", SavedAt: "2024-05-01T10:00:00.000Z"},
		{ID: "3", Title: "SRE", Company: "Globex", Location: "Remote", SavedAt: "2024-05-02T10:00:00"},
	}
	if !reflect.DeepEqual(jobs, want) {
		t.Fatalf("jobs = %#v, want %#v", jobs, want)
	}
}

func TestSaveAndUnsavePayload(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["jobSeekerId"] != "17" || body["employerPostId"] != float64(12) {
			t.Errorf("body = %v", body)
		}
		if v, ok := body["note"]; !ok || v != nil {
			t.Errorf("note = %v (present %v), want null", v, ok)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		got = append(got, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewClient(srv.URL).ForJobSeeker("17", "")
	if err := svc.Save(context.Background(), "12"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Unsave(context.Background(), "12"); err != nil {
		t.Fatalf("Unsave: %v", err)
	}
	want := []string{"POST /JobSeekerPost/save-job", "POST /JobSeekerPost/unsave-job"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("requests = %v, want %v", got, want)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"lower case message", http.StatusForbidden, `{"message":"token expired"}`, "token expired"},
		{"upper case message", http.StatusBadRequest, `{"Message":"post not found"}`, "post not found"},
		{"no body", http.StatusBadGateway, ``, "http status 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := NewClient(srv.URL).ForJobSeeker("1", "").Unsave(context.Background(), "5")
			te, ok := err.(*savedjob.TransportError)
			if !ok {
				t.Fatalf("err = %T, want *savedjob.TransportError", err)
			}
			if te.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", te.StatusCode, tt.status)
			}
			if te.Error() != tt.wantMessage {
				t.Fatalf("message = %q, want %q", te.Error(), tt.wantMessage)
			}
			if te.Op != savedjob.OpUnsave || te.JobID != "5" {
				t.Fatalf("op = %q job = %q", te.Op, te.JobID)
			}
		})
	}
}

func TestInvalidJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).ForJobSeeker("1", "").Save(context.Background(), "abc")
	if _, ok := err.(*savedjob.TransportError); !ok {
		t.Fatalf("err = %T, want *savedjob.TransportError", err)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL).ForJobSeeker("1", "").ListSaved(context.Background())
	te, ok := err.(*savedjob.TransportError)
	if !ok {
		t.Fatalf("err = %T, want *savedjob.TransportError", err)
	}
	if te.Error() == "" {
		t.Fatalf("expected a message from the wrapped network error")
	}
}

func TestStoreOverRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/JobSeekerPost/saved/9":
			io.WriteString(w, `{"data":[{"employerPostId":1,"title":"A"},{"employerPostId":2,"title":"B"}],"total":2}`)
		case "/JobSeekerPost/unsave-job":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := savedjob.NewStore(NewClient(srv.URL).ForJobSeeker("9", ""))
	s.RequestFetch(context.Background())
	if err := s.RequestRemove(context.Background(), "1"); err != nil {
		t.Fatalf("RequestRemove: %v", err)
	}
	st := s.State()
	if st.Status != savedjob.StatusSucceeded || len(st.Items) != 1 || st.Items[0].ID != "2" {
		t.Fatalf("state = %#v, want succeeded with job 2", st)
	}
}

func TestPageTotalFollowsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/JobSeekerPost/saved/9":
			io.WriteString(w, `{"data":[{"employerPostId":1,"title":"A"},{"employerPostId":2,"title":"B"}],"total":7}`)
		case "/JobSeekerPost/unsave-job":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	view := savedjob.NewView(savedjob.NewStore(NewClient(srv.URL).ForJobSeeker("9", "")), 0)
	view.Mount(context.Background())
	defer view.Unmount()
	if got := view.Page(1).Total; got != 2 {
		t.Fatalf("total = %d, want 2 listed jobs", got)
	}
	if err := view.Remove(context.Background(), "1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := view.Page(1).Total; got != 1 {
		t.Fatalf("total after remove = %d, want 1", got)
	}
}
