package template

import (
	"io/fs"
	"net/http"

	stdtemplate "html/template"

	humanize "github.com/dustin/go-humanize"
	"github.com/golang-cafe/saved-jobs/internal/savedjob"
)

type Template struct {
	templates *stdtemplate.Template
}

func NewTemplate(fsys fs.FS) *Template {
	funcMap := stdtemplate.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"last": func(a []int) int {
			if len(a) == 0 {
				return -1
			}
			return a[len(a)-1]
		},
		"humannumber": func(n int) string {
			return humanize.Comma(int64(n))
		},
		"savedago": func(j savedjob.SavedJob) string {
			t, err := j.SavedAtTime()
			if err != nil {
				return j.SavedAt
			}
			return humanize.Time(t)
		},
	}
	return &Template{
		templates: stdtemplate.Must(stdtemplate.New("stdtmpl").Funcs(funcMap).ParseFS(fsys, "views/*.html")),
	}
}

func (t *Template) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return t.templates.ExecuteTemplate(w, name, data)
}
