package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-cafe/saved-jobs/internal/middleware"
	"github.com/golang-cafe/saved-jobs/internal/savedjob"
	"github.com/golang-cafe/saved-jobs/internal/server"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const (
	flashRemoved      = "Removed job from your saved list"
	flashRemoveFailed = "Failed to unsave job. Try again."
)

// ServiceFactory returns the saved jobs service acting on behalf of the
// signed in job seeker.
type ServiceFactory func(profile *middleware.UserJWT) savedjob.Service

// storeFor returns the shared container of the signed in job seeker. A new
// session token replaces the container so the service acts with it.
func storeFor(svr server.Server, registry *savedjob.Registry, services ServiceFactory, r *http.Request) (*savedjob.Store, error) {
	profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
	if err != nil {
		return nil, err
	}
	return registry.Store(profile.UserID, profile.Token, func() savedjob.Service {
		return services(profile)
	}), nil
}

// serviceContext carries r's values but not its cancellation: the store is
// shared, so a visitor leaving must not fail a call others wait on.
func serviceContext(svr server.Server, r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if timeout := svr.GetConfig().SavedJobsFetchTimeout; timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// mountSettled mounts view with its initial fetch in the background and
// waits for the store at most the configured settle time.
func mountSettled(svr server.Server, r *http.Request, view *savedjob.View) savedjob.State {
	fetchCtx, cancelFetch := serviceContext(svr, r)
	fetched := view.MountAsync(fetchCtx)
	go func() {
		<-fetched
		cancelFetch()
	}()
	ctx, cancel := context.WithTimeout(r.Context(), svr.GetConfig().SavedJobsSettleAfter)
	defer cancel()
	return view.Settle(ctx)
}

func failureMessage(err error, fallback string) string {
	if te, ok := errors.Cause(err).(*savedjob.TransportError); ok && te.Message != "" {
		return te.Message
	}
	return fallback
}

func SavedJobsPageHandler(svr server.Server, registry *savedjob.Registry, services ServiceFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFor(svr, registry, services, r)
		if err != nil {
			svr.Log(err, "unable to retrieve user from JWT")
			svr.Redirect(w, r, http.StatusFound, "/auth")
			return
		}
		pageID, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			pageID = 1
		}

		view := savedjob.NewView(store, svr.GetConfig().SavedJobsPerPage)
		defer view.Unmount()
		mountSettled(svr, r, view)
		page := view.Page(pageID)

		var flashes []string
		sess, err := svr.SessionStore.Get(r, middleware.SessionName)
		if err == nil {
			for _, f := range sess.Flashes() {
				if msg, ok := f.(string); ok {
					flashes = append(flashes, msg)
				}
			}
			if len(flashes) > 0 {
				if err := sess.Save(r, w); err != nil {
					svr.Log(err, "unable to clear saved jobs flashes")
				}
			}
		}

		err = svr.Render(w, http.StatusOK, "saved-jobs.html", map[string]interface{}{
			"Title":       "Saved jobs",
			"Page":        page,
			"Flashes":     flashes,
			"AutoRefresh": page.Kind == savedjob.PageLoading,
		})
		if err != nil {
			svr.Log(err, "unable to render saved jobs page")
		}
	}
}

func SavedJobsJSONHandler(svr server.Server, registry *savedjob.Registry, services ServiceFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFor(svr, registry, services, r)
		if err != nil {
			svr.Log(err, "unable to retrieve user from JWT")
			svr.JSON(w, http.StatusForbidden, nil)
			return
		}
		view := savedjob.NewView(store, svr.GetConfig().SavedJobsPerPage)
		defer view.Unmount()
		svr.JSON(w, http.StatusOK, mountSettled(svr, r, view))
	}
}

func SaveJobHandler(svr server.Server, registry *savedjob.Registry, services ServiceFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFor(svr, registry, services, r)
		if err != nil {
			svr.Log(err, "unable to retrieve user from JWT")
			svr.JSON(w, http.StatusForbidden, nil)
			return
		}
		jobID := strings.TrimSpace(r.FormValue("job-id"))
		if jobID == "" {
			svr.JSON(w, http.StatusBadRequest, map[string]string{"error": "job-id is required"})
			return
		}
		ctx, cancel := serviceContext(svr, r)
		defer cancel()
		view := savedjob.NewView(store, svr.GetConfig().SavedJobsPerPage)
		if err := view.Save(ctx, jobID); err != nil {
			svr.Log(err, "SaveJob")
			svr.JSON(w, http.StatusBadGateway, map[string]string{"error": failureMessage(err, savedjob.DefaultSaveError)})
			return
		}
		svr.JSON(w, http.StatusCreated, nil)
	}
}

func RemoveSavedJobHandler(svr server.Server, registry *savedjob.Registry, services ServiceFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFor(svr, registry, services, r)
		if err != nil {
			svr.Log(err, "unable to retrieve user from JWT")
			svr.JSON(w, http.StatusForbidden, nil)
			return
		}
		ctx, cancel := serviceContext(svr, r)
		defer cancel()
		view := savedjob.NewView(store, svr.GetConfig().SavedJobsPerPage)
		if err := view.Remove(ctx, mux.Vars(r)["id"]); err != nil {
			svr.Log(err, "RemoveSavedJob")
			svr.JSON(w, http.StatusBadGateway, map[string]string{"error": failureMessage(err, savedjob.DefaultUnsaveError)})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveSavedJobFormHandler backs the remove button of the saved jobs page.
// The outcome is reported on the next page render through a flash.
func RemoveSavedJobFormHandler(svr server.Server, registry *savedjob.Registry, services ServiceFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFor(svr, registry, services, r)
		if err != nil {
			svr.Log(err, "unable to retrieve user from JWT")
			svr.Redirect(w, r, http.StatusFound, "/auth")
			return
		}
		flash := flashRemoved
		ctx, cancel := serviceContext(svr, r)
		defer cancel()
		view := savedjob.NewView(store, svr.GetConfig().SavedJobsPerPage)
		if err := view.Remove(ctx, mux.Vars(r)["id"]); err != nil {
			svr.Log(err, "RemoveSavedJob")
			flash = flashRemoveFailed
		}
		sess, err := svr.SessionStore.Get(r, middleware.SessionName)
		if err == nil {
			sess.AddFlash(flash)
			if err := sess.Save(r, w); err != nil {
				svr.Log(err, "unable to save saved jobs flash")
			}
		}
		svr.Redirect(w, r, http.StatusSeeOther, "/saved-jobs")
	}
}

func RefreshSavedJobsHandler(svr server.Server, registry *savedjob.Registry, services ServiceFactory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFor(svr, registry, services, r)
		if err != nil {
			svr.Log(err, "unable to retrieve user from JWT")
			svr.Redirect(w, r, http.StatusFound, "/auth")
			return
		}
		ctx, cancel := serviceContext(svr, r)
		defer cancel()
		savedjob.NewView(store, svr.GetConfig().SavedJobsPerPage).Refresh(ctx)
		svr.Redirect(w, r, http.StatusSeeOther, "/saved-jobs")
	}
}
