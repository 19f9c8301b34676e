package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/services"
	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/view"
)

// handleExternal renders the demo panels. The last submitted form values
// come back through the query string so the forms keep what was typed.
func (s *Server) handleExternal(w http.ResponseWriter, r *http.Request) {
	st := sessionFromContext(r.Context())
	q := r.URL.Query()

	city := q.Get("city")
	if city == "" {
		city = services.DefaultWeatherCity
	}
	method := strings.ToUpper(q.Get("method"))
	if method == "" {
		method = http.MethodGet
	}
	custom := view.CustomFormView{
		URL:     q.Get("url"),
		Method:  method,
		Body:    q.Get("body"),
		Methods: services.CustomMethods,
	}

	s.renderView(w, r, st, session.ViewExternal, "external", "External APIs", view.BuildExternal(st, city, custom))
}

func (s *Server) handleExternalAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	st := sessionFromContext(ctx)

	kind, ok := session.ParseExternalKind(chi.URLParam(r, "kind"))
	if !ok {
		handleError(w, r, s.Renderer, errors.NewNotFoundError("external demo", chi.URLParam(r, "kind")))
		return
	}

	keep := url.Values{}
	var err error
	switch kind {
	case session.ExternalPosts:
		err = s.External.FetchPosts(ctx, st)
	case session.ExternalHTTPBin:
		err = s.External.FetchHTTPBin(ctx, st)
	case session.ExternalWeather:
		city := r.FormValue("city")
		keep.Set("city", city)
		err = s.External.FetchWeather(ctx, st, city)
	case session.ExternalCustom:
		form := services.CustomForm{
			URL:    r.FormValue("url"),
			Method: r.FormValue("method"),
			Body:   r.FormValue("body"),
		}
		keep.Set("url", form.URL)
		keep.Set("method", form.Method)
		keep.Set("body", form.Body)
		err = s.External.CustomRequest(ctx, st, form)
	}
	if err != nil {
		log.Debug("%s demo failed: %v", kind, err)
	}

	to := "/external"
	if len(keep) > 0 {
		to += "?" + keep.Encode()
	}
	redirect(w, r, to+"#"+string(kind)+"-results")
}
