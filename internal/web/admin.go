package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/csheth/edugenius/internal/auth"
	"github.com/csheth/edugenius/internal/catalog"
	"github.com/csheth/edugenius/internal/settings"
)

type sessionKey struct{}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type subjectRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.cfg.Auth.Authorize(bearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
	})
}

func sessionFrom(ctx context.Context) auth.Session {
	session, _ := ctx.Value(sessionKey{}).(auth.Session)
	return session
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	session, err := s.cfg.Auth.Login(body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	s.log.Info("web: admin signed in", "email", session.Email)
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.cfg.Auth.Logout(bearerToken(r))
	s.log.Info("web: admin signed out", "email", sessionFrom(r.Context()).Email)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Settings.Current())
}

// handlePutSettings replaces the advertisement configuration. Subjects are
// edited through their own routes so a stale page cannot drop them.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var body settings.Settings
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.applySettings(w, r, func(current settings.Settings) (settings.Settings, error) {
		return current.WithAds(body.Ads), nil
	})
}

func (s *Server) handleAddSubject(w http.ResponseWriter, r *http.Request) {
	var body subjectRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.applySettings(w, r, func(current settings.Settings) (settings.Settings, error) {
		return current.WithSubject(catalog.Subject{ID: body.Name, Icon: body.Icon, Color: body.Color})
	})
}

func (s *Server) handleRemoveSubject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.applySettings(w, r, func(current settings.Settings) (settings.Settings, error) {
		return current.WithoutSubject(id)
	})
}

func (s *Server) handleToggleSlot(w http.ResponseWriter, r *http.Request) {
	slot := settings.Slot(chi.URLParam(r, "slot"))
	s.applySettings(w, r, func(current settings.Settings) (settings.Settings, error) {
		return current.Toggle(slot)
	})
}

func (s *Server) applySettings(w http.ResponseWriter, r *http.Request, edit func(settings.Settings) (settings.Settings, error)) {
	next, err := s.cfg.Settings.Update(edit)
	if err != nil {
		writeError(w, settingsStatus(err), err)
		return
	}
	s.log.Info("web: settings updated", "email", sessionFrom(r.Context()).Email, "path", r.URL.Path)
	writeJSON(w, http.StatusOK, next)
}

func settingsStatus(err error) int {
	switch {
	case errors.Is(err, settings.ErrDuplicateSubject):
		return http.StatusConflict
	case errors.Is(err, settings.ErrUnknownSubject), errors.Is(err, settings.ErrUnknownSlot):
		return http.StatusNotFound
	case errors.Is(err, settings.ErrEmptySubject):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
