package httpx

import (
	"net/http"

	domainauth "github.com/skyemovie/skyemovie/internal/domain/auth"
	"github.com/skyemovie/skyemovie/internal/domain/model"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/observability/metrics"
	"github.com/skyemovie/skyemovie/internal/service"
)

// LoginPage renders the sign-in form. Signed-in users are sent home.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFromRequest(r); sess != nil && !sess.Anonymous {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Sign In — SkyeMovie", CurrentPage: PageLogin}).Build()
	h.renderPage(w, r, data)
}

// RegisterPage renders the account creation form.
func (h *UIHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFromRequest(r); sess != nil && !sess.Anonymous {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Create Account — SkyeMovie", CurrentPage: PageRegister}).Build()
	h.renderPage(w, r, data)
}

// Login authenticates the submitted credentials and rotates the session.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Auth.Login(r.Context(), currentSession(r), service.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		metrics.AuthEvents.WithLabelValues("login", "failure").Inc()
		h.renderAuthFailure(w, r, PageMeta{Title: "Sign In — SkyeMovie", CurrentPage: PageLogin}, err)
		return
	}
	metrics.AuthEvents.WithLabelValues("login", "success").Inc()
	h.finishAuth(w, r, sess, "Signed in.")
}

// Register creates an account and signs the new user in.
func (h *UIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Auth.Register(r.Context(), currentSession(r), service.RegisterInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		metrics.AuthEvents.WithLabelValues("register", "failure").Inc()
		h.renderAuthFailure(w, r, PageMeta{Title: "Create Account — SkyeMovie", CurrentPage: PageRegister}, err)
		return
	}
	metrics.AuthEvents.WithLabelValues("register", "success").Inc()
	h.finishAuth(w, r, sess, "Account created.")
}

// Logout discards the authenticated session and continues as a fresh
// anonymous visitor.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Auth.Logout(r.Context(), sessionIDFromRequest(r))
	if err != nil {
		h.renderAppError(w, r, err)
		return
	}
	metrics.AuthEvents.WithLabelValues("logout", "success").Inc()
	h.finishAuth(w, r, sess, "Signed out.")
}

func (h *UIHandlers) finishAuth(w http.ResponseWriter, r *http.Request, sess domainauth.Session, notice string) {
	SetSessionCookie(w, h.CookieDomain, sess.ID, sess.ExpiresAt)
	if err := h.Flash.Set(r.Context(), sess.ID, model.NoticeSuccess, notice); err != nil {
		h.logger().Warn("set notice", "error", err)
	}
	target := safeRedirectPath(r.FormValue("next"), "/")
	if IsHTMX(r) {
		SetHXRedirect(w, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *UIHandlers) renderAuthFailure(w http.ResponseWriter, r *http.Request, meta PageMeta, err error) {
	if !apperrors.IsAuth(err) && !apperrors.IsValidation(err) {
		h.renderAppError(w, r, err)
		return
	}
	builder := NewTemplateData(r, meta).WithError(err.Error())
	if field := apperrors.GetField(err); field != "" {
		builder.WithFieldErrors(map[string]string{field: err.Error()})
	}
	builder.With("Email", r.PostFormValue("email"))
	data := builder.Build()
	if IsHTMX(r) {
		if err := h.T.RenderPartial(w, ContentTemplateFor(meta.CurrentPage), data); err != nil {
			h.renderTemplateFailure(w, r, err)
		}
		return
	}
	h.renderPage(w, r, data)
}

// currentSession returns the resolved session by value for handoff to the
// auth service.
func currentSession(r *http.Request) domainauth.Session {
	if sess := SessionFromRequest(r); sess != nil {
		return *sess
	}
	return domainauth.Session{}
}

// ExchangeToken trades a signed bootstrap token for an authenticated
// session. This is the JSON entry point used by trusted first-party tools.
func (h *UIHandlers) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	sess, err := h.Auth.ExchangeBootstrapToken(r.Context(), currentSession(r), req.Token)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	SetSessionCookie(w, h.CookieDomain, sess.ID, sess.ExpiresAt)
	WriteJSON(w, http.StatusOK, map[string]any{
		"uid":        sess.UserUID,
		"email":      sess.Email,
		"expires_at": sess.ExpiresAt,
	})
}
