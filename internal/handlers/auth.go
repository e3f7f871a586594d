package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/accounts"
	"github.com/shrimpsizemoose/qcm/internal/metrics"
	"github.com/shrimpsizemoose/qcm/internal/session"
)

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type registerForm struct {
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

func (h *Handler) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "connexion", gin.H{"Title": "Connexion"})
}

func (h *Handler) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "inscription", gin.H{"Title": "Inscription"})
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWithFlash(c, "/connexion", "error", "Email ou mot de passe incorrect.")
		return
	}

	student, err := h.service.Accounts.Authenticate(c.Request.Context(), form.Email, form.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.redirectWithFlash(c, "/connexion", "error", "Email ou mot de passe incorrect.")
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	if err := h.startSession(c, session.Identity{StudentID: student.ID, Email: student.Email}); err != nil {
		h.internalError(c, err)
		return
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.redirectWithFlash(c, "/cours", "success", "Connexion réussie !")
}

func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWithFlash(c, "/inscription", "error", "Formulaire invalide.")
		return
	}

	id, err := h.service.Accounts.Register(c.Request.Context(), form.Email, form.Password, form.ConfirmPassword)
	switch {
	case errors.Is(err, accounts.ErrPasswordMismatch):
		h.redirectWithFlash(c, "/inscription", "error", "Les mots de passe ne correspondent pas.")
		return
	case errors.Is(err, accounts.ErrDuplicateEmail):
		h.redirectWithFlash(c, "/inscription", "error", "Cette adresse email est déjà utilisée.")
		return
	case errors.Is(err, accounts.ErrInvalidRegistration):
		h.redirectWithFlash(c, "/inscription", "error", "Adresse email invalide.")
		return
	case err != nil:
		h.internalError(c, err)
		return
	}

	metrics.RegistrationsTotal.Inc()
	if err := h.startSession(c, session.Identity{StudentID: id, Email: strings.TrimSpace(form.Email)}); err != nil {
		h.internalError(c, err)
		return
	}
	h.redirectWithFlash(c, "/cours", "success", "Inscription réussie, bienvenue !")
}

func (h *Handler) Logout(c *gin.Context) {
	cookie := h.service.Config.Session.CookieName
	if token, err := c.Cookie(cookie); err == nil && token != "" {
		if err := h.service.Sessions.Revoke(c.Request.Context(), token); err != nil {
			logger.Error.Printf("Failed to revoke session: %v", err)
		}
	}
	h.setCookie(c, cookie, "", -1)
	h.redirectWithFlash(c, "/", "info", "Vous avez été déconnecté.")
}

func (h *Handler) startSession(c *gin.Context, id session.Identity) error {
	token, err := h.service.Sessions.Issue(c.Request.Context(), id)
	if err != nil {
		return err
	}
	h.setCookie(c, h.service.Config.Session.CookieName, token, int(h.service.Config.SessionTTL().Seconds()))
	return nil
}
