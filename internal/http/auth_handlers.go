package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-calendar/internal/auth"
	"todo-calendar/internal/domain"
	"todo-calendar/internal/ratelimit"
	"todo-calendar/internal/service"
)

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindError(err))
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Email:           req.Email,
		DisplayName:     req.DisplayName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	key := ratelimit.LoginKey(c.ClientIP(), req.Email)
	if err := h.limiter.Allow(ctx, key); errors.Is(err, ratelimit.ErrTooManyAttempts) {
		h.writeError(c, err)
		return
	} else if err != nil {
		h.logger.WithError(err).Warn("login limiter unavailable, failing open")
	}

	user, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			if ferr := h.limiter.Fail(ctx, key); ferr != nil && !errors.Is(ferr, ratelimit.ErrTooManyAttempts) {
				h.logger.WithError(ferr).Warn("record failed login")
			}
		}
		h.writeError(c, err)
		return
	}
	if err := h.limiter.Reset(ctx, key); err != nil {
		h.logger.WithError(err).Warn("reset login attempts")
	}

	sess, err := h.issuer.Issue(user)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.setSessionCookie(c, sess)

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"user_id":    user.ID,
	}).Info("user logged in")

	c.JSON(http.StatusOK, loginResponse{
		User:      newUserResponse(user),
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC(),
	})
}

func (h *Handler) logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) me(c *gin.Context, who auth.Identity) {
	c.JSON(http.StatusOK, meResponse{ID: who.UserID, DisplayName: who.DisplayName})
}
