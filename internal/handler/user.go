package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/backend/internal/model"
	"github.com/fintrack/backend/internal/service"
)

// UserHandler exposes the authenticated account-change flows: password
// change and email change, both guarded by single-use codes.
type UserHandler struct {
	svc *service.AuthService
}

func NewUserHandler(svc *service.AuthService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RequestPasswordChange(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.RequestPasswordChange(c.Request.Context(), authUser.ID); err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "confirmation code sent", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), authUser.ID, req.CurrentPassword, req.Code, req.NewPassword); err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "password changed", nil)
}

func (h *UserHandler) RequestEmailChange(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.RequestEmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.svc.RequestEmailChange(c.Request.Context(), authUser.ID, req.NewEmail); err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "confirmation code sent to the new address", nil)
}

func (h *UserHandler) ConfirmEmailChange(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.ConfirmEmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.svc.ConfirmEmailChange(c.Request.Context(), authUser.ID, req.NewEmail, req.Code); err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "email changed, verify your new address", nil)
}

// Export returns the account's full profile as a download. The route is
// gated on the unlimited-export feature.
func (h *UserHandler) Export(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), authUser.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="account-export.json"`)
	respondOK(c, "", user.Public(time.Now()))
}

// LogoutEverywhere revokes every refresh credential the account holds.
func (h *UserHandler) LogoutEverywhere(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.LogoutAll(c.Request.Context(), authUser.ID); err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "logged out everywhere", nil)
}
