package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/backend/internal/model"
	"github.com/fintrack/backend/internal/service"
)

type SubscriptionHandler struct {
	svc *service.SubscriptionService
}

func NewSubscriptionHandler(svc *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

func (h *SubscriptionHandler) Status(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.svc.Status(c.Request.Context(), authUser.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "", status)
}

func (h *SubscriptionHandler) Activate(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	months := bindDurationMonths(c)
	if months == 0 {
		return
	}

	user, err := h.svc.Activate(c.Request.Context(), authUser.ID, months)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "premium plan activated", planSummary(user))
}

func (h *SubscriptionHandler) Renew(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	months := bindDurationMonths(c)
	if months == 0 {
		return
	}

	user, err := h.svc.Renew(c.Request.Context(), authUser.ID, months)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "premium plan renewed", planSummary(user))
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.svc.Cancel(c.Request.Context(), authUser.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "premium plan cancelled", model.PlanSummary{
		PlanType:  user.PlanType,
		IsPremium: user.IsPremium,
	})
}

func (h *SubscriptionHandler) Features(c *gin.Context) {
	authUser := GetAuthUser(c)
	if authUser == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.svc.Status(c.Request.Context(), authUser.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respondOK(c, "", model.FeatureAccess{
		Features:  status.Features,
		IsPremium: status.IsPremium,
	})
}

// bindDurationMonths reads the request body, defaulting to one month
// when the field is omitted. Returns 0 after writing the error response
// when the body is malformed.
func bindDurationMonths(c *gin.Context) int {
	var req model.SubscriptionChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return 0
	}
	if req.DurationMonths == 0 {
		return 1
	}
	return req.DurationMonths
}

func planSummary(user *model.User) model.PlanSummary {
	return model.PlanSummary{
		PlanType:      user.PlanType,
		IsPremium:     user.IsPremium,
		PlanStartDate: user.PlanStartDate,
		PlanEndDate:   user.PlanEndDate,
	}
}
