package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/app/dto"
	"jobboard/internal/domain/application"
)

func (h *Handler) ApplicationApply(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var body dto.JobApplicationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	a, err := h.AppSvc.Apply(c.Request.Context(), caller, c.Param("id"), application.Input{
		CoverLetter: body.CoverLetter,
		ResumeURL:   body.ResumeURL,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, applicationDTO(a))
}

func (h *Handler) ApplicationsForJob(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	apps, err := h.AppSvc.ListForJob(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationDTOs(apps))
}

func (h *Handler) MyApplications(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	apps, err := h.AppSvc.ListMine(c.Request.Context(), caller)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationDTOs(apps))
}

func (h *Handler) ApplicationStatusUpdate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	status, err := application.ParseStatus(c.Query("status"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	a, err := h.AppSvc.UpdateStatus(c.Request.Context(), caller, c.Param("id"), status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationDTO(a))
}

func (h *Handler) ApplicationWithdraw(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.AppSvc.Withdraw(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application withdrawn successfully"})
}

func applicationDTO(a application.Application) dto.JobApplication {
	return dto.JobApplication{
		ID:          a.ID,
		JobID:       a.JobID,
		JobTitle:    a.JobTitle,
		CompanyName: a.CompanyName,
		UserID:      a.UserID,
		Username:    a.Username,
		UserEmail:   a.UserEmail,
		CoverLetter: a.CoverLetter,
		ResumeURL:   a.ResumeURL,
		Status:      string(a.Status),
		AppliedAt:   a.AppliedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func applicationDTOs(apps []application.Application) []dto.JobApplication {
	out := make([]dto.JobApplication, 0, len(apps))
	for _, a := range apps {
		out = append(out, applicationDTO(a))
	}
	return out
}
