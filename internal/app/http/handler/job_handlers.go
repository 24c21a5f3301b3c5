package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"jobboard/internal/app/dto"
	"jobboard/internal/app/http/middleware"
	"jobboard/internal/domain/identity"
	"jobboard/internal/domain/job"
)

const maxPageSize = 100

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) JobCreate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var body dto.JobRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	in, err := jobInput(body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	j, err := h.JobSvc.Create(c.Request.Context(), caller, in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, jobDTO(j))
}

func (h *Handler) JobGet(c *gin.Context) {
	j, err := h.JobSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobDTO(j))
}

func (h *Handler) JobList(c *gin.Context) {
	p, err := pageRequest(c)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	page, err := h.JobSvc.ListActive(c.Request.Context(), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobPageDTO(page))
}

func (h *Handler) JobSearch(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		h.badRequest(c, "keyword is required")
		return
	}

	p, err := pageRequest(c)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	page, err := h.JobSvc.Search(c.Request.Context(), keyword, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobPageDTO(page))
}

func (h *Handler) JobsByCategory(c *gin.Context) {
	category, err := job.ParseCategory(c.Param("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	p, err := pageRequest(c)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	page, err := h.JobSvc.ListByCategory(c.Request.Context(), category, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobPageDTO(page))
}

func (h *Handler) JobsByType(c *gin.Context) {
	jobType, err := job.ParseType(c.Param("type"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	p, err := pageRequest(c)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	page, err := h.JobSvc.ListByType(c.Request.Context(), jobType, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobPageDTO(page))
}

func (h *Handler) JobsBySalaryRange(c *gin.Context) {
	min, err := decimal.NewFromString(c.Query("minSalary"))
	if err != nil {
		h.badRequest(c, "minSalary must be a valid number")
		return
	}
	max, err := decimal.NewFromString(c.Query("maxSalary"))
	if err != nil {
		h.badRequest(c, "maxSalary must be a valid number")
		return
	}

	p, err := pageRequest(c)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	page, err := h.JobSvc.ListBySalaryRange(c.Request.Context(), min, max, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobPageDTO(page))
}

func (h *Handler) JobListMine(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	jobs, err := h.JobSvc.ListMine(c.Request.Context(), caller)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]dto.Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobDTO(j))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) JobUpdate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var body dto.JobRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	in, err := jobInput(body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	j, err := h.JobSvc.Update(c.Request.Context(), caller, c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobDTO(j))
}

func (h *Handler) JobDelete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.JobSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "job deleted successfully"})
}

// caller fetches the identity the auth middleware resolved. A miss means a
// route was wired without Authenticate, which is a programming error.
func (h *Handler) caller(c *gin.Context) (identity.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		h.writeError(c, errAuthMissing)
		return identity.Caller{}, false
	}
	return caller, true
}

func pageRequest(c *gin.Context) (job.PageRequest, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		return job.PageRequest{}, errInvalidPage
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		return job.PageRequest{}, errInvalidSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	dir := job.SortDesc
	if strings.EqualFold(c.DefaultQuery("sortDir", "DESC"), "ASC") {
		dir = job.SortAsc
	}

	return job.PageRequest{
		Page:    page,
		Size:    size,
		SortBy:  c.DefaultQuery("sortBy", "created_at"),
		SortDir: dir,
	}, nil
}

func jobInput(body dto.JobRequest) (job.Input, error) {
	jobType, err := job.ParseType(body.JobType)
	if err != nil {
		return job.Input{}, err
	}
	category, err := job.ParseCategory(body.Category)
	if err != nil {
		return job.Input{}, err
	}
	level, err := job.ParseExperienceLevel(body.ExperienceLevel)
	if err != nil {
		return job.Input{}, err
	}

	return job.Input{
		Title:               body.Title,
		Description:         body.Description,
		CompanyName:         body.CompanyName,
		Location:            body.Location,
		JobType:             jobType,
		Category:            category,
		ExperienceLevel:     level,
		SalaryMin:           nullDecimal(body.SalaryMin),
		SalaryMax:           nullDecimal(body.SalaryMax),
		SkillsRequired:      body.SkillsRequired,
		ApplicationDeadline: body.ApplicationDeadline,
	}, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalValue(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func jobDTO(j job.Job) dto.Job {
	return dto.Job{
		ID:                  j.ID,
		Title:               j.Title,
		Description:         j.Description,
		CompanyName:         j.CompanyName,
		Location:            j.Location,
		JobType:             string(j.JobType),
		Category:            string(j.Category),
		ExperienceLevel:     string(j.ExperienceLevel),
		SalaryMin:           decimalValue(j.SalaryMin),
		SalaryMax:           decimalValue(j.SalaryMax),
		SkillsRequired:      j.SkillsRequired,
		PostedByUserID:      j.PostedByUserID,
		PostedByUsername:    j.PostedByUsername,
		IsActive:            j.IsActive,
		ApplicationDeadline: j.ApplicationDeadline,
		CreatedAt:           j.CreatedAt,
		UpdatedAt:           j.UpdatedAt,
		ApplicationCount:    j.ApplicationCount,
	}
}

func jobPageDTO(p job.Page) dto.JobPage {
	content := make([]dto.Job, 0, len(p.Items))
	for _, j := range p.Items {
		content = append(content, jobDTO(j))
	}
	return dto.JobPage{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages(),
	}
}
