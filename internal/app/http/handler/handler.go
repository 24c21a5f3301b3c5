package handler

import (
	"go.uber.org/zap"

	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
)

type Handler struct {
	JobSvc job.Service
	AppSvc application.Service
	Log    *zap.Logger
}

func New(jobSvc job.Service, appSvc application.Service, log *zap.Logger) *Handler {
	return &Handler{
		JobSvc: jobSvc,
		AppSvc: appSvc,
		Log:    log,
	}
}
