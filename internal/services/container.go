package services

import (
	"log/slog"

	"task-tracker/internal/config"
	"task-tracker/internal/repository"
	"task-tracker/internal/validation"
)

// NewServiceContainer wires every service around one repository.
func NewServiceContainer(repo repository.Repository, cfg *config.Config, now Clock, logger *slog.Logger) *ServiceContainer {
	validator := validation.NewValidator()
	if cfg != nil {
		validator = validation.NewValidatorWithConfig(cfg)
	}

	return &ServiceContainer{
		TaskService:    NewTaskService(repo, validation.NewTaskValidatorWithValidator(validator), now),
		OverdueService: NewOverdueService(repo, now, logger),
		UserService:    NewUserService(repo, now),
	}
}
