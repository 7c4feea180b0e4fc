package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/data/repos"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type OrganisationService interface {
	Create(ctx context.Context, name string) (*types.Organisation, error)
	GetCurrent(ctx context.Context, orgID uuid.UUID) (*types.Organisation, error)
	UpdateCurrent(ctx context.Context, orgID uuid.UUID, name string) (*types.Organisation, error)
}

type organisationService struct {
	log     *logger.Logger
	orgRepo repos.OrganisationRepo
}

func NewOrganisationService(log *logger.Logger, orgRepo repos.OrganisationRepo) OrganisationService {
	return &organisationService{log: log.With("service", "OrganisationService"), orgRepo: orgRepo}
}

func (s *organisationService) Create(ctx context.Context, name string) (*types.Organisation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Validation("Organisation name is required")
	}
	org := &types.Organisation{Name: name}
	if err := s.orgRepo.Create(dbctx.Context{Ctx: ctx}, org); err != nil {
		return nil, err
	}
	s.log.Info("Organisation created", "organisation_id", org.ID)
	return org, nil
}

func (s *organisationService) GetCurrent(ctx context.Context, orgID uuid.UUID) (*types.Organisation, error) {
	return s.orgRepo.GetByID(dbctx.Context{Ctx: ctx}, orgID)
}

func (s *organisationService) UpdateCurrent(ctx context.Context, orgID uuid.UUID, name string) (*types.Organisation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.Validation("Organisation name is required")
	}
	return s.orgRepo.UpdateName(dbctx.Context{Ctx: ctx}, orgID, name)
}
