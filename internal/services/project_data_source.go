package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/curator-backend/internal/data/repos"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type ProjectDataSourceService interface {
	Add(ctx context.Context, orgID, projectID, dataSourceID uuid.UUID) (*types.ProjectDataSource, error)
	List(ctx context.Context, orgID, projectID uuid.UUID) ([]*types.ProjectDataSource, error)
	Remove(ctx context.Context, orgID, projectID, associationID uuid.UUID) error
}

type projectDataSourceService struct {
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	dsRepo      repos.DataSourceRepo
	pdsRepo     repos.ProjectDataSourceRepo
}

func NewProjectDataSourceService(
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	dsRepo repos.DataSourceRepo,
	pdsRepo repos.ProjectDataSourceRepo,
) ProjectDataSourceService {
	return &projectDataSourceService{
		log:         log.With("service", "ProjectDataSourceService"),
		projectRepo: projectRepo,
		dsRepo:      dsRepo,
		pdsRepo:     pdsRepo,
	}
}

func (s *projectDataSourceService) Add(ctx context.Context, orgID, projectID, dataSourceID uuid.UUID) (*types.ProjectDataSource, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.dsRepo.GetByID(dbc, orgID, dataSourceID); err != nil {
		return nil, err
	}

	_, err := s.pdsRepo.GetByPair(dbc, projectID, dataSourceID)
	switch {
	case err == nil:
		return nil, apierr.Conflict("Data source is already linked to this project")
	case !apierr.Is(err, apierr.KindNotFound):
		return nil, err
	}

	link := &types.ProjectDataSource{ProjectID: projectID, DataSourceID: dataSourceID}
	if err := s.pdsRepo.Create(dbc, link); err != nil {
		if apierr.Is(err, apierr.KindConflict) {
			return nil, apierr.Conflict("Data source is already linked to this project")
		}
		return nil, err
	}
	s.log.Info("Data source linked", "project_id", projectID, "data_source_id", dataSourceID)
	return link, nil
}

func (s *projectDataSourceService) List(ctx context.Context, orgID, projectID uuid.UUID) ([]*types.ProjectDataSource, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
		return nil, err
	}
	return s.pdsRepo.ListByProject(dbc, projectID)
}

func (s *projectDataSourceService) Remove(ctx context.Context, orgID, projectID, associationID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
		return err
	}
	return s.pdsRepo.SoftDelete(dbc, projectID, associationID)
}
