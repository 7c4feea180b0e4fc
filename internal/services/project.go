package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/curator-backend/internal/data/repos"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/projects"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type CreateProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateProjectInput struct {
	Name                 *string              `json:"name"`
	Description          *string              `json:"description"`
	Status               *types.ProjectStatus `json:"status"`
	CanonicalSchemaID    *uuid.UUID           `json:"canonicalSchemaId"`
	ProcessingPipelineID *uuid.UUID           `json:"processingPipelineId"`
}

type ProjectOverview struct {
	Project     *types.Project             `json:"project"`
	DataSources []*types.ProjectDataSource `json:"dataSources"`
	Jobs        []*types.ProcessingJob     `json:"processingJobs"`
	Datasets    []*types.Dataset           `json:"datasets"`
}

type ProjectService interface {
	Create(ctx context.Context, orgID, userID uuid.UUID, in CreateProjectInput) (*types.Project, error)
	List(ctx context.Context, orgID uuid.UUID, filter types.ProjectFilter) ([]*types.Project, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*types.Project, error)
	Overview(ctx context.Context, orgID, id uuid.UUID) (*ProjectOverview, error)
	Update(ctx context.Context, orgID, id uuid.UUID, in UpdateProjectInput) (*types.Project, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	UpdateFieldMapping(ctx context.Context, orgID, id uuid.UUID, blob json.RawMessage) (*types.Project, error)
	UpdateDeIdentification(ctx context.Context, orgID, id uuid.UUID, blob json.RawMessage) (*types.Project, error)
}

type projectService struct {
	log          *logger.Logger
	projectRepo  repos.ProjectRepo
	pdsRepo      repos.ProjectDataSourceRepo
	jobRepo      repos.ProcessingJobRepo
	datasetRepo  repos.DatasetRepo
	schemaRepo   repos.CanonicalSchemaRepo
	pipelineRepo repos.ProcessingPipelineRepo
}

func NewProjectService(
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	pdsRepo repos.ProjectDataSourceRepo,
	jobRepo repos.ProcessingJobRepo,
	datasetRepo repos.DatasetRepo,
	schemaRepo repos.CanonicalSchemaRepo,
	pipelineRepo repos.ProcessingPipelineRepo,
) ProjectService {
	return &projectService{
		log:          log.With("service", "ProjectService"),
		projectRepo:  projectRepo,
		pdsRepo:      pdsRepo,
		jobRepo:      jobRepo,
		datasetRepo:  datasetRepo,
		schemaRepo:   schemaRepo,
		pipelineRepo: pipelineRepo,
	}
}

func (s *projectService) Create(ctx context.Context, orgID, userID uuid.UUID, in CreateProjectInput) (*types.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.Validation("Name is required")
	}
	p := &types.Project{
		OrganisationID:  orgID,
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		Status:          projects.StatusDraft,
		CreatedByUserID: userID,
	}
	if err := s.projectRepo.Create(dbctx.Context{Ctx: ctx}, p); err != nil {
		return nil, err
	}
	s.log.Info("Project created", "project_id", p.ID, "organisation_id", orgID)
	return p, nil
}

func (s *projectService) List(ctx context.Context, orgID uuid.UUID, filter types.ProjectFilter) ([]*types.Project, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apierr.Validation("Invalid status: %s", *filter.Status)
	}
	return s.projectRepo.List(dbctx.Context{Ctx: ctx}, orgID, filter)
}

func (s *projectService) Get(ctx context.Context, orgID, id uuid.UUID) (*types.Project, error) {
	return s.projectRepo.GetByID(dbctx.Context{Ctx: ctx}, orgID, id)
}

func (s *projectService) Overview(ctx context.Context, orgID, id uuid.UUID) (*ProjectOverview, error) {
	project, err := s.projectRepo.GetByID(dbctx.Context{Ctx: ctx}, orgID, id)
	if err != nil {
		return nil, err
	}
	out := &ProjectOverview{Project: project}

	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		links, err := s.pdsRepo.ListByProject(dbc, project.ID)
		out.DataSources = links
		return err
	})
	g.Go(func() error {
		jobs, err := s.jobRepo.ListByProject(dbc, project.ID, types.JobFilter{})
		out.Jobs = jobs
		return err
	})
	g.Go(func() error {
		datasets, err := s.datasetRepo.ListByProject(dbc, project.ID)
		out.Datasets = datasets
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load project overview: %w", err)
	}
	return out, nil
}

func (s *projectService) Update(ctx context.Context, orgID, id uuid.UUID, in UpdateProjectInput) (*types.Project, error) {
	dbc := dbctx.Context{Ctx: ctx}
	patch := types.ProjectPatch{
		Description:          in.Description,
		Status:               in.Status,
		CanonicalSchemaID:    in.CanonicalSchemaID,
		ProcessingPipelineID: in.ProcessingPipelineID,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apierr.Validation("Name cannot be empty")
		}
		patch.Name = &name
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, apierr.Validation("Invalid status: %s", *in.Status)
	}
	if in.CanonicalSchemaID != nil {
		if _, err := s.schemaRepo.GetByID(dbc, *in.CanonicalSchemaID); err != nil {
			return nil, err
		}
	}
	if in.ProcessingPipelineID != nil {
		if _, err := s.pipelineRepo.GetByID(dbc, *in.ProcessingPipelineID); err != nil {
			return nil, err
		}
	}
	if len(patch.Columns()) == 0 {
		return s.projectRepo.GetByID(dbc, orgID, id)
	}
	return s.projectRepo.Update(dbc, orgID, id, patch)
}

func (s *projectService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.projectRepo.SoftDelete(dbctx.Context{Ctx: ctx}, orgID, id)
}

func (s *projectService) UpdateFieldMapping(ctx context.Context, orgID, id uuid.UUID, blob json.RawMessage) (*types.Project, error) {
	return s.replaceConfig(ctx, orgID, id, projects.FieldMappingField, "fieldMappingConfig", blob)
}

func (s *projectService) UpdateDeIdentification(ctx context.Context, orgID, id uuid.UUID, blob json.RawMessage) (*types.Project, error) {
	return s.replaceConfig(ctx, orgID, id, projects.DeIdentificationField, "deIdentificationConfig", blob)
}

// replaceConfig overwrites one versioned blob. The version read here is the
// one the write is conditioned on, so concurrent writers cannot both win.
func (s *projectService) replaceConfig(ctx context.Context, orgID, id uuid.UUID, field types.ConfigField, label string, raw json.RawMessage) (*types.Project, error) {
	value, ok := jsonBlob(raw)
	if !ok {
		return nil, apierr.Validation("%s is required and must be valid JSON", label)
	}
	dbc := dbctx.Context{Ctx: ctx}
	project, err := s.projectRepo.GetByID(dbc, orgID, id)
	if err != nil {
		return nil, err
	}
	current := project.Blob(field)
	next := current.Replace(value)
	ok, err = s.projectRepo.ReplaceConfig(dbc, orgID, id, field, current.Version, next)
	if err != nil {
		return nil, fmt.Errorf("replace %s: %w", label, err)
	}
	if !ok {
		if _, err := s.projectRepo.GetByID(dbc, orgID, id); err != nil {
			return nil, err
		}
		return nil, apierr.Conflict("Project %s was modified concurrently", label)
	}
	s.log.Debug("Project config replaced", "project_id", id, "field", label, "version", next.Version)
	return s.projectRepo.GetByID(dbc, orgID, id)
}
