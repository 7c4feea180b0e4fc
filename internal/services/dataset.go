package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/data/repos"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/projects"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
	"github.com/yungbote/curator-backend/internal/platform/objectstore"
)

type RecordDatasetInput struct {
	ProcessingJobID   uuid.UUID                `json:"processingJobId"`
	CanonicalSchemaID uuid.UUID                `json:"canonicalSchemaId"`
	Name              string                   `json:"name"`
	Version           *int                     `json:"version"`
	Format            projects.DatasetFormat   `json:"format"`
	FilePath          string                   `json:"filePath"`
	RecordCount       int64                    `json:"recordCount"`
	SizeBytes         int64                    `json:"sizeBytes"`
	Lineage           json.RawMessage          `json:"lineage"`
	RetentionPolicy   projects.RetentionPolicy `json:"retentionPolicy"`
}

// DatasetDownload is an open dataset object. The caller closes Body.
type DatasetDownload struct {
	FileName string
	Body     io.ReadCloser
}

type DatasetService interface {
	List(ctx context.Context, orgID, projectID uuid.UUID) ([]*types.Dataset, error)
	Get(ctx context.Context, orgID, projectID, id uuid.UUID) (*types.Dataset, error)
	Delete(ctx context.Context, orgID, projectID, id uuid.UUID) error
	Download(ctx context.Context, orgID, projectID, id uuid.UUID, format string) (*DatasetDownload, error)
	Record(ctx context.Context, orgID, projectID uuid.UUID, in RecordDatasetInput) (*types.Dataset, error)
}

type datasetService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	jobRepo     repos.ProcessingJobRepo
	schemaRepo  repos.CanonicalSchemaRepo
	datasetRepo repos.DatasetRepo
	bucket      objectstore.BucketService
}

func NewDatasetService(
	db *gorm.DB,
	log *logger.Logger,
	projectRepo repos.ProjectRepo,
	jobRepo repos.ProcessingJobRepo,
	schemaRepo repos.CanonicalSchemaRepo,
	datasetRepo repos.DatasetRepo,
	bucket objectstore.BucketService,
) DatasetService {
	return &datasetService{
		db:          db,
		log:         log.With("service", "DatasetService"),
		projectRepo: projectRepo,
		jobRepo:     jobRepo,
		schemaRepo:  schemaRepo,
		datasetRepo: datasetRepo,
		bucket:      bucket,
	}
}

func (s *datasetService) List(ctx context.Context, orgID, projectID uuid.UUID) ([]*types.Dataset, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
		return nil, err
	}
	return s.datasetRepo.ListByProject(dbc, projectID)
}

func (s *datasetService) Get(ctx context.Context, orgID, projectID, id uuid.UUID) (*types.Dataset, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
		return nil, err
	}
	return s.datasetRepo.GetByID(dbc, projectID, id)
}

func (s *datasetService) Delete(ctx context.Context, orgID, projectID, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
		return err
	}
	return s.datasetRepo.SoftDelete(dbc, projectID, id)
}

// DownloadExtension resolves the requested download format to a file
// extension. Empty means the dataset's own format.
func DownloadExtension(dataset *types.Dataset, format string) (string, error) {
	switch format = strings.TrimSpace(format); format {
	case "":
		return dataset.Format.Extension(), nil
	case "jsonl", "json":
		return format, nil
	}
	if f := projects.DatasetFormat(format); f.Valid() {
		return f.Extension(), nil
	}
	return "", apierr.Validation("Invalid format: %s", format)
}

func (s *datasetService) Download(ctx context.Context, orgID, projectID, id uuid.UUID, format string) (*DatasetDownload, error) {
	dataset, err := s.Get(ctx, orgID, projectID, id)
	if err != nil {
		return nil, err
	}
	ext, err := DownloadExtension(dataset, format)
	if err != nil {
		return nil, err
	}

	body, err := s.bucket.DownloadFile(ctx, objectstore.BucketCategoryDataset, dataset.FilePath)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, apierr.NotFound("Dataset file")
		}
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	return &DatasetDownload{
		FileName: fmt.Sprintf("%s-v%d.%s", dataset.Name, dataset.Version, ext),
		Body:     body,
	}, nil
}

func (s *datasetService) Record(ctx context.Context, orgID, projectID uuid.UUID, in RecordDatasetInput) (*types.Dataset, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, apierr.Validation("Name is required")
	case strings.TrimSpace(in.FilePath) == "":
		return nil, apierr.Validation("filePath is required")
	case !in.Format.Valid():
		return nil, apierr.Validation("Invalid format: %s", in.Format)
	case in.Version != nil && *in.Version < 1:
		return nil, apierr.Validation("version must be at least 1")
	case in.RecordCount < 0 || in.SizeBytes < 0:
		return nil, apierr.Validation("recordCount and sizeBytes cannot be negative")
	}
	retention := in.RetentionPolicy
	if retention == "" {
		retention = projects.RetentionUntilDeleted
	}
	if !retention.Valid() {
		return nil, apierr.Validation("Invalid retention policy: %s", retention)
	}

	var dataset *types.Dataset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.projectRepo.GetByID(dbc, orgID, projectID); err != nil {
			return err
		}
		if _, err := s.jobRepo.GetByID(dbc, projectID, in.ProcessingJobID); err != nil {
			return err
		}
		if _, err := s.schemaRepo.GetByID(dbc, in.CanonicalSchemaID); err != nil {
			return err
		}

		version := 0
		if in.Version != nil {
			version = *in.Version
		} else {
			latest, err := s.datasetRepo.MaxVersion(dbc, projectID, name)
			if err != nil {
				return fmt.Errorf("load dataset version: %w", err)
			}
			version = latest + 1
		}

		dataset = &types.Dataset{
			ProjectID:         projectID,
			ProcessingJobID:   in.ProcessingJobID,
			CanonicalSchemaID: in.CanonicalSchemaID,
			Name:              name,
			Version:           version,
			Format:            in.Format,
			FilePath:          strings.TrimSpace(in.FilePath),
			RecordCount:       in.RecordCount,
			SizeBytes:         in.SizeBytes,
			RetentionPolicy:   retention,
		}
		if lineage, ok := jsonBlob(in.Lineage); ok {
			dataset.Lineage = lineage
		}
		return s.datasetRepo.Create(dbc, dataset)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Dataset recorded", "dataset_id", dataset.ID, "project_id", projectID, "version", dataset.Version)
	return dataset, nil
}
