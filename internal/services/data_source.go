package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/curator-backend/internal/data/repos"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/ingestion"
	"github.com/yungbote/curator-backend/internal/ingestion/detect"
	"github.com/yungbote/curator-backend/internal/observability"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/crypto"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
	"github.com/yungbote/curator-backend/internal/platform/objectstore"
)

const DefaultMaxUploadBytes int64 = 100 << 20

// UploadFile is one file from a multipart request. Content is read twice, once
// for column detection and once for storage.
type UploadFile struct {
	FileName string
	MimeType string
	Size     int64
	Content  io.ReadSeeker
}

type CreateDataSourceInput struct {
	Name       string
	SourceType types.SourceType
	File       *UploadFile
}

type UpdateDataSourceInput struct {
	Name   *string                 `json:"name"`
	Status *types.DataSourceStatus `json:"status"`
}

type encryptedEnvelope struct {
	Encrypted string `json:"encrypted"`
}

type DataSourceService interface {
	Create(ctx context.Context, orgID, userID uuid.UUID, in CreateDataSourceInput) (*types.DataSource, error)
	List(ctx context.Context, orgID uuid.UUID, filter types.DataSourceFilter) ([]*types.DataSource, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*types.DataSource, error)
	Update(ctx context.Context, orgID, id uuid.UUID, in UpdateDataSourceInput) (*types.DataSource, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	CreateApiConnection(ctx context.Context, orgID, id, connectorID uuid.UUID, config json.RawMessage) (*types.DataSource, error)
}

type dataSourceService struct {
	log            *logger.Logger
	dsRepo         repos.DataSourceRepo
	connectorRepo  repos.ApiConnectorRepo
	bucket         objectstore.BucketService
	cipher         *crypto.Cipher
	metrics        *observability.Metrics
	maxUploadBytes int64
}

// NewDataSourceService wires the service. cipher may be nil, in which case
// connection configs are stored in the clear.
func NewDataSourceService(
	log *logger.Logger,
	dsRepo repos.DataSourceRepo,
	connectorRepo repos.ApiConnectorRepo,
	bucket objectstore.BucketService,
	cipher *crypto.Cipher,
	metrics *observability.Metrics,
	maxUploadBytes int64,
) DataSourceService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &dataSourceService{
		log:            log.With("service", "DataSourceService"),
		dsRepo:         dsRepo,
		connectorRepo:  connectorRepo,
		bucket:         bucket,
		cipher:         cipher,
		metrics:        metrics,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *dataSourceService) Create(ctx context.Context, orgID, userID uuid.UUID, in CreateDataSourceInput) (*types.DataSource, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.Validation("Name is required")
	}
	if in.SourceType == "" {
		return nil, apierr.Validation("Source type is required")
	}
	if !in.SourceType.Valid() {
		return nil, apierr.Validation("Invalid source type: %s", in.SourceType)
	}

	ds := &types.DataSource{
		OrganisationID:  orgID,
		Name:            name,
		SourceType:      in.SourceType,
		Status:          ingestion.StatusUploaded,
		CreatedByUserID: userID,
	}
	dbc := dbctx.Context{Ctx: ctx}

	switch in.SourceType {
	case ingestion.SourceTypeFileUpload:
		if in.File == nil {
			return nil, apierr.Validation("File is required for file uploads")
		}
		if err := s.storeUpload(dbc, ds, in.File); err != nil {
			return nil, err
		}
	case ingestion.SourceTypeAPIConnection:
		if in.File != nil {
			return nil, apierr.Validation("API connection data sources do not accept a file")
		}
	}

	if err := s.dsRepo.Create(dbc, ds); err != nil {
		if ds.FilePath != "" {
			if delErr := s.bucket.DeleteFile(dbc, objectstore.BucketCategoryUpload, ds.FilePath); delErr != nil {
				s.log.Warn("Failed to remove orphaned upload", "key", ds.FilePath, "error", delErr)
			}
		}
		s.metrics.IncUpload("error")
		return nil, err
	}
	if ds.FilePath != "" {
		s.metrics.IncUpload("ok")
	}
	s.log.Info("Data source created", "data_source_id", ds.ID, "organisation_id", orgID, "source_type", ds.SourceType)
	return ds, nil
}

// storeUpload validates the file, records its detected columns on ds and
// writes it to the upload bucket.
func (s *dataSourceService) storeUpload(dbc dbctx.Context, ds *types.DataSource, file *UploadFile) error {
	ext := strings.ToLower(filepath.Ext(file.FileName))
	if !detect.Supported(file.FileName) {
		s.metrics.IncUpload("rejected")
		return apierr.Validation("Unsupported file type. Allowed types: csv, json, xlsx")
	}
	if file.Size > s.maxUploadBytes {
		s.metrics.IncUpload("rejected")
		return apierr.Validation("File exceeds the maximum size of %d MB", s.maxUploadBytes>>20)
	}

	columns, err := detect.Columns(file.FileName, file.Content)
	if err != nil {
		s.metrics.IncUpload("rejected")
		if errors.Is(err, detect.ErrUnreadable) {
			return apierr.New(apierr.KindValidation, "Could not read columns from file", err)
		}
		return fmt.Errorf("detect columns: %w", err)
	}
	rawColumns, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}
	if _, err := file.Content.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}

	key := fmt.Sprintf("organisations/%s/data-sources/%s%s", ds.OrganisationID, uuid.NewString(), ext)
	if err := s.bucket.UploadFile(dbc, objectstore.BucketCategoryUpload, key, file.Content); err != nil {
		s.metrics.IncUpload("error")
		return fmt.Errorf("store upload: %w", err)
	}

	mimeType := strings.TrimSpace(file.MimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = detect.Extensions[ext]
	}
	ds.FilePath = key
	ds.OriginalFileName = filepath.Base(file.FileName)
	ds.MimeType = mimeType
	ds.SizeBytes = file.Size
	ds.DetectedColumns = datatypes.JSON(rawColumns)
	return nil
}

func (s *dataSourceService) List(ctx context.Context, orgID uuid.UUID, filter types.DataSourceFilter) ([]*types.DataSource, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apierr.Validation("Invalid status: %s", *filter.Status)
	}
	if filter.SourceType != nil && !filter.SourceType.Valid() {
		return nil, apierr.Validation("Invalid source type: %s", *filter.SourceType)
	}
	out, err := s.dsRepo.List(dbctx.Context{Ctx: ctx}, orgID, filter)
	if err != nil {
		return nil, err
	}
	for _, ds := range out {
		s.revealConnection(ds)
	}
	return out, nil
}

func (s *dataSourceService) Get(ctx context.Context, orgID, id uuid.UUID) (*types.DataSource, error) {
	ds, err := s.dsRepo.GetByID(dbctx.Context{Ctx: ctx}, orgID, id)
	if err != nil {
		return nil, err
	}
	s.revealConnection(ds)
	return ds, nil
}

func (s *dataSourceService) Update(ctx context.Context, orgID, id uuid.UUID, in UpdateDataSourceInput) (*types.DataSource, error) {
	dbc := dbctx.Context{Ctx: ctx}
	patch := types.DataSourcePatch{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apierr.Validation("Name cannot be empty")
		}
		patch.Name = &name
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apierr.Validation("Invalid status: %s", *in.Status)
		}
		current, err := s.dsRepo.GetByID(dbc, orgID, id)
		if err != nil {
			return nil, err
		}
		if !ingestion.CanTransition(current.Status, *in.Status) {
			return nil, apierr.Conflict("Cannot change data source status from %s to %s", current.Status, *in.Status)
		}
		patch.Status = in.Status
	}
	if patch.Name == nil && patch.Status == nil {
		return s.Get(ctx, orgID, id)
	}
	ds, err := s.dsRepo.Update(dbc, orgID, id, patch)
	if err != nil {
		return nil, err
	}
	s.revealConnection(ds)
	return ds, nil
}

func (s *dataSourceService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.dsRepo.SoftDelete(dbctx.Context{Ctx: ctx}, orgID, id)
}

func (s *dataSourceService) CreateApiConnection(ctx context.Context, orgID, id, connectorID uuid.UUID, config json.RawMessage) (*types.DataSource, error) {
	blob, ok := jsonBlob(config)
	if !ok {
		return nil, apierr.Validation("connectionConfig must be a JSON value")
	}
	dbc := dbctx.Context{Ctx: ctx}

	ds, err := s.dsRepo.GetByID(dbc, orgID, id)
	if err != nil {
		return nil, err
	}
	connector, err := s.connectorRepo.GetByID(dbc, connectorID)
	if err != nil {
		return nil, err
	}
	if !connector.IsActive {
		return nil, apierr.Validation("API connector is not active")
	}

	stored, err := s.sealConnection(blob)
	if err != nil {
		return nil, err
	}
	current := ds.Connection()
	ok, err = s.dsRepo.ReplaceConnection(dbc, orgID, id, connectorID, current.Version, current.Replace(stored))
	if err != nil {
		return nil, fmt.Errorf("replace connection config: %w", err)
	}
	if !ok {
		return nil, apierr.Conflict("Data source was modified concurrently")
	}
	s.log.Info("Data source connected", "data_source_id", id, "connector", connector.Name)
	return s.Get(ctx, orgID, id)
}

func (s *dataSourceService) sealConnection(blob datatypes.JSON) (datatypes.JSON, error) {
	if s.cipher == nil {
		return blob, nil
	}
	sealed, err := s.cipher.Encrypt(blob)
	if err != nil {
		return nil, fmt.Errorf("encrypt connection config: %w", err)
	}
	raw, err := json.Marshal(encryptedEnvelope{Encrypted: sealed})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// revealConnection replaces a sealed connection config with its plaintext.
// Configs that cannot be opened are withheld rather than leaked.
func (s *dataSourceService) revealConnection(ds *types.DataSource) {
	if ds == nil || len(ds.ConnectionConfig) == 0 {
		return
	}
	var env encryptedEnvelope
	if err := json.Unmarshal(ds.ConnectionConfig, &env); err != nil || env.Encrypted == "" {
		return
	}
	if s.cipher == nil {
		s.log.Warn("Encrypted connection config without a key", "data_source_id", ds.ID)
		ds.ConnectionConfig = nil
		return
	}
	plain, err := s.cipher.Decrypt(env.Encrypted)
	if err != nil {
		s.log.Warn("Failed to decrypt connection config", "data_source_id", ds.ID, "error", err)
		ds.ConnectionConfig = nil
		return
	}
	ds.ConnectionConfig = datatypes.JSON(plain)
}
