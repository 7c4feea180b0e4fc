package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/yungbote/curator-backend/internal/data/repos"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/catalog"
	"github.com/yungbote/curator-backend/internal/domain/core"
	"github.com/yungbote/curator-backend/internal/domain/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

type CatalogSeed struct {
	Organisations []OrganisationSeed `yaml:"organisations"`
	Schemas       []SchemaSeed       `yaml:"canonicalSchemas"`
	Pipelines     []PipelineSeed     `yaml:"processingPipelines"`
	Connectors    []ConnectorSeed    `yaml:"apiConnectors"`
}

type OrganisationSeed struct {
	Name  string     `yaml:"name"`
	Users []UserSeed `yaml:"users"`
}

type UserSeed struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type SchemaSeed struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	IsDefault   bool   `yaml:"isDefault"`
	Definition  any    `yaml:"schemaDefinition"`
}

type PipelineSeed struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	IsDefault   bool   `yaml:"isDefault"`
	Stages      any    `yaml:"stageDefinitions"`
}

type ConnectorSeed struct {
	Name       string `yaml:"name"`
	Provider   string `yaml:"provider"`
	AuthMethod string `yaml:"authMethod"`
	BaseURL    string `yaml:"baseUrl"`
	IsActive   *bool  `yaml:"isActive"`
	Template   any    `yaml:"configTemplate"`
}

// SeedReport counts what a seed run did, per outcome.
type SeedReport struct {
	Created   int
	Updated   int
	Unchanged int
}

func ParseCatalogSeed(r io.Reader) (*CatalogSeed, error) {
	var seed CatalogSeed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

type CatalogService interface {
	ListSchemas(ctx context.Context, category *types.SchemaCategory) ([]*types.CanonicalSchema, error)
	GetSchema(ctx context.Context, id uuid.UUID) (*types.CanonicalSchema, error)
	ListPipelines(ctx context.Context) ([]*types.ProcessingPipeline, error)
	GetPipeline(ctx context.Context, id uuid.UUID) (*types.ProcessingPipeline, error)
	ListConnectors(ctx context.Context) ([]*types.ApiConnector, error)
	GetConnector(ctx context.Context, id uuid.UUID) (*types.ApiConnector, error)
	Seed(ctx context.Context, seed *CatalogSeed) (*SeedReport, error)
}

type catalogService struct {
	log           *logger.Logger
	orgRepo       repos.OrganisationRepo
	userRepo      repos.UserRepo
	schemaRepo    repos.CanonicalSchemaRepo
	pipelineRepo  repos.ProcessingPipelineRepo
	connectorRepo repos.ApiConnectorRepo
}

func NewCatalogService(
	log *logger.Logger,
	orgRepo repos.OrganisationRepo,
	userRepo repos.UserRepo,
	schemaRepo repos.CanonicalSchemaRepo,
	pipelineRepo repos.ProcessingPipelineRepo,
	connectorRepo repos.ApiConnectorRepo,
) CatalogService {
	return &catalogService{
		log:           log.With("service", "CatalogService"),
		orgRepo:       orgRepo,
		userRepo:      userRepo,
		schemaRepo:    schemaRepo,
		pipelineRepo:  pipelineRepo,
		connectorRepo: connectorRepo,
	}
}

func (s *catalogService) ListSchemas(ctx context.Context, category *types.SchemaCategory) ([]*types.CanonicalSchema, error) {
	if category != nil && !category.Valid() {
		return nil, apierr.Validation("Invalid category: %s", *category)
	}
	return s.schemaRepo.List(dbctx.Context{Ctx: ctx}, category)
}

func (s *catalogService) GetSchema(ctx context.Context, id uuid.UUID) (*types.CanonicalSchema, error) {
	return s.schemaRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
}

func (s *catalogService) ListPipelines(ctx context.Context) ([]*types.ProcessingPipeline, error) {
	return s.pipelineRepo.List(dbctx.Context{Ctx: ctx})
}

func (s *catalogService) GetPipeline(ctx context.Context, id uuid.UUID) (*types.ProcessingPipeline, error) {
	return s.pipelineRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
}

func (s *catalogService) ListConnectors(ctx context.Context) ([]*types.ApiConnector, error) {
	return s.connectorRepo.List(dbctx.Context{Ctx: ctx})
}

func (s *catalogService) GetConnector(ctx context.Context, id uuid.UUID) (*types.ApiConnector, error) {
	return s.connectorRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
}

// Seed makes the database contain everything in seed. Rows are matched on
// their active unique keys; blobs that differ are replaced with a version bump
// and other fields of existing rows are left alone.
func (s *catalogService) Seed(ctx context.Context, seed *CatalogSeed) (*SeedReport, error) {
	dbc := dbctx.Context{Ctx: ctx}
	report := &SeedReport{}

	for _, o := range seed.Organisations {
		if err := s.seedOrganisation(dbc, o, report); err != nil {
			return report, fmt.Errorf("organisation %q: %w", o.Name, err)
		}
	}
	for _, sc := range seed.Schemas {
		if err := s.seedSchema(dbc, sc, report); err != nil {
			return report, fmt.Errorf("canonical schema %s@%s: %w", sc.Name, sc.Version, err)
		}
	}
	for _, p := range seed.Pipelines {
		if err := s.seedPipeline(dbc, p, report); err != nil {
			return report, fmt.Errorf("processing pipeline %s@%s: %w", p.Name, p.Version, err)
		}
	}
	for _, c := range seed.Connectors {
		if err := s.seedConnector(dbc, c, report); err != nil {
			return report, fmt.Errorf("api connector %s: %w", c.Name, err)
		}
	}
	s.log.Info("Catalog seeded", "created", report.Created, "updated", report.Updated, "unchanged", report.Unchanged)
	return report, nil
}

func (s *catalogService) seedOrganisation(dbc dbctx.Context, seed OrganisationSeed, report *SeedReport) error {
	name := strings.TrimSpace(seed.Name)
	if name == "" {
		return apierr.Validation("Organisation name is required")
	}
	org, err := s.orgRepo.GetByName(dbc, name)
	switch {
	case apierr.Is(err, apierr.KindNotFound):
		org = &types.Organisation{Name: name}
		if err := s.orgRepo.Create(dbc, org); err != nil {
			return err
		}
		report.Created++
	case err != nil:
		return err
	default:
		report.Unchanged++
	}

	for _, u := range seed.Users {
		email := normalizeEmail(u.Email)
		if email == "" || len(u.Password) < minPasswordLength {
			return apierr.Validation("User %q needs an email and a password of at least %d characters", u.Email, minPasswordLength)
		}
		if _, err := s.userRepo.GetByEmail(dbc, email); err == nil {
			report.Unchanged++
			continue
		} else if !apierr.Is(err, apierr.KindNotFound) {
			return err
		}
		role := tenancy.Role(u.Role)
		if role == "" {
			role = tenancy.RoleAdmin
		}
		if !role.Valid() {
			return apierr.Validation("Invalid role: %s", u.Role)
		}
		hash, err := HashPassword(u.Password)
		if err != nil {
			return err
		}
		user := &types.User{OrganisationID: org.ID, Email: email, PasswordHash: hash, Role: role}
		if err := s.userRepo.Create(dbc, user); err != nil {
			return err
		}
		report.Created++
	}
	return nil
}

func (s *catalogService) seedSchema(dbc dbctx.Context, seed SchemaSeed, report *SeedReport) error {
	category := catalog.SchemaCategory(seed.Category)
	if seed.Name == "" || seed.Version == "" || !category.Valid() {
		return apierr.Validation("Schema needs a name, a version and a valid category")
	}
	blob, err := seedBlob(seed.Definition)
	if err != nil {
		return err
	}

	existing, err := s.schemaRepo.GetByKey(dbc, seed.Name, seed.Version)
	if apierr.Is(err, apierr.KindNotFound) {
		row := &types.CanonicalSchema{
			Name:        seed.Name,
			Version:     seed.Version,
			Category:    category,
			Description: seed.Description,
			IsDefault:   seed.IsDefault,
		}
		row.SchemaDefinition, row.SchemaDefinitionVersion = initialBlob(blob)
		if err := s.schemaRepo.Create(dbc, row); err != nil {
			return err
		}
		report.Created++
		return nil
	}
	if err != nil {
		return err
	}
	return s.replaceIfChanged(existing.Definition(), blob, report, func(expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error) {
		return s.schemaRepo.ReplaceDefinition(dbc, existing.ID, expected, next)
	})
}

func (s *catalogService) seedPipeline(dbc dbctx.Context, seed PipelineSeed, report *SeedReport) error {
	if seed.Name == "" || seed.Version == "" {
		return apierr.Validation("Pipeline needs a name and a version")
	}
	blob, err := seedBlob(seed.Stages)
	if err != nil {
		return err
	}

	existing, err := s.pipelineRepo.GetByKey(dbc, seed.Name, seed.Version)
	if apierr.Is(err, apierr.KindNotFound) {
		row := &types.ProcessingPipeline{
			Name:        seed.Name,
			Version:     seed.Version,
			Description: seed.Description,
			IsDefault:   seed.IsDefault,
		}
		row.StageDefinitions, row.StageDefinitionsVersion = initialBlob(blob)
		if err := s.pipelineRepo.Create(dbc, row); err != nil {
			return err
		}
		report.Created++
		return nil
	}
	if err != nil {
		return err
	}
	return s.replaceIfChanged(existing.Stages(), blob, report, func(expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error) {
		return s.pipelineRepo.ReplaceStages(dbc, existing.ID, expected, next)
	})
}

func (s *catalogService) seedConnector(dbc dbctx.Context, seed ConnectorSeed, report *SeedReport) error {
	method := catalog.AuthMethod(seed.AuthMethod)
	if seed.Name == "" || seed.Provider == "" || !method.Valid() {
		return apierr.Validation("Connector needs a name, a provider and a valid auth method")
	}
	blob, err := seedBlob(seed.Template)
	if err != nil {
		return err
	}

	existing, err := s.connectorRepo.GetByName(dbc, seed.Name)
	if apierr.Is(err, apierr.KindNotFound) {
		active := true
		if seed.IsActive != nil {
			active = *seed.IsActive
		}
		row := &types.ApiConnector{
			Name:       seed.Name,
			Provider:   seed.Provider,
			AuthMethod: method,
			BaseURL:    seed.BaseURL,
			IsActive:   active,
		}
		row.ConfigTemplate, row.ConfigTemplateVersion = initialBlob(blob)
		if err := s.connectorRepo.Create(dbc, row); err != nil {
			return err
		}
		report.Created++
		return nil
	}
	if err != nil {
		return err
	}
	return s.replaceIfChanged(existing.Template(), blob, report, func(expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error) {
		return s.connectorRepo.ReplaceTemplate(dbc, existing.ID, expected, next)
	})
}

func (s *catalogService) replaceIfChanged(
	current core.VersionedBlob[datatypes.JSON],
	blob datatypes.JSON,
	report *SeedReport,
	replace func(expected int, next core.VersionedBlob[datatypes.JSON]) (bool, error),
) error {
	if blob == nil || sameJSON(current.Value, blob) {
		report.Unchanged++
		return nil
	}
	ok, err := replace(current.Version, current.Replace(blob))
	if err != nil {
		return err
	}
	if !ok {
		return apierr.Conflict("Row was modified concurrently")
	}
	report.Updated++
	return nil
}

// seedBlob converts a YAML value into JSON. A missing value is nil.
func seedBlob(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apierr.New(apierr.KindValidation, "Seed value is not representable as JSON", err)
	}
	return datatypes.JSON(raw), nil
}

func initialBlob(blob datatypes.JSON) (datatypes.JSON, *int) {
	if blob == nil {
		return nil, nil
	}
	next := core.VersionedBlob[datatypes.JSON]{}.Replace(blob)
	return next.Value, &next.Version
}
