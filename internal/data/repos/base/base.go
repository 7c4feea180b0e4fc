package base

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/curator-backend/internal/domain/core"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
)

// Conn returns the transaction carried by dbc, or db when there is none, bound
// to dbc's context.
func Conn(dbc dbctx.Context, db *gorm.DB) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = db
	}
	return transaction.WithContext(dbc.Context())
}

// ByOrg narrows a query to one organisation's rows.
func ByOrg(orgID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("organisation_id = ?", orgID)
	}
}

// ByID narrows a query to one primary key.
func ByID(id uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("id = ?", id)
	}
}

// First loads the single row matched by q. A miss is NotFound for entity.
func First[T any](q *gorm.DB, entity string) (*T, error) {
	var out T
	if err := q.Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(entity)
		}
		return nil, err
	}
	return &out, nil
}

// Find loads all rows matched by q, never returning a nil slice.
func Find[T any](q *gorm.DB) ([]*T, error) {
	out := []*T{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies columns to the rows matched by q and refreshes updated_at.
// Zero affected rows means the row is missing, deleted or out of scope.
func Update[T any](q *gorm.DB, entity string, columns map[string]any) error {
	if columns == nil {
		columns = map[string]any{}
	}
	columns["updated_at"] = time.Now().UTC()
	res := q.Model(new(T)).Updates(columns)
	if res.Error != nil {
		return Translate(res.Error, entity)
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound(entity)
	}
	return nil
}

// SoftDelete stamps deleted_at on the rows matched by q. Zero affected rows
// means the row is missing or already deleted.
func SoftDelete[T any](q *gorm.DB, entity string) error {
	res := q.Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound(entity)
	}
	return nil
}

// ReplaceVersioned writes a blob and its version in one compare-and-set on the
// version column. It reports false when another writer got there first or the
// row no longer matches q.
func ReplaceVersioned[T any, V any](q *gorm.DB, column, versionColumn string, expected int, next core.VersionedBlob[V]) (bool, error) {
	return ReplaceVersionedWith[T](q, column, versionColumn, expected, next, nil)
}

// ReplaceVersionedWith is ReplaceVersioned with extra columns written in the
// same statement.
func ReplaceVersionedWith[T any, V any](q *gorm.DB, column, versionColumn string, expected int, next core.VersionedBlob[V], extra map[string]any) (bool, error) {
	columns := map[string]any{
		column:        next.Value,
		versionColumn: next.Version,
		"updated_at":  time.Now().UTC(),
	}
	for k, v := range extra {
		columns[k] = v
	}
	res := q.Model(new(T)).
		Where("COALESCE("+versionColumn+", 0) = ?", expected).
		Updates(columns)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Create inserts rows, mapping unique violations onto Conflict.
func Create[T any](q *gorm.DB, entity string, rows ...*T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := q.Create(&rows).Error; err != nil {
		return Translate(err, entity)
	}
	return nil
}

// Translate maps driver-level unique violations onto Conflict and leaves other
// errors untouched.
func Translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return apierr.New(apierr.KindConflict, entity+" already exists", err)
	}
	return err
}

func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
