package tenancy

import "github.com/yungbote/curator-backend/internal/domain/core"

// Organisation is the tenant root. Names are unique among active organisations.
type Organisation struct {
	core.Record
	Name string `gorm:"not null;column:name" json:"name"`
}

func (Organisation) TableName() string { return "organisations" }
