package models

import (
	"time"

	"gorm.io/datatypes"
)

// SourceSnapshot is a best-effort audit record of a raw adapter fetch,
// written once per source per ingestion pass.
type SourceSnapshot struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	Source    string         `gorm:"type:varchar(50);not null;index"`
	ItemCount int            `gorm:"not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	FetchedAt time.Time      `gorm:"type:timestamptz;not null;index"`
}

func (SourceSnapshot) TableName() string {
	return "source_snapshots"
}
