package internal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application is one DJ candidacy. VoteCount is derived from the votes
// table at read time and is never stored.
type Application struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	StageName   string  `gorm:"type:varchar(120);not null" json:"stageName"`
	FirstName   *string `gorm:"type:varchar(120)" json:"firstName"`
	LastName    *string `gorm:"type:varchar(120)" json:"lastName"`
	Instagram   *string `gorm:"type:varchar(120)" json:"instagram"`
	Email       *string `gorm:"type:varchar(255)" json:"email"`
	Description *string `gorm:"type:text" json:"description"`
	SetURL      *string `gorm:"type:text" json:"setUrl"`
	MediaURL    *string `gorm:"type:text" json:"mediaUrl"`

	Published   bool       `gorm:"not null;default:false;index" json:"published"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`

	VoteCount int64 `gorm:"-" json:"voteCount"`
}

// Vote is one endorsement of one published application. Rows are
// insert-only; they disappear only when their application is deleted.
type Vote struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID string    `gorm:"type:uuid;not null;index" json:"applicationId"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
}

// Visit is one recorded page view, used only for aggregate stats.
type Visit struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Path      string    `gorm:"type:varchar(255);not null" json:"path"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

func (v *Visit) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
