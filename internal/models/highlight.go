package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArticleHighlight marks a [Start, End) span of an article body with a note.
type ArticleHighlight struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID     uint      `gorm:"not null;index" json:"article_id"`
	HighlighterID uint      `gorm:"not null;index" json:"highlighter_id"`
	Start         int       `gorm:"column:highlight_start;not null" json:"highlight_start"`
	End           int       `gorm:"column:highlight_end;not null" json:"highlight_end"`
	Text          string    `gorm:"column:highlight_text;type:text;not null" json:"highlight_text"`
	Comment       string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Article     Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
	Highlighter User    `gorm:"foreignKey:HighlighterID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a random id when none was set.
func (h *ArticleHighlight) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// GetUserID returns the highlighter.
func (h *ArticleHighlight) GetUserID() uint { return h.HighlighterID }
