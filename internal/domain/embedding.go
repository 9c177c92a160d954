package domain

import "time"

// IdeaEmbedding stores the embedding vector for one generated funnel idea.
// Vectors are scanned linearly at query time; there is no external vector
// store, the relational database is the single persistence dependency.
type IdeaEmbedding struct {
	ID       string       `gorm:"type:text;primaryKey" json:"id"`
	OwnerID  string       `gorm:"type:text;not null;index" json:"owner_id"`
	FunnelID string       `gorm:"type:text;index" json:"funnel_id,omitempty"`
	Idea     string       `gorm:"type:text;not null" json:"idea"`
	Vector   Float32Array `gorm:"type:text" json:"-"`
	Model    string       `gorm:"type:text" json:"model"`
	Dims     int          `gorm:"default:0" json:"dims"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for IdeaEmbedding.
func (IdeaEmbedding) TableName() string {
	return "idea_embeddings"
}

// IdeaSearchResult represents a similarity search hit with its score.
type IdeaSearchResult struct {
	IdeaEmbedding
	Score float32 `json:"score"`
}
