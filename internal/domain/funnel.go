package domain

import "time"

// FunnelStatus represents the overall state of a funnel.
type FunnelStatus string

const (
	FunnelStatusDraft  FunnelStatus = "draft"
	FunnelStatusActive FunnelStatus = "active"
)

// Funnel represents one marketing funnel a creator is building: the niche and
// the transformation their offer promises, plus the generated products.
type Funnel struct {
	ID             string       `gorm:"type:text;primaryKey" json:"id"`
	OwnerID        string       `gorm:"type:text;not null;index" json:"owner_id"`
	Name           string       `gorm:"type:text;not null" json:"name"`
	Niche          string       `gorm:"type:text" json:"niche"`
	Audience       string       `gorm:"type:text" json:"audience"`
	Transformation string       `gorm:"type:text" json:"transformation"`
	Status         FunnelStatus `gorm:"type:text;default:draft" json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	Products []Product `gorm:"foreignKey:FunnelID" json:"products,omitempty"`
}

// TableName returns the database table name for Funnel.
func (Funnel) TableName() string {
	return "funnels"
}

// ProductKind identifies a product's position in the funnel.
type ProductKind string

const (
	ProductKindLeadMagnet ProductKind = "lead_magnet"
	ProductKindFrontend   ProductKind = "frontend"
	ProductKindUpsell     ProductKind = "upsell"
)

// ProductStatus represents the generation state of a product.
type ProductStatus string

const (
	ProductStatusDraft      ProductStatus = "draft"
	ProductStatusGenerating ProductStatus = "generating"
	ProductStatusReady      ProductStatus = "ready"
	ProductStatusFailed     ProductStatus = "failed"
)

// Product is the durable domain entity generation jobs write back onto.
// The job record is diagnostic; the product is what the rest of the
// application reads going forward.
type Product struct {
	ID          string        `gorm:"type:text;primaryKey" json:"id"`
	FunnelID    string        `gorm:"type:text;not null;index" json:"funnel_id"`
	OwnerID     string        `gorm:"type:text;not null;index" json:"owner_id"`
	Kind        ProductKind   `gorm:"type:text;not null" json:"kind"`
	Title       string        `gorm:"type:text" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProductStatus `gorm:"type:text;default:draft" json:"status"`

	// GeneratedContent holds the aggregated worker output (chapters,
	// supplementary documents, cover concept), keyed by content kind.
	GeneratedContent JSONMap `gorm:"type:text" json:"generated_content,omitempty"`

	CoverURL string `gorm:"type:text" json:"cover_url,omitempty"`
	PDFURL   string `gorm:"column:pdf_url;type:text" json:"pdf_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string {
	return "products"
}
