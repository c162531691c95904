package product

import "time"

// Product is an inventory item.
type Product struct {
	ID         int64     `json:"id"`
	Article    string    `json:"article"`
	Name       string    `json:"name"`
	PriceMinor int64     `json:"priceMinor"`
	Quantity   int64     `json:"quantity"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Article    *string
	Name       *string
	PriceMinor *int64
	Quantity   *int64
}

// Apply merges the non-nil fields of the patch onto p.
func (pt Patch) Apply(p *Product) {
	if pt.Article != nil {
		p.Article = *pt.Article
	}
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.PriceMinor != nil {
		p.PriceMinor = *pt.PriceMinor
	}
	if pt.Quantity != nil {
		p.Quantity = *pt.Quantity
	}
}

// Record is the storage row for a product.
type Record struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Article    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_article_unique"`
	Name       string    `gorm:"type:varchar(255);not null"`
	PriceMinor int64     `gorm:"type:integer;not null"`
	Quantity   int64     `gorm:"type:integer;not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name for GORM.
func (Record) TableName() string {
	return "products"
}

func toRecord(p *Product) Record {
	return Record{
		ID:         p.ID,
		Article:    p.Article,
		Name:       p.Name,
		PriceMinor: p.PriceMinor,
		Quantity:   p.Quantity,
		CreatedAt:  p.CreatedAt,
	}
}

func (r Record) toDomain() Product {
	return Product{
		ID:         r.ID,
		Article:    r.Article,
		Name:       r.Name,
		PriceMinor: r.PriceMinor,
		Quantity:   r.Quantity,
		CreatedAt:  r.CreatedAt,
	}
}
