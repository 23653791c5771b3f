package product

import "github.com/shopspring/decimal"

type Product struct {
	ID       string    `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	ImageURL string    `db:"image_url" json:"image_url,omitempty"`
	Variants []Variant `db:"-" json:"variants"`
}

type Variant struct {
	ID        int64           `db:"id" json:"-"`
	ProductID string          `db:"product_id" json:"-"`
	Size      string          `db:"size" json:"size"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Stock     int64           `db:"stock" json:"stock"`
}

// VariantForSize returns the variant matching size, or the first variant when
// size is empty. Returns nil if nothing matches.
func (p *Product) VariantForSize(size string) *Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	if size == "" {
		return &p.Variants[0]
	}
	for i := range p.Variants {
		if p.Variants[i].Size == size {
			return &p.Variants[i]
		}
	}
	return nil
}
