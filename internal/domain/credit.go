package domain

// Credit categories retained by the pipeline. All other principal categories
// (director, writer, composer, ...) are dropped at parse time.
const (
	CategoryActor   = "actor"
	CategoryActress = "actress"
)

// Credit represents one principal/role row linking a person to a title in a
// specific category. Filtered to acting categories only.
type Credit struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	TConst     string  `gorm:"column:tconst;type:varchar(20);not null;index:idx_credits_tconst" json:"tconst"`
	Ordering   int     `gorm:"not null" json:"ordering"`
	NConst     string  `gorm:"column:nconst;type:varchar(20);not null;index:idx_credits_nconst" json:"nconst"`
	Category   string  `gorm:"type:varchar(50);not null" json:"category"`
	Job        *string `gorm:"type:text" json:"job,omitempty"`
	Characters *string `gorm:"type:text" json:"characters,omitempty"`
}

// TableName returns the database table name for Credit.
func (Credit) TableName() string {
	return "credits"
}

// ValidCategory reports whether cat is one of the retained credit categories.
func ValidCategory(cat string) bool {
	return cat == CategoryActor || cat == CategoryActress
}
