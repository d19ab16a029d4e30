package domain

// Person represents one row of the people dataset, filtered to acting
// professions. The table is fully replaced on every pipeline run.
type Person struct {
	NConst            string      `gorm:"column:nconst;type:varchar(20);primaryKey" json:"nconst"`
	PrimaryName       string      `gorm:"type:varchar(255);not null;index:idx_people_name" json:"primary_name"`
	BirthYear         *int        `json:"birth_year,omitempty"`
	DeathYear         *int        `json:"death_year,omitempty"`
	PrimaryProfession StringArray `gorm:"type:text" json:"primary_profession"`
	KnownForTitles    StringArray `gorm:"type:text" json:"known_for_titles"`
}

// TableName returns the database table name for Person.
func (Person) TableName() string {
	return "people"
}
