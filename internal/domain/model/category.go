package model

type PetType string

const (
	PetTypeDog PetType = "Dog"
	PetTypeCat PetType = "Cat"
	PetTypeAll PetType = "All"
)

func (p PetType) Valid() bool {
	return p == PetTypeDog || p == PetTypeCat || p == PetTypeAll
}

type Category struct {
	ID          string  `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	PetType     PetType `gorm:"type:varchar(10);not null;index" json:"pet_type"`
	IsActive    bool    `gorm:"not null;index" json:"is_active"`
}
