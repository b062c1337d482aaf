package models

import "time"

// Department groups team members on the public team page.
type Department struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Position  int          `gorm:"index;not null;default:0" json:"position"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Members   []TeamMember `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"members,omitempty"`
}

// TeamMember is a person listed under a department.
type TeamMember struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DepartmentID uint      `gorm:"index;not null" json:"department_id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Title        string    `gorm:"size:128" json:"title"`
	PhotoURL     string    `gorm:"size:512" json:"photo_url"`
	Bio          string    `gorm:"type:text" json:"bio"`
	Position     int       `gorm:"index;not null;default:0" json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
