package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is a patient account.
type User struct {
	gorm.Model
	Name     string                      `json:"name" gorm:"type:varchar(255);not null" example:"Jane Doe"`
	Email    string                      `json:"email" gorm:"type:varchar(191);uniqueIndex;not null" example:"jane@example.com"`
	Password string                      `json:"-" gorm:"type:varchar(255);not null"`
	Phone    string                      `json:"phone" gorm:"type:varchar(32)" example:"+919876543210"`
	Image    string                      `json:"image" gorm:"type:varchar(512)"`
	Gender   string                      `json:"gender" gorm:"type:varchar(32);default:'Not Selected'" example:"Female"`
	DOB      string                      `json:"dob" gorm:"type:varchar(32);default:'Not Selected'" example:"1990-01-20"`
	Address  datatypes.JSONType[Address] `json:"address"`
}
