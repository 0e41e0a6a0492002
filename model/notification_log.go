package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationLog records one booking notification dispatch.
type NotificationLog struct {
	gorm.Model
	AppointmentID uint           `json:"appointment_id" gorm:"index"`
	Recipient     string         `json:"recipient" gorm:"type:varchar(64)"`
	Channel       string         `json:"channel" gorm:"type:varchar(32)"`
	Outcome       string         `json:"outcome" gorm:"type:varchar(16);index"`
	Delivered     bool           `json:"delivered"`
	Message       string         `json:"message" gorm:"type:text"`
	DeepLinkURL   string         `json:"deep_link_url" gorm:"type:text"`
	Attempts      datatypes.JSON `json:"attempts" gorm:"type:json"`
}
