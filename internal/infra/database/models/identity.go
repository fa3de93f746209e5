package models

import (
	"time"
)

type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	DisplayName string    `json:"displayName" gorm:"type:text;not null"`
	Active      bool      `json:"active" gorm:"type:boolean;not null;default:true"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate       time.Time `json:"mdate" gorm:"autoUpdateTime;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type AuthIdentity struct {
	ID         string    `json:"id" gorm:"primaryKey;type:text"`
	UserID     string    `json:"userId" gorm:"type:text;not null;index"`
	User       User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Provider   string    `json:"provider" gorm:"type:text;not null;uniqueIndex:auth_identity_provider_subject"`
	Subject    string    `json:"subject" gorm:"type:text;not null;uniqueIndex:auth_identity_provider_subject"`
	SecretHash string    `json:"-" gorm:"type:text"`
	CDate      time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
