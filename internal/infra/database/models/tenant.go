package models

import (
	"time"
)

type Organization struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Tier        string    `json:"tier" gorm:"type:text;not null;default:'free'"`
	TrialEndsAt time.Time `json:"trialEndsAt" gorm:"type:timestamp with time zone"`
	// The partial unique index is what serializes two concurrent first
	// logins: only one personal organization may exist per creator.
	CreatedBy string    `json:"createdBy" gorm:"type:text;not null;index;uniqueIndex:organization_personal_creator,where:personal"`
	Personal  bool      `json:"personal" gorm:"type:boolean;not null;default:false"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type OrganizationMember struct {
	OrganizationID string       `json:"organizationId" gorm:"type:text;primaryKey"`
	Organization   Organization `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID         string       `json:"userId" gorm:"type:text;primaryKey;index"`
	Role           string       `json:"role" gorm:"type:text;not null"`
	CDate          time.Time    `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Workspace struct {
	ID             string       `json:"id" gorm:"primaryKey;type:text"`
	OrganizationID string       `json:"organizationId" gorm:"type:text;not null;index;uniqueIndex:workspace_org_default,where:is_default"`
	Organization   Organization `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	IsDefault      bool         `json:"isDefault" gorm:"type:boolean;not null;default:false"`
	CreatedBy      string       `json:"createdBy" gorm:"type:text;not null"`
	CDate          time.Time    `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type WorkspaceMember struct {
	WorkspaceID string    `json:"workspaceId" gorm:"type:text;primaryKey"`
	Workspace   Workspace `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID      string    `json:"userId" gorm:"type:text;primaryKey;index"`
	Role        string    `json:"role" gorm:"type:text;not null"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
