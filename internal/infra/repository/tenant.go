package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/assistralabs/assistra/internal/domain"
	"github.com/assistralabs/assistra/internal/infra/database/models"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) ListOrganizations(ctx context.Context, userID string) ([]domain.Organization, error) {
	var rows []models.Organization
	err := r.db.WithContext(ctx).
		Joins("JOIN organization_members ON organization_members.organization_id = organizations.id").
		Where("organization_members.user_id = ?", userID).
		Order("organizations.c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	orgs := make([]domain.Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, organizationFromModel(row))
	}
	return orgs, nil
}

func (r *TenantRepository) DefaultWorkspace(ctx context.Context, orgID string) (domain.Workspace, error) {
	var row models.Workspace
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_default", orgID).
		Take(&row).Error
	if err == nil {
		return workspaceFromModel(row), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Workspace{}, err
	}

	// No workspace is flagged default; fall back to the earliest-created one.
	err = r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("c_date ASC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Workspace{}, domain.NotFoundError{Resource: "workspace"}
	}
	if err != nil {
		return domain.Workspace{}, err
	}
	return workspaceFromModel(row), nil
}

func (r *TenantRepository) GetWorkspace(ctx context.Context, workspaceID string) (domain.Workspace, error) {
	var row models.Workspace
	err := r.db.WithContext(ctx).
		Where("id = ?", workspaceID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Workspace{}, domain.NotFoundError{Resource: "workspace"}
	}
	if err != nil {
		return domain.Workspace{}, err
	}
	return workspaceFromModel(row), nil
}

// CreatePersonalTenant commits the organization, its owner membership, the
// default workspace and its admin membership as a single unit. Partial
// creation is never a valid resting state; any failure rolls back all four.
func (r *TenantRepository) CreatePersonalTenant(ctx context.Context, org domain.Organization, member domain.OrganizationMember, ws domain.Workspace, wsMember domain.WorkspaceMember) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Organization{
			ID:          org.ID,
			Name:        org.Name,
			Tier:        org.Tier,
			TrialEndsAt: org.TrialEndsAt,
			CreatedBy:   org.CreatedBy,
			Personal:    org.Personal,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.OrganizationMember{
			OrganizationID: member.OrganizationID,
			UserID:         member.UserID,
			Role:           member.Role,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Workspace{
			ID:             ws.ID,
			OrganizationID: ws.OrganizationID,
			Name:           ws.Name,
			IsDefault:      ws.IsDefault,
			CreatedBy:      ws.CreatedBy,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.WorkspaceMember{
			WorkspaceID: wsMember.WorkspaceID,
			UserID:      wsMember.UserID,
			Role:        wsMember.Role,
		}).Error; err != nil {
			return err
		}
		return nil
	})
	return translateDuplicate(err)
}

func (r *TenantRepository) OrganizationRole(ctx context.Context, orgID, userID string) (string, error) {
	var row models.OrganizationMember
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.NotFoundError{Resource: "organization membership"}
	}
	if err != nil {
		return "", err
	}
	return row.Role, nil
}

func (r *TenantRepository) WorkspaceRole(ctx context.Context, workspaceID, userID string) (string, error) {
	var row models.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.NotFoundError{Resource: "workspace membership"}
	}
	if err != nil {
		return "", err
	}
	return row.Role, nil
}

func organizationFromModel(row models.Organization) domain.Organization {
	return domain.Organization{
		ID:          row.ID,
		Name:        row.Name,
		Tier:        row.Tier,
		TrialEndsAt: row.TrialEndsAt,
		CreatedBy:   row.CreatedBy,
		Personal:    row.Personal,
		CreatedAt:   row.CDate,
	}
}

func workspaceFromModel(row models.Workspace) domain.Workspace {
	return domain.Workspace{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		Name:           row.Name,
		IsDefault:      row.IsDefault,
		CreatedBy:      row.CreatedBy,
		CreatedAt:      row.CDate,
	}
}
