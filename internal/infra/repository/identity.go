package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/assistralabs/assistra/internal/domain"
	"github.com/assistralabs/assistra/internal/infra/database/models"
)

type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) GetUser(ctx context.Context, id string) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, err
	}
	return userFromModel(row), nil
}

func (r *IdentityRepository) GetIdentity(ctx context.Context, provider, subject string) (domain.AuthIdentity, error) {
	var row models.AuthIdentity
	err := r.db.WithContext(ctx).
		Where("provider = ? AND subject = ?", provider, subject).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.AuthIdentity{}, domain.NotFoundError{Resource: "identity"}
	}
	if err != nil {
		return domain.AuthIdentity{}, err
	}
	return identityFromModel(row), nil
}

func (r *IdentityRepository) CreateUserWithIdentity(ctx context.Context, user domain.User, identity domain.AuthIdentity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.User{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			Active:      user.Active,
		}).Error; err != nil {
			return translateDuplicate(err)
		}
		if err := tx.Create(&models.AuthIdentity{
			ID:         identity.ID,
			UserID:     identity.UserID,
			Provider:   identity.Provider,
			Subject:    identity.Subject,
			SecretHash: identity.SecretHash,
		}).Error; err != nil {
			return translateDuplicate(err)
		}
		return nil
	})
}

func (r *IdentityRepository) CreateIdentity(ctx context.Context, identity domain.AuthIdentity) error {
	err := r.db.WithContext(ctx).Create(&models.AuthIdentity{
		ID:         identity.ID,
		UserID:     identity.UserID,
		Provider:   identity.Provider,
		Subject:    identity.Subject,
		SecretHash: identity.SecretHash,
	}).Error
	return translateDuplicate(err)
}

func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicate
	}
	return err
}

func userFromModel(row models.User) domain.User {
	return domain.User{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		Active:      row.Active,
		CreatedAt:   row.CDate,
	}
}

func identityFromModel(row models.AuthIdentity) domain.AuthIdentity {
	return domain.AuthIdentity{
		ID:         row.ID,
		UserID:     row.UserID,
		Provider:   row.Provider,
		Subject:    row.Subject,
		SecretHash: row.SecretHash,
		CreatedAt:  row.CDate,
	}
}
