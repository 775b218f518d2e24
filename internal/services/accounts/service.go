// Package accounts manages connected social accounts. One account per
// user and platform; credentials are stored for the browser automation
// layer and never leave the API.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/clipdeck-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already connected for this platform")
	ErrInvalidPlatform  = errors.New("invalid platform")
)

// Service defines the interface for social account management
type Service interface {
	// CreateAccount connects a social account for a user
	CreateAccount(ctx context.Context, userID string, params CreateAccountParams) (*models.SocialAccount, error)

	// GetAccount retrieves an account by UUID, scoped to the owner
	GetAccount(ctx context.Context, userID, uuid string) (*models.SocialAccount, error)

	// ListAccounts lists the owner's connected accounts
	ListAccounts(ctx context.Context, userID string) ([]*models.SocialAccount, error)

	// DeleteAccount disconnects an account
	DeleteAccount(ctx context.Context, userID, uuid string) error

	// TouchLastUsed records a publish attempt against the account
	TouchLastUsed(ctx context.Context, accountID uint) error
}

// CreateAccountParams contains parameters for connecting an account
type CreateAccountParams struct {
	Platform models.Platform
	Username string
	Password string
}

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	db *gorm.DB
}

// NewService creates a new accounts service
func NewService(db *gorm.DB) Service {
	return &ServiceImpl{db: db}
}

// CreateAccount connects a social account for a user
func (s *ServiceImpl) CreateAccount(ctx context.Context, userID string, params CreateAccountParams) (*models.SocialAccount, error) {
	if !params.Platform.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlatform, params.Platform)
	}
	if params.Username == "" || params.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SocialAccount{}).
		Where("user_id = ? AND platform = ?", userID, params.Platform).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateAccount
	}

	account := &models.SocialAccount{
		UserID:    userID,
		Platform:  params.Platform,
		Username:  params.Username,
		Password:  params.Password,
		Connected: true,
	}

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account record: %w", err)
	}

	log.Printf("[INFO] Connected %s account %s for user %s", account.Platform, account.UUID, userID)
	return account, nil
}

// GetAccount retrieves an account by UUID, scoped to the owner
func (s *ServiceImpl) GetAccount(ctx context.Context, userID, uuid string) (*models.SocialAccount, error) {
	var account models.SocialAccount
	err := s.db.WithContext(ctx).
		Where("uuid = ? AND user_id = ?", uuid, userID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// ListAccounts lists the owner's connected accounts
func (s *ServiceImpl) ListAccounts(ctx context.Context, userID string) ([]*models.SocialAccount, error) {
	var accounts []*models.SocialAccount
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// DeleteAccount disconnects an account
func (s *ServiceImpl) DeleteAccount(ctx context.Context, userID, uuid string) error {
	account, err := s.GetAccount(ctx, userID, uuid)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(account).Error; err != nil {
		return fmt.Errorf("failed to delete account record: %w", err)
	}

	log.Printf("[INFO] Disconnected %s account %s", account.Platform, account.UUID)
	return nil
}

// TouchLastUsed records a publish attempt against the account. Every
// attempt counts, successful or not.
func (s *ServiceImpl) TouchLastUsed(ctx context.Context, accountID uint) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&models.SocialAccount{}).
		Where("id = ?", accountID).
		Update("last_used_at", &now)

	if result.Error != nil {
		return fmt.Errorf("failed to update last used time: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
