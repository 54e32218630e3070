package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/harmonia-media/harmonia/database"
	"github.com/harmonia-media/harmonia/database/model"
)

// RefreshTokenService is the ledger of outstanding refresh tokens. A token
// missing from the ledger is invalid regardless of its signature, which is
// what makes logout an effective revocation.
type RefreshTokenService struct {
	DB *gorm.DB
}

func NewRefreshTokenService() *RefreshTokenService {
	return &RefreshTokenService{DB: database.GetDB()}
}

// Persist records a freshly issued refresh token for a user. Multiple
// outstanding tokens per user are allowed.
func (s *RefreshTokenService) Persist(token, userId string) error {
	row := &model.RefreshToken{Token: token, UserId: userId}
	return s.DB.Create(row).Error
}

// Exists reports whether a refresh token is still in the ledger.
func (s *RefreshTokenService) Exists(token string) (bool, error) {
	var count int64
	err := s.DB.Model(&model.RefreshToken{}).Where("token = ?", token).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RevokeAllForUser deletes every ledger row of a user in one statement, so
// logout never leaves a partial set of still-valid tokens behind.
func (s *RefreshTokenService) RevokeAllForUser(userId string) error {
	return s.DB.Where("user_id = ?", userId).Delete(&model.RefreshToken{}).Error
}

// DeleteCreatedBefore drops ledger rows older than the cutoff. Rows past
// the refresh TTL can never verify again, so they are dead weight.
func (s *RefreshTokenService) DeleteCreatedBefore(cutoff time.Time) (int64, error) {
	result := s.DB.Where("created_at < ?", cutoff).Delete(&model.RefreshToken{})
	return result.RowsAffected, result.Error
}

// CountForUser returns the number of outstanding tokens of a user.
func (s *RefreshTokenService) CountForUser(userId string) (int64, error) {
	var count int64
	err := s.DB.Model(&model.RefreshToken{}).Where("user_id = ?", userId).Count(&count).Error
	return count, err
}
