package store

import (
	"errors"
	"strings"

	"github.com/authgate/api/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateIdentifier is returned when an insert loses against the unique
// index on users.identifier.
var ErrDuplicateIdentifier = errors.New("identifier already registered")

type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

func (s *UserStore) Exists(identifier string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("identifier = ?", identifier).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a verified account. Uniqueness is enforced by the index, not
// by a prior Exists call, so two concurrent creators resolve to exactly one
// winner; the loser gets ErrDuplicateIdentifier.
func (s *UserStore) Create(identifier, passwordHash string) (*models.User, error) {
	user := models.User{
		Identifier:   identifier,
		PasswordHash: passwordHash,
		Verified:     true,
	}

	if err := s.DB.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateIdentifier
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) FindByIdentifier(identifier string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "identifier = ?", identifier).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) List() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) Delete(identifier string) (int64, error) {
	result := s.DB.Where("identifier = ?", identifier).Delete(&models.User{})
	return result.RowsAffected, result.Error
}

// isDuplicateKey covers drivers that predate gorm's error translation by
// falling back to the sqlite/postgres message text.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
