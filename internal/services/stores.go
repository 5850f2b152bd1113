package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/sol/internal/models"
)

// CartStore reads and clears a user's cart inside a transaction.
type CartStore interface {
	ListForUser(tx *gorm.DB, userID uuid.UUID) ([]models.CartItem, error)
	// LockForUser is ListForUser with the cart rows held FOR UPDATE until
	// the transaction ends.
	LockForUser(tx *gorm.DB, userID uuid.UUID) ([]models.CartItem, error)
	ClearForUser(tx *gorm.DB, userID uuid.UUID) error
}

// AddressStore finds a delivery address the user owns and has not archived.
type AddressStore interface {
	FindActiveOwned(tx *gorm.DB, userID, addressID uuid.UUID) (*models.UserAddress, error)
}

type gormCartStore struct{}

// NewCartStore returns the table-backed cart store.
func NewCartStore() CartStore { return gormCartStore{} }

func (gormCartStore) ListForUser(tx *gorm.DB, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := withCartDetails(tx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&items).Error
	return items, err
}

func (gormCartStore) LockForUser(tx *gorm.DB, userID uuid.UUID) ([]models.CartItem, error) {
	var ids []uuid.UUID
	err := tx.Model(&models.CartItem{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("id asc").
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	var items []models.CartItem
	err = withCartDetails(tx).
		Where("id IN ?", ids).
		Order("created_at asc, id asc").
		Find(&items).Error
	return items, err
}

func withCartDetails(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Product").
		Preload("Product.Brand").
		Preload("Product.Category").
		Preload("Variant")
}

func (gormCartStore) ClearForUser(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

type gormAddressStore struct{}

// NewAddressStore returns the table-backed address store.
func NewAddressStore() AddressStore { return gormAddressStore{} }

func (gormAddressStore) FindActiveOwned(tx *gorm.DB, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	var address models.UserAddress
	err := tx.Where("id = ? AND user_id = ? AND is_active = ?", addressID, userID, true).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return &address, nil
}
