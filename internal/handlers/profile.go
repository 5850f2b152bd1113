package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/sol/internal/models"
)

// ProfileHandler manages the caller's delivery addresses and cart.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// Address endpoints

// ListAddresses returns the caller's active addresses.
func (h *ProfileHandler) ListAddresses(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var addresses []models.UserAddress
	if err := h.db.WithContext(c.UserContext()).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("is_default desc, created_at desc").
		Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

type createAddressRequest struct {
	Label         string `json:"label"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	Building      string `json:"building"`
	Landmark      string `json:"landmark"`
	GovernorateID string `json:"governorate_id"`
	CenterID      string `json:"center_id"`
	VillageID     string `json:"village_id"`
	IsDefault     bool   `json:"is_default"`
}

// CreateAddress creates an address for the user.
func (h *ProfileHandler) CreateAddress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	governorateID, err := uuid.Parse(req.GovernorateID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid governorate_id")
	}
	centerID, err := optionalUUID(req.CenterID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid center_id")
	}
	villageID, err := optionalUUID(req.VillageID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid village_id")
	}
	if villageID != nil && centerID == nil {
		return fiber.NewError(fiber.StatusBadRequest, "village_id requires center_id")
	}

	address := models.UserAddress{
		UserID:        userID,
		Label:         req.Label,
		FullName:      req.FullName,
		Phone:         req.Phone,
		Street:        req.Street,
		Building:      req.Building,
		Landmark:      req.Landmark,
		GovernorateID: governorateID,
		CenterID:      centerID,
		VillageID:     villageID,
		IsDefault:     req.IsDefault,
		IsActive:      true,
	}

	err = h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&models.UserAddress{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": address})
}

// ArchiveAddress hides an address from checkout. Orders placed with it keep
// their reference, so rows are never deleted.
func (h *ProfileHandler) ArchiveAddress(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	addrID, err := paramID(c)
	if err != nil {
		return err
	}

	res := h.db.WithContext(c.UserContext()).Model(&models.UserAddress{}).
		Where("id = ? AND user_id = ? AND is_active = ?", addrID, userID, true).
		Updates(map[string]interface{}{"is_active": false, "is_default": false})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "address not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "address archived"})
}

// Cart endpoints

// GetCart returns the caller's cart lines with product data.
func (h *ProfileHandler) GetCart(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var items []models.CartItem
	if err := h.db.WithContext(c.UserContext()).
		Preload("Product").Preload("Variant").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// AddCartItem adds quantity of a product or variant, merging with an
// existing line for the same item.
func (h *ProfileHandler) AddCartItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be positive")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}
	variantID, err := optionalUUID(req.VariantID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid variant_id")
	}

	db := h.db.WithContext(c.UserContext())

	var product models.Product
	if err := db.First(&product, "id = ? AND is_active = ?", productID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}
	if variantID != nil {
		var variant models.ProductVariant
		if err := db.First(&variant, "id = ? AND product_id = ? AND is_active = ?", *variantID, productID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "variant not found")
			}
			return err
		}
	}

	var item models.CartItem
	err = db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ? AND product_id = ?", userID, productID)
		if variantID != nil {
			query = query.Where("variant_id = ?", *variantID)
		} else {
			query = query.Where("variant_id IS NULL")
		}

		err := query.First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = models.CartItem{UserID: userID, ProductID: productID, VariantID: variantID, Quantity: req.Quantity}
			return tx.Create(&item).Error
		}
		if err != nil {
			return err
		}
		item.Quantity += req.Quantity
		return tx.Model(&item).Update("quantity", item.Quantity).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem sets a line's quantity. Zero removes the line.
func (h *ProfileHandler) UpdateCartItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	itemID, err := paramID(c)
	if err != nil {
		return err
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must not be negative")
	}

	db := h.db.WithContext(c.UserContext())
	var res *gorm.DB
	if req.Quantity == 0 {
		res = db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	} else {
		res = db.Model(&models.CartItem{}).
			Where("id = ? AND user_id = ?", itemID, userID).
			Update("quantity", req.Quantity)
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cart item not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart updated"})
}

// RemoveCartItem deletes a cart line.
func (h *ProfileHandler) RemoveCartItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	itemID, err := paramID(c)
	if err != nil {
		return err
	}

	res := h.db.WithContext(c.UserContext()).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cart item not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "item removed"})
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
