package services

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/sol/internal/models"
)

// StockLine is a quantity of one product or variant. Available is the stock
// observed when the line was priced; it only decides whether a failed
// decrement is reported as a lost race.
type StockLine struct {
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	Quantity    int
	ProductName string
	Available   int
}

func (l StockLine) key() []byte {
	k := append([]byte{}, l.ProductID[:]...)
	if l.VariantID != nil {
		k = append(k, l.VariantID[:]...)
	}
	return k
}

// MergeStockLines folds duplicate product/variant lines together and sorts
// the result so every transaction locks stock rows in the same order.
func MergeStockLines(lines []StockLine) []StockLine {
	merged := make([]StockLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		k := string(line.key())
		if i, ok := index[k]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, line)
	}
	sort.Slice(merged, func(i, j int) bool {
		return bytes.Compare(merged[i].key(), merged[j].key()) < 0
	})
	return merged
}

// InventoryLedger moves stock with conditional updates and records every
// change as an InventoryMovement.
type InventoryLedger struct{}

func NewInventoryLedger() *InventoryLedger {
	return &InventoryLedger{}
}

// Reserve decrements stock for every line. The first line that cannot be
// covered fails the call; the caller's transaction must roll back so earlier
// decrements in the batch are undone.
func (l *InventoryLedger) Reserve(tx *gorm.DB, orderID uuid.UUID, lines []StockLine) error {
	for _, line := range MergeStockLines(lines) {
		if line.Quantity <= 0 {
			continue
		}

		res := stockTable(tx, line).
			Where("stock_quantity >= ?", line.Quantity).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
		if res.Error != nil {
			return fmt.Errorf("decrement stock for %s: %w", line.ProductID, res.Error)
		}
		if res.RowsAffected == 0 {
			if line.Available >= line.Quantity {
				return stockConflict(line.ProductName)
			}
			return insufficientStock(line.ProductName)
		}

		if err := recordMovement(tx, line, models.MovementSale, -line.Quantity, orderID, "order placed"); err != nil {
			return err
		}
	}
	return nil
}

// Release puts stock back for every line and records a RETURN movement each.
func (l *InventoryLedger) Release(tx *gorm.DB, orderID uuid.UUID, lines []StockLine, reason string) error {
	for _, line := range MergeStockLines(lines) {
		if line.Quantity <= 0 {
			continue
		}

		res := stockTable(tx, line).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", line.Quantity))
		if res.Error != nil {
			return fmt.Errorf("restock %s: %w", line.ProductID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("restock %s: stock row missing", line.ProductID)
		}

		if err := recordMovement(tx, line, models.MovementReturn, line.Quantity, orderID, reason); err != nil {
			return err
		}
	}
	return nil
}

// Movements lists the ledger entries referencing an order, oldest first.
func (l *InventoryLedger) Movements(db *gorm.DB, orderID uuid.UUID) ([]models.InventoryMovement, error) {
	var movements []models.InventoryMovement
	err := db.Where("reference_id = ?", orderID).
		Order("created_at asc, id asc").
		Find(&movements).Error
	return movements, err
}

// NetMovement sums the signed quantities recorded against an order.
func (l *InventoryLedger) NetMovement(db *gorm.DB, orderID uuid.UUID) (int, error) {
	var net int
	err := db.Model(&models.InventoryMovement{}).
		Where("reference_id = ?", orderID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&net).Error
	return net, err
}

func stockTable(tx *gorm.DB, line StockLine) *gorm.DB {
	if line.VariantID != nil {
		return tx.Model(&models.ProductVariant{}).
			Where("id = ? AND product_id = ?", *line.VariantID, line.ProductID)
	}
	return tx.Model(&models.Product{}).Where("id = ?", line.ProductID)
}

func recordMovement(tx *gorm.DB, line StockLine, kind models.MovementType, qty int, orderID uuid.UUID, reason string) error {
	movement := models.InventoryMovement{
		ProductID:   line.ProductID,
		VariantID:   line.VariantID,
		Type:        kind,
		Quantity:    qty,
		ReferenceID: orderID,
		Reason:      reason,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("record %s movement: %w", kind, err)
	}
	return nil
}
