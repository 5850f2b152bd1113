package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gorm.io/gorm"
)

const maxDailySequence = 99999

// ErrSequenceExhausted means the day's order counter passed five digits.
var ErrSequenceExhausted = errors.New("daily order sequence exhausted")

var orderNumberPattern = regexp.MustCompile(`^([A-Z]+)-(\d{8})-(\d{5})$`)

// OrderNumberGenerator issues PREFIX-YYYYMMDD-NNNNN identifiers from a per-day
// counter row bumped by a single upsert.
type OrderNumberGenerator struct {
	prefix string
	loc    *time.Location
	now    func() time.Time
}

// NewOrderNumberGenerator builds a generator dating numbers in loc.
func NewOrderNumberGenerator(prefix string, loc *time.Location) *OrderNumberGenerator {
	if loc == nil {
		loc = time.Local
	}
	return &OrderNumberGenerator{prefix: prefix, loc: loc, now: time.Now}
}

// Generate takes the next number for today. Call it with the checkout
// transaction: the counter row stays locked until commit, and a rollback
// gives the number back.
func (g *OrderNumberGenerator) Generate(tx *gorm.DB) (string, error) {
	day := g.now().In(g.loc)

	var seq int
	err := tx.Raw(`INSERT INTO order_sequences (day, last_value) VALUES (?, 1)
		ON CONFLICT (day) DO UPDATE SET last_value = order_sequences.last_value + 1
		RETURNING last_value`, day.Format("20060102")).Scan(&seq).Error
	if err != nil {
		return "", fmt.Errorf("next order sequence: %w", err)
	}
	if seq < 1 || seq > maxDailySequence {
		return "", ErrSequenceExhausted
	}

	return FormatOrderNumber(g.prefix, day, seq), nil
}

// FormatOrderNumber renders prefix, date and sequence.
func FormatOrderNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, day.Format("20060102"), seq)
}

// ParseOrderNumber splits an order number into prefix, YYYYMMDD and sequence.
func ParseOrderNumber(number string) (prefix, day string, seq int, err error) {
	m := orderNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return "", "", 0, fmt.Errorf("malformed order number %q", number)
	}
	seq, _ = strconv.Atoi(m[3])
	return m[1], m[2], seq, nil
}
