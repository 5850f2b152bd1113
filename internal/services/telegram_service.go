package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/sol/internal/models"
)

// TelegramService posts staff notifications to a Telegram chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     "https://api.telegram.org",
		client:      &http.Client{},
	}
}

// Enabled reports whether both the token and the admin chat are set.
func (s *TelegramService) Enabled() bool {
	return s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends an HTML message to chatID.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// FormatPrice renders amount with two decimals, thousand separators and
// the currency code.
func FormatPrice(amount decimal.Decimal, currency string) string {
	str := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(str, ".")

	var result strings.Builder
	if amount.IsNegative() {
		result.WriteString("-")
	}
	length := len(whole)
	for i, digit := range whole {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	result.WriteString(".")
	result.WriteString(frac)

	if currency != "" {
		result.WriteString(" ")
		result.WriteString(currency)
	}
	return result.String()
}

var paymentMethodLabels = map[models.PaymentMethod]string{
	models.PaymentMethodCashOnDelivery: "Cash on delivery",
	models.PaymentMethodBankWallet:     "Bank wallet",
	models.PaymentMethodDigitalWallet:  "Digital wallet",
}

// FormatOrderMessage renders the new-order message body.
func FormatOrderMessage(order OrderSummary) string {
	var items strings.Builder
	for i, item := range order.Items {
		items.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.Name),
			item.Quantity,
			FormatPrice(item.UnitPrice, order.Currency),
			FormatPrice(item.Total, order.Currency),
		))
	}

	method := paymentMethodLabels[order.PaymentMethod]
	if method == "" {
		method = html.EscapeString(string(order.PaymentMethod))
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>📋 Order:</b> %s
<b>📦 Items:</b>
%s
<b>Subtotal:</b> %s
<b>Discount:</b> %s
<b>Shipping:</b> %s
<b>Tax:</b> %s
<b>💰 Total:</b> %s
<b>💳 Payment:</b> %s
━━━━━━━━━━━━━━━━━━`,
		html.EscapeString(order.OrderNumber),
		items.String(),
		FormatPrice(order.Subtotal, order.Currency),
		FormatPrice(order.Discount, order.Currency),
		FormatPrice(order.Shipping, order.Currency),
		FormatPrice(order.Tax, order.Currency),
		FormatPrice(order.Total, order.Currency),
		method,
	)
	return strings.TrimSpace(message)
}

// NotifyNewOrder sends the order to the admin chat.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, order OrderSummary) error {
	if s.adminChatID == "" {
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, FormatOrderMessage(order))
}
