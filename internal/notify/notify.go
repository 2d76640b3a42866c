// Package notify delivers post-sale receipts to customers. Delivery is
// best effort: a failed notification never affects the stored sale.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lankapos/internal/domain"
)

type Notifier interface {
	SaleCreated(ctx context.Context, sale domain.Sale, settings domain.Settings) error
}

type NoopNotifier struct{}

func (NoopNotifier) SaleCreated(_ context.Context, _ domain.Sale, _ domain.Settings) error {
	return nil
}

// WALinkNotifier builds a WhatsApp click-to-chat link carrying the
// receipt text. When a webhook URL is configured the link and message
// are POSTed there so an external sender can push them out; otherwise
// the link is only logged.
type WALinkNotifier struct {
	CountryCode string
	WebhookURL  string

	client *http.Client
}

func NewWALinkNotifier(countryCode string, webhookURL string) *WALinkNotifier {
	return &WALinkNotifier{
		CountryCode: countryCode,
		WebhookURL:  webhookURL,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *WALinkNotifier) SaleCreated(ctx context.Context, sale domain.Sale, settings domain.Settings) error {
	phone := NormalizePhone(sale.CustomerPhone, n.CountryCode)
	if phone == "" {
		return fmt.Errorf("sale %s has no usable customer phone", sale.ID)
	}

	message := ReceiptText(sale, settings)
	link := "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)

	if n.WebhookURL == "" {
		log.Printf("[notify] receipt link for %s: %s", sale.InvoiceNumber, link)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"link":    link,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned %d", resp.StatusCode)
	}
	return nil
}

// NormalizePhone strips everything but digits and converts local
// numbers to international form. A leading zero on a ten digit number
// is replaced with the country code; nine digit numbers get the
// country code prepended.
func NormalizePhone(raw string, countryCode string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	phone := digits.String()

	switch {
	case phone == "":
		return ""
	case len(phone) == 10 && phone[0] == '0':
		return countryCode + phone[1:]
	case len(phone) == 9:
		return countryCode + phone
	default:
		return phone
	}
}

// ReceiptText renders the plain-text receipt sent to the customer.
func ReceiptText(sale domain.Sale, settings domain.Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", settings.StoreName)
	fmt.Fprintf(&b, "Invoice %s\n", sale.InvoiceNumber)
	fmt.Fprintf(&b, "Date %s\n\n", sale.CreatedAt.Format("2006-01-02 15:04"))

	for _, line := range sale.Items {
		fmt.Fprintf(&b, "%s x%d  %s\n", line.ItemName, line.Quantity, formatMoney(line.LineTotalCents, settings.Currency))
	}

	fmt.Fprintf(&b, "\nSubtotal %s\n", formatMoney(sale.SubtotalCents, settings.Currency))
	if sale.TaxCents > 0 {
		fmt.Fprintf(&b, "Tax %s\n", formatMoney(sale.TaxCents, settings.Currency))
	}
	if sale.DiscountCents > 0 {
		fmt.Fprintf(&b, "Discount -%s\n", formatMoney(sale.DiscountCents, settings.Currency))
	}
	fmt.Fprintf(&b, "Total %s\n", formatMoney(sale.TotalCents, settings.Currency))
	fmt.Fprintf(&b, "Paid %s (%s)\n", formatMoney(sale.PaidCents, settings.Currency), sale.PaymentStatus)

	if settings.ReceiptFooter != "" {
		fmt.Fprintf(&b, "\n%s\n", settings.ReceiptFooter)
	}
	return b.String()
}

func formatMoney(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if currency == "" {
		return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, cents/100, cents%100)
}
