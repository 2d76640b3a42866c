package domain

import (
	"fmt"
	"time"
)

type InventoryItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SKU            string    `json:"sku"`
	Category       string    `json:"category"`
	BuyPriceCents  int64     `json:"buy_price_cents"`
	SellPriceCents int64     `json:"sell_price_cents"`
	Quantity       int64     `json:"quantity"`
	Supplier       string    `json:"supplier,omitempty"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ItemCreateRequest struct {
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	Category       string `json:"category"`
	BuyPriceCents  int64  `json:"buy_price_cents"`
	SellPriceCents int64  `json:"sell_price_cents"`
	Quantity       int64  `json:"quantity"`
	Supplier       string `json:"supplier"`
	Description    string `json:"description"`
}

type ItemUpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	Category       *string `json:"category,omitempty"`
	BuyPriceCents  *int64  `json:"buy_price_cents,omitempty"`
	SellPriceCents *int64  `json:"sell_price_cents,omitempty"`
	Supplier       *string `json:"supplier,omitempty"`
	Description    *string `json:"description,omitempty"`
}

type QuantityAdjustRequest struct {
	Operation string `json:"operation"`
	Quantity  int64  `json:"quantity"`
}

type ItemFilter struct {
	Category string
	Search   string
	Limit    int
}

type ItemResponse struct {
	Item InventoryItem `json:"item"`
}

type ItemListResponse struct {
	Items []InventoryItem `json:"items"`
}

type SaleLineItem struct {
	ID             string `json:"id"`
	SaleID         string `json:"sale_id"`
	ItemID         string `json:"item_id"`
	ItemName       string `json:"item_name"`
	SKU            string `json:"sku"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type Sale struct {
	ID            string         `json:"id"`
	InvoiceNumber string         `json:"invoice_number"`
	CustomerName  string         `json:"customer_name,omitempty"`
	CustomerPhone string         `json:"customer_phone,omitempty"`
	SubtotalCents int64          `json:"subtotal_cents"`
	TaxRate       float64        `json:"tax_rate"`
	TaxCents      int64          `json:"tax_cents"`
	DiscountCents int64          `json:"discount_cents"`
	TotalCents    int64          `json:"total_cents"`
	PaidCents     int64          `json:"paid_cents"`
	PaymentStatus string         `json:"payment_status"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Items         []SaleLineItem `json:"items"`
}

type SaleCartItem struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

type SaleCreateRequest struct {
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	Items         []SaleCartItem `json:"items"`
	TaxRate       float64        `json:"tax_rate"`
	DiscountCents int64          `json:"discount_cents"`
	PaidCents     int64          `json:"paid_cents"`
	PaymentMethod string         `json:"payment_method"`
	Notes         string         `json:"notes"`
}

type SaleResponse struct {
	Sale                Sale   `json:"sale"`
	NotificationWarning string `json:"notification_warning,omitempty"`
}

type SaleListResponse struct {
	Sales []Sale `json:"sales"`
}

type SaleFilter struct {
	Status string
	From   time.Time
	To     time.Time
	Limit  int
}

// PaymentUpdateRequest carries the new paid amount for a sale. PaidCents is
// a pointer so a request that omits the field can be told apart from an
// explicit zero.
type PaymentUpdateRequest struct {
	PaidCents *int64 `json:"paid_cents"`
}

type Partner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PartnerCreateRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type PartnerUpdateRequest struct {
	Name    *string `json:"name,omitempty"`
	Type    *string `json:"type,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

type Investment struct {
	ID          string    `json:"id"`
	PartnerID   string    `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type InvestmentCreateRequest struct {
	PartnerID   string `json:"partner_id"`
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"`
	Notes       string `json:"notes"`
}

type InvestmentUpdateRequest struct {
	PartnerID   *string `json:"partner_id,omitempty"`
	Type        *string `json:"type,omitempty"`
	AmountCents *int64  `json:"amount_cents,omitempty"`
	Date        *string `json:"date,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type InvestmentFilter struct {
	PartnerID string
	Type      string
	Limit     int
}

type ReturnedItem struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int64  `json:"quantity"`
}

type ReturnRecord struct {
	ID            string         `json:"id"`
	SaleID        string         `json:"sale_id"`
	InvoiceNumber string         `json:"invoice_number"`
	Reason        string         `json:"reason"`
	RefundCents   int64          `json:"refund_cents"`
	Items         []ReturnedItem `json:"items"`
	CreatedAt     time.Time      `json:"created_at"`
}

type ReturnCreateRequest struct {
	SaleID      string         `json:"sale_id"`
	Reason      string         `json:"reason"`
	RefundCents int64          `json:"refund_cents"`
	Items       []ReturnedItem `json:"items"`
}

// ReturnUpdateRequest edits the paperwork on a recorded return. Item
// quantities on the original sale are not touched; only the description
// and refund figure change.
type ReturnUpdateRequest struct {
	Reason      *string `json:"reason,omitempty"`
	RefundCents *int64  `json:"refund_cents,omitempty"`
}

type Settings struct {
	StoreName         string    `json:"store_name"`
	TaxRate           float64   `json:"tax_rate"`
	Currency          string    `json:"currency"`
	Phone             string    `json:"phone,omitempty"`
	Address           string    `json:"address,omitempty"`
	ReceiptFooter     string    `json:"receipt_footer,omitempty"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type SettingsUpdateRequest struct {
	StoreName         *string  `json:"store_name,omitempty"`
	TaxRate           *float64 `json:"tax_rate,omitempty"`
	Currency          *string  `json:"currency,omitempty"`
	Phone             *string  `json:"phone,omitempty"`
	Address           *string  `json:"address,omitempty"`
	ReceiptFooter     *string  `json:"receipt_footer,omitempty"`
	LowStockThreshold *int64   `json:"low_stock_threshold,omitempty"`
}

type DashboardOverview struct {
	TodaySalesCents     int64 `json:"today_sales_cents"`
	TodayTransactions   int64 `json:"today_transactions"`
	MonthSalesCents     int64 `json:"month_sales_cents"`
	MonthTransactions   int64 `json:"month_transactions"`
	InventoryValueCents int64 `json:"inventory_value_cents"`
	InventoryItems      int64 `json:"inventory_items"`
	LowStockCount       int64 `json:"low_stock_count"`
	UnpaidSalesCents    int64 `json:"unpaid_sales_cents"`
}

type Activity struct {
	Kind        string    `json:"kind"`
	ReferenceID string    `json:"reference_id"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type SalesBucket struct {
	Period       string `json:"period"`
	Transactions int64  `json:"transactions"`
	SalesCents   int64  `json:"sales_cents"`
}

type TopItem struct {
	ItemID        string `json:"item_id"`
	ItemName      string `json:"item_name"`
	SKU           string `json:"sku"`
	QuantitySold  int64  `json:"quantity_sold"`
	RevenueCents  int64  `json:"revenue_cents"`
	TimesIncluded int64  `json:"times_included"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
	PaymentStatusUnpaid  = "unpaid"
)

const (
	PartnerTypeInvestor = "investor"
	PartnerTypeSupplier = "supplier"
)

const (
	InvestmentTypeInvest   = "invest"
	InvestmentTypeWithdraw = "withdraw"
)

const (
	AdjustOpAdd      = "add"
	AdjustOpSubtract = "subtract"
	AdjustOpSet      = "set"
)

// PaymentStatus derives the payment state from the amount paid against
// the sale total. Overpayment still counts as paid.
func PaymentStatus(paidCents, totalCents int64) string {
	switch {
	case paidCents >= totalCents:
		return PaymentStatusPaid
	case paidCents > 0:
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

// InvoiceNumber builds an invoice number from the sale timestamp:
// INV-YYYYMMDD- followed by the last six digits of the millisecond
// timestamp. Collisions within the same store are caught by the unique
// constraint on the sales table.
func InvoiceNumber(t time.Time) string {
	ms := t.UnixMilli()
	return fmt.Sprintf("INV-%s-%06d", t.Format("20060102"), ms%1000000)
}
