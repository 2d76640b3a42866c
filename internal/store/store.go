package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lankapos/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports a line that could not be fulfilled.
// It matches errors.Is(err, ErrInsufficientStock).
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.ItemName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

type Repository interface {
	CreateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	GetItem(ctx context.Context, id string) (*domain.InventoryItem, error)
	GetItemBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.InventoryItem, error)
	UpdateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
	AdjustItemQuantity(ctx context.Context, id string, op string, qty int64) (*domain.InventoryItem, error)
	LowStockItems(ctx context.Context, threshold int64) ([]domain.InventoryItem, error)

	CreateSale(ctx context.Context, sale domain.Sale, cart []domain.SaleCartItem) (*domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	GetSaleByInvoice(ctx context.Context, invoiceNumber string) (*domain.Sale, error)
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
	DeleteSale(ctx context.Context, id string) error
	UpdateSalePayment(ctx context.Context, id string, paidCents int64) (*domain.Sale, error)

	CreatePartner(ctx context.Context, partner domain.Partner) (*domain.Partner, error)
	GetPartner(ctx context.Context, id string) (*domain.Partner, error)
	ListPartners(ctx context.Context, partnerType string) ([]domain.Partner, error)
	UpdatePartner(ctx context.Context, partner domain.Partner) (*domain.Partner, error)
	DeletePartner(ctx context.Context, id string) error

	CreateInvestment(ctx context.Context, investment domain.Investment) (*domain.Investment, error)
	GetInvestment(ctx context.Context, id string) (*domain.Investment, error)
	ListInvestments(ctx context.Context, filter domain.InvestmentFilter) ([]domain.Investment, error)
	UpdateInvestment(ctx context.Context, investment domain.Investment) (*domain.Investment, error)
	DeleteInvestment(ctx context.Context, id string) error

	CreateReturn(ctx context.Context, record domain.ReturnRecord) (*domain.ReturnRecord, error)
	GetReturn(ctx context.Context, id string) (*domain.ReturnRecord, error)
	ListReturns(ctx context.Context, saleID string, limit int) ([]domain.ReturnRecord, error)
	UpdateReturn(ctx context.Context, record domain.ReturnRecord) (*domain.ReturnRecord, error)
	DeleteReturn(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, settings domain.Settings) (*domain.Settings, error)

	DashboardOverview(ctx context.Context, now time.Time, lowStockThreshold int64) (*domain.DashboardOverview, error)
	RecentActivities(ctx context.Context, limit int) ([]domain.Activity, error)
	SalesAnalytics(ctx context.Context, period string, limit int) ([]domain.SalesBucket, error)
	TopSellingItems(ctx context.Context, since time.Time, limit int) ([]domain.TopItem, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
