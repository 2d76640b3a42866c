package memory

import (
	"context"
	"log"
	"math"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lankapos/internal/domain"
	"lankapos/internal/store"
	"lankapos/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	itemsByID       map[string]domain.InventoryItem
	itemIDBySKU     map[string]string
	salesByID       map[string]*domain.Sale
	saleIDByInvoice map[string]string
	partnersByID    map[string]domain.Partner
	investmentsByID map[string]domain.Investment
	returnsByID     map[string]domain.ReturnRecord
	settings        *domain.Settings
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func New() *Store {
	return &Store{
		itemsByID:       make(map[string]domain.InventoryItem),
		itemIDBySKU:     make(map[string]string),
		salesByID:       make(map[string]*domain.Sale),
		saleIDByInvoice: make(map[string]string),
		partnersByID:    make(map[string]domain.Partner),
		investmentsByID: make(map[string]domain.Investment),
		returnsByID:     make(map[string]domain.ReturnRecord),
		usersByUsername: seedUsers(),
	}
}

func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()
	items := []domain.InventoryItem{
		{ID: "itm-seed-01", Name: "Ceylon Tea 400g", SKU: "SKU-TEA-400", Category: "beverage", BuyPriceCents: 85000, SellPriceCents: 120000, Quantity: 40, Supplier: "Highland Traders"},
		{ID: "itm-seed-02", Name: "White Sugar 1kg", SKU: "SKU-SUGAR-1K", Category: "grocery", BuyPriceCents: 21000, SellPriceCents: 27500, Quantity: 80, Supplier: "Lanka Wholesale"},
		{ID: "itm-seed-03", Name: "Samba Rice 5kg", SKU: "SKU-RICE-5K", Category: "grocery", BuyPriceCents: 145000, SellPriceCents: 179000, Quantity: 25, Supplier: "Lanka Wholesale"},
		{ID: "itm-seed-04", Name: "Coconut Oil 750ml", SKU: "SKU-OIL-750", Category: "grocery", BuyPriceCents: 62000, SellPriceCents: 78000, Quantity: 30, Supplier: "Highland Traders"},
		{ID: "itm-seed-05", Name: "Laundry Soap Bar", SKU: "SKU-SOAP-01", Category: "household", BuyPriceCents: 9500, SellPriceCents: 14000, Quantity: 120},
		{ID: "itm-seed-06", Name: "Exercise Book 120p", SKU: "SKU-BOOK-120", Category: "stationery", BuyPriceCents: 11000, SellPriceCents: 16500, Quantity: 60},
	}
	for _, item := range items {
		item.CreatedAt = now
		item.UpdatedAt = now
		s.itemsByID[item.ID] = item
		s.itemIDBySKU[skuKey(item.SKU)] = item.ID
	}
	return s
}

func (s *Store) CreateItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Name == "" || item.SKU == "" || item.SellPriceCents < 0 || item.Quantity < 0 {
		return nil, store.ErrValidation
	}
	if _, exists := s.itemIDBySKU[skuKey(item.SKU)]; exists {
		return nil, store.ErrConflict
	}
	if item.ID == "" {
		item.ID = xid.New("itm")
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	s.itemsByID[item.ID] = item
	s.itemIDBySKU[skuKey(item.SKU)] = item.ID
	created := item
	return &created, nil
}

func (s *Store) GetItem(_ context.Context, id string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.itemsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyItem := item
	return &copyItem, nil
}

func (s *Store) GetItemBySKU(_ context.Context, sku string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.itemIDBySKU[skuKey(sku)]
	if !exists {
		return nil, store.ErrNotFound
	}
	item := s.itemsByID[id]
	copyItem := item
	return &copyItem, nil
}

func (s *Store) ListItems(_ context.Context, filter domain.ItemFilter) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	items := make([]domain.InventoryItem, 0, len(s.itemsByID))
	for _, item := range s.itemsByID {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) && !strings.Contains(strings.ToLower(item.SKU), search) {
			continue
		}
		items = append(items, item)
	}

	slices.SortFunc(items, func(a, b domain.InventoryItem) int {
		return cmpString(a.Name, b.Name)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) UpdateItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.itemsByID[item.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if item.Name == "" || item.SellPriceCents < 0 {
		return nil, store.ErrValidation
	}

	item.SKU = existing.SKU
	item.Quantity = existing.Quantity
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	s.itemsByID[item.ID] = item
	updated := item
	return &updated, nil
}

func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.itemsByID[id]
	if !exists {
		return store.ErrNotFound
	}
	delete(s.itemsByID, id)
	delete(s.itemIDBySKU, skuKey(item.SKU))
	return nil
}

func (s *Store) AdjustItemQuantity(_ context.Context, id string, op string, qty int64) (*domain.InventoryItem, error) {
	if qty < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.itemsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}

	switch op {
	case domain.AdjustOpAdd:
		item.Quantity += qty
	case domain.AdjustOpSubtract:
		item.Quantity -= qty
		if item.Quantity < 0 {
			item.Quantity = 0
		}
	case domain.AdjustOpSet:
		item.Quantity = qty
	default:
		return nil, store.ErrValidation
	}

	item.UpdatedAt = time.Now().UTC()
	s.itemsByID[id] = item
	updated := item
	return &updated, nil
}

func (s *Store) LowStockItems(_ context.Context, threshold int64) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, 16)
	for _, item := range s.itemsByID {
		if item.Quantity <= threshold {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b domain.InventoryItem) int {
		if a.Quantity == b.Quantity {
			return cmpString(a.Name, b.Name)
		}
		if a.Quantity < b.Quantity {
			return -1
		}
		return 1
	})
	return items, nil
}

// CreateSale snapshots each cart line from the live item, decrements
// stock, and stores the sale under one lock so no partial state is
// ever visible. Totals are recomputed here from the snapshots.
func (s *Store) CreateSale(_ context.Context, sale domain.Sale, cart []domain.SaleCartItem) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(cart) == 0 {
		return nil, store.ErrValidation
	}
	if _, exists := s.saleIDByInvoice[sale.InvoiceNumber]; exists {
		return nil, store.ErrConflict
	}

	subtotal := int64(0)
	lines := make([]domain.SaleLineItem, 0, len(cart))
	decrements := make(map[string]int64, len(cart))
	for _, cartLine := range cart {
		if cartLine.Quantity < 1 {
			return nil, store.ErrValidation
		}
		item, exists := s.itemsByID[cartLine.ItemID]
		if !exists {
			return nil, store.ErrNotFound
		}
		// Check availability against the running total so repeated
		// lines for the same item cannot oversell the stock.
		if item.Quantity < decrements[item.ID]+cartLine.Quantity {
			return nil, &store.InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Available: item.Quantity,
				Requested: decrements[item.ID] + cartLine.Quantity,
			}
		}
		lineTotal := cartLine.Quantity * item.SellPriceCents
		lines = append(lines, domain.SaleLineItem{
			ID:             xid.New("sli"),
			ItemID:         item.ID,
			ItemName:       item.Name,
			SKU:            item.SKU,
			Quantity:       cartLine.Quantity,
			UnitPriceCents: item.SellPriceCents,
			LineTotalCents: lineTotal,
		})
		decrements[item.ID] += cartLine.Quantity
		subtotal += lineTotal
	}

	taxCents := int64(math.Round(float64(subtotal) * sale.TaxRate / 100))
	total := subtotal + taxCents - sale.DiscountCents

	if sale.ID == "" {
		sale.ID = xid.New("sal")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	for i := range lines {
		lines[i].SaleID = sale.ID
	}
	sale.Items = lines
	sale.SubtotalCents = subtotal
	sale.TaxCents = taxCents
	sale.TotalCents = total
	sale.PaymentStatus = domain.PaymentStatus(sale.PaidCents, total)

	for id, qty := range decrements {
		item := s.itemsByID[id]
		item.Quantity -= qty
		item.UpdatedAt = sale.CreatedAt
		s.itemsByID[id] = item
	}

	saved := cloneSale(&sale)
	s.salesByID[sale.ID] = saved
	s.saleIDByInvoice[sale.InvoiceNumber] = sale.ID
	return cloneSale(saved), nil
}

func (s *Store) GetSale(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.salesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) GetSaleByInvoice(_ context.Context, invoiceNumber string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.saleIDByInvoice[invoiceNumber]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneSale(s.salesByID[id]), nil
}

func (s *Store) ListSales(_ context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		if filter.Status != "" && sale.PaymentStatus != filter.Status {
			continue
		}
		if !filter.From.IsZero() && sale.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !sale.CreatedAt.Before(filter.To) {
			continue
		}
		sales = append(sales, *cloneSale(sale))
	}

	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if filter.Limit > 0 && len(sales) > filter.Limit {
		sales = sales[:filter.Limit]
	}
	return sales, nil
}

func (s *Store) DeleteSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.salesByID[id]
	if !exists {
		return store.ErrNotFound
	}

	now := time.Now().UTC()
	for _, line := range sale.Items {
		item, ok := s.itemsByID[line.ItemID]
		if !ok {
			// item was removed after the sale; nothing to restore
			continue
		}
		item.Quantity += line.Quantity
		item.UpdatedAt = now
		s.itemsByID[line.ItemID] = item
	}

	delete(s.salesByID, id)
	delete(s.saleIDByInvoice, sale.InvoiceNumber)
	return nil
}

func (s *Store) UpdateSalePayment(_ context.Context, id string, paidCents int64) (*domain.Sale, error) {
	if paidCents < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.salesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	sale.PaidCents = paidCents
	sale.PaymentStatus = domain.PaymentStatus(paidCents, sale.TotalCents)
	return cloneSale(sale), nil
}

func (s *Store) CreatePartner(_ context.Context, partner domain.Partner) (*domain.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if partner.Name == "" {
		return nil, store.ErrValidation
	}
	if partner.Type != domain.PartnerTypeInvestor && partner.Type != domain.PartnerTypeSupplier {
		return nil, store.ErrValidation
	}
	if partner.ID == "" {
		partner.ID = xid.New("prt")
	}
	now := time.Now().UTC()
	if partner.CreatedAt.IsZero() {
		partner.CreatedAt = now
	}
	partner.UpdatedAt = now

	s.partnersByID[partner.ID] = partner
	created := partner
	return &created, nil
}

func (s *Store) GetPartner(_ context.Context, id string) (*domain.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partner, exists := s.partnersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyPartner := partner
	return &copyPartner, nil
}

func (s *Store) ListPartners(_ context.Context, partnerType string) ([]domain.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partners := make([]domain.Partner, 0, len(s.partnersByID))
	for _, partner := range s.partnersByID {
		if partnerType != "" && partner.Type != partnerType {
			continue
		}
		partners = append(partners, partner)
	}
	slices.SortFunc(partners, func(a, b domain.Partner) int {
		return cmpString(a.Name, b.Name)
	})
	return partners, nil
}

func (s *Store) UpdatePartner(_ context.Context, partner domain.Partner) (*domain.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.partnersByID[partner.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if partner.Name == "" {
		return nil, store.ErrValidation
	}
	if partner.Type != domain.PartnerTypeInvestor && partner.Type != domain.PartnerTypeSupplier {
		return nil, store.ErrValidation
	}

	partner.CreatedAt = existing.CreatedAt
	partner.UpdatedAt = time.Now().UTC()
	s.partnersByID[partner.ID] = partner
	updated := partner
	return &updated, nil
}

func (s *Store) DeletePartner(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.partnersByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.partnersByID, id)
	return nil
}

func (s *Store) CreateInvestment(_ context.Context, investment domain.Investment) (*domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if investment.AmountCents < 1 {
		return nil, store.ErrValidation
	}
	if investment.Type != domain.InvestmentTypeInvest && investment.Type != domain.InvestmentTypeWithdraw {
		return nil, store.ErrValidation
	}
	partner, exists := s.partnersByID[investment.PartnerID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if investment.ID == "" {
		investment.ID = xid.New("inv")
	}
	if investment.CreatedAt.IsZero() {
		investment.CreatedAt = time.Now().UTC()
	}
	if investment.Date.IsZero() {
		investment.Date = investment.CreatedAt
	}
	investment.PartnerName = partner.Name

	s.investmentsByID[investment.ID] = investment
	created := investment
	return &created, nil
}

func (s *Store) GetInvestment(_ context.Context, id string) (*domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	investment, exists := s.investmentsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := investment
	return &found, nil
}

func (s *Store) ListInvestments(_ context.Context, filter domain.InvestmentFilter) ([]domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	investments := make([]domain.Investment, 0, len(s.investmentsByID))
	for _, investment := range s.investmentsByID {
		if filter.PartnerID != "" && investment.PartnerID != filter.PartnerID {
			continue
		}
		if filter.Type != "" && investment.Type != filter.Type {
			continue
		}
		investments = append(investments, investment)
	}
	slices.SortFunc(investments, func(a, b domain.Investment) int {
		if a.Date.Equal(b.Date) {
			return cmpString(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	if filter.Limit > 0 && len(investments) > filter.Limit {
		investments = investments[:filter.Limit]
	}
	return investments, nil
}

func (s *Store) UpdateInvestment(_ context.Context, investment domain.Investment) (*domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.investmentsByID[investment.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if investment.AmountCents < 1 {
		return nil, store.ErrValidation
	}
	if investment.Type != domain.InvestmentTypeInvest && investment.Type != domain.InvestmentTypeWithdraw {
		return nil, store.ErrValidation
	}
	partner, exists := s.partnersByID[investment.PartnerID]
	if !exists {
		return nil, store.ErrNotFound
	}
	investment.PartnerName = partner.Name
	investment.CreatedAt = existing.CreatedAt
	if investment.Date.IsZero() {
		investment.Date = existing.Date
	}

	s.investmentsByID[investment.ID] = investment
	updated := investment
	return &updated, nil
}

func (s *Store) DeleteInvestment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.investmentsByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.investmentsByID, id)
	return nil
}

func (s *Store) CreateReturn(_ context.Context, record domain.ReturnRecord) (*domain.ReturnRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.SaleID == "" || record.RefundCents < 0 {
		return nil, store.ErrValidation
	}
	sale, exists := s.salesByID[record.SaleID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if record.ID == "" {
		record.ID = xid.New("ret")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.InvoiceNumber = sale.InvoiceNumber

	s.returnsByID[record.ID] = cloneReturn(record)
	created := cloneReturn(record)
	return &created, nil
}

func (s *Store) GetReturn(_ context.Context, id string) (*domain.ReturnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.returnsByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyRecord := cloneReturn(record)
	return &copyRecord, nil
}

func (s *Store) ListReturns(_ context.Context, saleID string, limit int) ([]domain.ReturnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.ReturnRecord, 0, len(s.returnsByID))
	for _, record := range s.returnsByID {
		if saleID != "" && record.SaleID != saleID {
			continue
		}
		records = append(records, cloneReturn(record))
	}
	slices.SortFunc(records, func(a, b domain.ReturnRecord) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *Store) UpdateReturn(_ context.Context, record domain.ReturnRecord) (*domain.ReturnRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.returnsByID[record.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if record.RefundCents < 0 {
		return nil, store.ErrValidation
	}
	existing.Reason = record.Reason
	existing.RefundCents = record.RefundCents

	s.returnsByID[record.ID] = cloneReturn(existing)
	updated := cloneReturn(existing)
	return &updated, nil
}

func (s *Store) DeleteReturn(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.returnsByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.returnsByID, id)
	return nil
}

func (s *Store) GetSettings(_ context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		defaults := defaultSettings()
		return &defaults, nil
	}
	copySettings := *s.settings
	return &copySettings, nil
}

func (s *Store) UpdateSettings(_ context.Context, settings domain.Settings) (*domain.Settings, error) {
	if settings.TaxRate < 0 || settings.TaxRate > 100 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings.UpdatedAt = time.Now().UTC()
	s.settings = &settings
	copySettings := settings
	return &copySettings, nil
}

func (s *Store) DashboardOverview(_ context.Context, now time.Time, lowStockThreshold int64) (*domain.DashboardOverview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dayStart := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	overview := domain.DashboardOverview{}
	for _, sale := range s.salesByID {
		if !sale.CreatedAt.Before(dayStart) {
			overview.TodaySalesCents += sale.TotalCents
			overview.TodayTransactions++
		}
		if !sale.CreatedAt.Before(monthStart) {
			overview.MonthSalesCents += sale.TotalCents
			overview.MonthTransactions++
		}
		if sale.PaymentStatus != domain.PaymentStatusPaid {
			overview.UnpaidSalesCents += sale.TotalCents - sale.PaidCents
		}
	}
	for _, item := range s.itemsByID {
		overview.InventoryItems++
		overview.InventoryValueCents += item.Quantity * item.BuyPriceCents
		if item.Quantity <= lowStockThreshold {
			overview.LowStockCount++
		}
	}
	return &overview, nil
}

func (s *Store) RecentActivities(_ context.Context, limit int) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activities := make([]domain.Activity, 0, 32)
	for _, sale := range s.salesByID {
		activities = append(activities, domain.Activity{
			Kind:        "sale",
			ReferenceID: sale.ID,
			Description: "Sale " + sale.InvoiceNumber,
			AmountCents: sale.TotalCents,
			OccurredAt:  sale.CreatedAt,
		})
	}
	for _, investment := range s.investmentsByID {
		activities = append(activities, domain.Activity{
			Kind:        "investment",
			ReferenceID: investment.ID,
			Description: investment.Type + " by " + investment.PartnerName,
			AmountCents: investment.AmountCents,
			OccurredAt:  investment.CreatedAt,
		})
	}
	for _, record := range s.returnsByID {
		activities = append(activities, domain.Activity{
			Kind:        "return",
			ReferenceID: record.ID,
			Description: "Return against " + record.InvoiceNumber,
			AmountCents: record.RefundCents,
			OccurredAt:  record.CreatedAt,
		})
	}

	slices.SortFunc(activities, func(a, b domain.Activity) int {
		if a.OccurredAt.Equal(b.OccurredAt) {
			return cmpString(b.ReferenceID, a.ReferenceID)
		}
		if a.OccurredAt.After(b.OccurredAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func (s *Store) SalesAnalytics(_ context.Context, period string, limit int) ([]domain.SalesBucket, error) {
	var layout string
	switch period {
	case "day":
		layout = "2006-01-02"
	case "month":
		layout = "2006-01"
	case "year":
		layout = "2006"
	default:
		return nil, store.ErrValidation
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	byPeriod := map[string]*domain.SalesBucket{}
	for _, sale := range s.salesByID {
		key := sale.CreatedAt.UTC().Format(layout)
		bucket := byPeriod[key]
		if bucket == nil {
			bucket = &domain.SalesBucket{Period: key}
			byPeriod[key] = bucket
		}
		bucket.Transactions++
		bucket.SalesCents += sale.TotalCents
	}

	buckets := make([]domain.SalesBucket, 0, len(byPeriod))
	for _, bucket := range byPeriod {
		buckets = append(buckets, *bucket)
	}
	slices.SortFunc(buckets, func(a, b domain.SalesBucket) int {
		return cmpString(b.Period, a.Period)
	})
	if limit > 0 && len(buckets) > limit {
		buckets = buckets[:limit]
	}
	return buckets, nil
}

func (s *Store) TopSellingItems(_ context.Context, since time.Time, limit int) ([]domain.TopItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byItem := map[string]*domain.TopItem{}
	for _, sale := range s.salesByID {
		if !since.IsZero() && sale.CreatedAt.Before(since) {
			continue
		}
		for _, line := range sale.Items {
			entry := byItem[line.ItemID]
			if entry == nil {
				entry = &domain.TopItem{ItemID: line.ItemID, ItemName: line.ItemName, SKU: line.SKU}
				byItem[line.ItemID] = entry
			}
			entry.QuantitySold += line.Quantity
			entry.RevenueCents += line.LineTotalCents
			entry.TimesIncluded++
		}
	}

	top := make([]domain.TopItem, 0, len(byItem))
	for _, entry := range byItem {
		top = append(top, *entry)
	}
	slices.SortFunc(top, func(a, b domain.TopItem) int {
		if a.QuantitySold == b.QuantitySold {
			return cmpString(a.ItemName, b.ItemName)
		}
		if a.QuantitySold > b.QuantitySold {
			return -1
		}
		return 1
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrValidation
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrConflict
	}
	user.Username = username
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrValidation
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func defaultSettings() domain.Settings {
	return domain.Settings{
		StoreName:         "My Store",
		TaxRate:           0,
		Currency:          "LKR",
		LowStockThreshold: 5,
	}
}

func skuKey(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneSale(src *domain.Sale) *domain.Sale {
	if src == nil {
		return nil
	}
	dup := *src
	items := make([]domain.SaleLineItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	return &dup
}

func cloneReturn(src domain.ReturnRecord) domain.ReturnRecord {
	dup := src
	items := make([]domain.ReturnedItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	return dup
}
