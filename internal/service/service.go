package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"lankapos/internal/cache"
	"lankapos/internal/domain"
	"lankapos/internal/notify"
	"lankapos/internal/store"
	"lankapos/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const dashboardCacheKey = "dashboard:overview"

type Service struct {
	repo              store.Repository
	stats             cache.StatsCache
	notifier          notify.Notifier
	lowStockThreshold int64
	dashboardCacheTTL time.Duration
}

func New(repo store.Repository, stats cache.StatsCache, notifier notify.Notifier, lowStockThreshold int64, dashboardCacheTTL time.Duration) *Service {
	if stats == nil {
		stats = cache.NoopStatsCache{}
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if lowStockThreshold < 1 {
		lowStockThreshold = 5
	}
	if dashboardCacheTTL < time.Second {
		dashboardCacheTTL = 30 * time.Second
	}

	return &Service{
		repo:              repo,
		stats:             stats,
		notifier:          notifier,
		lowStockThreshold: lowStockThreshold,
		dashboardCacheTTL: dashboardCacheTTL,
	}
}

func (s *Service) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.InventoryItem, error) {
	return s.repo.ListItems(ctx, filter)
}

func (s *Service) GetItem(ctx context.Context, id string) (domain.InventoryItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return *item, nil
}

func (s *Service) GetItemBySKU(ctx context.Context, sku string) (domain.InventoryItem, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return domain.InventoryItem{}, store.ErrValidation
	}
	item, err := s.repo.GetItemBySKU(ctx, sku)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return *item, nil
}

func (s *Service) CreateItem(ctx context.Context, req domain.ItemCreateRequest) (domain.InventoryItem, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.InventoryItem{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	req.Category = strings.TrimSpace(req.Category)

	if req.Name == "" || req.SKU == "" {
		return domain.InventoryItem{}, store.ErrValidation
	}
	if req.BuyPriceCents < 0 || req.SellPriceCents < 0 || req.Quantity < 0 {
		return domain.InventoryItem{}, store.ErrValidation
	}

	created, err := s.repo.CreateItem(ctx, domain.InventoryItem{
		Name:           req.Name,
		SKU:            req.SKU,
		Category:       req.Category,
		BuyPriceCents:  req.BuyPriceCents,
		SellPriceCents: req.SellPriceCents,
		Quantity:       req.Quantity,
		Supplier:       strings.TrimSpace(req.Supplier),
		Description:    strings.TrimSpace(req.Description),
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}

	s.logAudit(ctx, "item_create", "item", created.ID, fmt.Sprintf("sku=%s,qty=%d", created.SKU, created.Quantity))
	s.invalidateDashboard(ctx)
	return *created, nil
}

func (s *Service) UpdateItem(ctx context.Context, id string, req domain.ItemUpdateRequest) (domain.InventoryItem, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.InventoryItem{}, fmt.Errorf("admin role required")
	}

	existing, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.InventoryItem{}, store.ErrValidation
		}
		updated.Name = name
	}
	if req.Category != nil {
		updated.Category = strings.TrimSpace(*req.Category)
	}
	if req.BuyPriceCents != nil {
		if *req.BuyPriceCents < 0 {
			return domain.InventoryItem{}, store.ErrValidation
		}
		updated.BuyPriceCents = *req.BuyPriceCents
	}
	if req.SellPriceCents != nil {
		if *req.SellPriceCents < 0 {
			return domain.InventoryItem{}, store.ErrValidation
		}
		updated.SellPriceCents = *req.SellPriceCents
	}
	if req.Supplier != nil {
		updated.Supplier = strings.TrimSpace(*req.Supplier)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}

	saved, err := s.repo.UpdateItem(ctx, updated)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	s.logAudit(ctx, "item_update", "item", saved.ID, fmt.Sprintf("sku=%s,price=%d", saved.SKU, saved.SellPriceCents))
	return *saved, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "item_delete", "item", id, "")
	s.invalidateDashboard(ctx)
	return nil
}

func (s *Service) AdjustItemQuantity(ctx context.Context, id string, req domain.QuantityAdjustRequest) (domain.InventoryItem, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.InventoryItem{}, fmt.Errorf("admin role required")
	}

	op := strings.ToLower(strings.TrimSpace(req.Operation))
	if op != domain.AdjustOpAdd && op != domain.AdjustOpSubtract && op != domain.AdjustOpSet {
		return domain.InventoryItem{}, store.ErrValidation
	}
	if req.Quantity < 0 {
		return domain.InventoryItem{}, store.ErrValidation
	}

	adjusted, err := s.repo.AdjustItemQuantity(ctx, id, op, req.Quantity)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	s.logAudit(ctx, "item_adjust", "item", adjusted.ID, fmt.Sprintf("op=%s,qty=%d,result=%d", op, req.Quantity, adjusted.Quantity))
	s.invalidateDashboard(ctx)
	return *adjusted, nil
}

func (s *Service) LowStockItems(ctx context.Context) ([]domain.InventoryItem, error) {
	threshold := s.lowStockThreshold
	if settings, err := s.repo.GetSettings(ctx); err == nil && settings.LowStockThreshold > 0 {
		threshold = settings.LowStockThreshold
	}
	return s.repo.LowStockItems(ctx, threshold)
}

// CreateSale validates the cart before touching stock, then runs the
// store-side workflow. The receipt notification happens after the sale
// is committed and can only downgrade the response to a warning.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.SaleResponse, error) {
	if len(req.Items) == 0 {
		return domain.SaleResponse{}, store.ErrValidation
	}
	if req.TaxRate < 0 || req.TaxRate > 100 {
		return domain.SaleResponse{}, store.ErrValidation
	}
	if req.DiscountCents < 0 || req.PaidCents < 0 {
		return domain.SaleResponse{}, store.ErrValidation
	}

	cart := normalizeCart(req.Items)
	if len(cart) == 0 {
		return domain.SaleResponse{}, store.ErrValidation
	}

	now := time.Now().UTC()
	sale := domain.Sale{
		ID:            xid.New("sal"),
		InvoiceNumber: domain.InvoiceNumber(now),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		TaxRate:       req.TaxRate,
		DiscountCents: req.DiscountCents,
		PaidCents:     req.PaidCents,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
	}

	created, err := s.repo.CreateSale(ctx, sale, cart)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.logAudit(ctx, "sale_create", "sale", created.ID, fmt.Sprintf("invoice=%s,total=%d,status=%s", created.InvoiceNumber, created.TotalCents, created.PaymentStatus))
	s.invalidateDashboard(ctx)

	resp := domain.SaleResponse{Sale: *created}
	if created.CustomerPhone != "" {
		settings, err := s.repo.GetSettings(ctx)
		if err != nil {
			settings = &domain.Settings{StoreName: "My Store"}
		}
		if err := s.notifier.SaleCreated(ctx, *created, *settings); err != nil {
			log.Printf("[service] WARN: receipt notification failed invoice=%s: %v", created.InvoiceNumber, err)
			resp.NotificationWarning = "sale recorded, but the receipt notification could not be sent"
		}
	}
	return resp, nil
}

// ResendReceipt sends the receipt for an existing sale again. Unlike
// the post-commit send in CreateSale this one is an explicit request,
// so delivery failures are returned to the caller.
func (s *Service) ResendReceipt(ctx context.Context, id string) error {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return err
	}
	if sale.CustomerPhone == "" {
		return store.ErrValidation
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		settings = &domain.Settings{StoreName: "My Store"}
	}
	if err := s.notifier.SaleCreated(ctx, *sale, *settings); err != nil {
		return fmt.Errorf("receipt notification failed: %w", err)
	}
	s.logAudit(ctx, "sale_notify", "sale", sale.ID, "receipt resent")
	return nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) GetSaleByInvoice(ctx context.Context, invoiceNumber string) (domain.Sale, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return domain.Sale{}, store.ErrValidation
	}
	sale, err := s.repo.GetSaleByInvoice(ctx, invoiceNumber)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) ListSales(ctx context.Context, status string, from string, to string, limit int) ([]domain.Sale, error) {
	filter := domain.SaleFilter{Status: strings.ToLower(strings.TrimSpace(status)), Limit: limit}
	switch filter.Status {
	case "", domain.PaymentStatusPaid, domain.PaymentStatusPartial, domain.PaymentStatusUnpaid:
	default:
		return nil, store.ErrValidation
	}

	if strings.TrimSpace(from) != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, store.ErrValidation
		}
		filter.From = parsed.UTC()
	}
	if strings.TrimSpace(to) != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, store.ErrValidation
		}
		// inclusive end date
		filter.To = parsed.UTC().Add(24 * time.Hour)
	}

	return s.repo.ListSales(ctx, filter)
}

func (s *Service) DeleteSale(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	if err := s.repo.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "sale_delete", "sale", id, "stock restored")
	s.invalidateDashboard(ctx)
	return nil
}

func (s *Service) UpdateSalePayment(ctx context.Context, id string, req domain.PaymentUpdateRequest) (domain.Sale, error) {
	// A request without paid_cents is rejected rather than treated as
	// zero, which would silently mark a paid sale unpaid.
	if req.PaidCents == nil || *req.PaidCents < 0 {
		return domain.Sale{}, store.ErrValidation
	}

	updated, err := s.repo.UpdateSalePayment(ctx, id, *req.PaidCents)
	if err != nil {
		return domain.Sale{}, err
	}

	s.logAudit(ctx, "sale_payment", "sale", updated.ID, fmt.Sprintf("paid=%d,status=%s", updated.PaidCents, updated.PaymentStatus))
	s.invalidateDashboard(ctx)
	return *updated, nil
}

func (s *Service) CreatePartner(ctx context.Context, req domain.PartnerCreateRequest) (domain.Partner, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Partner{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if req.Name == "" {
		return domain.Partner{}, store.ErrValidation
	}
	if req.Type != domain.PartnerTypeInvestor && req.Type != domain.PartnerTypeSupplier {
		return domain.Partner{}, store.ErrValidation
	}

	created, err := s.repo.CreatePartner(ctx, domain.Partner{
		Name:    req.Name,
		Type:    req.Type,
		Phone:   strings.TrimSpace(req.Phone),
		Email:   strings.TrimSpace(req.Email),
		Address: strings.TrimSpace(req.Address),
		Notes:   strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return domain.Partner{}, err
	}

	s.logAudit(ctx, "partner_create", "partner", created.ID, fmt.Sprintf("type=%s,name=%s", created.Type, created.Name))
	return *created, nil
}

func (s *Service) GetPartner(ctx context.Context, id string) (domain.Partner, error) {
	partner, err := s.repo.GetPartner(ctx, id)
	if err != nil {
		return domain.Partner{}, err
	}
	return *partner, nil
}

func (s *Service) ListPartners(ctx context.Context, partnerType string) ([]domain.Partner, error) {
	partnerType = strings.ToLower(strings.TrimSpace(partnerType))
	switch partnerType {
	case "", domain.PartnerTypeInvestor, domain.PartnerTypeSupplier:
	default:
		return nil, store.ErrValidation
	}
	return s.repo.ListPartners(ctx, partnerType)
}

func (s *Service) UpdatePartner(ctx context.Context, id string, req domain.PartnerUpdateRequest) (domain.Partner, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Partner{}, fmt.Errorf("admin role required")
	}

	existing, err := s.repo.GetPartner(ctx, id)
	if err != nil {
		return domain.Partner{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Partner{}, store.ErrValidation
		}
		updated.Name = name
	}
	if req.Type != nil {
		partnerType := strings.ToLower(strings.TrimSpace(*req.Type))
		if partnerType != domain.PartnerTypeInvestor && partnerType != domain.PartnerTypeSupplier {
			return domain.Partner{}, store.ErrValidation
		}
		updated.Type = partnerType
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		updated.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		updated.Address = strings.TrimSpace(*req.Address)
	}
	if req.Notes != nil {
		updated.Notes = strings.TrimSpace(*req.Notes)
	}

	saved, err := s.repo.UpdatePartner(ctx, updated)
	if err != nil {
		return domain.Partner{}, err
	}

	s.logAudit(ctx, "partner_update", "partner", saved.ID, fmt.Sprintf("type=%s,name=%s", saved.Type, saved.Name))
	return *saved, nil
}

func (s *Service) DeletePartner(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	if err := s.repo.DeletePartner(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "partner_delete", "partner", id, "")
	return nil
}

func (s *Service) CreateInvestment(ctx context.Context, req domain.InvestmentCreateRequest) (domain.Investment, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Investment{}, fmt.Errorf("admin role required")
	}

	req.PartnerID = strings.TrimSpace(req.PartnerID)
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if req.PartnerID == "" || req.AmountCents < 1 {
		return domain.Investment{}, store.ErrValidation
	}
	if req.Type != domain.InvestmentTypeInvest && req.Type != domain.InvestmentTypeWithdraw {
		return domain.Investment{}, store.ErrValidation
	}

	date := time.Now().UTC()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return domain.Investment{}, store.ErrValidation
		}
		date = parsed.UTC()
	}

	created, err := s.repo.CreateInvestment(ctx, domain.Investment{
		PartnerID:   req.PartnerID,
		Type:        req.Type,
		AmountCents: req.AmountCents,
		Date:        date,
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return domain.Investment{}, err
	}

	s.logAudit(ctx, "investment_create", "investment", created.ID, fmt.Sprintf("partner=%s,type=%s,amount=%d", created.PartnerName, created.Type, created.AmountCents))
	s.invalidateDashboard(ctx)
	return *created, nil
}

func (s *Service) GetInvestment(ctx context.Context, id string) (domain.Investment, error) {
	investment, err := s.repo.GetInvestment(ctx, id)
	if err != nil {
		return domain.Investment{}, err
	}
	return *investment, nil
}

func (s *Service) ListInvestments(ctx context.Context, partnerID string, investmentType string, limit int) ([]domain.Investment, error) {
	investmentType = strings.ToLower(strings.TrimSpace(investmentType))
	switch investmentType {
	case "", domain.InvestmentTypeInvest, domain.InvestmentTypeWithdraw:
	default:
		return nil, store.ErrValidation
	}
	return s.repo.ListInvestments(ctx, domain.InvestmentFilter{
		PartnerID: strings.TrimSpace(partnerID),
		Type:      investmentType,
		Limit:     limit,
	})
}

// UpdateInvestment corrects an existing ledger entry. Fields left out of
// the request keep their stored values.
func (s *Service) UpdateInvestment(ctx context.Context, id string, req domain.InvestmentUpdateRequest) (domain.Investment, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Investment{}, fmt.Errorf("admin role required")
	}

	existing, err := s.repo.GetInvestment(ctx, id)
	if err != nil {
		return domain.Investment{}, err
	}

	investment := *existing
	if req.PartnerID != nil {
		investment.PartnerID = strings.TrimSpace(*req.PartnerID)
		if investment.PartnerID == "" {
			return domain.Investment{}, store.ErrValidation
		}
	}
	if req.Type != nil {
		investment.Type = strings.ToLower(strings.TrimSpace(*req.Type))
		if investment.Type != domain.InvestmentTypeInvest && investment.Type != domain.InvestmentTypeWithdraw {
			return domain.Investment{}, store.ErrValidation
		}
	}
	if req.AmountCents != nil {
		if *req.AmountCents < 1 {
			return domain.Investment{}, store.ErrValidation
		}
		investment.AmountCents = *req.AmountCents
	}
	if req.Date != nil {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*req.Date))
		if err != nil {
			return domain.Investment{}, store.ErrValidation
		}
		investment.Date = parsed.UTC()
	}
	if req.Notes != nil {
		investment.Notes = strings.TrimSpace(*req.Notes)
	}

	updated, err := s.repo.UpdateInvestment(ctx, investment)
	if err != nil {
		return domain.Investment{}, err
	}

	s.logAudit(ctx, "investment_update", "investment", updated.ID, fmt.Sprintf("partner=%s,type=%s,amount=%d", updated.PartnerName, updated.Type, updated.AmountCents))
	s.invalidateDashboard(ctx)
	return *updated, nil
}

func (s *Service) DeleteInvestment(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	if err := s.repo.DeleteInvestment(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "investment_delete", "investment", id, "")
	s.invalidateDashboard(ctx)
	return nil
}

// CreateReturn records a return against a sale and restocks the
// returned items. Restock failures after the record is written are
// logged, not surfaced.
func (s *Service) CreateReturn(ctx context.Context, req domain.ReturnCreateRequest) (domain.ReturnRecord, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.ReturnRecord{}, fmt.Errorf("admin role required")
	}

	req.SaleID = strings.TrimSpace(req.SaleID)
	if req.SaleID == "" || req.RefundCents < 0 {
		return domain.ReturnRecord{}, store.ErrValidation
	}

	sale, err := s.repo.GetSale(ctx, req.SaleID)
	if err != nil {
		return domain.ReturnRecord{}, err
	}

	soldByItem := make(map[string]int64, len(sale.Items))
	for _, line := range sale.Items {
		soldByItem[line.ItemID] += line.Quantity
	}

	returned := make([]domain.ReturnedItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.ItemID == "" || line.Quantity < 1 {
			return domain.ReturnRecord{}, store.ErrValidation
		}
		if line.Quantity > soldByItem[line.ItemID] {
			return domain.ReturnRecord{}, store.ErrValidation
		}
		if line.ItemName == "" {
			for _, sold := range sale.Items {
				if sold.ItemID == line.ItemID {
					line.ItemName = sold.ItemName
					break
				}
			}
		}
		returned = append(returned, line)
	}
	if req.RefundCents > sale.TotalCents {
		return domain.ReturnRecord{}, store.ErrValidation
	}

	created, err := s.repo.CreateReturn(ctx, domain.ReturnRecord{
		SaleID:      sale.ID,
		Reason:      strings.TrimSpace(req.Reason),
		RefundCents: req.RefundCents,
		Items:       returned,
	})
	if err != nil {
		return domain.ReturnRecord{}, err
	}

	for _, line := range returned {
		if _, err := s.repo.AdjustItemQuantity(ctx, line.ItemID, domain.AdjustOpAdd, line.Quantity); err != nil {
			log.Printf("[service] WARN: failed to restock returned item id=%s qty=%d: %v", line.ItemID, line.Quantity, err)
		}
	}

	s.logAudit(ctx, "return_create", "return", created.ID, fmt.Sprintf("invoice=%s,refund=%d", created.InvoiceNumber, created.RefundCents))
	s.invalidateDashboard(ctx)
	return *created, nil
}

func (s *Service) GetReturn(ctx context.Context, id string) (domain.ReturnRecord, error) {
	record, err := s.repo.GetReturn(ctx, id)
	if err != nil {
		return domain.ReturnRecord{}, err
	}
	return *record, nil
}

func (s *Service) ListReturns(ctx context.Context, saleID string, limit int) ([]domain.ReturnRecord, error) {
	return s.repo.ListReturns(ctx, strings.TrimSpace(saleID), limit)
}

// UpdateReturn edits the reason or refund figure on a recorded return.
// The restocked quantities are not revisited; corrections to stock go
// through the quantity adjustment endpoint.
func (s *Service) UpdateReturn(ctx context.Context, id string, req domain.ReturnUpdateRequest) (domain.ReturnRecord, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.ReturnRecord{}, fmt.Errorf("admin role required")
	}

	existing, err := s.repo.GetReturn(ctx, id)
	if err != nil {
		return domain.ReturnRecord{}, err
	}

	record := *existing
	if req.Reason != nil {
		record.Reason = strings.TrimSpace(*req.Reason)
	}
	if req.RefundCents != nil {
		if *req.RefundCents < 0 {
			return domain.ReturnRecord{}, store.ErrValidation
		}
		record.RefundCents = *req.RefundCents
	}

	updated, err := s.repo.UpdateReturn(ctx, record)
	if err != nil {
		return domain.ReturnRecord{}, err
	}

	s.logAudit(ctx, "return_update", "return", updated.ID, fmt.Sprintf("invoice=%s,refund=%d", updated.InvoiceNumber, updated.RefundCents))
	return *updated, nil
}

// DeleteReturn removes the return record only. Stock restored when the
// return was created stays restored.
func (s *Service) DeleteReturn(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	if err := s.repo.DeleteReturn(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "return_delete", "return", id, "")
	return nil
}

func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	return *settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req domain.SettingsUpdateRequest) (domain.Settings, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Settings{}, fmt.Errorf("admin role required")
	}

	existing, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	updated := *existing
	if req.StoreName != nil {
		name := strings.TrimSpace(*req.StoreName)
		if name == "" {
			return domain.Settings{}, store.ErrValidation
		}
		updated.StoreName = name
	}
	if req.TaxRate != nil {
		if *req.TaxRate < 0 || *req.TaxRate > 100 {
			return domain.Settings{}, store.ErrValidation
		}
		updated.TaxRate = *req.TaxRate
	}
	if req.Currency != nil {
		updated.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		updated.Address = strings.TrimSpace(*req.Address)
	}
	if req.ReceiptFooter != nil {
		updated.ReceiptFooter = strings.TrimSpace(*req.ReceiptFooter)
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return domain.Settings{}, store.ErrValidation
		}
		updated.LowStockThreshold = *req.LowStockThreshold
	}

	saved, err := s.repo.UpdateSettings(ctx, updated)
	if err != nil {
		return domain.Settings{}, err
	}

	s.logAudit(ctx, "settings_update", "settings", "singleton", fmt.Sprintf("store=%s,tax=%.2f", saved.StoreName, saved.TaxRate))
	return *saved, nil
}

func (s *Service) DashboardOverview(ctx context.Context) (domain.DashboardOverview, error) {
	if cached, hit, err := s.stats.Get(ctx, dashboardCacheKey); err == nil && hit {
		return *cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: dashboard cache read failed: %v", err)
	}

	threshold := s.lowStockThreshold
	if settings, err := s.repo.GetSettings(ctx); err == nil && settings.LowStockThreshold > 0 {
		threshold = settings.LowStockThreshold
	}

	overview, err := s.repo.DashboardOverview(ctx, time.Now().UTC(), threshold)
	if err != nil {
		return domain.DashboardOverview{}, err
	}

	if err := s.stats.Set(ctx, dashboardCacheKey, overview, s.dashboardCacheTTL); err != nil {
		log.Printf("[service] WARN: dashboard cache write failed: %v", err)
	}
	return *overview, nil
}

func (s *Service) RecentActivities(ctx context.Context, limit int) ([]domain.Activity, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.RecentActivities(ctx, limit)
}

func (s *Service) SalesAnalytics(ctx context.Context, period string, limit int) ([]domain.SalesBucket, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = "day"
	}
	if limit < 1 || limit > 366 {
		limit = 30
	}
	return s.repo.SalesAnalytics(ctx, period, limit)
}

func (s *Service) TopSellingItems(ctx context.Context, days int, limit int) ([]domain.TopItem, error) {
	if days < 1 {
		days = 30
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	since := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	return s.repo.TopSellingItems(ctx, since, limit)
}

func normalizeCart(items []domain.SaleCartItem) []domain.SaleCartItem {
	agg := make(map[string]int64, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		itemID := strings.TrimSpace(item.ItemID)
		if itemID == "" || item.Quantity < 1 {
			return nil
		}
		if _, seen := agg[itemID]; !seen {
			order = append(order, itemID)
		}
		agg[itemID] += item.Quantity
	}

	normalized := make([]domain.SaleCartItem, 0, len(agg))
	for _, itemID := range order {
		normalized = append(normalized, domain.SaleCartItem{ItemID: itemID, Quantity: agg[itemID]})
	}
	return normalized
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if err := s.stats.Invalidate(ctx, dashboardCacheKey); err != nil {
		log.Printf("[service] WARN: dashboard cache invalidation failed: %v", err)
	}
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}
	log.Printf("[audit] actor=%s role=%s action=%s entity=%s/%s %s", actor.Username, actor.Role, action, entityType, entityID, detail)
}
