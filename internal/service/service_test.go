package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"lankapos/internal/cache"
	"lankapos/internal/domain"
	"lankapos/internal/store"
	"lankapos/internal/store/memory"
)

type failingNotifier struct{}

func (failingNotifier) SaleCreated(_ context.Context, _ domain.Sale, _ domain.Settings) error {
	return fmt.Errorf("gateway unreachable")
}

func newTestService() *Service {
	return New(memory.New(), cache.NoopStatsCache{}, nil, 5, 30*time.Second)
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func cashierCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "cashier", Role: "cashier"})
}

func mustCreateItem(t *testing.T, svc *Service, sku string, priceCents int64, qty int64) domain.InventoryItem {
	t.Helper()
	item, err := svc.CreateItem(adminCtx(), domain.ItemCreateRequest{
		Name:           "Item " + sku,
		SKU:            sku,
		Category:       "grocery",
		BuyPriceCents:  priceCents / 2,
		SellPriceCents: priceCents,
		Quantity:       qty,
	})
	if err != nil {
		t.Fatalf("create item %s failed: %v", sku, err)
	}
	return item
}

func TestCreateSaleComputesTotalsAndDecrementsStock(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-TEA-01", 10000, 10)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items:   []domain.SaleCartItem{{ItemID: item.ID, Quantity: 3}},
		TaxRate: 10,
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	sale := resp.Sale
	if sale.SubtotalCents != 30000 {
		t.Fatalf("expected subtotal 30000, got %d", sale.SubtotalCents)
	}
	if sale.TaxCents != 3000 {
		t.Fatalf("expected tax 3000, got %d", sale.TaxCents)
	}
	if sale.TotalCents != 33000 {
		t.Fatalf("expected total 33000, got %d", sale.TotalCents)
	}
	if sale.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid status, got %s", sale.PaymentStatus)
	}
	if !strings.HasPrefix(sale.InvoiceNumber, "INV-") {
		t.Fatalf("unexpected invoice number %s", sale.InvoiceNumber)
	}
	if len(sale.Items) != 1 || sale.Items[0].UnitPriceCents != 10000 {
		t.Fatalf("expected one line at unit price 10000, got %+v", sale.Items)
	}

	after, err := svc.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if after.Quantity != 7 {
		t.Fatalf("expected quantity 7 after sale, got %d", after.Quantity)
	}
}

func TestCreateSaleAggregatesDuplicateCartLines(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-SUGAR-01", 2750, 20)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{
			{ItemID: item.ID, Quantity: 2},
			{ItemID: item.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if len(resp.Sale.Items) != 1 {
		t.Fatalf("expected duplicate lines merged into one, got %d", len(resp.Sale.Items))
	}
	if resp.Sale.Items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", resp.Sale.Items[0].Quantity)
	}
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-RICE-01", 17900, 2)

	_, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 5}},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	var stockErr *store.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected typed stock error, got %v", err)
	}
	if stockErr.Available != 2 || stockErr.Requested != 5 {
		t.Fatalf("expected available=2 requested=5, got %+v", stockErr)
	}

	after, err := svc.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if after.Quantity != 2 {
		t.Fatalf("expected stock untouched at 2, got %d", after.Quantity)
	}
}

func TestCreateSaleRollsBackWhenLaterLineIsUnknown(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-OIL-01", 7800, 10)

	_, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{
			{ItemID: item.ID, Quantity: 2},
			{ItemID: "itm-missing", Quantity: 1},
		},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	after, err := svc.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if after.Quantity != 10 {
		t.Fatalf("expected stock untouched at 10, got %d", after.Quantity)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-SOAP-01", 1400, 10)

	cases := []struct {
		name string
		req  domain.SaleCreateRequest
	}{
		{"empty cart", domain.SaleCreateRequest{}},
		{"zero quantity", domain.SaleCreateRequest{Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 0}}}},
		{"negative discount", domain.SaleCreateRequest{Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}}, DiscountCents: -1}},
		{"negative paid", domain.SaleCreateRequest{Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}}, PaidCents: -1}},
		{"tax over 100", domain.SaleCreateRequest{Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}}, TaxRate: 101}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateSale(cashierCtx(), tc.req); !errors.Is(err, store.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestCreateSaleAppliesDiscountAndPaidStatus(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-BOOK-01", 1650, 50)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items:         []domain.SaleCartItem{{ItemID: item.ID, Quantity: 2}},
		DiscountCents: 300,
		PaidCents:     3000,
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if resp.Sale.TotalCents != 3000 {
		t.Fatalf("expected total 3000 after discount, got %d", resp.Sale.TotalCents)
	}
	if resp.Sale.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected paid status, got %s", resp.Sale.PaymentStatus)
	}
}

func TestNotificationFailureDoesNotFailSale(t *testing.T) {
	svc := New(memory.New(), cache.NoopStatsCache{}, failingNotifier{}, 5, 30*time.Second)
	item := mustCreateItem(t, svc, "SKU-TEA-02", 12000, 5)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		CustomerPhone: "0771234567",
		Items:         []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("sale should survive notification failure: %v", err)
	}
	if resp.NotificationWarning == "" {
		t.Fatalf("expected notification warning on the response")
	}

	if _, err := svc.GetSale(context.Background(), resp.Sale.ID); err != nil {
		t.Fatalf("sale should be persisted: %v", err)
	}
}

func TestResendReceipt(t *testing.T) {
	svc := New(memory.New(), cache.NoopStatsCache{}, failingNotifier{}, 5, 30*time.Second)
	item := mustCreateItem(t, svc, "SKU-TEA-04", 12000, 5)

	if err := svc.ResendReceipt(cashierCtx(), "sal-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	noPhone, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if err := svc.ResendReceipt(cashierCtx(), noPhone.Sale.ID); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error without a phone, got %v", err)
	}

	withPhone, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		CustomerPhone: "0771234567",
		Items:         []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if err := svc.ResendReceipt(cashierCtx(), withPhone.Sale.ID); err == nil {
		t.Fatalf("expected delivery failure to be returned on explicit resend")
	}
}

func TestGetItemBySKU(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-FIND-01", 100, 1)

	found, err := svc.GetItemBySKU(context.Background(), "sku-find-01")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found.ID != item.ID {
		t.Fatalf("expected item %s, got %s", item.ID, found.ID)
	}

	if _, err := svc.GetItemBySKU(context.Background(), "SKU-NONE"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-RICE-02", 17900, 10)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	if err := svc.DeleteSale(adminCtx(), resp.Sale.ID); err != nil {
		t.Fatalf("delete sale failed: %v", err)
	}

	after, err := svc.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if after.Quantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", after.Quantity)
	}

	if err := svc.DeleteSale(adminCtx(), resp.Sale.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for repeated delete, got %v", err)
	}
}

func TestDeleteSaleRequiresAdmin(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-OIL-02", 7800, 5)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	if err := svc.DeleteSale(cashierCtx(), resp.Sale.ID); err == nil {
		t.Fatalf("expected non-admin delete to fail")
	}
}

func TestUpdateSalePaymentTransitions(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-SUGAR-02", 2750, 20)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	total := resp.Sale.TotalCents

	half := total / 2
	partial, err := svc.UpdateSalePayment(cashierCtx(), resp.Sale.ID, domain.PaymentUpdateRequest{PaidCents: &half})
	if err != nil {
		t.Fatalf("partial payment failed: %v", err)
	}
	if partial.PaymentStatus != domain.PaymentStatusPartial {
		t.Fatalf("expected partial status, got %s", partial.PaymentStatus)
	}

	over := total + 500
	paid, err := svc.UpdateSalePayment(cashierCtx(), resp.Sale.ID, domain.PaymentUpdateRequest{PaidCents: &over})
	if err != nil {
		t.Fatalf("full payment failed: %v", err)
	}
	if paid.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected paid status on overpayment, got %s", paid.PaymentStatus)
	}

	zero := int64(0)
	unpaid, err := svc.UpdateSalePayment(cashierCtx(), resp.Sale.ID, domain.PaymentUpdateRequest{PaidCents: &zero})
	if err != nil {
		t.Fatalf("reset payment failed: %v", err)
	}
	if unpaid.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid status after reset, got %s", unpaid.PaymentStatus)
	}

	negative := int64(-1)
	if _, err := svc.UpdateSalePayment(cashierCtx(), resp.Sale.ID, domain.PaymentUpdateRequest{PaidCents: &negative}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for negative paid, got %v", err)
	}

	if _, err := svc.UpdateSalePayment(cashierCtx(), resp.Sale.ID, domain.PaymentUpdateRequest{}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error when paid amount is omitted, got %v", err)
	}
	kept, err := svc.GetSale(cashierCtx(), resp.Sale.ID)
	if err != nil {
		t.Fatalf("get sale failed: %v", err)
	}
	if kept.PaymentStatus != domain.PaymentStatusUnpaid || kept.PaidCents != 0 {
		t.Fatalf("rejected update changed the sale: paid=%d status=%s", kept.PaidCents, kept.PaymentStatus)
	}
}

func TestAdjustItemQuantityOperations(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-BOOK-02", 1650, 10)

	added, err := svc.AdjustItemQuantity(adminCtx(), item.ID, domain.QuantityAdjustRequest{Operation: "add", Quantity: 5})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if added.Quantity != 15 {
		t.Fatalf("expected 15 after add, got %d", added.Quantity)
	}

	floored, err := svc.AdjustItemQuantity(adminCtx(), item.ID, domain.QuantityAdjustRequest{Operation: "subtract", Quantity: 100})
	if err != nil {
		t.Fatalf("subtract failed: %v", err)
	}
	if floored.Quantity != 0 {
		t.Fatalf("expected subtract to floor at 0, got %d", floored.Quantity)
	}

	set, err := svc.AdjustItemQuantity(adminCtx(), item.ID, domain.QuantityAdjustRequest{Operation: "set", Quantity: 7})
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if set.Quantity != 7 {
		t.Fatalf("expected 7 after set, got %d", set.Quantity)
	}

	if _, err := svc.AdjustItemQuantity(adminCtx(), item.ID, domain.QuantityAdjustRequest{Operation: "add", Quantity: -1}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for negative quantity, got %v", err)
	}
	if _, err := svc.AdjustItemQuantity(adminCtx(), item.ID, domain.QuantityAdjustRequest{Operation: "double", Quantity: 1}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for unknown operation, got %v", err)
	}
	if _, err := svc.AdjustItemQuantity(cashierCtx(), item.ID, domain.QuantityAdjustRequest{Operation: "add", Quantity: 1}); err == nil {
		t.Fatalf("expected non-admin adjust to fail")
	}
}

func TestCreateItemRequiresAdminAndUniqueSKU(t *testing.T) {
	svc := newTestService()

	if _, err := svc.CreateItem(cashierCtx(), domain.ItemCreateRequest{Name: "Test", SKU: "SKU-X-01", SellPriceCents: 100}); err == nil {
		t.Fatalf("expected non-admin create to fail")
	}

	mustCreateItem(t, svc, "SKU-X-01", 100, 1)
	_, err := svc.CreateItem(adminCtx(), domain.ItemCreateRequest{Name: "Dup", SKU: "sku-x-01", SellPriceCents: 100})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate sku, got %v", err)
	}
}

func TestCreateReturnRestocksItems(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-TEA-03", 12000, 10)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	record, err := svc.CreateReturn(adminCtx(), domain.ReturnCreateRequest{
		SaleID:      resp.Sale.ID,
		Reason:      "damaged packaging",
		RefundCents: 12000,
		Items:       []domain.ReturnedItem{{ItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}
	if record.InvoiceNumber != resp.Sale.InvoiceNumber {
		t.Fatalf("expected return linked to invoice %s, got %s", resp.Sale.InvoiceNumber, record.InvoiceNumber)
	}

	after, err := svc.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if after.Quantity != 8 {
		t.Fatalf("expected quantity 8 after return, got %d", after.Quantity)
	}

	_, err = svc.CreateReturn(adminCtx(), domain.ReturnCreateRequest{
		SaleID:      resp.Sale.ID,
		RefundCents: 0,
		Items:       []domain.ReturnedItem{{ItemID: item.ID, Quantity: 10}},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error when returning more than sold, got %v", err)
	}
}

func TestInvestmentsRequirePartner(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateInvestment(adminCtx(), domain.InvestmentCreateRequest{
		PartnerID:   "prt-missing",
		Type:        "invest",
		AmountCents: 500000,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown partner, got %v", err)
	}

	partner, err := svc.CreatePartner(adminCtx(), domain.PartnerCreateRequest{
		Name: "Nimal Perera",
		Type: "investor",
	})
	if err != nil {
		t.Fatalf("create partner failed: %v", err)
	}

	investment, err := svc.CreateInvestment(adminCtx(), domain.InvestmentCreateRequest{
		PartnerID:   partner.ID,
		Type:        "invest",
		AmountCents: 500000,
		Date:        "2026-08-01",
	})
	if err != nil {
		t.Fatalf("create investment failed: %v", err)
	}
	if investment.PartnerName != "Nimal Perera" {
		t.Fatalf("expected partner name copied onto the investment, got %s", investment.PartnerName)
	}
}

func TestUpdateReturnEditsReasonAndRefund(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-TEA-04", 12000, 10)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	record, err := svc.CreateReturn(adminCtx(), domain.ReturnCreateRequest{
		SaleID:      resp.Sale.ID,
		Reason:      "damaged packaging",
		RefundCents: 12000,
		Items:       []domain.ReturnedItem{{ItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}

	reason := "wrong size"
	refund := int64(9000)
	updated, err := svc.UpdateReturn(adminCtx(), record.ID, domain.ReturnUpdateRequest{
		Reason:      &reason,
		RefundCents: &refund,
	})
	if err != nil {
		t.Fatalf("update return failed: %v", err)
	}
	if updated.Reason != "wrong size" || updated.RefundCents != 9000 {
		t.Fatalf("unexpected update result: reason=%q refund=%d", updated.Reason, updated.RefundCents)
	}
	if updated.InvoiceNumber != record.InvoiceNumber {
		t.Fatalf("invoice link changed: %s -> %s", record.InvoiceNumber, updated.InvoiceNumber)
	}

	negative := int64(-1)
	if _, err := svc.UpdateReturn(adminCtx(), record.ID, domain.ReturnUpdateRequest{RefundCents: &negative}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for negative refund, got %v", err)
	}
	if _, err := svc.UpdateReturn(cashierCtx(), record.ID, domain.ReturnUpdateRequest{Reason: &reason}); err == nil {
		t.Fatalf("expected non-admin update to fail")
	}
}

func TestDeleteReturnKeepsRestockedStock(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-TEA-05", 12000, 10)

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	record, err := svc.CreateReturn(adminCtx(), domain.ReturnCreateRequest{
		SaleID: resp.Sale.ID,
		Items:  []domain.ReturnedItem{{ItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create return failed: %v", err)
	}

	if err := svc.DeleteReturn(adminCtx(), record.ID); err != nil {
		t.Fatalf("delete return failed: %v", err)
	}
	if _, err := svc.GetReturn(context.Background(), record.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.DeleteReturn(adminCtx(), record.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	after, err := svc.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if after.Quantity != 9 {
		t.Fatalf("expected stock to stay at 9 after record delete, got %d", after.Quantity)
	}
}

func TestUpdateInvestmentValidation(t *testing.T) {
	svc := newTestService()

	partner, err := svc.CreatePartner(adminCtx(), domain.PartnerCreateRequest{
		Name: "Kamala Silva",
		Type: "investor",
	})
	if err != nil {
		t.Fatalf("create partner failed: %v", err)
	}
	investment, err := svc.CreateInvestment(adminCtx(), domain.InvestmentCreateRequest{
		PartnerID:   partner.ID,
		Type:        "invest",
		AmountCents: 500000,
		Date:        "2026-08-01",
	})
	if err != nil {
		t.Fatalf("create investment failed: %v", err)
	}

	found, err := svc.GetInvestment(context.Background(), investment.ID)
	if err != nil {
		t.Fatalf("get investment failed: %v", err)
	}
	if found.AmountCents != 500000 {
		t.Fatalf("expected amount 500000, got %d", found.AmountCents)
	}

	newType := "withdraw"
	newAmount := int64(200000)
	updated, err := svc.UpdateInvestment(adminCtx(), investment.ID, domain.InvestmentUpdateRequest{
		Type:        &newType,
		AmountCents: &newAmount,
	})
	if err != nil {
		t.Fatalf("update investment failed: %v", err)
	}
	if updated.Type != "withdraw" || updated.AmountCents != 200000 {
		t.Fatalf("unexpected update result: type=%s amount=%d", updated.Type, updated.AmountCents)
	}
	if updated.PartnerName != "Kamala Silva" {
		t.Fatalf("expected partner name preserved, got %s", updated.PartnerName)
	}

	badType := "loan"
	if _, err := svc.UpdateInvestment(adminCtx(), investment.ID, domain.InvestmentUpdateRequest{Type: &badType}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
	zero := int64(0)
	if _, err := svc.UpdateInvestment(adminCtx(), investment.ID, domain.InvestmentUpdateRequest{AmountCents: &zero}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
	missingPartner := "prt-missing"
	if _, err := svc.UpdateInvestment(adminCtx(), investment.ID, domain.InvestmentUpdateRequest{PartnerID: &missingPartner}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown partner, got %v", err)
	}
	if _, err := svc.UpdateInvestment(cashierCtx(), investment.ID, domain.InvestmentUpdateRequest{AmountCents: &newAmount}); err == nil {
		t.Fatalf("expected non-admin update to fail")
	}
}

func TestDashboardOverviewCountsTodaySales(t *testing.T) {
	svc := newTestService()
	item := mustCreateItem(t, svc, "SKU-SOAP-02", 1400, 100)

	if _, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	overview, err := svc.DashboardOverview(context.Background())
	if err != nil {
		t.Fatalf("dashboard overview failed: %v", err)
	}
	if overview.TodayTransactions != 1 {
		t.Fatalf("expected 1 transaction today, got %d", overview.TodayTransactions)
	}
	if overview.TodaySalesCents != 2800 {
		t.Fatalf("expected 2800 cents sold today, got %d", overview.TodaySalesCents)
	}
}

func TestUpdateSettingsValidatesTaxRate(t *testing.T) {
	svc := newTestService()

	bad := 120.0
	if _, err := svc.UpdateSettings(adminCtx(), domain.SettingsUpdateRequest{TaxRate: &bad}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for tax rate over 100, got %v", err)
	}

	rate := 8.0
	name := "Araliya Stores"
	updated, err := svc.UpdateSettings(adminCtx(), domain.SettingsUpdateRequest{StoreName: &name, TaxRate: &rate})
	if err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	if updated.StoreName != "Araliya Stores" || updated.TaxRate != 8 {
		t.Fatalf("unexpected settings after update: %+v", updated)
	}
}
