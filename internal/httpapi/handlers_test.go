package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lankapos/internal/cache"
	"lankapos/internal/domain"
	"lankapos/internal/service"
	"lankapos/internal/store/memory"
)

type testEnv struct {
	api          *API
	handler      http.Handler
	adminToken   string
	cashierToken string
	csrfToken    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := memory.New()
	seedUser(t, repo, "admin", "admin-secret-1", "admin")
	seedUser(t, repo, "cashier", "cashier-secret-1", "cashier")

	svc := service.New(repo, cache.NoopStatsCache{}, nil, 5, 30*time.Second)
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, repo)
	api := New(svc, auth, "*")

	env := &testEnv{api: api, handler: api.Handler()}
	env.adminToken = env.login(t, "admin", "admin-secret-1")
	env.cashierToken = env.login(t, "cashier", "cashier-secret-1")
	env.csrfToken = api.generateCSRFToken()
	return env
}

func seedUser(t *testing.T, repo *memory.Store, username string, password string, role string) {
	t.Helper()
	err := repo.CreateUser(context.Background(), domain.UserAccount{
		Username:  username,
		Password:  password,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s failed: %v", username, err)
	}
}

func (e *testEnv) login(t *testing.T, username string, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", domain.LoginRequest{
		Username: username,
		Password: password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login for %s returned %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	decodeBody(t, rec, &resp)
	if resp.AccessToken == "" {
		t.Fatalf("login for %s returned empty token", username)
	}
	return resp.AccessToken
}

func (e *testEnv) do(t *testing.T, method string, path string, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", e.csrfToken)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func (e *testEnv) createItem(t *testing.T, sku string, priceCents int64, qty int64) domain.InventoryItem {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/items", e.adminToken, domain.ItemCreateRequest{
		Name:           "Item " + sku,
		SKU:            sku,
		Category:       "grocery",
		SellPriceCents: priceCents,
		Quantity:       qty,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.ItemResponse
	decodeBody(t, rec, &resp)
	return resp.Item
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestItemCreateAndList(t *testing.T) {
	env := newTestEnv(t)

	created := env.createItem(t, "SKU-TEA-01", 10000, 10)
	if created.ID == "" || created.SKU != "SKU-TEA-01" {
		t.Fatalf("unexpected created item: %+v", created)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/items?search=SKU-TEA", env.cashierToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list items returned %d: %s", rec.Code, rec.Body.String())
	}
	var list domain.ItemListResponse
	decodeBody(t, rec, &list)
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(list.Items))
	}
}

func TestItemCreateForbiddenForCashier(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/items", env.cashierToken, domain.ItemCreateRequest{
		Name: "Blocked", SKU: "SKU-NO-01", SellPriceCents: 100,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSaleCreateReturnsTotals(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-TEA-02", 10000, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/sales", env.cashierToken, domain.SaleCreateRequest{
		Items:   []domain.SaleCartItem{{ItemID: item.ID, Quantity: 3}},
		TaxRate: 10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sale returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.SaleResponse
	decodeBody(t, rec, &resp)
	if resp.Sale.SubtotalCents != 30000 || resp.Sale.TaxCents != 3000 || resp.Sale.TotalCents != 33000 {
		t.Fatalf("unexpected totals: %+v", resp.Sale)
	}
	if resp.Sale.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid, got %s", resp.Sale.PaymentStatus)
	}
}

func TestSaleCreateInsufficientStockDetail(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-RICE-01", 17900, 2)

	rec := env.do(t, http.MethodPost, "/api/v1/sales", env.cashierToken, domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 5}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Error  string `json:"error"`
		Detail struct {
			ItemID    string `json:"item_id"`
			Available int64  `json:"available"`
			Requested int64  `json:"requested"`
		} `json:"detail"`
	}
	decodeBody(t, rec, &body)
	if body.Detail.Available != 2 || body.Detail.Requested != 5 {
		t.Fatalf("expected detail available=2 requested=5, got %+v", body.Detail)
	}
	if body.Detail.ItemID != item.ID {
		t.Fatalf("expected detail item_id %s, got %s", item.ID, body.Detail.ItemID)
	}
}

func TestSaleCreateUnknownItemIs404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/sales", env.cashierToken, domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: "itm-missing", Quantity: 1}},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSalePaymentAndDelete(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-OIL-01", 7800, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/sales", env.cashierToken, domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 2}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sale returned %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.SaleResponse
	decodeBody(t, rec, &created)

	fullAmount := created.Sale.TotalCents
	rec = env.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/sales/%s/payment", created.Sale.ID), env.cashierToken, domain.PaymentUpdateRequest{
		PaidCents: &fullAmount,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("payment update returned %d: %s", rec.Code, rec.Body.String())
	}
	var paid struct {
		Sale domain.Sale `json:"sale"`
	}
	decodeBody(t, rec, &paid)
	if paid.Sale.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", paid.Sale.PaymentStatus)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/sales/"+created.Sale.ID, env.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete sale returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/sales/"+created.Sale.ID, env.adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/items/"+item.ID, env.cashierToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get item returned %d", rec.Code)
	}
	var restored domain.ItemResponse
	decodeBody(t, rec, &restored)
	if restored.Item.Quantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", restored.Item.Quantity)
	}
}

func TestSalePaymentRejectsMissingAmount(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-GHEE-01", 5200, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/sales", env.cashierToken, domain.SaleCreateRequest{
		Items:     []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}},
		PaidCents: 5720,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sale returned %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.SaleResponse
	decodeBody(t, rec, &created)
	if created.Sale.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected paid sale, got %s", created.Sale.PaymentStatus)
	}

	// A body without paid_cents must not be read as zero and wipe the
	// payment on a settled sale.
	rec = env.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/sales/%s/payment", created.Sale.ID), env.cashierToken, map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing paid_cents, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/sales/"+created.Sale.ID, env.cashierToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get sale returned %d", rec.Code)
	}
	var kept struct {
		Sale domain.Sale `json:"sale"`
	}
	decodeBody(t, rec, &kept)
	if kept.Sale.PaymentStatus != domain.PaymentStatusPaid || kept.Sale.PaidCents != created.Sale.PaidCents {
		t.Fatalf("rejected update changed the sale: paid=%d status=%s", kept.Sale.PaidCents, kept.Sale.PaymentStatus)
	}
}

func TestSaleLookupByInvoice(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-SOAP-01", 1400, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/sales", env.cashierToken, domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}},
	})
	var created domain.SaleResponse
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodGet, "/api/v1/sales/invoice/"+created.Sale.InvoiceNumber, env.cashierToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice lookup returned %d: %s", rec.Code, rec.Body.String())
	}
	var found struct {
		Sale domain.Sale `json:"sale"`
	}
	decodeBody(t, rec, &found)
	if found.Sale.ID != created.Sale.ID {
		t.Fatalf("expected sale %s, got %s", created.Sale.ID, found.Sale.ID)
	}
}

func TestQuantityAdjustEndpoint(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-BOOK-01", 1650, 10)

	rec := env.do(t, http.MethodPatch, "/api/v1/items/"+item.ID+"/quantity", env.adminToken, domain.QuantityAdjustRequest{
		Operation: "subtract",
		Quantity:  25,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("adjust returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.ItemResponse
	decodeBody(t, rec, &resp)
	if resp.Item.Quantity != 0 {
		t.Fatalf("expected subtract to floor at 0, got %d", resp.Item.Quantity)
	}

	// POST stays accepted for older clients.
	rec = env.do(t, http.MethodPost, "/api/v1/items/"+item.ID+"/quantity", env.adminToken, domain.QuantityAdjustRequest{
		Operation: "set",
		Quantity:  4,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("adjust via POST returned %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &resp)
	if resp.Item.Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", resp.Item.Quantity)
	}

	rec = env.do(t, http.MethodPatch, "/api/v1/items/"+item.ID+"/quantity", env.adminToken, domain.QuantityAdjustRequest{
		Operation: "set",
		Quantity:  -3,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative set, got %d", rec.Code)
	}
}

func TestItemLookupBySKU(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-FIND-01", 100, 1)

	rec := env.do(t, http.MethodGet, "/api/v1/items/sku/SKU-FIND-01", env.cashierToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sku lookup returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.ItemResponse
	decodeBody(t, rec, &resp)
	if resp.Item.ID != item.ID {
		t.Fatalf("expected item %s, got %s", item.ID, resp.Item.ID)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/items/sku/SKU-NONE", env.cashierToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown sku, got %d", rec.Code)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", env.cashierToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestResendReceiptRequiresPhone(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-NTF-01", 100, 5)

	rec := env.do(t, http.MethodPost, "/api/v1/sales", env.cashierToken, domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 1}},
	})
	var created domain.SaleResponse
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodPost, "/api/v1/sales/"+created.Sale.ID+"/notify", env.cashierToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a sale without a phone, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInvestmentsRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/investments", env.cashierToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/investments", env.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInvestmentLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/partners", env.adminToken, domain.PartnerCreateRequest{
		Name: "Nimal Perera",
		Type: "investor",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create partner returned %d: %s", rec.Code, rec.Body.String())
	}
	var createdPartner struct {
		Partner domain.Partner `json:"partner"`
	}
	decodeBody(t, rec, &createdPartner)

	rec = env.do(t, http.MethodPost, "/api/v1/investments", env.adminToken, domain.InvestmentCreateRequest{
		PartnerID:   createdPartner.Partner.ID,
		Type:        "invest",
		AmountCents: 750000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create investment returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Investment domain.Investment `json:"investment"`
	}
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodGet, "/api/v1/investments/"+created.Investment.ID, env.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get investment returned %d: %s", rec.Code, rec.Body.String())
	}

	newAmount := int64(600000)
	rec = env.do(t, http.MethodPatch, "/api/v1/investments/"+created.Investment.ID, env.adminToken, domain.InvestmentUpdateRequest{
		AmountCents: &newAmount,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update investment returned %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Investment domain.Investment `json:"investment"`
	}
	decodeBody(t, rec, &updated)
	if updated.Investment.AmountCents != 600000 {
		t.Fatalf("expected amount 600000, got %d", updated.Investment.AmountCents)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/investments/"+created.Investment.ID, env.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete investment returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodGet, "/api/v1/investments/"+created.Investment.ID, env.adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestReturnUpdateAndDeleteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-TEA-01", 12000, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/sales", env.cashierToken, domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 3}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sale returned %d: %s", rec.Code, rec.Body.String())
	}
	var sale domain.SaleResponse
	decodeBody(t, rec, &sale)

	rec = env.do(t, http.MethodPost, "/api/v1/returns", env.adminToken, domain.ReturnCreateRequest{
		SaleID:      sale.Sale.ID,
		Reason:      "damaged packaging",
		RefundCents: 12000,
		Items:       []domain.ReturnedItem{{ItemID: item.ID, Quantity: 1}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create return returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Return domain.ReturnRecord `json:"return"`
	}
	decodeBody(t, rec, &created)

	reason := "wrong size"
	rec = env.do(t, http.MethodPatch, "/api/v1/returns/"+created.Return.ID, env.adminToken, domain.ReturnUpdateRequest{
		Reason: &reason,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update return returned %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Return domain.ReturnRecord `json:"return"`
	}
	decodeBody(t, rec, &updated)
	if updated.Return.Reason != "wrong size" {
		t.Fatalf("expected updated reason, got %q", updated.Return.Reason)
	}
	if updated.Return.RefundCents != 12000 {
		t.Fatalf("expected refund untouched at 12000, got %d", updated.Return.RefundCents)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/returns/"+created.Return.ID, env.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete return returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodGet, "/api/v1/returns/"+created.Return.ID, env.adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestCashierManagementEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/users/cashiers", env.adminToken, domain.CashierCreateRequest{
		Username: "kamala",
		Password: "kamala-secret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cashier returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/cashiers", env.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list cashiers returned %d: %s", rec.Code, rec.Body.String())
	}
	var list struct {
		Cashiers []domain.CashierUser `json:"cashiers"`
	}
	decodeBody(t, rec, &list)
	if len(list.Cashiers) != 2 {
		t.Fatalf("expected 2 cashiers, got %d", len(list.Cashiers))
	}

	if env.login(t, "kamala", "kamala-secret") == "" {
		t.Fatalf("new cashier should be able to log in")
	}
}

func TestDashboardEndpoints(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "SKU-SUGAR-01", 2750, 20)

	rec := env.do(t, http.MethodPost, "/api/v1/sales", env.cashierToken, domain.SaleCreateRequest{
		Items: []domain.SaleCartItem{{ItemID: item.ID, Quantity: 2}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sale returned %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/dashboard/overview", env.cashierToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview returned %d: %s", rec.Code, rec.Body.String())
	}
	var overview domain.DashboardOverview
	decodeBody(t, rec, &overview)
	if overview.TodayTransactions != 1 {
		t.Fatalf("expected 1 transaction today, got %d", overview.TodayTransactions)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/dashboard/analytics?period=decade", env.cashierToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d", rec.Code)
	}
}
