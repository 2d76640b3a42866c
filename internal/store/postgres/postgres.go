package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"lankapos/internal/domain"
	"lankapos/internal/store"
	"lankapos/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.SKU = strings.ToUpper(strings.TrimSpace(item.SKU))
	if item.Name == "" || item.SKU == "" || item.SellPriceCents < 0 || item.Quantity < 0 {
		return nil, store.ErrValidation
	}
	if item.ID == "" {
		item.ID = xid.New("itm")
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (
			id, name, sku, category, buy_price_cents, sell_price_cents,
			quantity, supplier, description, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, item.ID, item.Name, item.SKU, item.Category, item.BuyPriceCents, item.SellPriceCents,
		item.Quantity, nullIfEmpty(item.Supplier), nullIfEmpty(item.Description), item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := item
	return &created, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	return s.findItem(ctx, "id", id)
}

func (s *Store) GetItemBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	return s.findItem(ctx, "sku", strings.ToUpper(strings.TrimSpace(sku)))
}

func (s *Store) findItem(ctx context.Context, column string, value string) (*domain.InventoryItem, error) {
	if column != "id" && column != "sku" {
		return nil, fmt.Errorf("unsupported lookup column")
	}

	query := fmt.Sprintf(`
		SELECT id, name, sku, category, buy_price_cents, sell_price_cents,
			quantity, COALESCE(supplier,''), COALESCE(description,''), created_at, updated_at
		FROM inventory_items
		WHERE %s = $1
	`, column)

	var item domain.InventoryItem
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&item.ID, &item.Name, &item.SKU, &item.Category, &item.BuyPriceCents, &item.SellPriceCents,
		&item.Quantity, &item.Supplier, &item.Description, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return &item, nil
}

func (s *Store) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.InventoryItem, error) {
	limit := filter.Limit
	if limit < 1 {
		limit = 200
	}
	search := strings.TrimSpace(filter.Search)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, sku, category, buy_price_cents, sell_price_cents,
			quantity, COALESCE(supplier,''), COALESCE(description,''), created_at, updated_at
		FROM inventory_items
		WHERE ($1 = '' OR category = $1)
			AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%')
		ORDER BY name ASC
		LIMIT $3
	`, filter.Category, search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, limit)
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.Name, &item.SKU, &item.Category, &item.BuyPriceCents, &item.SellPriceCents,
			&item.Quantity, &item.Supplier, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.CreatedAt = item.CreatedAt.UTC()
		item.UpdatedAt = item.UpdatedAt.UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" || item.SellPriceCents < 0 {
		return nil, store.ErrValidation
	}

	// sku and quantity are never changed here; quantity moves only
	// through sales and explicit adjustments.
	var updated domain.InventoryItem
	err := s.db.QueryRowContext(ctx, `
		UPDATE inventory_items
		SET name = $2, category = $3, buy_price_cents = $4, sell_price_cents = $5,
			supplier = $6, description = $7, updated_at = now()
		WHERE id = $1
		RETURNING id, name, sku, category, buy_price_cents, sell_price_cents,
			quantity, COALESCE(supplier,''), COALESCE(description,''), created_at, updated_at
	`, item.ID, item.Name, item.Category, item.BuyPriceCents, item.SellPriceCents,
		nullIfEmpty(item.Supplier), nullIfEmpty(item.Description)).Scan(
		&updated.ID, &updated.Name, &updated.SKU, &updated.Category, &updated.BuyPriceCents, &updated.SellPriceCents,
		&updated.Quantity, &updated.Supplier, &updated.Description, &updated.CreatedAt, &updated.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	updated.CreatedAt = updated.CreatedAt.UTC()
	updated.UpdatedAt = updated.UpdatedAt.UTC()
	return &updated, nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AdjustItemQuantity(ctx context.Context, id string, op string, qty int64) (*domain.InventoryItem, error) {
	if qty < 0 {
		return nil, store.ErrValidation
	}

	var query string
	switch op {
	case domain.AdjustOpAdd:
		query = `UPDATE inventory_items SET quantity = quantity + $2, updated_at = now() WHERE id = $1`
	case domain.AdjustOpSubtract:
		query = `UPDATE inventory_items SET quantity = GREATEST(0, quantity - $2), updated_at = now() WHERE id = $1`
	case domain.AdjustOpSet:
		query = `UPDATE inventory_items SET quantity = $2, updated_at = now() WHERE id = $1`
	default:
		return nil, store.ErrValidation
	}
	query += `
		RETURNING id, name, sku, category, buy_price_cents, sell_price_cents,
			quantity, COALESCE(supplier,''), COALESCE(description,''), created_at, updated_at
	`

	var item domain.InventoryItem
	err := s.db.QueryRowContext(ctx, query, id, qty).Scan(
		&item.ID, &item.Name, &item.SKU, &item.Category, &item.BuyPriceCents, &item.SellPriceCents,
		&item.Quantity, &item.Supplier, &item.Description, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return &item, nil
}

func (s *Store) LowStockItems(ctx context.Context, threshold int64) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, sku, category, buy_price_cents, sell_price_cents,
			quantity, COALESCE(supplier,''), COALESCE(description,''), created_at, updated_at
		FROM inventory_items
		WHERE quantity <= $1
		ORDER BY quantity ASC, name ASC
	`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, 32)
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.Name, &item.SKU, &item.Category, &item.BuyPriceCents, &item.SellPriceCents,
			&item.Quantity, &item.Supplier, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.CreatedAt = item.CreatedAt.UTC()
		item.UpdatedAt = item.UpdatedAt.UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateSale runs the whole sale workflow in one serializable
// transaction: snapshot each item, decrement stock with a conditional
// update, then insert the header and lines. The conditional update is
// the only stock guard, so two concurrent sales can never oversell.
func (s *Store) CreateSale(ctx context.Context, sale domain.Sale, cart []domain.SaleCartItem) (*domain.Sale, error) {
	if len(cart) == 0 {
		return nil, store.ErrValidation
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	ids := make([]string, 0, len(cart))
	for _, line := range cart {
		if line.Quantity < 1 {
			return nil, store.ErrValidation
		}
		ids = append(ids, line.ItemID)
	}

	itemRows, err := pgTx.QueryContext(ctx, `
		SELECT id, name, sku, sell_price_cents, quantity
		FROM inventory_items
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	type itemSnapshot struct {
		name       string
		sku        string
		priceCents int64
		quantity   int64
	}
	snapshots := make(map[string]itemSnapshot, len(ids))
	for itemRows.Next() {
		var id string
		var snap itemSnapshot
		if err := itemRows.Scan(&id, &snap.name, &snap.sku, &snap.priceCents, &snap.quantity); err != nil {
			_ = itemRows.Close()
			return nil, err
		}
		snapshots[id] = snap
	}
	if err := itemRows.Err(); err != nil {
		_ = itemRows.Close()
		return nil, err
	}
	_ = itemRows.Close()

	subtotal := int64(0)
	lines := make([]domain.SaleLineItem, 0, len(cart))
	for _, cartLine := range cart {
		snap, exists := snapshots[cartLine.ItemID]
		if !exists {
			return nil, store.ErrNotFound
		}

		res, err := pgTx.ExecContext(ctx, `
			UPDATE inventory_items
			SET quantity = quantity - $1, updated_at = now()
			WHERE id = $2 AND quantity >= $1
		`, cartLine.Quantity, cartLine.ItemID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, &store.InsufficientStockError{
				ItemID:    cartLine.ItemID,
				ItemName:  snap.name,
				Available: snap.quantity,
				Requested: cartLine.Quantity,
			}
		}

		lineTotal := cartLine.Quantity * snap.priceCents
		lines = append(lines, domain.SaleLineItem{
			ID:             xid.New("sli"),
			ItemID:         cartLine.ItemID,
			ItemName:       snap.name,
			SKU:            snap.sku,
			Quantity:       cartLine.Quantity,
			UnitPriceCents: snap.priceCents,
			LineTotalCents: lineTotal,
		})
		subtotal += lineTotal
	}

	taxCents := int64(math.Round(float64(subtotal) * sale.TaxRate / 100))
	totalCents := subtotal + taxCents - sale.DiscountCents

	if sale.ID == "" {
		sale.ID = xid.New("sal")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	sale.SubtotalCents = subtotal
	sale.TaxCents = taxCents
	sale.TotalCents = totalCents
	sale.PaymentStatus = domain.PaymentStatus(sale.PaidCents, totalCents)
	for i := range lines {
		lines[i].SaleID = sale.ID
	}
	sale.Items = lines

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO sales (
			id, invoice_number, customer_name, customer_phone, subtotal_cents,
			tax_rate, tax_cents, discount_cents, total_cents, paid_cents,
			payment_status, payment_method, notes, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, sale.ID, sale.InvoiceNumber, nullIfEmpty(sale.CustomerName), nullIfEmpty(sale.CustomerPhone), sale.SubtotalCents,
		sale.TaxRate, sale.TaxCents, sale.DiscountCents, sale.TotalCents, sale.PaidCents,
		sale.PaymentStatus, nullIfEmpty(sale.PaymentMethod), nullIfEmpty(sale.Notes), sale.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	for _, line := range sale.Items {
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO sale_items (id, sale_id, item_id, item_name, sku, quantity, unit_price_cents, line_total_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, line.ID, line.SaleID, line.ItemID, line.ItemName, line.SKU, line.Quantity, line.UnitPriceCents, line.LineTotalCents)
		if err != nil {
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return s.findSale(ctx, "id", id)
}

func (s *Store) GetSaleByInvoice(ctx context.Context, invoiceNumber string) (*domain.Sale, error) {
	return s.findSale(ctx, "invoice_number", invoiceNumber)
}

func (s *Store) findSale(ctx context.Context, column string, value string) (*domain.Sale, error) {
	if column != "id" && column != "invoice_number" {
		return nil, fmt.Errorf("unsupported lookup column")
	}

	query := fmt.Sprintf(`
		SELECT id, invoice_number, COALESCE(customer_name,''), COALESCE(customer_phone,''),
			subtotal_cents, tax_rate, tax_cents, discount_cents, total_cents, paid_cents,
			payment_status, COALESCE(payment_method,''), COALESCE(notes,''), created_at
		FROM sales
		WHERE %s = $1
	`, column)

	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&sale.ID, &sale.InvoiceNumber, &sale.CustomerName, &sale.CustomerPhone,
		&sale.SubtotalCents, &sale.TaxRate, &sale.TaxCents, &sale.DiscountCents, &sale.TotalCents, &sale.PaidCents,
		&sale.PaymentStatus, &sale.PaymentMethod, &sale.Notes, &sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sale.CreatedAt = sale.CreatedAt.UTC()

	items, err := s.loadSaleItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (s *Store) loadSaleItems(ctx context.Context, saleID string) ([]domain.SaleLineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, item_id, item_name, sku, quantity, unit_price_cents, line_total_cents
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id ASC
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.SaleLineItem, 0, 8)
	for rows.Next() {
		var line domain.SaleLineItem
		if err := rows.Scan(&line.ID, &line.SaleID, &line.ItemID, &line.ItemName, &line.SKU, &line.Quantity, &line.UnitPriceCents, &line.LineTotalCents); err != nil {
			return nil, err
		}
		items = append(items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_number, COALESCE(customer_name,''), COALESCE(customer_phone,''),
			subtotal_cents, tax_rate, tax_cents, discount_cents, total_cents, paid_cents,
			payment_status, COALESCE(payment_method,''), COALESCE(notes,''), created_at
		FROM sales
		WHERE ($1 = '' OR payment_status = $1)
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC
		LIMIT $4
	`, filter.Status, nullTimeValue(filter.From), nullTimeValue(filter.To), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.InvoiceNumber, &sale.CustomerName, &sale.CustomerPhone,
			&sale.SubtotalCents, &sale.TaxRate, &sale.TaxCents, &sale.DiscountCents, &sale.TotalCents, &sale.PaidCents,
			&sale.PaymentStatus, &sale.PaymentMethod, &sale.Notes, &sale.CreatedAt); err != nil {
			return nil, err
		}
		sale.CreatedAt = sale.CreatedAt.UTC()
		sales = append(sales, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return sales, nil
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, item_id, item_name, sku, quantity, unit_price_cents, line_total_cents
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY id ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	itemMap := make(map[string][]domain.SaleLineItem, len(ids))
	for itemRows.Next() {
		var line domain.SaleLineItem
		if err := itemRows.Scan(&line.ID, &line.SaleID, &line.ItemID, &line.ItemName, &line.SKU, &line.Quantity, &line.UnitPriceCents, &line.LineTotalCents); err != nil {
			return nil, err
		}
		itemMap[line.SaleID] = append(itemMap[line.SaleID], line)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		sales[i].Items = itemMap[sales[i].ID]
	}
	return sales, nil
}

// DeleteSale restores every line's stock and removes the sale in one
// transaction. Line rows go with the header via ON DELETE CASCADE.
func (s *Store) DeleteSale(ctx context.Context, id string) error {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = pgTx.Rollback() }()

	var saleID string
	err = pgTx.QueryRowContext(ctx, `
		SELECT id FROM sales WHERE id = $1 FOR UPDATE
	`, id).Scan(&saleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}

	itemRows, err := pgTx.QueryContext(ctx, `
		SELECT item_id, quantity FROM sale_items WHERE sale_id = $1
	`, id)
	if err != nil {
		return err
	}
	type restoreLine struct {
		itemID string
		qty    int64
	}
	restores := make([]restoreLine, 0, 8)
	for itemRows.Next() {
		var line restoreLine
		if err := itemRows.Scan(&line.itemID, &line.qty); err != nil {
			_ = itemRows.Close()
			return err
		}
		restores = append(restores, line)
	}
	if err := itemRows.Err(); err != nil {
		_ = itemRows.Close()
		return err
	}
	_ = itemRows.Close()

	for _, line := range restores {
		// item may have been deleted since the sale; skipping is fine
		_, err := pgTx.ExecContext(ctx, `
			UPDATE inventory_items
			SET quantity = quantity + $1, updated_at = now()
			WHERE id = $2
		`, line.qty, line.itemID)
		if err != nil {
			return err
		}
	}

	if _, err := pgTx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id); err != nil {
		return err
	}
	return pgTx.Commit()
}

func (s *Store) UpdateSalePayment(ctx context.Context, id string, paidCents int64) (*domain.Sale, error) {
	if paidCents < 0 {
		return nil, store.ErrValidation
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var totalCents int64
	err = pgTx.QueryRowContext(ctx, `
		SELECT total_cents FROM sales WHERE id = $1 FOR UPDATE
	`, id).Scan(&totalCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	status := domain.PaymentStatus(paidCents, totalCents)
	_, err = pgTx.ExecContext(ctx, `
		UPDATE sales SET paid_cents = $2, payment_status = $3 WHERE id = $1
	`, id, paidCents, status)
	if err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	return s.GetSale(ctx, id)
}

func (s *Store) CreatePartner(ctx context.Context, partner domain.Partner) (*domain.Partner, error) {
	partner.Name = strings.TrimSpace(partner.Name)
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO partners (id, name, type, phone, email, address, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, partner.ID, partner.Name, partner.Type, nullIfEmpty(partner.Phone), nullIfEmpty(partner.Email),
		nullIfEmpty(partner.Address), nullIfEmpty(partner.Notes), partner.CreatedAt, partner.UpdatedAt)
	if err != nil {
		return nil, err
	}
	created := partner
	return &created, nil
}

func (s *Store) GetPartner(ctx context.Context, id string) (*domain.Partner, error) {
	var partner domain.Partner
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, COALESCE(phone,''), COALESCE(email,''), COALESCE(address,''), COALESCE(notes,''), created_at, updated_at
		FROM partners
		WHERE id = $1
	`, id).Scan(&partner.ID, &partner.Name, &partner.Type, &partner.Phone, &partner.Email, &partner.Address, &partner.Notes, &partner.CreatedAt, &partner.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	partner.CreatedAt = partner.CreatedAt.UTC()
	partner.UpdatedAt = partner.UpdatedAt.UTC()
	return &partner, nil
}

func (s *Store) ListPartners(ctx context.Context, partnerType string) ([]domain.Partner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, COALESCE(phone,''), COALESCE(email,''), COALESCE(address,''), COALESCE(notes,''), created_at, updated_at
		FROM partners
		WHERE ($1 = '' OR type = $1)
		ORDER BY name ASC
	`, partnerType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	partners := make([]domain.Partner, 0, 32)
	for rows.Next() {
		var partner domain.Partner
		if err := rows.Scan(&partner.ID, &partner.Name, &partner.Type, &partner.Phone, &partner.Email, &partner.Address, &partner.Notes, &partner.CreatedAt, &partner.UpdatedAt); err != nil {
			return nil, err
		}
		partner.CreatedAt = partner.CreatedAt.UTC()
		partner.UpdatedAt = partner.UpdatedAt.UTC()
		partners = append(partners, partner)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return partners, nil
}

func (s *Store) UpdatePartner(ctx context.Context, partner domain.Partner) (*domain.Partner, error) {
	partner.Name = strings.TrimSpace(partner.Name)
	if partner.Name == "" {
		return nil, store.ErrValidation
	}
	if partner.Type != domain.PartnerTypeInvestor && partner.Type != domain.PartnerTypeSupplier {
		return nil, store.ErrValidation
	}

	var updated domain.Partner
	err := s.db.QueryRowContext(ctx, `
		UPDATE partners
		SET name = $2, type = $3, phone = $4, email = $5, address = $6, notes = $7, updated_at = now()
		WHERE id = $1
		RETURNING id, name, type, COALESCE(phone,''), COALESCE(email,''), COALESCE(address,''), COALESCE(notes,''), created_at, updated_at
	`, partner.ID, partner.Name, partner.Type, nullIfEmpty(partner.Phone), nullIfEmpty(partner.Email),
		nullIfEmpty(partner.Address), nullIfEmpty(partner.Notes)).Scan(
		&updated.ID, &updated.Name, &updated.Type, &updated.Phone, &updated.Email, &updated.Address, &updated.Notes, &updated.CreatedAt, &updated.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	updated.CreatedAt = updated.CreatedAt.UTC()
	updated.UpdatedAt = updated.UpdatedAt.UTC()
	return &updated, nil
}

func (s *Store) DeletePartner(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// partner still has investment records
			return store.ErrConflict
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateInvestment(ctx context.Context, investment domain.Investment) (*domain.Investment, error) {
	if investment.AmountCents < 1 {
		return nil, store.ErrValidation
	}
	if investment.Type != domain.InvestmentTypeInvest && investment.Type != domain.InvestmentTypeWithdraw {
		return nil, store.ErrValidation
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

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	// partner name is copied onto the row so the record survives
	// partner edits
	var partnerName string
	err = pgTx.QueryRowContext(ctx, `
		SELECT name FROM partners WHERE id = $1
	`, investment.PartnerID).Scan(&partnerName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	investment.PartnerName = partnerName

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO investments (id, partner_id, partner_name, type, amount_cents, invested_on, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, investment.ID, investment.PartnerID, investment.PartnerName, investment.Type,
		investment.AmountCents, investment.Date, nullIfEmpty(investment.Notes), investment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	created := investment
	return &created, nil
}

func (s *Store) GetInvestment(ctx context.Context, id string) (*domain.Investment, error) {
	var investment domain.Investment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, partner_id, partner_name, type, amount_cents, invested_on, COALESCE(notes,''), created_at
		FROM investments
		WHERE id = $1
	`, id).Scan(&investment.ID, &investment.PartnerID, &investment.PartnerName, &investment.Type,
		&investment.AmountCents, &investment.Date, &investment.Notes, &investment.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	investment.Date = investment.Date.UTC()
	investment.CreatedAt = investment.CreatedAt.UTC()
	return &investment, nil
}

func (s *Store) ListInvestments(ctx context.Context, filter domain.InvestmentFilter) ([]domain.Investment, error) {
	limit := filter.Limit
	if limit < 1 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, partner_id, partner_name, type, amount_cents, invested_on, COALESCE(notes,''), created_at
		FROM investments
		WHERE ($1 = '' OR partner_id = $1)
			AND ($2 = '' OR type = $2)
		ORDER BY invested_on DESC
		LIMIT $3
	`, filter.PartnerID, filter.Type, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	investments := make([]domain.Investment, 0, limit)
	for rows.Next() {
		var investment domain.Investment
		if err := rows.Scan(&investment.ID, &investment.PartnerID, &investment.PartnerName, &investment.Type,
			&investment.AmountCents, &investment.Date, &investment.Notes, &investment.CreatedAt); err != nil {
			return nil, err
		}
		investment.Date = investment.Date.UTC()
		investment.CreatedAt = investment.CreatedAt.UTC()
		investments = append(investments, investment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return investments, nil
}

func (s *Store) UpdateInvestment(ctx context.Context, investment domain.Investment) (*domain.Investment, error) {
	if investment.AmountCents < 1 {
		return nil, store.ErrValidation
	}
	if investment.Type != domain.InvestmentTypeInvest && investment.Type != domain.InvestmentTypeWithdraw {
		return nil, store.ErrValidation
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var partnerName string
	err = pgTx.QueryRowContext(ctx, `
		SELECT name FROM partners WHERE id = $1
	`, investment.PartnerID).Scan(&partnerName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	investment.PartnerName = partnerName

	investedOn := sql.NullTime{Time: investment.Date, Valid: !investment.Date.IsZero()}
	res, err := pgTx.ExecContext(ctx, `
		UPDATE investments
		SET partner_id = $1, partner_name = $2, type = $3, amount_cents = $4,
			invested_on = COALESCE($5::timestamptz, invested_on), notes = $6
		WHERE id = $7
	`, investment.PartnerID, investment.PartnerName, investment.Type, investment.AmountCents,
		investedOn, nullIfEmpty(investment.Notes), investment.ID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return s.GetInvestment(ctx, investment.ID)
}

func (s *Store) DeleteInvestment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM investments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateReturn(ctx context.Context, record domain.ReturnRecord) (*domain.ReturnRecord, error) {
	if record.SaleID == "" || record.RefundCents < 0 {
		return nil, store.ErrValidation
	}
	if record.ID == "" {
		record.ID = xid.New("ret")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	var invoiceNumber string
	err := s.db.QueryRowContext(ctx, `
		SELECT invoice_number FROM sales WHERE id = $1
	`, record.SaleID).Scan(&invoiceNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	record.InvoiceNumber = invoiceNumber

	itemsJSON, err := json.Marshal(record.Items)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sale_returns (id, sale_id, invoice_number, reason, refund_cents, items_data, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, record.ID, record.SaleID, record.InvoiceNumber, nullIfEmpty(record.Reason), record.RefundCents, itemsJSON, record.CreatedAt)
	if err != nil {
		return nil, err
	}
	created := record
	return &created, nil
}

func (s *Store) GetReturn(ctx context.Context, id string) (*domain.ReturnRecord, error) {
	var record domain.ReturnRecord
	var itemsRaw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sale_id, invoice_number, COALESCE(reason,''), refund_cents, items_data, created_at
		FROM sale_returns
		WHERE id = $1
	`, id).Scan(&record.ID, &record.SaleID, &record.InvoiceNumber, &record.Reason, &record.RefundCents, &itemsRaw, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	record.CreatedAt = record.CreatedAt.UTC()
	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &record.Items); err != nil {
			return nil, err
		}
	}
	return &record, nil
}

func (s *Store) ListReturns(ctx context.Context, saleID string, limit int) ([]domain.ReturnRecord, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, invoice_number, COALESCE(reason,''), refund_cents, items_data, created_at
		FROM sale_returns
		WHERE ($1 = '' OR sale_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, saleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.ReturnRecord, 0, limit)
	for rows.Next() {
		var record domain.ReturnRecord
		var itemsRaw []byte
		if err := rows.Scan(&record.ID, &record.SaleID, &record.InvoiceNumber, &record.Reason, &record.RefundCents, &itemsRaw, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.CreatedAt = record.CreatedAt.UTC()
		if len(itemsRaw) > 0 {
			if err := json.Unmarshal(itemsRaw, &record.Items); err != nil {
				return nil, err
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) UpdateReturn(ctx context.Context, record domain.ReturnRecord) (*domain.ReturnRecord, error) {
	if record.RefundCents < 0 {
		return nil, store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sale_returns
		SET reason = $1, refund_cents = $2
		WHERE id = $3
	`, nullIfEmpty(record.Reason), record.RefundCents, record.ID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetReturn(ctx, record.ID)
}

func (s *Store) DeleteReturn(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sale_returns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT store_name, tax_rate, currency, COALESCE(phone,''), COALESCE(address,''),
			COALESCE(receipt_footer,''), low_stock_threshold, updated_at
		FROM settings
		WHERE id = 1
	`).Scan(&settings.StoreName, &settings.TaxRate, &settings.Currency, &settings.Phone, &settings.Address,
		&settings.ReceiptFooter, &settings.LowStockThreshold, &settings.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := domain.Settings{StoreName: "My Store", Currency: "LKR", LowStockThreshold: 5}
			return &defaults, nil
		}
		return nil, err
	}
	settings.UpdatedAt = settings.UpdatedAt.UTC()
	return &settings, nil
}

func (s *Store) UpdateSettings(ctx context.Context, settings domain.Settings) (*domain.Settings, error) {
	if settings.TaxRate < 0 || settings.TaxRate > 100 {
		return nil, store.ErrValidation
	}

	var updated domain.Settings
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO settings (id, store_name, tax_rate, currency, phone, address, receipt_footer, low_stock_threshold, updated_at)
		VALUES (1,$1,$2,$3,$4,$5,$6,$7,now())
		ON CONFLICT (id)
		DO UPDATE SET store_name = EXCLUDED.store_name, tax_rate = EXCLUDED.tax_rate,
			currency = EXCLUDED.currency, phone = EXCLUDED.phone, address = EXCLUDED.address,
			receipt_footer = EXCLUDED.receipt_footer, low_stock_threshold = EXCLUDED.low_stock_threshold,
			updated_at = now()
		RETURNING store_name, tax_rate, currency, COALESCE(phone,''), COALESCE(address,''),
			COALESCE(receipt_footer,''), low_stock_threshold, updated_at
	`, settings.StoreName, settings.TaxRate, settings.Currency, nullIfEmpty(settings.Phone),
		nullIfEmpty(settings.Address), nullIfEmpty(settings.ReceiptFooter), settings.LowStockThreshold).Scan(
		&updated.StoreName, &updated.TaxRate, &updated.Currency, &updated.Phone, &updated.Address,
		&updated.ReceiptFooter, &updated.LowStockThreshold, &updated.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = updated.UpdatedAt.UTC()
	return &updated, nil
}

func (s *Store) DashboardOverview(ctx context.Context, now time.Time, lowStockThreshold int64) (*domain.DashboardOverview, error) {
	dayStart := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	var overview domain.DashboardOverview
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(total_cents) FILTER (WHERE created_at >= $1),0)::bigint,
			COALESCE(COUNT(*) FILTER (WHERE created_at >= $1),0)::bigint,
			COALESCE(SUM(total_cents) FILTER (WHERE created_at >= $2),0)::bigint,
			COALESCE(COUNT(*) FILTER (WHERE created_at >= $2),0)::bigint,
			COALESCE(SUM(total_cents - paid_cents) FILTER (WHERE payment_status <> 'paid'),0)::bigint
		FROM sales
	`, dayStart, monthStart).Scan(
		&overview.TodaySalesCents,
		&overview.TodayTransactions,
		&overview.MonthSalesCents,
		&overview.MonthTransactions,
		&overview.UnpaidSalesCents,
	)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*)::bigint,
			COALESCE(SUM(quantity * buy_price_cents),0)::bigint,
			COALESCE(COUNT(*) FILTER (WHERE quantity <= $1),0)::bigint
		FROM inventory_items
	`, lowStockThreshold).Scan(
		&overview.InventoryItems,
		&overview.InventoryValueCents,
		&overview.LowStockCount,
	)
	if err != nil {
		return nil, err
	}
	return &overview, nil
}

func (s *Store) RecentActivities(ctx context.Context, limit int) ([]domain.Activity, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, reference_id, description, amount_cents, occurred_at FROM (
			SELECT 'sale' AS kind, id AS reference_id,
				'Sale ' || invoice_number AS description,
				total_cents AS amount_cents, created_at AS occurred_at
			FROM sales
			UNION ALL
			SELECT 'investment', id, type || ' by ' || partner_name, amount_cents, created_at
			FROM investments
			UNION ALL
			SELECT 'return', id, 'Return against ' || invoice_number, refund_cents, created_at
			FROM sale_returns
		) activity
		ORDER BY occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0, limit)
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(&activity.Kind, &activity.ReferenceID, &activity.Description, &activity.AmountCents, &activity.OccurredAt); err != nil {
			return nil, err
		}
		activity.OccurredAt = activity.OccurredAt.UTC()
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

func (s *Store) SalesAnalytics(ctx context.Context, period string, limit int) ([]domain.SalesBucket, error) {
	var format string
	switch period {
	case "day":
		format = "YYYY-MM-DD"
	case "month":
		format = "YYYY-MM"
	case "year":
		format = "YYYY"
	default:
		return nil, store.ErrValidation
	}
	if limit < 1 {
		limit = 30
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', $1) AS bucket,
			COUNT(*)::bigint, COALESCE(SUM(total_cents),0)::bigint
		FROM sales
		GROUP BY bucket
		ORDER BY bucket DESC
		LIMIT $2
	`, format, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]domain.SalesBucket, 0, limit)
	for rows.Next() {
		var bucket domain.SalesBucket
		if err := rows.Scan(&bucket.Period, &bucket.Transactions, &bucket.SalesCents); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buckets, nil
}

func (s *Store) TopSellingItems(ctx context.Context, since time.Time, limit int) ([]domain.TopItem, error) {
	if limit < 1 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT si.item_id, si.item_name, si.sku,
			COALESCE(SUM(si.quantity),0)::bigint,
			COALESCE(SUM(si.line_total_cents),0)::bigint,
			COUNT(DISTINCT si.sale_id)::bigint
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE ($1::timestamptz IS NULL OR s.created_at >= $1)
		GROUP BY si.item_id, si.item_name, si.sku
		ORDER BY 4 DESC, si.item_name ASC
		LIMIT $2
	`, nullTimeValue(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := make([]domain.TopItem, 0, limit)
	for rows.Next() {
		var entry domain.TopItem
		if err := rows.Scan(&entry.ItemID, &entry.ItemName, &entry.SKU, &entry.QuantitySold, &entry.RevenueCents, &entry.TimesIncluded); err != nil {
			return nil, err
		}
		top = append(top, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return top, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrValidation
	}
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTimeValue(val time.Time) any {
	if val.IsZero() {
		return nil
	}
	return val
}
