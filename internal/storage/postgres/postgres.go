package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/antonminaichev/storefront-orders/internal/types/operator"
	"github.com/antonminaichev/storefront-orders/internal/types/order"
	"github.com/antonminaichev/storefront-orders/internal/types/product"
	"github.com/shopspring/decimal"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	// проверяем, что БД жива
	if err := s.db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	// создаём таблицы
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            image_url TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS product_variants (
            id SERIAL PRIMARY KEY,
            product_id TEXT NOT NULL REFERENCES products(id),
            size TEXT NOT NULL DEFAULT '',
            unit_price NUMERIC(12,2) NOT NULL,
            stock INT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            order_number TEXT NOT NULL,
            checkout_session_id TEXT UNIQUE NOT NULL,
            payment_intent_id TEXT NOT NULL DEFAULT '',
            customer_id TEXT,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT NOT NULL,
            street TEXT NOT NULL,
            city TEXT NOT NULL,
            postal_code TEXT NOT NULL,
            country TEXT NOT NULL,
            phone TEXT,
            delivery_notes TEXT,
            currency TEXT NOT NULL,
            total_price NUMERIC(12,2) NOT NULL CHECK (total_price >= 0),
            payment_status TEXT NOT NULL,
            order_status TEXT NOT NULL,
            tracking_number TEXT,
            carrier TEXT,
            confirmation_sent BOOLEAN NOT NULL DEFAULT FALSE,
            confirmation_sent_at TIMESTAMPTZ,
            notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
            notification_sent_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id TEXT NOT NULL REFERENCES orders(id),
            product_id TEXT NOT NULL,
            name TEXT NOT NULL,
            size TEXT,
            quantity INT NOT NULL CHECK (quantity > 0),
            unit_price NUMERIC(12,2) NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS operators (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_payment_intent ON orders(payment_intent_id)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, o *order.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
        INSERT INTO orders (
            id, order_number, checkout_session_id, payment_intent_id, customer_id,
            first_name, last_name, email, street, city, postal_code, country,
            phone, delivery_notes, currency, total_price,
            payment_status, order_status, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	if _, err := tx.ExecContext(ctx, q,
		o.ID, o.OrderNumber, o.SessionID, o.PaymentIntent, o.CustomerID,
		o.FirstName, o.LastName, o.Email, o.Street, o.City, o.PostalCode, o.Country,
		o.Phone, o.DeliveryNotes, o.Currency, o.TotalPrice,
		o.PaymentStatus, o.OrderStatus, o.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const qi = `
        INSERT INTO order_items (order_id, product_id, name, size, quantity, unit_price)
        VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := tx.QueryRowContext(ctx, qi,
			o.ID, it.ProductID, it.Name, it.Size, it.Quantity, it.UnitPrice,
		).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return tx.Commit()
}

const orderColumns = `
    id, order_number, checkout_session_id, payment_intent_id, customer_id,
    first_name, last_name, email, street, city, postal_code, country,
    phone, delivery_notes, currency, total_price,
    payment_status, order_status, tracking_number, carrier,
    confirmation_sent, confirmation_sent_at,
    notification_sent, notification_sent_at, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*order.Order, error) {
	var o order.Order
	var confAt, notifAt sql.NullTime
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &o.SessionID, &o.PaymentIntent, &o.CustomerID,
		&o.FirstName, &o.LastName, &o.Email, &o.Street, &o.City, &o.PostalCode, &o.Country,
		&o.Phone, &o.DeliveryNotes, &o.Currency, &o.TotalPrice,
		&o.PaymentStatus, &o.OrderStatus, &o.TrackingNumber, &o.Carrier,
		&o.Confirmation.Sent, &confAt,
		&o.Notification.Sent, &notifAt, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if confAt.Valid {
		t := confAt.Time
		o.Confirmation.SentAt = &t
	}
	if notifAt.Valid {
		t := notifAt.Time
		o.Notification.SentAt = &t
	}
	return &o, nil
}

func (s *PostgresStorage) FindOrderByID(ctx context.Context, id string) (*order.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	items, err := s.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (s *PostgresStorage) FindOrderBySessionID(ctx context.Context, sessionID string) (*order.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE checkout_session_id = $1`
	return scanOrder(s.db.QueryRowContext(ctx, q, sessionID))
}

func (s *PostgresStorage) listOrderItems(ctx context.Context, orderID string) ([]order.Item, error) {
	const q = `
        SELECT id, order_id, product_id, name, size, quantity, unit_price
        FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Size, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) ListOrders(ctx context.Context) ([]order.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) UpdateOrderStatus(ctx context.Context, id string, status order.OrderStatus, trackingNumber, carrier *string) error {
	const q = `
        UPDATE orders
        SET order_status = $1,
            tracking_number = COALESCE($2, tracking_number),
            carrier = COALESCE($3, carrier)
        WHERE id = $4`
	res, err := s.db.ExecContext(ctx, q, status, trackingNumber, carrier, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStorage) UpdatePaymentStatusByIntent(ctx context.Context, intentID string, status order.PaymentStatus) (int64, error) {
	const q = `UPDATE orders SET payment_status = $1 WHERE payment_intent_id = $2`
	res, err := s.db.ExecContext(ctx, q, status, intentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PostgresStorage) UpdateEmailStatus(ctx context.Context, id string, confirmation, notification order.EmailResult) error {
	const q = `
        UPDATE orders
        SET confirmation_sent = $1,
            confirmation_sent_at = $2,
            notification_sent = $3,
            notification_sent_at = $4
        WHERE id = $5`
	_, err := s.db.ExecContext(ctx, q,
		confirmation.Sent, confirmation.SentAt,
		notification.Sent, notification.SentAt, id,
	)
	return err
}

func (s *PostgresStorage) GetOrderStats(ctx context.Context) (*order.Stats, error) {
	const q = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE payment_status = 'paid'),
               COUNT(*) FILTER (WHERE payment_status = 'failed'),
               COALESCE(SUM(total_price) FILTER (WHERE payment_status = 'paid'), 0)
        FROM orders`
	var st order.Stats
	var revenue decimal.Decimal
	if err := s.db.QueryRowContext(ctx, q).
		Scan(&st.TotalOrders, &st.PaidOrders, &st.FailedOrders, &revenue); err != nil {
		return nil, err
	}
	st.Revenue = revenue
	return &st, nil
}

func (s *PostgresStorage) FindProductByID(ctx context.Context, id string) (*product.Product, error) {
	const q = `SELECT id, name, image_url FROM products WHERE id = $1`
	var p product.Product
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.ImageURL); err != nil {
		return nil, err
	}
	variants, err := s.listVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

func (s *PostgresStorage) FindProductByName(ctx context.Context, name string) (*product.Product, error) {
	// Имена не уникальны: берётся первая запись без гарантии порядка.
	const q = `SELECT id, name, image_url FROM products WHERE name = $1 LIMIT 1`
	var p product.Product
	if err := s.db.QueryRowContext(ctx, q, name).Scan(&p.ID, &p.Name, &p.ImageURL); err != nil {
		return nil, err
	}
	variants, err := s.listVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

func (s *PostgresStorage) listVariants(ctx context.Context, productID string) ([]product.Variant, error) {
	const q = `
        SELECT id, product_id, size, unit_price, stock
        FROM product_variants WHERE product_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Variant
	for rows.Next() {
		var v product.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.UnitPrice, &v.Stock); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) ListProducts(ctx context.Context) ([]product.Product, error) {
	const q = `SELECT id, name, image_url FROM products ORDER BY name`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		variants, err := s.listVariants(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Variants = variants
	}
	return out, nil
}

func (s *PostgresStorage) DecrementStock(ctx context.Context, productID, size string, qty int64) error {
	// Остаток не уходит в минус; пропавший товар или вариант — ошибка.
	const q = `
        UPDATE product_variants
        SET stock = GREATEST(stock - $3, 0)
        WHERE id = (
            SELECT id FROM product_variants
            WHERE product_id = $1 AND ($2 = '' OR size = $2)
            ORDER BY id LIMIT 1
        )`
	res, err := s.db.ExecContext(ctx, q, productID, size, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no variant for product %s size %q", productID, size)
	}
	return nil
}

func (s *PostgresStorage) CreateOperator(ctx context.Context, op *operator.Operator) error {
	const q = `INSERT INTO operators (login, password_hash, created_at) VALUES ($1,$2,$3) RETURNING id`
	return s.db.QueryRowContext(ctx, q, op.Login, op.PasswordHash, op.CreatedAt).Scan(&op.ID)
}

func (s *PostgresStorage) FindOperatorByLogin(ctx context.Context, login string) (*operator.Operator, error) {
	const q = `SELECT id, login, password_hash, created_at FROM operators WHERE login = $1`
	op := &operator.Operator{}
	if err := s.db.QueryRowContext(ctx, q, login).
		Scan(&op.ID, &op.Login, &op.PasswordHash, &op.CreatedAt); err != nil {
		return nil, err
	}
	return op, nil
}
