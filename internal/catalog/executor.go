// Package catalog implements the SQL product-catalog path: LLM-generated
// candidate queries executed read-only against the all_products table,
// with error-driven regeneration wrapped in the bounded retry executor.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pazarbot/pazarbot/internal/schema"
)

// Schema is the fixed all_products contract handed to the generator model.
const Schema = `Table name: all_products

Columns:
- id (integer)
- main_category (text)
- sub_category (text)
- lowest_category (text)
- name (text)
- price (real)
- high_price (real)
- in_stock (text)
- product_link (text)
- page_link (text)
- image_url (text)
- date (text)
- market_name (text)`

// Open opens the product database.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	return db, nil
}

// Executor runs read-only SELECT queries against the product database.
// Retrying through the executor is safe because execution never writes.
type Executor struct {
	db *sql.DB
}

// NewExecutor creates an Executor over db.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// Query executes one SELECT and maps known columns into products. The
// database's raw error text is returned unmodified so the regenerator can
// see exactly what went wrong.
func (e *Executor) Query(ctx context.Context, query string) ([]schema.Product, error) {
	if !isSelect(query) {
		return nil, fmt.Errorf("refusing non-SELECT query")
	}

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var products []schema.Product
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		products = append(products, mapRow(cols, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// isSelect guards the read-only contract the retry executor depends on.
func isSelect(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT")
}

// mapRow copies recognized columns into a Product; unknown columns are
// ignored so generated queries may select extra fields freely.
func mapRow(cols []string, vals []any) schema.Product {
	var p schema.Product
	for i, col := range cols {
		switch strings.ToLower(col) {
		case "name":
			p.Name = asString(vals[i])
		case "price":
			p.Price = asFloat(vals[i])
		case "market_name":
			p.MarketName = asString(vals[i])
		case "product_link":
			p.ProductLink = asString(vals[i])
		case "main_category":
			p.MainCategory = asString(vals[i])
		case "sub_category":
			p.SubCategory = asString(vals[i])
		case "in_stock":
			p.InStock = asString(vals[i])
		case "image_url":
			p.ImageURL = asString(vals[i])
		}
	}
	return p
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case []byte:
		f, _ := strconv.ParseFloat(string(n), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
