package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/techstore-sa/api/internal/domain"
)

// ProductRepository reads the device catalog from postgres.
type ProductRepository struct {
	pool *pgxpool.Pool
}

const productColumns = `id, name, description, price, original_price, image, category, badge, rating, imei, purchase_date`

// List returns the full catalog ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, wrapError("list products", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, wrapError("scan product", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list products", err)
	}
	return products, nil
}

// FindByID fetches a single product by its identifier.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, wrapError("find product", err)
	}
	return product, nil
}

// FindByIMEI fetches a single product by its device IMEI.
func (r *ProductRepository) FindByIMEI(ctx context.Context, imei string) (domain.Product, error) {
	imei = strings.TrimSpace(imei)
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE imei = $1`, imei)
	product, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, wrapError("find product by imei", err)
	}
	return product, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var product domain.Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.OriginalPrice,
		&product.Image,
		&product.Category,
		&product.Badge,
		&product.Rating,
		&product.IMEI,
		&product.PurchaseDate,
	)
	if err != nil {
		return domain.Product{}, err
	}
	return product, nil
}
