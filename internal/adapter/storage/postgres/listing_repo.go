package postgres

import (
	"context"
	"errors"
	"fmt"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListingRepo implements ports.ListingRepository.
type ListingRepo struct {
	pool Pool
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(pool Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `id, seller_id, kind, title, description, price, status, delivery_days, created_at, updated_at`

// Create inserts a listing.
func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	query := `INSERT INTO listings (id, seller_id, kind, title, description, price, status, delivery_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.SellerID, l.Kind, l.Title, l.Description, l.Price,
		l.Status, l.DeliveryDays, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// GetByID fetches a listing by UUID.
func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns)
	return r.scanListing(r.pool.QueryRow(ctx, query, id))
}

// Update rewrites the mutable listing fields.
func (r *ListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	query := `UPDATE listings
		SET title = $1, description = $2, price = $3, status = $4, delivery_days = $5, updated_at = $6
		WHERE id = $7`

	tag, err := r.pool.Exec(ctx, query,
		l.Title, l.Description, l.Price, l.Status, l.DeliveryDays, l.UpdatedAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing not found: %s", l.ID)
	}
	return nil
}

// List fetches listings with optional seller/kind/status filters, newest first.
func (r *ListingRepo) List(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	where := `WHERE 1=1`
	args := []any{}
	idx := 1

	if params.SellerID != nil {
		where += fmt.Sprintf(` AND seller_id = $%d`, idx)
		args = append(args, *params.SellerID)
		idx++
	}
	if params.Kind != nil {
		where += fmt.Sprintf(` AND kind = $%d`, idx)
		args = append(args, *params.Kind)
		idx++
	}
	if params.Status != nil {
		where += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, *params.Status)
		idx++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM listings %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, listingColumns, where, idx, idx+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		err := rows.Scan(
			&l.ID, &l.SellerID, &l.Kind, &l.Title, &l.Description, &l.Price,
			&l.Status, &l.DeliveryDays, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate listing rows: %w", err)
	}
	return listings, total, nil
}

func (r *ListingRepo) scanListing(row pgx.Row) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(
		&l.ID, &l.SellerID, &l.Kind, &l.Title, &l.Description, &l.Price,
		&l.Status, &l.DeliveryDays, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	return l, nil
}
