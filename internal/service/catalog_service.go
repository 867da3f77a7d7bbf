package service

import (
	"context"
	"fmt"
	"time"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"

	"github.com/google/uuid"
)

// CatalogServiceImpl implements ports.CatalogService: the marketplace listing
// and social feed surfaces.
type CatalogServiceImpl struct {
	listingRepo ports.ListingRepository
	postRepo    ports.PostRepository
}

// NewCatalogService creates a new CatalogServiceImpl.
func NewCatalogService(listingRepo ports.ListingRepository, postRepo ports.PostRepository) *CatalogServiceImpl {
	return &CatalogServiceImpl{listingRepo: listingRepo, postRepo: postRepo}
}

// CreateListing publishes a new listing for the seller.
func (s *CatalogServiceImpl) CreateListing(ctx context.Context, l *domain.Listing) error {
	now := time.Now().UTC()
	l.ID = uuid.New()
	l.Status = domain.ListingStatusActive
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := s.listingRepo.Create(ctx, l); err != nil {
		return apperror.InternalError(fmt.Errorf("create listing: %w", err))
	}
	return nil
}

// GetListing fetches a listing by id.
func (s *CatalogServiceImpl) GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	l, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find listing: %w", err))
	}
	if l == nil {
		return nil, apperror.ErrNotFound("listing")
	}
	return l, nil
}

// UpdateListing rewrites a listing's mutable fields. Seller only. Existing
// order items keep their snapshot prices regardless of listing edits.
func (s *CatalogServiceImpl) UpdateListing(ctx context.Context, sellerID uuid.UUID, l *domain.Listing) (*domain.Listing, error) {
	existing, err := s.listingRepo.GetByID(ctx, l.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find listing: %w", err))
	}
	if existing == nil {
		return nil, apperror.ErrNotFound("listing")
	}
	if existing.SellerID != sellerID {
		return nil, apperror.ErrNotOwner()
	}

	existing.Title = l.Title
	existing.Description = l.Description
	existing.Price = l.Price
	existing.DeliveryDays = l.DeliveryDays
	if l.Status != "" {
		existing.Status = l.Status
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.listingRepo.Update(ctx, existing); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update listing: %w", err))
	}
	return existing, nil
}

// DeactivateListing soft-deletes a listing by marking it inactive.
func (s *CatalogServiceImpl) DeactivateListing(ctx context.Context, sellerID, id uuid.UUID) error {
	existing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find listing: %w", err))
	}
	if existing == nil {
		return apperror.ErrNotFound("listing")
	}
	if existing.SellerID != sellerID {
		return apperror.ErrNotOwner()
	}

	existing.Status = domain.ListingStatusInactive
	existing.UpdatedAt = time.Now().UTC()

	if err := s.listingRepo.Update(ctx, existing); err != nil {
		return apperror.InternalError(fmt.Errorf("deactivate listing: %w", err))
	}
	return nil
}

// ListListings fetches listings with kind/seller/status filters.
func (s *CatalogServiceImpl) ListListings(ctx context.Context, params ports.ListingListParams) ([]domain.Listing, int64, error) {
	listings, total, err := s.listingRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list listings: %w", err))
	}
	return listings, total, nil
}

// CreatePost publishes a feed post.
func (s *CatalogServiceImpl) CreatePost(ctx context.Context, p *domain.Post) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()

	if err := s.postRepo.Create(ctx, p); err != nil {
		return apperror.InternalError(fmt.Errorf("create post: %w", err))
	}
	return nil
}

// GetPost fetches a post by id.
func (s *CatalogServiceImpl) GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	p, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find post: %w", err))
	}
	if p == nil {
		return nil, apperror.ErrNotFound("post")
	}
	return p, nil
}

// DeletePost removes a post. Author only.
func (s *CatalogServiceImpl) DeletePost(ctx context.Context, authorID, id uuid.UUID) error {
	p, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find post: %w", err))
	}
	if p == nil {
		return apperror.ErrNotFound("post")
	}
	if p.AuthorID != authorID {
		return apperror.ErrNotOwner()
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("delete post: %w", err))
	}
	return nil
}

// ListPosts fetches the global feed.
func (s *CatalogServiceImpl) ListPosts(ctx context.Context, page, pageSize int) ([]domain.Post, int64, error) {
	posts, total, err := s.postRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list posts: %w", err))
	}
	return posts, total, nil
}
