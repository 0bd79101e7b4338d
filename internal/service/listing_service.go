package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/repository"
	"gorm.io/gorm"
)

// ListingInput carries the user-editable listing fields.
type ListingInput struct {
	Title       string
	Description string
	Price       uint
	Category    string
	Location    string
	ImageURL    *string
}

type ListingService interface {
	Create(ctx context.Context, sellerUID string, in ListingInput) (*model.Listing, error)
	Get(ctx context.Context, id uint64) (*model.Listing, error)
	Filter(ctx context.Context, f repository.ListingFilter) ([]model.Listing, int64, error)
	ListMine(ctx context.Context, sellerUID string) ([]model.Listing, error)
	Update(ctx context.Context, id uint64, sellerUID string, in ListingInput) (*model.Listing, error)
	SetActive(ctx context.Context, id uint64, sellerUID string, active bool) error
	Delete(ctx context.Context, id uint64, uid string) error
}

type listingService struct {
	repo     repository.ListingRepository
	userRepo repository.UserRepository
}

func NewListingService(repo repository.ListingRepository, userRepo repository.UserRepository) ListingService {
	return &listingService{repo: repo, userRepo: userRepo}
}

func validateListingInput(in *ListingInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Location = strings.TrimSpace(in.Location)
	if in.Title == "" || len(in.Title) > 120 {
		return invalid("title", "must be 1-120 characters")
	}
	if in.Description == "" {
		return invalid("description", "is required")
	}
	if in.Category == "" {
		return invalid("category", "is required")
	}
	if in.Location == "" {
		return invalid("location", "is required")
	}
	if in.ImageURL != nil && strings.HasPrefix(strings.TrimSpace(*in.ImageURL), "data:") {
		return invalid("imageUrl", "must be a URL, not a data URI")
	}
	return nil
}

// Create inserts a listing owned by sellerUID, visible immediately
// (active and auto-approved).
func (s *listingService) Create(ctx context.Context, sellerUID string, in ListingInput) (*model.Listing, error) {
	if sellerUID == "" {
		return nil, ErrUnauthenticated
	}
	seller, err := s.userRepo.FindByUID(ctx, sellerUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if seller.Banned {
		return nil, ErrForbidden
	}
	if err := validateListingInput(&in); err != nil {
		return nil, err
	}

	listing := &model.Listing{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Location:    in.Location,
		SellerUID:   sellerUID,
		ImageURL:    in.ImageURL,
		Active:      true,
		Approved:    true,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Get(ctx context.Context, id uint64) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Filter(ctx context.Context, f repository.ListingFilter) ([]model.Listing, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.Filter(ctx, f)
}

func (s *listingService) ListMine(ctx context.Context, sellerUID string) ([]model.Listing, error) {
	if sellerUID == "" {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListBySeller(ctx, sellerUID)
}

// Update is owner-only; admins use the privileged path instead.
func (s *listingService) Update(ctx context.Context, id uint64, sellerUID string, in ListingInput) (*model.Listing, error) {
	listing, err := s.ownedListing(ctx, id, sellerUID)
	if err != nil {
		return nil, err
	}
	if err := validateListingInput(&in); err != nil {
		return nil, err
	}
	listing.Title = in.Title
	listing.Description = in.Description
	listing.Price = in.Price
	listing.Category = in.Category
	listing.Location = in.Location
	if in.ImageURL != nil {
		listing.ImageURL = in.ImageURL
	}
	if err := s.repo.Save(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingService) SetActive(ctx context.Context, id uint64, sellerUID string, active bool) error {
	listing, err := s.ownedListing(ctx, id, sellerUID)
	if err != nil {
		return err
	}
	listing.Active = active
	return s.repo.Save(ctx, listing)
}

func (s *listingService) Delete(ctx context.Context, id uint64, uid string) error {
	if _, err := s.ownedListing(ctx, id, uid); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *listingService) ownedListing(ctx context.Context, id uint64, uid string) (*model.Listing, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if listing.SellerUID != uid {
		return nil, ErrForbidden
	}
	return listing, nil
}
