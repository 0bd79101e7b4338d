package repository

import (
	"context"
	"strings"

	"github.com/mkurosawa/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

// ListingFilter narrows Filter results. All provided fields combine
// with AND semantics; zero values are ignored.
type ListingFilter struct {
	Query    string
	Category string
	Location string
	Limit    int
	Offset   int
}

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id uint64) (*model.Listing, error)
	Filter(ctx context.Context, f ListingFilter) ([]model.Listing, int64, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error)
	Save(ctx context.Context, listing *model.Listing) error
	Delete(ctx context.Context, id uint64) error
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *model.Listing) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) FindByID(ctx context.Context, id uint64) (*model.Listing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var l model.Listing
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// Filter returns active, approved listings only. Matching is done on
// lowered columns so behavior is identical across MySQL collations and
// the sqlite test driver.
func (r *listingRepository) Filter(ctx context.Context, f ListingFilter) ([]model.Listing, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.Listing{}).
		Where("active = ? AND approved = ?", true, true)
	if s := strings.TrimSpace(f.Query); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", pat, pat, pat)
	}
	if s := strings.TrimSpace(f.Category); s != "" {
		q = q.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var listings []model.Listing
	if err := q.
		Order("created_at desc").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepository) ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var listings []model.Listing
	if err := r.db.WithContext(ctx).
		Where("seller_uid = ?", sellerUID).
		Order("created_at desc").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) Save(ctx context.Context, listing *model.Listing) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *listingRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	res := r.db.WithContext(ctx).Delete(&model.Listing{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
