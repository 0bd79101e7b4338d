package service

import (
	"context"
	"errors"

	"github.com/mkurosawa/marketplace-backend/internal/model"
	"github.com/mkurosawa/marketplace-backend/internal/repository"
	"gorm.io/gorm"
)

// AdminService gates every privileged mutation behind the stored admin
// flag. All checks run before any write.
type AdminService interface {
	IsAdmin(ctx context.Context, uid string) bool
	RequireAdmin(ctx context.Context, uid string) error

	SetBanned(ctx context.Context, adminUID, targetUID string, banned bool) error
	SetVerified(ctx context.Context, adminUID, targetUID string, verified bool) error
	Promote(ctx context.Context, adminUID, targetUID string) error
	DeleteUser(ctx context.Context, adminUID, targetUID string) error
	ListUsers(ctx context.Context, adminUID string, limit, offset int) ([]model.User, int64, error)

	SetListingActive(ctx context.Context, adminUID string, listingID uint64, active bool) error
	SetListingApproved(ctx context.Context, adminUID string, listingID uint64, approved bool) error
	DeleteListing(ctx context.Context, adminUID string, listingID uint64) error

	Stats(ctx context.Context, adminUID string) (*model.SiteStats, error)
}

type adminService struct {
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	statsRepo   repository.StatsRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	statsRepo repository.StatsRepository,
) AdminService {
	return &adminService{userRepo: userRepo, listingRepo: listingRepo, statsRepo: statsRepo}
}

// IsAdmin never errors on a missing session or row; both read as
// "not an admin".
func (s *adminService) IsAdmin(ctx context.Context, uid string) bool {
	if uid == "" {
		return false
	}
	u, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		return false
	}
	return u.Admin
}

func (s *adminService) RequireAdmin(ctx context.Context, uid string) error {
	if uid == "" {
		return ErrUnauthenticated
	}
	if !s.IsAdmin(ctx, uid) {
		return ErrForbidden
	}
	return nil
}

// SetBanned refuses to ban admin accounts; the guard is server-side, a
// disabled button in the dashboard is not a security boundary.
func (s *adminService) SetBanned(ctx context.Context, adminUID, targetUID string, banned bool) error {
	if err := s.RequireAdmin(ctx, adminUID); err != nil {
		return err
	}
	target, err := s.targetUser(ctx, targetUID)
	if err != nil {
		return err
	}
	if banned && target.Admin {
		return ErrForbidden
	}
	return s.userRepo.SetFlag(ctx, targetUID, "banned", banned)
}

func (s *adminService) SetVerified(ctx context.Context, adminUID, targetUID string, verified bool) error {
	if err := s.RequireAdmin(ctx, adminUID); err != nil {
		return err
	}
	if _, err := s.targetUser(ctx, targetUID); err != nil {
		return err
	}
	return s.userRepo.SetFlag(ctx, targetUID, "verified", verified)
}

func (s *adminService) Promote(ctx context.Context, adminUID, targetUID string) error {
	if err := s.RequireAdmin(ctx, adminUID); err != nil {
		return err
	}
	if _, err := s.targetUser(ctx, targetUID); err != nil {
		return err
	}
	return s.userRepo.SetFlag(ctx, targetUID, "admin", true)
}

// DeleteUser cascades to the target's listings. Admin accounts cannot
// be deleted through this path (self-lockout guard).
func (s *adminService) DeleteUser(ctx context.Context, adminUID, targetUID string) error {
	if err := s.RequireAdmin(ctx, adminUID); err != nil {
		return err
	}
	target, err := s.targetUser(ctx, targetUID)
	if err != nil {
		return err
	}
	if target.Admin {
		return ErrForbidden
	}
	return s.userRepo.DeleteWithListings(ctx, targetUID)
}

func (s *adminService) ListUsers(ctx context.Context, adminUID string, limit, offset int) ([]model.User, int64, error) {
	if err := s.RequireAdmin(ctx, adminUID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset)
}

func (s *adminService) SetListingActive(ctx context.Context, adminUID string, listingID uint64, active bool) error {
	return s.updateListing(ctx, adminUID, listingID, func(l *model.Listing) {
		l.Active = active
	})
}

func (s *adminService) SetListingApproved(ctx context.Context, adminUID string, listingID uint64, approved bool) error {
	return s.updateListing(ctx, adminUID, listingID, func(l *model.Listing) {
		l.Approved = approved
	})
}

func (s *adminService) DeleteListing(ctx context.Context, adminUID string, listingID uint64) error {
	if err := s.RequireAdmin(ctx, adminUID); err != nil {
		return err
	}
	if err := s.listingRepo.Delete(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *adminService) Stats(ctx context.Context, adminUID string) (*model.SiteStats, error) {
	if err := s.RequireAdmin(ctx, adminUID); err != nil {
		return nil, err
	}
	return s.statsRepo.Get(ctx)
}

func (s *adminService) updateListing(ctx context.Context, adminUID string, listingID uint64, mutate func(*model.Listing)) error {
	if err := s.RequireAdmin(ctx, adminUID); err != nil {
		return err
	}
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	mutate(listing)
	return s.listingRepo.Save(ctx, listing)
}

func (s *adminService) targetUser(ctx context.Context, uid string) (*model.User, error) {
	u, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
