package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"
)

// OwnershipService maps collectibles to their single owner and keeps each
// collectible's claimed flag in step with its ownership record.
type OwnershipService struct {
	base
}

func NewOwnershipService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *OwnershipService {
	return &OwnershipService{base: newBase(db, rm, cfg, "ownership", buildOptions(opts))}
}

// OwnerOf returns the owner of name, or "" when nobody owns it.
func (s *OwnershipService) OwnerOf(ctx context.Context, name string) (string, error) {
	var owner string
	err := s.run(ctx, "owner_of", func(ctx context.Context, tx dbx.DBTX) (err error) {
		owner, err = s.ownerTx(ctx, tx, name)
		return err
	})
	return owner, err
}

// Grant gives name to userID. It fails with common.ErrAlreadyOwned when
// the collectible has an owner and common.ErrorNotFound when it does not
// exist.
func (s *OwnershipService) Grant(ctx context.Context, userID, name string) error {
	return s.run(ctx, "grant", func(ctx context.Context, tx dbx.DBTX) error {
		return s.grantTx(ctx, tx, userID, name)
	})
}

// Release gives up userID's claim on name. Anyone else gets
// common.ErrNotOwner and nothing changes.
func (s *OwnershipService) Release(ctx context.Context, userID, name string) error {
	return s.run(ctx, "release", func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.releaseTx(ctx, tx, userID, name)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrNotOwner
		}
		return nil
	})
}

// ListOwned returns every collectible of userID in acquisition order.
func (s *OwnershipService) ListOwned(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := s.run(ctx, "list_owned", func(ctx context.Context, tx dbx.DBTX) (err error) {
		names, err = s.repos.Ownership(tx).ListByUser(ctx, userID, 0, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// OwnedPage returns one page of ListOwned. The zero-based page index wraps
// around in both directions.
func (s *OwnershipService) OwnedPage(ctx context.Context, userID string, page int) (*models.Page, error) {
	size := s.cfg.PageSize
	p := &models.Page{}
	err := s.run(ctx, "owned_page", func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Ownership(tx)
		total, err := repo.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		p.Total = total
		p.TotalPages = (total + size - 1) / size
		if p.TotalPages == 0 {
			p.Page, p.Items = 0, []string{}
			return nil
		}
		p.Page = ((page % p.TotalPages) + p.TotalPages) % p.TotalPages
		p.Items, err = repo.ListByUser(ctx, userID, size, p.Page*size)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ReleaseAll drops every ownership record and claimed flag.
func (s *OwnershipService) ReleaseAll(ctx context.Context) error {
	return s.run(ctx, "release_all", func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Ownership(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return s.repos.Collectibles(tx).ClearAllClaimed(ctx)
	})
}

// Audit lists collectibles whose claimed flag disagrees with their
// ownership records. An empty result means the catalog is consistent.
func (s *OwnershipService) Audit(ctx context.Context) ([]string, error) {
	var bad []string
	err := s.run(ctx, "audit", func(ctx context.Context, tx dbx.DBTX) error {
		bad = nil
		list, err := s.repos.Collectibles(tx).ListClaimState(ctx)
		if err != nil {
			return err
		}
		for _, c := range list {
			n, err := s.repos.Ownership(tx).CountByName(ctx, c.Name)
			if err != nil {
				return err
			}
			if n > 1 || c.Claimed != (n == 1) {
				bad = append(bad, c.Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(bad) > 0 {
		s.logger.Warn(ctx, "claimed flags out of step with ownership", "names", bad)
	}
	return bad, nil
}

func (s *OwnershipService) ownerTx(ctx context.Context, tx dbx.DBTX, name string) (string, error) {
	owner, err := s.repos.Ownership(tx).OwnerOf(ctx, name)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	return owner, err
}

// grantTx reads the current owner before inserting, so a concurrent grant
// on PostgreSQL surfaces as a retryable serialization failure and the retry
// sees the winner.
func (s *OwnershipService) grantTx(ctx context.Context, tx dbx.DBTX, userID, name string) error {
	c, err := s.repos.Collectibles(tx).GetByName(ctx, name)
	if err != nil {
		return err
	}
	owner, err := s.ownerTx(ctx, tx, c.Name)
	if err != nil {
		return err
	}
	if owner != "" {
		return common.ErrAlreadyOwned
	}
	err = s.repos.Ownership(tx).Create(ctx, &models.Ownership{
		UserID:          userID,
		CollectibleName: c.Name,
		AcquiredAt:      s.now(),
	})
	if err != nil {
		return err
	}
	return s.repos.Collectibles(tx).SetClaimed(ctx, c.Name, true)
}

func (s *OwnershipService) releaseTx(ctx context.Context, tx dbx.DBTX, userID, name string) (bool, error) {
	ok, err := s.repos.Ownership(tx).Delete(ctx, userID, name)
	if err != nil || !ok {
		return false, err
	}
	err = s.repos.Collectibles(tx).SetClaimed(ctx, name, false)
	if errors.Is(err, common.ErrorNotFound) {
		return true, nil
	}
	return err == nil, err
}
