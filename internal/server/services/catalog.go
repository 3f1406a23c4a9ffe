package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"
)

// CatalogService manages the set of collectibles. Names are unique ignoring
// case.
type CatalogService struct {
	base
}

func NewCatalogService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *CatalogService {
	return &CatalogService{base: newBase(db, rm, cfg, "catalog", buildOptions(opts))}
}

// Add creates an unclaimed collectible. A case-insensitive clash yields
// common.ErrDuplicateName.
func (s *CatalogService) Add(ctx context.Context, name, image string) (*models.Collectible, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrInvalidName
	}

	var created *models.Collectible
	err := s.run(ctx, "catalog_add", func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Collectibles(tx)
		_, err := repo.GetByName(ctx, name)
		switch {
		case err == nil:
			return common.ErrDuplicateName
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}
		created, err = repo.Create(ctx, &models.Collectible{Name: name, Image: image, CreatedAt: s.now()})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "collectible added", "name", created.Name)
	return created, nil
}

// Remove deletes the collectible and its ownership record. Removing an
// unknown name is not an error.
func (s *CatalogService) Remove(ctx context.Context, name string) error {
	return s.run(ctx, "catalog_remove", func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Ownership(tx).DeleteByName(ctx, name); err != nil {
			return err
		}
		return s.repos.Collectibles(tx).DeleteByName(ctx, name)
	})
}

// Lookup finds a collectible by name, ignoring case.
func (s *CatalogService) Lookup(ctx context.Context, name string) (*models.Collectible, error) {
	var c *models.Collectible
	err := s.run(ctx, "catalog_lookup", func(ctx context.Context, tx dbx.DBTX) (err error) {
		c, err = s.repos.Collectibles(tx).GetByName(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RandomUnclaimed picks uniformly among unclaimed collectibles or fails with
// common.ErrEmptyPool.
func (s *CatalogService) RandomUnclaimed(ctx context.Context) (*models.Collectible, error) {
	var c *models.Collectible
	err := s.run(ctx, "random_unclaimed", func(ctx context.Context, tx dbx.DBTX) (err error) {
		c, err = s.randomUnclaimedTx(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the whole catalog in creation order.
func (s *CatalogService) List(ctx context.Context) ([]*models.Collectible, error) {
	var list []*models.Collectible
	err := s.run(ctx, "catalog_list", func(ctx context.Context, tx dbx.DBTX) (err error) {
		list, err = s.repos.Collectibles(tx).ListClaimState(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Profile returns the collectible with its current owner.
func (s *CatalogService) Profile(ctx context.Context, name string) (*models.Profile, error) {
	var p *models.Profile
	err := s.run(ctx, "profile", func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.repos.Collectibles(tx).GetByName(ctx, name)
		if err != nil {
			return err
		}
		owner, err := s.repos.Ownership(tx).OwnerOf(ctx, c.Name)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		p = &models.Profile{Collectible: c, OwnerID: owner}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) randomUnclaimedTx(ctx context.Context, tx dbx.DBTX) (*models.Collectible, error) {
	repo := s.repos.Collectibles(tx)
	n, err := repo.CountUnclaimed(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, common.ErrEmptyPool
	}
	return repo.UnclaimedAt(ctx, s.dice.IntN(n))
}
