package repository

import (
	"context"

	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/repository/dao"
)

type AffiliateProgramDAO interface {
	Insert(ctx context.Context, program dao.AffiliateProgram) (dao.AffiliateProgram, error)
	FindByID(ctx context.Context, id uint) (dao.AffiliateProgram, error)
	FindByClientID(ctx context.Context, clientID uint) (dao.AffiliateProgram, error)
	FindTierByName(ctx context.Context, name string) (dao.AffiliateTier, error)
	FindAllTiers(ctx context.Context) ([]dao.AffiliateTier, error)
	UpsertTier(ctx context.Context, tier dao.AffiliateTier) (dao.AffiliateTier, error)
	IncrementPoints(ctx context.Context, id uint, amount int) error
	DeductPoints(ctx context.Context, id uint, amount int) error
	ReassignTier(ctx context.Context, clientID uint, from, to string) (bool, error)
}

type AffiliateProgramRepository struct {
	dao AffiliateProgramDAO
}

func NewAffiliateProgramRepository(dao AffiliateProgramDAO) *AffiliateProgramRepository {
	return &AffiliateProgramRepository{
		dao: dao,
	}
}

func (r *AffiliateProgramRepository) Create(ctx context.Context, program domain.AffiliateProgram) (domain.AffiliateProgram, error) {
	created, err := r.dao.Insert(ctx, programDomainToDao(program))
	if err != nil {
		return domain.AffiliateProgram{}, err
	}

	return programDaoToDomain(created), nil
}

func (r *AffiliateProgramRepository) FindByID(ctx context.Context, id uint) (domain.AffiliateProgram, error) {
	program, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.AffiliateProgram{}, err
	}

	return programDaoToDomain(program), nil
}

func (r *AffiliateProgramRepository) FindByClientID(ctx context.Context, clientID uint) (domain.AffiliateProgram, error) {
	program, err := r.dao.FindByClientID(ctx, clientID)
	if err != nil {
		return domain.AffiliateProgram{}, err
	}

	return programDaoToDomain(program), nil
}

func (r *AffiliateProgramRepository) FindTierByName(ctx context.Context, tier domain.Tier) (domain.AffiliateTier, error) {
	t, err := r.dao.FindTierByName(ctx, tier.String())
	if err != nil {
		return domain.AffiliateTier{}, err
	}

	return tierDaoToDomain(t), nil
}

func (r *AffiliateProgramRepository) FindAllTiers(ctx context.Context) ([]domain.AffiliateTier, error) {
	tiers, err := r.dao.FindAllTiers(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.AffiliateTier, len(tiers))
	for i, t := range tiers {
		result[i] = tierDaoToDomain(t)
	}

	return result, nil
}

func (r *AffiliateProgramRepository) UpsertTier(ctx context.Context, tier domain.AffiliateTier) (domain.AffiliateTier, error) {
	t, err := r.dao.UpsertTier(ctx, dao.AffiliateTier{
		Name:        tier.Name.String(),
		Description: tier.Description,
	})
	if err != nil {
		return domain.AffiliateTier{}, err
	}

	return tierDaoToDomain(t), nil
}

func (r *AffiliateProgramRepository) IncrementPoints(ctx context.Context, id uint, amount int) error {
	return r.dao.IncrementPoints(ctx, id, amount)
}

func (r *AffiliateProgramRepository) DeductPoints(ctx context.Context, id uint, amount int) error {
	return r.dao.DeductPoints(ctx, id, amount)
}

// ReassignClientTier moves a standard program to tier. Programs already above
// standard are left alone; the result reports whether a row changed.
func (r *AffiliateProgramRepository) ReassignClientTier(ctx context.Context, clientID uint, tier domain.Tier) (bool, error) {
	return r.dao.ReassignTier(ctx, clientID, domain.TierStandard.String(), tier.String())
}

func programDomainToDao(p domain.AffiliateProgram) dao.AffiliateProgram {
	return dao.AffiliateProgram{
		ID:         p.ID,
		ClientID:   p.ClientID,
		Tier:       p.Tier.String(),
		Points:     p.Points,
		CardNumber: p.CardNumber,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func programDaoToDomain(p dao.AffiliateProgram) domain.AffiliateProgram {
	// Stored tiers are written by this package, unknown values read as standard.
	tier, _ := domain.ParseTier(p.Tier)

	return domain.AffiliateProgram{
		ID:         p.ID,
		ClientID:   p.ClientID,
		Tier:       tier,
		Points:     p.Points,
		CardNumber: p.CardNumber,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func tierDaoToDomain(t dao.AffiliateTier) domain.AffiliateTier {
	return domain.AffiliateTier{
		ID:          t.ID,
		Name:        domain.Tier(t.Name),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
