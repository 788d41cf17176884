package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/workhub/orders-api/internal/domain"
)

// NoAffiliateProgram registers a customer without enrolling them.
const NoAffiliateProgram = "none"

const cardNumberAttempts = 3

type CustomerService struct {
	clients  ClientRepository
	programs AffiliateProgramRepository
	orders   OrderRepository

	newCardNumber func() string
}

func NewCustomerService(clients ClientRepository, programs AffiliateProgramRepository, orders OrderRepository) *CustomerService {
	return &CustomerService{
		clients:       clients,
		programs:      programs,
		orders:        orders,
		newCardNumber: NewCardNumber,
	}
}

// NewCardNumber returns "<unix millis>-<6 random digits>".
func NewCardNumber() string {
	return fmt.Sprintf("%d-%06d", time.Now().UnixMilli(), rand.IntN(1_000_000))
}

// RegisterCustomer creates the client and, unless tier is "none", its
// affiliate program. An empty tier means standard.
func (s *CustomerService) RegisterCustomer(ctx context.Context, client domain.Client, tier string) (domain.Client, error) {
	client.AffiliateProgram = nil

	if !strings.EqualFold(strings.TrimSpace(tier), NoAffiliateProgram) {
		t := domain.TierStandard
		if strings.TrimSpace(tier) != "" {
			var ok bool
			t, ok = domain.ParseTier(tier)
			if !ok {
				return domain.Client{}, NewValidationError(fmt.Errorf("affiliate_tier %q is not valid", tier))
			}
		}

		if _, err := s.programs.FindTierByName(ctx, t); err != nil {
			return domain.Client{}, fmt.Errorf("s.programs.FindTierByName -> %w", err)
		}

		client.AffiliateProgram = &domain.AffiliateProgram{Tier: t}
	}

	for attempt := 1; ; attempt++ {
		if client.AffiliateProgram != nil {
			client.AffiliateProgram.CardNumber = s.newCardNumber()
		}

		created, err := s.clients.Create(ctx, client)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, ErrCardNumberExists) || attempt == cardNumberAttempts {
			return domain.Client{}, fmt.Errorf("s.clients.Create -> %w", err)
		}
	}
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.clients.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.clients.FindAll -> %w", err)
	}

	return clients, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uint) (domain.ClientDetail, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return domain.ClientDetail{}, fmt.Errorf("s.clients.FindByID -> %w", err)
	}

	orders, err := s.orders.FindByClient(ctx, id)
	if err != nil {
		return domain.ClientDetail{}, fmt.Errorf("s.orders.FindByClient -> %w", err)
	}

	return domain.ClientDetail{
		Client: client,
		Orders: orders,
	}, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id uint, u domain.ClientUpdate) (domain.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return domain.Client{}, fmt.Errorf("s.clients.FindByID -> %w", err)
	}

	updated, err := s.clients.Update(ctx, u.Apply(client))
	if err != nil {
		return domain.Client{}, fmt.Errorf("s.clients.Update -> %w", err)
	}

	return updated, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id uint) error {
	if err := s.clients.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.clients.Delete -> %w", err)
	}

	return nil
}
