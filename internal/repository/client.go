package repository

import (
	"context"

	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/repository/dao"
)

type ClientDAO interface {
	Insert(ctx context.Context, client dao.Client) (dao.Client, error)
	FindByID(ctx context.Context, id uint) (dao.Client, error)
	FindAll(ctx context.Context) ([]dao.Client, error)
	FindMissing(ctx context.Context, ids []uint) ([]uint, error)
	Update(ctx context.Context, client dao.Client) (dao.Client, error)
	Delete(ctx context.Context, id uint) error
}

type ClientRepository struct {
	dao ClientDAO
}

func NewClientRepository(dao ClientDAO) *ClientRepository {
	return &ClientRepository{
		dao: dao,
	}
}

func (r *ClientRepository) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	created, err := r.dao.Insert(ctx, clientDomainToDao(client))
	if err != nil {
		return domain.Client{}, err
	}

	return clientDaoToDomain(created), nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id uint) (domain.Client, error) {
	client, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}

	return clientDaoToDomain(client), nil
}

func (r *ClientRepository) FindAll(ctx context.Context) ([]domain.Client, error) {
	clients, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Client, len(clients))
	for i, c := range clients {
		result[i] = clientDaoToDomain(c)
	}

	return result, nil
}

func (r *ClientRepository) FindMissing(ctx context.Context, ids []uint) ([]uint, error) {
	return r.dao.FindMissing(ctx, ids)
}

func (r *ClientRepository) Update(ctx context.Context, client domain.Client) (domain.Client, error) {
	c := clientDomainToDao(client)
	c.AffiliateProgram = nil

	updated, err := r.dao.Update(ctx, c)
	if err != nil {
		return domain.Client{}, err
	}

	return clientDaoToDomain(updated), nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}

func locationDomainToDao(l domain.Location) dao.Location {
	return dao.Location{
		Address: l.Address,
		City:    l.City,
		State:   l.State,
		ZipCode: l.ZipCode,
		Country: l.Country,
	}
}

func locationDaoToDomain(l dao.Location) domain.Location {
	return domain.Location{
		Address: l.Address,
		City:    l.City,
		State:   l.State,
		ZipCode: l.ZipCode,
		Country: l.Country,
	}
}

func clientDomainToDao(c domain.Client) dao.Client {
	client := dao.Client{
		ID:          c.ID,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		FiscalCode:  c.FiscalCode,
		PhoneNumber: c.PhoneNumber,
		BirthDate:   c.BirthDate,
		Location:    locationDomainToDao(c.Location),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.AffiliateProgram != nil {
		program := programDomainToDao(*c.AffiliateProgram)
		client.AffiliateProgram = &program
	}

	return client
}

func clientDaoToDomain(c dao.Client) domain.Client {
	client := domain.Client{
		ID:          c.ID,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		FiscalCode:  c.FiscalCode,
		PhoneNumber: c.PhoneNumber,
		BirthDate:   c.BirthDate,
		Location:    locationDaoToDomain(c.Location),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.AffiliateProgram != nil {
		program := programDaoToDomain(*c.AffiliateProgram)
		client.AffiliateProgram = &program
	}

	return client
}
