package service

import (
	"context"
	"fmt"

	"petstore-backend/internal/dto"
	"petstore-backend/internal/model"
	"petstore-backend/internal/repository"
)

type PetService interface {
	ListPets(ctx context.Context, filter repository.PetFilter) (*dto.PetListResponse, error)
	GetPet(ctx context.Context, petID string) (*dto.PetView, error)
}

type petServiceImpl struct {
	petRepo repository.PetRepository
}

func NewPetService(petRepo repository.PetRepository) PetService {
	return &petServiceImpl{petRepo: petRepo}
}

func (s *petServiceImpl) ListPets(ctx context.Context, filter repository.PetFilter) (*dto.PetListResponse, error) {
	pets, err := s.petRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}

	views := make([]dto.PetView, len(pets))
	for i, p := range pets {
		views[i] = petView(p)
	}
	return &dto.PetListResponse{Pets: views, Total: len(views)}, nil
}

func (s *petServiceImpl) GetPet(ctx context.Context, petID string) (*dto.PetView, error) {
	pet, err := s.petRepo.FindByID(ctx, nil, petID)
	if err != nil {
		return nil, err
	}
	view := petView(pet)
	return &view, nil
}

func petView(p *model.Pet) dto.PetView {
	return dto.PetView{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		Breed:       p.Breed,
		Age:         p.Age,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
		Image:       p.ImageURL,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt,
	}
}
