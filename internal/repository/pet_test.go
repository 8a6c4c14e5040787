package repository

import (
	"context"
	"errors"
	"testing"

	"petstore-backend/internal/model"
	"petstore-backend/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestPetRepository_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := testutil.NewDB(t)
	repo := NewPetRepository(db)

	seed := []model.Pet{
		{ID: "1", Name: "Rex", Type: "dog", Breed: "Labrador", Age: "3", Price: decimal.NewFromFloat(1200), Available: true},
		{ID: "2", Name: "Milo", Type: "cat", Breed: "Siamese", Age: "1", Price: decimal.NewFromFloat(350), Available: true},
		{ID: "3", Name: "Bella", Type: "dog", Breed: "Poodle", Age: "2", Price: decimal.NewFromFloat(800), Available: false},
		{ID: "4", Name: "Charlie", Type: "dog", Breed: "Labrador Mix", Age: "4", Price: decimal.NewFromFloat(600), Available: true},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed pet: %v", err)
		}
	}

	ids := func(pets []*model.Pet) map[string]bool {
		out := map[string]bool{}
		for _, p := range pets {
			out[p.ID] = true
		}
		return out
	}

	t.Run("filter by type", func(t *testing.T) {
		pets, err := repo.List(ctx, PetFilter{Type: "cat"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(pets) != 1 || pets[0].ID != "2" {
			t.Fatalf("expected only pet 2, got %v", ids(pets))
		}
	})

	t.Run("breed filter matches substrings", func(t *testing.T) {
		pets, err := repo.List(ctx, PetFilter{Breed: "Labrador"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		got := ids(pets)
		if len(pets) != 2 || !got["1"] || !got["4"] {
			t.Fatalf("expected pets 1 and 4, got %v", got)
		}
	})

	t.Run("price range", func(t *testing.T) {
		minP := decimal.NewFromFloat(500)
		maxP := decimal.NewFromFloat(1000)
		pets, err := repo.List(ctx, PetFilter{MinPrice: &minP, MaxPrice: &maxP})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		got := ids(pets)
		if len(pets) != 2 || !got["3"] || !got["4"] {
			t.Fatalf("expected pets 3 and 4, got %v", got)
		}
	})

	t.Run("availability filter", func(t *testing.T) {
		available := true
		pets, err := repo.List(ctx, PetFilter{Available: &available})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(pets) != 3 {
			t.Fatalf("expected 3 sellable pets, got %d", len(pets))
		}
	})

	t.Run("search spans name and breed", func(t *testing.T) {
		pets, err := repo.List(ctx, PetFilter{Search: "Siam"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(pets) != 1 || pets[0].ID != "2" {
			t.Fatalf("expected only pet 2, got %v", ids(pets))
		}
	})

	t.Run("limit and offset page the result", func(t *testing.T) {
		page, err := repo.List(ctx, PetFilter{Limit: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(page) != 2 {
			t.Fatalf("expected page of 2, got %d", len(page))
		}

		rest, err := repo.List(ctx, PetFilter{Limit: 10, Offset: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(rest) != 2 {
			t.Fatalf("expected remaining 2, got %d", len(rest))
		}
	})
}

func TestPetRepository_MarkUnavailable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := testutil.NewDB(t)
	repo := NewPetRepository(db)
	testutil.SeedPet(t, db, "1", "Rex", 12.00, true)

	if err := repo.MarkUnavailable(ctx, db, "1"); err != nil {
		t.Fatalf("first mark: %v", err)
	}

	// The conditional update refuses a second sale of the same pet.
	if err := repo.MarkUnavailable(ctx, db, "1"); !errors.Is(err, model.ErrInventoryConflict) {
		t.Fatalf("expected ErrInventoryConflict on resale, got %v", err)
	}

	if err := repo.MarkUnavailable(ctx, db, "ghost"); !errors.Is(err, model.ErrInventoryConflict) {
		t.Fatalf("expected ErrInventoryConflict for missing pet, got %v", err)
	}
}

func TestPetRepository_FindByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := testutil.NewDB(t)
	repo := NewPetRepository(db)
	testutil.SeedPet(t, db, "1", "Rex", 12.00, true)

	pet, err := repo.FindByID(ctx, nil, "1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if pet.Name != "Rex" {
		t.Fatalf("expected Rex, got %s", pet.Name)
	}

	if _, err := repo.FindByID(ctx, nil, "ghost"); !errors.Is(err, model.ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound, got %v", err)
	}
}
