package handler

import (
	"net/http"
	"strconv"

	"petstore-backend/internal/repository"
	"petstore-backend/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PetHandler struct {
	petService service.PetService
}

func NewPetHandler(petService service.PetService) *PetHandler {
	return &PetHandler{petService: petService}
}

func (h *PetHandler) ListPets(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := petFilterFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.petService.ListPets(ctx, filter)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PetHandler) GetPet(c echo.Context) error {
	ctx := c.Request().Context()

	pet, err := h.petService.GetPet(ctx, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, pet)
}

func petFilterFromQuery(c echo.Context) (repository.PetFilter, error) {
	filter := repository.PetFilter{
		Type:   c.QueryParam("type"),
		Breed:  c.QueryParam("breed"),
		Age:    c.QueryParam("age"),
		Search: c.QueryParam("search"),
	}

	if v := c.QueryParam("minPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, err
		}
		filter.MinPrice = &d
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, err
		}
		filter.MaxPrice = &d
	}

	// Catalog listings show sellable pets unless the caller asks otherwise.
	available := true
	if v := c.QueryParam("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, err
		}
		available = b
	}
	filter.Available = &available

	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Offset = n
	}

	return filter, nil
}
