package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/promopress/promopress/api"
	"github.com/promopress/promopress/internal/domain"
)

func (app *Application) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := app.categoryRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CategoryListResponse{
		Categories: make([]api.CategoryResponse, 0, len(categories)),
	}
	for _, category := range categories {
		resp.Categories = append(resp.Categories, toCategoryResponse(category))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readStringParam(r, "slug")

	category, err := app.categoryRepo.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toCategoryResponse(category), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CategoryRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	category := &domain.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}

	err = app.categoryRepo.Create(r.Context(), category)
	if err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			app.editConflictResponseWithErr(w, r, fmt.Errorf("a category with slug %q or name %q already exists", req.Slug, req.Name))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toCategoryResponse(category), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "categoryId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var req api.CategoryRequest

	err = app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	category := &domain.Category{
		ID:          id,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}

	err = app.categoryRepo.Update(r.Context(), category)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, fmt.Errorf("a category with slug %q or name %q already exists", req.Slug, req.Name))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toCategoryResponse(category), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "categoryId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.categoryRepo.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, errors.New("category still has articles"))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toCategoryResponse(category *domain.Category) api.CategoryResponse {
	return api.CategoryResponse{
		Id:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	}
}
