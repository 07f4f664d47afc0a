package services

import (
	"errors"
	"log"
	"net/http"

	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/repositories"
	"yamdb/pkg/slug"
)

// TaxonomyInput is the payload for creating a category or genre. An empty
// slug is derived from the name.
type TaxonomyInput struct {
	Name string `json:"name" validate:"required,max=200"`
	Slug string `json:"slug" validate:"omitempty,slug"`
}

// TaxonomyPatch is a partial category update.
type TaxonomyPatch struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=200"`
	Slug *string `json:"slug" validate:"omitempty,slug"`
}

// prepare derives a missing slug and validates the result.
func (in *TaxonomyInput) prepare(v *Validator) error {
	if in.Slug == "" {
		in.Slug = slug.Make(in.Name)
	}
	if err := v.Struct(in); err != nil {
		return err
	}
	if in.Slug == "" {
		return NewValidationError("slug", "This field is required.")
	}
	return nil
}

func authorizeCatalog(actor *models.User, method string) error {
	if !policy.CanAccessCollection(policy.AdminOrReadOnly, actor, method) {
		return ErrForbidden
	}
	return nil
}

func slugTaken(err error) error {
	if errors.Is(err, repositories.ErrDuplicateKey) {
		return NewValidationError("slug", "This slug is already in use.")
	}
	return err
}

// CategoryService manages categories.
type CategoryService struct {
	repo     repositories.CategoryRepository
	validate *Validator
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo, validate: NewValidator()}
}

// List returns a page of categories whose name contains search.
func (s *CategoryService) List(actor *models.User, search string, page repositories.Page) ([]models.Category, int64, error) {
	if err := authorizeCatalog(actor, http.MethodGet); err != nil {
		return nil, 0, err
	}
	return s.repo.List(search, page)
}

// Get returns the category with slug.
func (s *CategoryService) Get(actor *models.User, categorySlug string) (*models.Category, error) {
	if err := authorizeCatalog(actor, http.MethodGet); err != nil {
		return nil, err
	}
	category, err := s.repo.GetBySlug(categorySlug)
	if err != nil {
		return nil, lookupError(err, "category "+categorySlug)
	}
	return category, nil
}

// Create adds a category. Admins only.
func (s *CategoryService) Create(actor *models.User, in TaxonomyInput) (*models.Category, error) {
	if err := authorizeCatalog(actor, http.MethodPost); err != nil {
		return nil, err
	}
	if err := in.prepare(s.validate); err != nil {
		return nil, err
	}
	category := &models.Category{Name: in.Name, Slug: in.Slug}
	if err := s.repo.Create(category); err != nil {
		return nil, slugTaken(err)
	}
	return category, nil
}

// Update changes the name or slug of a category. Admins only.
func (s *CategoryService) Update(actor *models.User, categorySlug string, patch TaxonomyPatch) (*models.Category, error) {
	if err := authorizeCatalog(actor, http.MethodPatch); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}
	category, err := s.repo.GetBySlug(categorySlug)
	if err != nil {
		return nil, lookupError(err, "category "+categorySlug)
	}
	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.Slug != nil {
		category.Slug = *patch.Slug
	}
	if err := s.repo.Update(category); err != nil {
		return nil, slugTaken(err)
	}
	return category, nil
}

// Delete removes the category identified by slug and returns what was
// deleted. Titles in the category are kept without a category. Admins only.
func (s *CategoryService) Delete(actor *models.User, categorySlug string) (*models.Category, error) {
	if err := authorizeCatalog(actor, http.MethodDelete); err != nil {
		return nil, err
	}
	category, err := s.repo.GetBySlug(categorySlug)
	if err != nil {
		return nil, lookupError(err, "category "+categorySlug)
	}
	if err := s.repo.Delete(category); err != nil {
		return nil, lookupError(err, "category "+categorySlug)
	}
	log.Printf("Category %s deleted by %s", category.Slug, actor.Username)
	return category, nil
}

// GenreService manages genres.
type GenreService struct {
	repo     repositories.GenreRepository
	validate *Validator
}

// NewGenreService creates a new GenreService.
func NewGenreService(repo repositories.GenreRepository) *GenreService {
	return &GenreService{repo: repo, validate: NewValidator()}
}

// List returns a page of genres whose name contains search.
func (s *GenreService) List(actor *models.User, search string, page repositories.Page) ([]models.Genre, int64, error) {
	if err := authorizeCatalog(actor, http.MethodGet); err != nil {
		return nil, 0, err
	}
	return s.repo.List(search, page)
}

// Create adds a genre. Admins only.
func (s *GenreService) Create(actor *models.User, in TaxonomyInput) (*models.Genre, error) {
	if err := authorizeCatalog(actor, http.MethodPost); err != nil {
		return nil, err
	}
	if err := in.prepare(s.validate); err != nil {
		return nil, err
	}
	genre := &models.Genre{Name: in.Name, Slug: in.Slug}
	if err := s.repo.Create(genre); err != nil {
		return nil, slugTaken(err)
	}
	return genre, nil
}

// Delete removes the genre identified by slug. Admins only.
func (s *GenreService) Delete(actor *models.User, genreSlug string) (*models.Genre, error) {
	if err := authorizeCatalog(actor, http.MethodDelete); err != nil {
		return nil, err
	}
	genre, err := s.repo.GetBySlug(genreSlug)
	if err != nil {
		return nil, lookupError(err, "genre "+genreSlug)
	}
	if err := s.repo.Delete(genre); err != nil {
		return nil, lookupError(err, "genre "+genreSlug)
	}
	log.Printf("Genre %s deleted by %s", genre.Slug, actor.Username)
	return genre, nil
}
