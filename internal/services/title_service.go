package services

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"yamdb/internal/models"
	"yamdb/internal/repositories"
)

// TitleInput is the payload for creating a title. Genres and category are
// referenced by slug.
type TitleInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Year        int      `json:"year" validate:"required,notfuture"`
	Description string   `json:"description" validate:"max=300"`
	Genre       []string `json:"genre" validate:"required,min=1,dive,required"`
	Category    string   `json:"category" validate:"required"`
}

// TitlePatch is a partial title update; nil fields are left unchanged.
type TitlePatch struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Year        *int     `json:"year" validate:"omitempty,gt=0,notfuture"`
	Description *string  `json:"description" validate:"omitempty,max=300"`
	Genre       []string `json:"genre" validate:"omitempty,dive,required"`
	Category    *string  `json:"category"`
}

// TitleService manages titles.
type TitleService struct {
	titles     repositories.TitleRepository
	categories repositories.CategoryRepository
	genres     repositories.GenreRepository
	validate   *Validator
}

// NewTitleService creates a new TitleService.
func NewTitleService(
	titles repositories.TitleRepository,
	categories repositories.CategoryRepository,
	genres repositories.GenreRepository,
) *TitleService {
	return &TitleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		validate:   NewValidator(),
	}
}

// List returns a page of titles, each with its current rating.
func (s *TitleService) List(actor *models.User, filter repositories.TitleFilter, page repositories.Page) ([]models.Title, int64, error) {
	if err := authorizeCatalog(actor, http.MethodGet); err != nil {
		return nil, 0, err
	}
	return s.titles.List(filter, page)
}

// Get returns a single title with its current rating.
func (s *TitleService) Get(actor *models.User, id uint) (*models.Title, error) {
	if err := authorizeCatalog(actor, http.MethodGet); err != nil {
		return nil, err
	}
	return s.get(id)
}

func (s *TitleService) get(id uint) (*models.Title, error) {
	title, err := s.titles.GetByID(id)
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("title %d", id))
	}
	return title, nil
}

// Create adds a title. Admins only.
func (s *TitleService) Create(actor *models.User, in TitleInput) (*models.Title, error) {
	if err := authorizeCatalog(actor, http.MethodPost); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(in.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(in.Genre)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		Genres:      genres,
		CategoryID:  &category.ID,
	}
	if err := s.titles.Create(title); err != nil {
		return nil, err
	}
	return s.get(title.ID)
}

// Update applies patch to a title. Admins only.
func (s *TitleService) Update(actor *models.User, id uint, patch TitlePatch) (*models.Title, error) {
	if err := authorizeCatalog(actor, http.MethodPatch); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}
	title, err := s.get(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		title.Name = *patch.Name
	}
	if patch.Year != nil {
		title.Year = *patch.Year
	}
	if patch.Description != nil {
		title.Description = *patch.Description
	}
	if patch.Category != nil {
		category, err := s.resolveCategory(*patch.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
	}
	if patch.Genre != nil {
		genres, err := s.resolveGenres(patch.Genre)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}
	title.Category = nil
	title.Rating = nil

	if err := s.titles.Update(title); err != nil {
		return nil, err
	}
	return s.get(title.ID)
}

// Delete removes a title with its reviews and comments. Admins only.
func (s *TitleService) Delete(actor *models.User, id uint) error {
	if err := authorizeCatalog(actor, http.MethodDelete); err != nil {
		return err
	}
	title, err := s.get(id)
	if err != nil {
		return err
	}
	return lookupError(s.titles.Delete(title), fmt.Sprintf("title %d", id))
}

func (s *TitleService) resolveCategory(categorySlug string) (*models.Category, error) {
	category, err := s.categories.GetBySlug(categorySlug)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, NewValidationError("category", fmt.Sprintf("Unknown category %q.", categorySlug))
		}
		return nil, err
	}
	return category, nil
}

func (s *TitleService) resolveGenres(slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, NewValidationError("genre", "This field is required.")
	}
	unique := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		unique[slug] = struct{}{}
	}
	genres, err := s.genres.FindBySlugs(slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) == len(unique) {
		return genres, nil
	}
	for _, g := range genres {
		delete(unique, g.Slug)
	}
	missing := make([]string, 0, len(unique))
	for slug := range unique {
		missing = append(missing, slug)
	}
	sort.Strings(missing)
	return nil, NewValidationError("genre", "Unknown genre: "+strings.Join(missing, ", ")+".")
}
