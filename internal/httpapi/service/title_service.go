package service

import (
	"context"

	"reviewhub/internal/httpapi/cache"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
)

type TitleService interface {
	// List returns titles matching the filter, name-ascending, each
	// annotated with its mean review score (nil when unreviewed).
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, req *dto.CreateTitleRequest) (*models.Title, error)
	Update(ctx context.Context, id int64, req *dto.UpdateTitleRequest) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
	ratings      *cache.RatingCache
}

var _ TitleService = (*titleService)(nil)

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
	ratings *cache.RatingCache,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
		ratings:      ratings,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	if err := s.annotateRatings(ctx, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	title, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rating, err := s.ratingFor(ctx, id)
	if err != nil {
		return nil, err
	}
	title.Rating = rating
	return title, nil
}

func (s *titleService) Create(ctx context.Context, req *dto.CreateTitleRequest) (*models.Title, error) {
	if err := validateYear(req.Year); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}

	if req.Category != nil {
		category, err := s.categoryRepo.FindBySlug(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	genres, err := s.genreRepo.FindBySlugs(ctx, req.Genre)
	if err != nil {
		return nil, err
	}
	title.Genres = genres

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}
	return title, nil
}

func (s *titleService) Update(ctx context.Context, id int64, req *dto.UpdateTitleRequest) (*models.Title, error) {
	title, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := validateYear(*req.Year); err != nil {
			return nil, err
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = req.Description
	}
	if req.Category != nil {
		category, err := s.categoryRepo.FindBySlug(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	if err := s.titleRepo.Save(ctx, title); err != nil {
		return nil, err
	}

	if req.Genre != nil {
		genres, err := s.genreRepo.FindBySlugs(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	rating, err := s.ratingFor(ctx, id)
	if err != nil {
		return nil, err
	}
	title.Rating = rating
	return title, nil
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.ratings.Invalidate(ctx, id)
	return nil
}

// ratingFor serves the title's mean score from the cache when present,
// otherwise from the aggregate query.
func (s *titleService) ratingFor(ctx context.Context, titleID int64) (*float64, error) {
	if rating, ok := s.ratings.Get(ctx, titleID); ok {
		return rating, nil
	}
	rating, err := s.reviewRepo.AverageScore(ctx, titleID)
	if err != nil {
		return nil, err
	}
	s.ratings.Set(ctx, titleID, rating)
	return rating, nil
}

func (s *titleService) annotateRatings(ctx context.Context, titles []models.Title) error {
	var misses []int64
	missIdx := make(map[int64][]int)

	for i := range titles {
		if rating, ok := s.ratings.Get(ctx, titles[i].ID); ok {
			titles[i].Rating = rating
			continue
		}
		if len(missIdx[titles[i].ID]) == 0 {
			misses = append(misses, titles[i].ID)
		}
		missIdx[titles[i].ID] = append(missIdx[titles[i].ID], i)
	}
	if len(misses) == 0 {
		return nil
	}

	averages, err := s.reviewRepo.AverageScores(ctx, misses)
	if err != nil {
		return err
	}
	for _, id := range misses {
		var rating *float64
		if avg, ok := averages[id]; ok {
			avgCopy := avg
			rating = &avgCopy
		}
		for _, i := range missIdx[id] {
			titles[i].Rating = rating
		}
		s.ratings.Set(ctx, id, rating)
	}
	return nil
}
