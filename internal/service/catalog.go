package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"fleximart-catalog/internal/cache"
	"fleximart-catalog/internal/models"
	"fleximart-catalog/internal/repository"
)

const reportsPrefix = "reports:"

// Products es la parte del repositorio que usa el servicio
type Products interface {
	FindByCategoryBelowPrice(ctx context.Context, category string, maxPrice float64) ([]models.ProductSummary, error)
	TopRated(ctx context.Context, minRating float64) ([]models.ProductRating, error)
	CategoryPrices(ctx context.Context) ([]models.CategoryPrice, error)
	AppendReview(ctx context.Context, review models.NewReview) (*models.ReviewResult, error)
	ReviewCount(ctx context.Context, productID string) (int, error)
}

var _ Products = (*repository.ProductRepository)(nil)

// CatalogService ejecuta las consultas del catálogo con caché de reportes.
// cache puede ser nil para trabajar siempre contra la base.
type CatalogService struct {
	repo     Products
	cache    cache.Store
	ttl      time.Duration
	validate *validator.Validate
	log      zerolog.Logger
}

func NewCatalogService(repo Products, store cache.Store, ttl time.Duration, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		cache:    store,
		ttl:      ttl,
		validate: newValidator(),
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

// FindByCategoryBelowPrice es la consulta filtrada con proyección
func (s *CatalogService) FindByCategoryBelowPrice(ctx context.Context, category string, maxPrice float64) ([]models.ProductSummary, error) {
	key := fmt.Sprintf("%sfind:%s:%s", reportsPrefix, category, strconv.FormatFloat(maxPrice, 'f', -1, 64))

	var products []models.ProductSummary
	if s.fromCache(ctx, key, &products) {
		return products, nil
	}

	products, err := s.repo.FindByCategoryBelowPrice(ctx, category, maxPrice)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, products)
	return products, nil
}

// TopRated es la agregación de rating promedio
func (s *CatalogService) TopRated(ctx context.Context, minRating float64) ([]models.ProductRating, error) {
	key := fmt.Sprintf("%stop-rated:%s", reportsPrefix, strconv.FormatFloat(minRating, 'f', -1, 64))

	var ratings []models.ProductRating
	if s.fromCache(ctx, key, &ratings) {
		return ratings, nil
	}

	ratings, err := s.repo.TopRated(ctx, minRating)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, ratings)
	return ratings, nil
}

// CategoryPrices es la agregación por categoría
func (s *CatalogService) CategoryPrices(ctx context.Context) ([]models.CategoryPrice, error) {
	key := reportsPrefix + "category-prices"

	var groups []models.CategoryPrice
	if s.fromCache(ctx, key, &groups) {
		return groups, nil
	}

	groups, err := s.repo.CategoryPrices(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, groups)
	return groups, nil
}

// AddReview valida y agrega la review. Los reportes se invalidan siempre que
// el update llegue al servidor, haya coincidencia o no.
func (s *CatalogService) AddReview(ctx context.Context, review models.NewReview) (*models.ReviewResult, error) {
	if err := s.validateReview(review); err != nil {
		return nil, err
	}

	result, err := s.repo.AppendReview(ctx, review)
	if err != nil {
		return nil, err
	}
	s.InvalidateReports(ctx)

	if result.Matched == 0 {
		s.log.Warn().Str("product_id", result.ProductID).Msg("no product matched, nothing was updated")
		return result, nil
	}

	count, err := s.repo.ReviewCount(ctx, result.ProductID)
	if err != nil {
		s.log.Warn().Err(err).Str("product_id", result.ProductID).Msg("could not count reviews")
		return result, nil
	}
	result.Reviews = count

	return result, nil
}

// InvalidateReports borra todos los reportes cacheados
func (s *CatalogService) InvalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, reportsPrefix); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}

// newValidator reporta los campos con su nombre JSON
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *CatalogService) validateReview(review models.NewReview) error {
	err := s.validate.Struct(review)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return &models.ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		}
	}
	return err
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must be between 1 and 5", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func (s *CatalogService) fromCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	found, err := s.cache.Load(ctx, key, target)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	if found {
		s.log.Debug().Str("key", key).Msg("cache hit")
	}
	return found
}

func (s *CatalogService) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, key, value, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
