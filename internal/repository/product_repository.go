package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleximart-catalog/internal/models"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidInput = errors.New("invalid input")
)

const defaultTimeout = 10 * time.Second

type ProductRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewProductRepository(collection *mongo.Collection, timeout time.Duration) *ProductRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ProductRepository{
		collection: collection,
		timeout:    timeout,
	}
}

// Namespace devuelve "db.colección", útil para logs
func (r *ProductRepository) Namespace() string {
	return r.collection.Database().Name() + "." + r.collection.Name()
}

// FindByCategoryBelowPrice devuelve {name, price, stock} de los productos de la
// categoría con precio < maxPrice. Sin coincidencias devuelve un slice vacío.
func (r *ProductRepository) FindByCategoryBelowPrice(ctx context.Context, category string, maxPrice float64) ([]models.ProductSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	findOptions := options.Find().SetProjection(SummaryProjection())

	cursor, err := r.collection.Find(ctx, CategoryPriceFilter(category, maxPrice), findOptions)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.ProductSummary, 0)
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	return products, nil
}

// TopRated ejecuta la agregación de rating promedio
func (r *ProductRepository) TopRated(ctx context.Context, minRating float64) ([]models.ProductRating, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, AverageRatingPipeline(minRating))
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	ratings := make([]models.ProductRating, 0)
	if err = cursor.All(ctx, &ratings); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}

	return ratings, nil
}

// CategoryPrices ejecuta la agregación de precio promedio por categoría
func (r *ProductRepository) CategoryPrices(ctx context.Context) ([]models.CategoryPrice, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, CategoryPricePipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	groups := make([]models.CategoryPrice, 0)
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	return groups, nil
}

// AppendReview agrega una review al producto con ese product_id.
// Si no hay coincidencia no es un error: el resultado queda con Matched = 0.
func (r *ProductRepository) AppendReview(ctx context.Context, review models.NewReview) (*models.ReviewResult, error) {
	productID := strings.TrimSpace(review.ProductID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, ProductIDFilter(productID), AppendReviewUpdate(review))
	if err != nil {
		return nil, fmt.Errorf("append review: %w", err)
	}

	return &models.ReviewResult{
		ProductID: productID,
		Matched:   result.MatchedCount,
		Modified:  result.ModifiedCount,
	}, nil
}

// ReviewCount devuelve cuántas reviews tiene el producto con ese product_id
func (r *ProductRepository) ReviewCount(ctx context.Context, productID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	findOptions := options.FindOne().SetProjection(ReviewCountProjection())

	var doc struct {
		Reviews int `bson:"reviews"`
	}
	err := r.collection.FindOne(ctx, ProductIDFilter(productID), findOptions).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("count reviews of %s: %w", productID, err)
	}

	return doc.Reviews, nil
}
