package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fleximart-catalog/internal/models"
)

// CategoryPriceFilter filtra por categoría exacta y precio estrictamente menor
func CategoryPriceFilter(category string, maxPrice float64) bson.D {
	return bson.D{
		{Key: "category", Value: category},
		{Key: "price", Value: bson.D{{Key: "$lt", Value: maxPrice}}},
	}
}

// SummaryProjection deja solo name, price y stock, sin _id
func SummaryProjection() bson.D {
	return bson.D{
		{Key: "name", Value: 1},
		{Key: "price", Value: 1},
		{Key: "stock", Value: 1},
		{Key: "_id", Value: 0},
	}
}

// AverageRatingPipeline calcula el promedio de reviews.rating por documento
// y se queda con los que alcanzan minRating. Un producto sin reviews tiene
// promedio null y no pasa el $match.
func AverageRatingPipeline(minRating float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "name", Value: 1},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "avgRating", Value: bson.D{{Key: "$gte", Value: minRating}}},
		}}},
	}
}

// CategoryPricePipeline agrupa por categoría con precio promedio y conteo,
// ordenado por precio promedio descendente
func CategoryPricePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "avg_price", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avg_price", Value: -1}}}},
	}
}

// ProductIDFilter busca por la clave de negocio product_id
func ProductIDFilter(productID string) bson.D {
	return bson.D{{Key: "product_id", Value: productID}}
}

// ReviewCountProjection devuelve solo la cantidad de reviews; un documento sin
// el arreglo cuenta 0
func ReviewCountProjection() bson.D {
	return bson.D{
		{Key: "_id", Value: 0},
		{Key: "reviews", Value: bson.D{{Key: "$size", Value: bson.D{
			{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}},
		}}}},
	}
}

// AppendReviewUpdate agrega la review al final de reviews. Es un update con
// pipeline para que la fecha la ponga el servidor ($$NOW); si el documento no
// tiene reviews, el arreglo se crea. Los strings van en $literal porque un
// valor que empiece con "$" se interpretaría como ruta de campo.
func AppendReviewUpdate(review models.NewReview) mongo.Pipeline {
	entry := bson.D{
		{Key: "user", Value: bson.D{{Key: "$literal", Value: review.User}}},
		{Key: "rating", Value: review.Rating},
		{Key: "comment", Value: bson.D{{Key: "$literal", Value: review.Comment}}},
		{Key: "date", Value: "$$NOW"},
	}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "reviews", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}},
				bson.A{entry},
			}}}},
		}}},
	}
}
