package models

// ProductSummary es la proyección {name, price, stock} de la consulta filtrada.
// Price y Stock son nil si el documento no tiene el campo. Stock admite decimales.
type ProductSummary struct {
	Name  string   `json:"name" bson:"name"`
	Price *float64 `json:"price,omitempty" bson:"price"`
	Stock *float64 `json:"stock,omitempty" bson:"stock"`
}

// ProductRating es la salida de la agregación de rating promedio.
// AvgRating es nil cuando el producto no tiene reviews.
type ProductRating struct {
	Name      string   `json:"name" bson:"name"`
	AvgRating *float64 `json:"avgRating" bson:"avgRating"`
}

// CategoryPrice es un grupo de la agregación por categoría
type CategoryPrice struct {
	Category string   `json:"category" bson:"_id"`
	AvgPrice *float64 `json:"avg_price" bson:"avg_price"`
	Count    int64    `json:"count" bson:"count"`
}

// ReviewResult resume el efecto de un add-review
type ReviewResult struct {
	ProductID string `json:"product_id"`
	Matched   int64  `json:"matched"`
	Modified  int64  `json:"modified"`
	Reviews   int    `json:"reviews,omitempty"`
}

// ImportResult resume una carga masiva y la calidad de los datos leídos.
// Duplicates cuenta las repeticiones de un product_id ya visto en el archivo;
// MissingFields, los documentos a los que les falta algún campo obligatorio.
type ImportResult struct {
	Source        string   `json:"source"`
	Read          int64    `json:"read"`
	Inserted      int64    `json:"inserted"`
	Failed        int64    `json:"failed"`
	Skipped       int64    `json:"skipped"`
	Normalized    int64    `json:"normalized"`
	Duplicates    int64    `json:"duplicates"`
	DuplicateIDs  []string `json:"duplicate_ids,omitempty"`
	MissingFields int64    `json:"missing_fields"`
	Dropped       bool     `json:"dropped"`
}
