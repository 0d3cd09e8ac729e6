package models

// NewReview representa la entrada de add-review; la fecha la pone el servidor
type NewReview struct {
	ProductID string `json:"product_id" validate:"required"`
	User      string `json:"user" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment"`
}

// ValidationError representa un error de validación
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
