// Package importer carga un arreglo JSON de productos en la colección, un
// documento por elemento, con el mismo formato que acepta mongoimport --jsonArray.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleximart-catalog/internal/models"
)

const DefaultBatchSize = 1000

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrPartialImport = errors.New("some documents were not imported")
)

// Options de la carga. Con SkipDuplicates solo se inserta la primera
// aparición de cada product_id del archivo.
type Options struct {
	Source         string
	Drop           bool
	BatchSize      int
	SkipDuplicates bool
}

type Importer struct {
	collection *mongo.Collection
	log        zerolog.Logger
}

func New(collection *mongo.Collection, log zerolog.Logger) *Importer {
	return &Importer{
		collection: collection,
		log:        log.With().Str("component", "importer").Logger(),
	}
}

// Import lee el arreglo de r y lo inserta por lotes sin orden garantizado.
// Los errores de escritura de un documento (por ejemplo clave duplicada) no
// detienen la carga: se cuentan en Failed y al final se devuelve
// ErrPartialImport. Cualquier otro error corta la carga y el resultado
// refleja lo insertado hasta ese momento.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options) (*models.ImportResult, error) {
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < 0 {
		return nil, fmt.Errorf("%w: batch size must be positive", ErrInvalidInput)
	}

	result := &models.ImportResult{Source: opts.Source}

	if opts.Drop {
		if err := im.collection.Drop(ctx); err != nil {
			return result, fmt.Errorf("drop collection: %w", err)
		}
		result.Dropped = true
		im.log.Info().Str("collection", im.collection.Name()).Msg("collection dropped")
	}

	batch := make([]interface{}, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		defer func() { batch = batch[:0] }()

		_, err := im.collection.InsertMany(ctx, batch, options.InsertMany().SetOrdered(false))
		if err == nil {
			result.Inserted += int64(len(batch))
			im.log.Debug().Int("documents", len(batch)).Int64("inserted", result.Inserted).Msg("batch inserted")
			return nil
		}

		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
			return fmt.Errorf("insert batch: %w", err)
		}

		failed := len(bwe.WriteErrors)
		result.Inserted += int64(len(batch) - failed)
		result.Failed += int64(failed)
		im.log.Warn().
			Int("documents", len(batch)).
			Int("failed", failed).
			Str("first_error", bwe.WriteErrors[0].Message).
			Msg("batch partially inserted")

		if bwe.WriteConcernError != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		return nil
	}

	duplicates := newDuplicateTracker()
	err := Decode(r, func(doc bson.D) error {
		result.Read++

		if missing := MissingFields(doc); len(missing) > 0 {
			result.MissingFields++
			im.log.Debug().Int64("element", result.Read-1).Strs("missing", missing).Msg("document is missing required fields")
		}
		if id, ok := ProductID(doc); ok && duplicates.observe(id) {
			result.Duplicates++
			if opts.SkipDuplicates {
				result.Skipped++
				return nil
			}
		}

		if NormalizeReviews(&doc) {
			result.Normalized++
		}
		batch = append(batch, doc)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	})
	result.DuplicateIDs = duplicates.repeated
	if err != nil {
		return result, err
	}
	if err := flush(); err != nil {
		return result, err
	}

	im.log.Info().
		Str("source", opts.Source).
		Int64("read", result.Read).
		Int64("inserted", result.Inserted).
		Int64("failed", result.Failed).
		Int64("normalized", result.Normalized).
		Int64("duplicates", result.Duplicates).
		Int64("missing_fields", result.MissingFields).
		Msg("import finished")

	if result.Duplicates > 0 && !opts.SkipDuplicates {
		im.log.Warn().Strs("product_ids", result.DuplicateIDs).Msg("product_id is not unique in the input")
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("%w: %d of %d documents failed", ErrPartialImport, result.Failed, result.Read-result.Skipped)
	}
	return result, nil
}

// Decode recorre un arreglo JSON elemento a elemento sin cargarlo completo en
// memoria. Cada elemento se interpreta como Extended JSON relajado.
func Decode(r io.Reader, fn func(doc bson.D) error) error {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: read array start: %v", ErrInvalidInput, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("%w: expected a JSON array", ErrInvalidInput)
	}

	for index := 0; dec.More(); index++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: element %d: %v", ErrInvalidInput, index, err)
		}

		var doc bson.D
		if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
			return fmt.Errorf("%w: element %d is not a document: %v", ErrInvalidInput, index, err)
		}

		if err := fn(doc); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: read array end: %v", ErrInvalidInput, err)
	}
	return nil
}

// NormalizeReviews garantiza que reviews sea un arreglo. Devuelve true si
// tuvo que agregarlo o reemplazar un null.
func NormalizeReviews(doc *bson.D) bool {
	for i, e := range *doc {
		if e.Key != "reviews" {
			continue
		}
		if e.Value == nil {
			(*doc)[i].Value = bson.A{}
			return true
		}
		return false
	}

	*doc = append(*doc, bson.E{Key: "reviews", Value: bson.A{}})
	return true
}
