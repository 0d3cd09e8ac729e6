package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const catalog = `[
  {"product_id": "ELEC001", "name": "Samsung Galaxy S21", "category": "Electronics", "price": 45999, "stock": 150,
   "reviews": [{"user": "U001", "rating": 5, "comment": "Excellent", "date": {"$date": "2024-01-15T00:00:00Z"}}]},
  {"product_id": "ELEC002", "name": "Apple MacBook Pro", "category": "Electronics", "price": 189999.99, "stock": 45},
  {"product_id": "FASH001", "name": "Levi's 511", "category": "Fashion", "price": 3499, "stock": 300, "reviews": null}
]`

const dirtyCatalog = `[
  {"product_id": "ELEC001", "name": "Samsung Galaxy S21", "category": "Electronics", "price": 45999},
  {"product_id": "ELEC001", "name": "Samsung Galaxy S21", "category": "Electronics", "price": 45999},
  {"product_id": "ELEC002", "name": "", "category": "Electronics", "price": 189999},
  {"product_id": " ELEC001 ", "name": "Samsung Galaxy S21", "category": "Electronics", "price": 45999},
  {"name": "Sin id", "category": "Fashion", "price": null}
]`

func TestDecode(t *testing.T) {
	var docs []bson.D
	err := Decode(strings.NewReader(catalog), func(doc bson.D) error {
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("decoded %d documents", len(docs))
	}

	first := docs[0].Map()
	if first["product_id"] != "ELEC001" {
		t.Errorf("product_id = %v", first["product_id"])
	}
	if _, ok := first["price"].(int32); !ok {
		t.Errorf("integral price should decode as int32, got %T", first["price"])
	}
	if _, ok := docs[1].Map()["price"].(float64); !ok {
		t.Errorf("fractional price should decode as double, got %T", docs[1].Map()["price"])
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"not an array":    `{"product_id": "ELEC001"}`,
		"scalar element":  `[{"product_id": "ELEC001"}, 42]`,
		"truncated array": `[{"product_id": "ELEC001"}`,
		"empty input":     ``,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			err := Decode(strings.NewReader(input), func(bson.D) error { return nil })
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestDecodeStopsOnCallbackError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Decode(strings.NewReader(catalog), func(bson.D) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestNormalizeReviews(t *testing.T) {
	missing := bson.D{{Key: "product_id", Value: "ELEC002"}}
	if !NormalizeReviews(&missing) {
		t.Error("missing reviews should be normalized")
	}
	if r, ok := missing.Map()["reviews"].(bson.A); !ok || len(r) != 0 {
		t.Errorf("reviews = %#v", missing.Map()["reviews"])
	}

	null := bson.D{{Key: "reviews", Value: nil}}
	if !NormalizeReviews(&null) || len(null) != 1 {
		t.Errorf("null reviews should be replaced in place: %#v", null)
	}

	present := bson.D{{Key: "reviews", Value: bson.A{bson.D{{Key: "rating", Value: 5}}}}}
	if NormalizeReviews(&present) {
		t.Error("existing reviews must be left alone")
	}
}

func TestImport(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inserts in batches", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		im := New(mt.Coll, zerolog.Nop())
		res, err := im.Import(context.Background(), strings.NewReader(catalog), Options{Source: "products_catalog.json", BatchSize: 2})
		if err != nil {
			mt.Fatalf("Import: %v", err)
		}
		if res.Read != 3 || res.Inserted != 3 || res.Normalized != 2 || res.Dropped {
			mt.Errorf("unexpected result %+v", res)
		}

		sizes := []int{}
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			if evt.CommandName != "insert" {
				mt.Fatalf("unexpected command %s", evt.CommandName)
			}
			docs, err := evt.Command.Lookup("documents").Array().Values()
			if err != nil {
				mt.Fatalf("documents: %v", err)
			}
			sizes = append(sizes, len(docs))
			if ordered, ok := evt.Command.Lookup("ordered").BooleanOK(); !ok || ordered {
				mt.Error("inserts must be unordered")
			}
		}
		if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 1 {
			mt.Errorf("batch sizes = %v", sizes)
		}
	})

	mt.Run("drops first when asked", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		im := New(mt.Coll, zerolog.Nop())
		res, err := im.Import(context.Background(), strings.NewReader(catalog), Options{Drop: true})
		if err != nil {
			mt.Fatalf("Import: %v", err)
		}
		if !res.Dropped || res.Inserted != 3 {
			mt.Errorf("unexpected result %+v", res)
		}
		if evt := mt.GetStartedEvent(); evt == nil || evt.CommandName != "drop" {
			mt.Fatalf("expected drop first, got %+v", evt)
		}
	})

	mt.Run("empty array inserts nothing", func(mt *mtest.T) {
		im := New(mt.Coll, zerolog.Nop())
		res, err := im.Import(context.Background(), strings.NewReader(`[]`), Options{})
		if err != nil {
			mt.Fatalf("Import: %v", err)
		}
		if res.Read != 0 || res.Inserted != 0 {
			mt.Errorf("unexpected result %+v", res)
		}
		if evt := mt.GetStartedEvent(); evt != nil {
			mt.Errorf("no command expected, got %s", evt.CommandName)
		}
	})

	mt.Run("write errors do not stop the import", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   1,
				Code:    11000,
				Message: "E11000 duplicate key error collection: fleximart_db.products index: product_id_1",
			}),
			mtest.CreateSuccessResponse(),
		)

		im := New(mt.Coll, zerolog.Nop())
		res, err := im.Import(context.Background(), strings.NewReader(catalog), Options{BatchSize: 2})
		if !errors.Is(err, ErrPartialImport) {
			mt.Fatalf("expected ErrPartialImport, got %v", err)
		}
		if res == nil || res.Read != 3 || res.Inserted != 2 || res.Failed != 1 {
			mt.Fatalf("unexpected result %+v", res)
		}

		inserts := 0
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			if evt.CommandName == "insert" {
				inserts++
			}
		}
		if inserts != 2 {
			mt.Errorf("second batch must still be sent, got %d inserts", inserts)
		}
	})

	mt.Run("server failure stops the import", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on fleximart_db",
		}))

		im := New(mt.Coll, zerolog.Nop())
		res, err := im.Import(context.Background(), strings.NewReader(catalog), Options{BatchSize: 2})
		if err == nil || errors.Is(err, ErrPartialImport) {
			mt.Fatalf("expected a fatal error, got %v", err)
		}
		if res == nil || res.Inserted != 0 {
			mt.Errorf("unexpected result %+v", res)
		}
	})

	mt.Run("reports duplicates and missing fields", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		im := New(mt.Coll, zerolog.Nop())
		res, err := im.Import(context.Background(), strings.NewReader(dirtyCatalog), Options{})
		if err != nil {
			mt.Fatalf("Import: %v", err)
		}
		if res.Read != 5 || res.Inserted != 5 || res.Skipped != 0 {
			mt.Errorf("every document should be inserted: %+v", res)
		}
		if res.Duplicates != 2 || len(res.DuplicateIDs) != 1 || res.DuplicateIDs[0] != "ELEC001" {
			mt.Errorf("duplicates = %d %v", res.Duplicates, res.DuplicateIDs)
		}
		if res.MissingFields != 2 {
			mt.Errorf("missing fields = %d", res.MissingFields)
		}
	})

	mt.Run("skips duplicates when asked", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		im := New(mt.Coll, zerolog.Nop())
		res, err := im.Import(context.Background(), strings.NewReader(dirtyCatalog), Options{SkipDuplicates: true})
		if err != nil {
			mt.Fatalf("Import: %v", err)
		}
		if res.Inserted != 3 || res.Skipped != 2 || res.Duplicates != 2 {
			mt.Errorf("unexpected result %+v", res)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "insert" {
			mt.Fatalf("expected insert, got %+v", evt)
		}
		docs, err := evt.Command.Lookup("documents").Array().Values()
		if err != nil || len(docs) != 3 {
			mt.Fatalf("documents: %v (%d)", err, len(docs))
		}
	})

	mt.Run("negative batch size", func(mt *mtest.T) {
		im := New(mt.Coll, zerolog.Nop())
		if _, err := im.Import(context.Background(), strings.NewReader(`[]`), Options{BatchSize: -1}); !errors.Is(err, ErrInvalidInput) {
			mt.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name string
		doc  bson.D
		want []string
	}{
		{
			name: "complete",
			doc: bson.D{
				{Key: "product_id", Value: "ELEC001"}, {Key: "name", Value: "Samsung Galaxy S21"},
				{Key: "category", Value: "Electronics"}, {Key: "price", Value: int32(45999)},
			},
		},
		{
			name: "absent, null and blank",
			doc: bson.D{
				{Key: "product_id", Value: "ELEC001"}, {Key: "name", Value: "  "},
				{Key: "price", Value: nil},
			},
			want: []string{"name", "category", "price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingFields(tt.doc)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("MissingFields = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProductID(t *testing.T) {
	if id, ok := ProductID(bson.D{{Key: "product_id", Value: " ELEC001 "}}); !ok || id != "ELEC001" {
		t.Errorf("ProductID = %q, %v", id, ok)
	}
	if _, ok := ProductID(bson.D{{Key: "product_id", Value: int32(7)}}); ok {
		t.Error("non-string product_id should not be tracked")
	}
	if _, ok := ProductID(bson.D{{Key: "name", Value: "Sin id"}}); ok {
		t.Error("missing product_id should not be tracked")
	}
}
