package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleximart-catalog/internal/database"
	"fleximart-catalog/internal/importer"
	"fleximart-catalog/internal/models"
	"fleximart-catalog/internal/storage"
)

func newImportCommand(a *app) *cobra.Command {
	var (
		file           string
		drop           bool
		batchSize      int
		skipDuplicates bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a JSON array of products into the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			var objects storage.Opener
			if a.cfg.MinIOEndpoint != "" {
				m, err := storage.NewMinIO(storage.MinIOOptions{
					Endpoint:  a.cfg.MinIOEndpoint,
					AccessKey: a.cfg.MinIOAccessKey,
					SecretKey: a.cfg.MinIOSecretKey,
					UseSSL:    a.cfg.MinIOUseSSL,
				})
				if err != nil {
					return err
				}
				objects = m
			}

			rc, err := storage.Open(ctx, file, objects)
			if err != nil {
				return err
			}
			defer rc.Close()

			result, err := importer.New(a.collection, a.log).Import(ctx, rc, importer.Options{
				Source:         file,
				Drop:           drop,
				BatchSize:      batchSize,
				SkipDuplicates: skipDuplicates,
			})
			if result == nil {
				return err
			}
			a.svc.InvalidateReports(ctx)

			if perr := a.printer().print("", result); perr != nil {
				return perr
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", defaultFile, "local path or s3://bucket/key")
	cmd.Flags().BoolVar(&drop, "drop", false, "drop the collection before importing")
	cmd.Flags().IntVar(&batchSize, "batch-size", importer.DefaultBatchSize, "documents per insert")
	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "insert only the first document of each product_id in the file")
	return cmd
}

func newFindCommand(a *app) *cobra.Command {
	var (
		category string
		maxPrice float64
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Products of a category priced below a bound",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}

			products, err := a.svc.FindByCategoryBelowPrice(cmd.Context(), category, maxPrice)
			if err != nil {
				return err
			}
			return a.printer().print("", products)
		},
	}

	cmd.Flags().StringVar(&category, "category", defaultCategory, "category to filter by")
	cmd.Flags().Float64Var(&maxPrice, "max-price", defaultMaxPrice, "exclusive upper bound for price")
	return cmd
}

func newTopRatedCommand(a *app) *cobra.Command {
	var minRating float64

	cmd := &cobra.Command{
		Use:   "top-rated",
		Short: "Products whose average review rating reaches a threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}

			ratings, err := a.svc.TopRated(cmd.Context(), minRating)
			if err != nil {
				return err
			}
			return a.printer().print("", ratings)
		},
	}

	cmd.Flags().Float64Var(&minRating, "min-rating", defaultMinRating, "inclusive lower bound for the average rating")
	return cmd
}

func newAddReviewCommand(a *app) *cobra.Command {
	var review models.NewReview

	cmd := &cobra.Command{
		Use:   "add-review",
		Short: "Append a review to a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}

			result, err := a.svc.AddReview(cmd.Context(), review)
			if err != nil {
				return err
			}
			return a.printer().print("", result)
		},
	}

	bindReviewFlags(cmd, &review)
	return cmd
}

func newCategoryPricesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "category-prices",
		Short: "Average price and product count per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}

			groups, err := a.svc.CategoryPrices(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer().print("", groups)
		},
	}
}

// newRunCommand ejecuta las consultas 2 a 5 en el orden del script
func newRunCommand(a *app) *cobra.Command {
	var (
		category  string
		maxPrice  float64
		minRating float64
		review    models.NewReview
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every query in order: find, top-rated, add-review, category-prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			p := a.printer()

			products, err := a.svc.FindByCategoryBelowPrice(ctx, category, maxPrice)
			if err != nil {
				return fmt.Errorf("find: %w", err)
			}
			if err := p.print(fmt.Sprintf("%s products under %v", category, maxPrice), products); err != nil {
				return err
			}

			ratings, err := a.svc.TopRated(ctx, minRating)
			if err != nil {
				return fmt.Errorf("top-rated: %w", err)
			}
			if err := p.print(fmt.Sprintf("Products with average rating >= %v", minRating), ratings); err != nil {
				return err
			}

			result, err := a.svc.AddReview(ctx, review)
			if err != nil {
				return fmt.Errorf("add-review: %w", err)
			}
			if err := p.print("Review added to "+review.ProductID, result); err != nil {
				return err
			}

			groups, err := a.svc.CategoryPrices(ctx)
			if err != nil {
				return fmt.Errorf("category-prices: %w", err)
			}
			return p.print("Average price by category", groups)
		},
	}

	cmd.Flags().StringVar(&category, "category", defaultCategory, "category to filter by")
	cmd.Flags().Float64Var(&maxPrice, "max-price", defaultMaxPrice, "exclusive upper bound for price")
	cmd.Flags().Float64Var(&minRating, "min-rating", defaultMinRating, "inclusive lower bound for the average rating")
	bindReviewFlags(cmd, &review)
	return cmd
}

func newPingCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity with the MongoDB primary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}

			latency, err := database.Ping(cmd.Context(), a.client, a.cfg.MongoTimeout)
			if err != nil {
				return fmt.Errorf("ping mongodb: %w", err)
			}
			return a.printer().print("", pingResult{
				Namespace: a.repo.Namespace(),
				LatencyMS: float64(latency.Microseconds()) / 1000,
			})
		},
	}
}

func bindReviewFlags(cmd *cobra.Command, review *models.NewReview) {
	cmd.Flags().StringVar(&review.ProductID, "product-id", defaultProductID, "product_id of the reviewed product")
	cmd.Flags().StringVar(&review.User, "user", defaultUser, "reviewer id")
	cmd.Flags().IntVar(&review.Rating, "rating", defaultRating, "rating from 1 to 5")
	cmd.Flags().StringVar(&review.Comment, "comment", defaultComment, "review text")
}
