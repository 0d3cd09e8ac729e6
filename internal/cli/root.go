package cli

import (
	"github.com/spf13/cobra"
)

const (
	defaultCategory  = "Electronics"
	defaultMaxPrice  = 50000
	defaultMinRating = 4.0
	defaultProductID = "ELEC001"
	defaultUser      = "U999"
	defaultRating    = 4
	defaultComment   = "Good value"
	defaultFile      = "products_catalog.json"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Queries over the FlexiMart product catalog in MongoDB",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.output, "output", "o", outputJSON, "output format: json or table")
	flags.BoolVar(&a.noCache, "no-cache", false, "always query MongoDB, skipping the report cache")
	flags.StringVar(&a.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	root.AddCommand(
		newImportCommand(a),
		newFindCommand(a),
		newTopRatedCommand(a),
		newAddReviewCommand(a),
		newCategoryPricesCommand(a),
		newRunCommand(a),
		newPingCommand(a),
	)

	return root
}
