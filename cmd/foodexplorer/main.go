package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"foodexplorer/cmd/foodexplorer/ui"
	"foodexplorer/internal/cart"
	"foodexplorer/internal/catalog"
	"foodexplorer/internal/config"
	"foodexplorer/internal/logging"
	"foodexplorer/internal/query"
	"foodexplorer/internal/server"
	"foodexplorer/internal/store"
)

const version = "1.0.0"

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "foodexplorer",
	Short: "Food Explorer - browse the open food product catalog",
	Long: `Food Explorer is a terminal client for the open food product catalog.

It searches products by name and category, filters by nutrition grade,
and keeps a local shopping cart that survives restarts.

Run without arguments to start the interactive browser.`,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

// browseCmd starts the interactive browser, same as running with no
// arguments.
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Start the interactive product browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

// searchCmd runs a one-shot catalog search and prints the results.
var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Search the catalog and print matching products",
	RunE:  runSearch,
}

// productCmd looks up a single product by barcode.
var productCmd = &cobra.Command{
	Use:   "product [barcode]",
	Short: "Look up a product by barcode",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

// categoriesCmd prints the browsable category list.
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List browsable product categories",
	RunE:  runCategories,
}

// serveCmd runs the local catalog proxy.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local catalog proxy server",
	Long: `Serves /api/food/search, /api/food/product/{barcode} and
/api/food/categories against the upstream catalog, so local frontends
never talk to the upstream directly.`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("foodexplorer %s\n", version)
	},
}

var (
	searchCategory string
	searchGrade    string
	searchPage     int
	serveListen    string
)

func init() {
	// Assigned here rather than in the composite literal to avoid an
	// initialization cycle (the closure references rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Interactive modes own the terminal; the console logger would
		// bleed stderr JSON under the alt screen.
		if cmd == rootCmd || cmd == browseCmd {
			return nil
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.foodexplorer/config.yaml)")

	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Filter by category tag")
	searchCmd.Flags().StringVar(&searchGrade, "grade", "", "Filter by nutrition grade (a-e)")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Result page")

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides config)")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config path and loads it with env overrides applied.
func loadConfig() (*config.Config, string, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, "", err
	}
	path := configPath
	if path == "" {
		path = filepath.Join(dataDir, "config.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, dataDir, nil
}

func newCatalogClient(cfg *config.Config) *catalog.Client {
	return catalog.NewClientWithConfig(catalog.Config{
		BaseURL:   cfg.Catalog.BaseURL,
		UserAgent: cfg.Catalog.UserAgent,
		Timeout:   cfg.GetCatalogTimeout(),
	})
}

// runBrowse is the composition root for the interactive browser.
func runBrowse() error {
	cfg, dataDir, err := loadConfig()
	if err != nil {
		return err
	}

	logOpts := logging.Options{
		DebugMode:  cfg.Logging.DebugMode || verbose,
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
	}
	if err := logging.Initialize(dataDir, logOpts); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()
	logging.Boot("foodexplorer %s starting", version)

	dbPath := cfg.Storage.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "foodexplorer.db")
	}
	localStore, err := store.NewLocalStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer localStore.Close()

	client := newCatalogClient(cfg)
	machine := query.NewMachine(client, cfg.Catalog.PageSize)
	cartStore := cart.NewStore(localStore)

	return ui.Run(machine, cartStore, client)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	client := newCatalogClient(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetCatalogTimeout())
	defer cancel()

	result, err := client.Search(ctx, catalog.SearchParams{
		SearchTerm:  strings.Join(args, " "),
		CategoryTag: searchCategory,
		Page:        searchPage,
		PageSize:    cfg.Catalog.PageSize,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	products := result.Products
	if searchGrade != "" {
		kept := products[:0:0]
		for _, p := range products {
			if strings.EqualFold(p.NutritionGrade, searchGrade) {
				kept = append(kept, p)
			}
		}
		products = kept
	}

	logger.Info("search complete",
		zap.Int("matches", result.Count),
		zap.Int("page", result.Page),
		zap.Int("shown", len(products)))

	if len(products) == 0 {
		fmt.Println("No products found.")
		return nil
	}
	fmt.Printf("%d products (page %d of %d):\n\n", result.Count, result.Page, result.PageCount)
	for _, p := range products {
		grade := strings.ToUpper(p.NutritionGrade)
		if grade == "" {
			grade = "-"
		}
		name := p.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("  [%s] %-13s %s", grade, p.Code, name)
		if brand := p.PrimaryBrand(); brand != "" {
			fmt.Printf("  (%s)", brand)
		}
		fmt.Println()
	}
	return nil
}

func runProduct(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	client := newCatalogClient(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetCatalogTimeout())
	defer cancel()

	p, err := client.GetByCode(ctx, args[0])
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("no product with barcode %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	fmt.Printf("Product:  %s\n", p.Name)
	fmt.Printf("Barcode:  %s\n", p.Code)
	if p.Brands != "" {
		fmt.Printf("Brands:   %s\n", p.Brands)
	}
	if p.NutritionGrade != "" {
		fmt.Printf("Grade:    %s\n", strings.ToUpper(p.NutritionGrade))
	}
	if p.IngredientsText != "" {
		fmt.Printf("\nIngredients:\n%s\n", p.IngredientsText)
	}
	if len(p.Nutriments) > 0 {
		fmt.Println("\nNutriments (per 100g):")
		for _, key := range []string{"energy-kcal_100g", "fat_100g", "saturated-fat_100g", "carbohydrates_100g", "sugars_100g", "proteins_100g", "salt_100g"} {
			if v, ok := p.Nutriments[key]; ok {
				fmt.Printf("  %-22s %.2f\n", strings.TrimSuffix(key, "_100g"), v)
			}
		}
	}
	return nil
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	client := newCatalogClient(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetCatalogTimeout())
	defer cancel()

	for _, c := range client.ListCategories(ctx) {
		fmt.Println(c)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	listen := serveListen
	if listen == "" {
		listen = cfg.Server.ListenAddr
	}

	srv := server.New(server.Config{
		UpstreamURL: cfg.Catalog.BaseURL,
		UserAgent:   cfg.Catalog.UserAgent,
		Timeout:     cfg.GetCatalogTimeout(),
	}, logger)

	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("proxy listening", zap.String("addr", listen))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
