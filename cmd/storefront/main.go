package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginzapet/storefront/internal/booking"
	"github.com/ginzapet/storefront/internal/cart"
	"github.com/ginzapet/storefront/internal/catalog"
	"github.com/ginzapet/storefront/internal/checkout"
	"github.com/ginzapet/storefront/pkg/config"
	"github.com/ginzapet/storefront/pkg/db"
	pkgerrors "github.com/ginzapet/storefront/pkg/errors"
	"github.com/ginzapet/storefront/pkg/localstore"
	"github.com/ginzapet/storefront/pkg/logger"
	"github.com/ginzapet/storefront/pkg/migrate"
	"github.com/ginzapet/storefront/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const usage = `usage: storefront <command> [args]

commands:
  categories                   list categories
  category <slug>              show one category with its products
  products [-limit N] [-popular]
  product <slug>               show one product
  cart                         show cart (reconciled against the catalog)
  cart add <slug>              add a product to the cart
  cart remove <slug>           remove a product from the cart
  order [flags]                fill and save the order form
  pay -proof <file>            submit payment proof for the saved order
  booking -email <e> -trx <id> look up a submitted order
`

type app struct {
	cfg     *config.Config
	logg    *logger.Logger
	client  *catalog.Client
	carts   *cart.Service
	store   *cart.Store
	drafts  *checkout.DraftStore
	machine *checkout.Machine
	booking *booking.Service
	closers []func() error
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()
	application, err := newApp(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storefront", err)
		os.Exit(1)
	}
	defer application.close()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := application.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, logg: logg}

	state, err := a.buildState(ctx)
	if err != nil {
		return nil, err
	}

	a.client, err = catalog.NewClient(cfg.Catalog, logg)
	if err != nil {
		return nil, err
	}

	a.store, err = cart.NewStore(state)
	if err != nil {
		return nil, err
	}
	a.carts, err = cart.NewService(a.store, logg)
	if err != nil {
		return nil, err
	}
	reconciler, err := cart.NewReconciler(a.store, a.client, logg, nil, cfg.Catalog.MaxParallelResolves)
	if err != nil {
		return nil, err
	}
	a.drafts, err = checkout.NewDraftStore(state)
	if err != nil {
		return nil, err
	}
	a.machine, err = checkout.NewMachine(checkout.MachineParams{
		Carts:      a.store,
		Drafts:     a.drafts,
		Reconciler: reconciler,
		Submitter:  a.client,
		Logger:     logg,
	})
	if err != nil {
		return nil, err
	}
	a.booking, err = booking.NewService(a.client)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// buildState picks the local-state backend from config.
func (a *app) buildState(ctx context.Context) (localstore.Store, error) {
	switch a.cfg.State.Backend {
	case config.StateBackendFile:
		return localstore.NewFile(a.cfg.State.Dir)
	case config.StateBackendRedis:
		client, err := redis.New(ctx, a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return localstore.NewRedis(client)
	case config.StateBackendDatabase:
		client, err := db.New(ctx, a.cfg.DB, a.cfg.State.Dir, a.logg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		if a.cfg.DB.AutoMigrate {
			dialect, err := migrate.DialectFor(a.cfg.DB.Driver)
			if err != nil {
				return nil, err
			}
			sqlDB, err := client.SQLDB()
			if err != nil {
				return nil, err
			}
			if err := migrate.Up(ctx, sqlDB, dialect); err != nil {
				return nil, err
			}
		}
		return localstore.NewDatabase(client)
	default:
		return nil, fmt.Errorf("unknown state backend %q", a.cfg.State.Backend)
	}
}

func (a *app) close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logg.Error(context.Background(), "error closing state backend", err)
		}
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "categories":
		return a.runCategories(ctx)
	case "category":
		if len(args) != 1 {
			return fmt.Errorf("usage: storefront category <slug>")
		}
		return a.runCategory(ctx, args[0])
	case "products":
		return a.runProducts(ctx, args)
	case "product":
		if len(args) != 1 {
			return fmt.Errorf("usage: storefront product <slug>")
		}
		return a.runProduct(ctx, args[0])
	case "cart":
		return a.runCart(ctx, args)
	case "order":
		return a.runOrder(ctx, args)
	case "pay":
		return a.runPay(ctx, args)
	case "booking":
		return a.runBooking(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) runCategories(ctx context.Context) error {
	categories, err := a.client.Categories(ctx)
	if err != nil {
		return err
	}
	for _, category := range categories {
		fmt.Printf("%-20s %s (%d products)\n", category.Slug, category.Name, category.ProductsCount)
	}
	return nil
}

func (a *app) runCategory(ctx context.Context, slug string) error {
	category, err := a.client.CategoryBySlug(ctx, slug)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", category.Name)
	for _, product := range category.Products {
		fmt.Printf("  %-28s %12s  stock %d\n", product.Slug, formatIDR(decimal.NewFromInt(int64(product.Price))), product.Stock)
	}
	return nil
}

func (a *app) runProducts(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("products", flag.ContinueOnError)
	limit := flags.Int("limit", 0, "maximum number of products")
	popular := flags.Bool("popular", false, "only popular products")
	if err := flags.Parse(args); err != nil {
		return err
	}
	products, err := a.client.Products(ctx, catalog.ProductQuery{Limit: *limit, PopularOnly: *popular})
	if err != nil {
		return err
	}
	for _, product := range products {
		fmt.Printf("%-28s %12s  stock %d\n", product.Slug, formatIDR(decimal.NewFromInt(int64(product.Price))), product.Stock)
	}
	return nil
}

func (a *app) runProduct(ctx context.Context, slug string) error {
	product, err := a.client.ProductBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	fmt.Printf("%s\n  price %s, stock %d\n", product.Name, formatIDR(decimal.NewFromInt(int64(product.Price))), product.Stock)
	if product.About != "" {
		fmt.Printf("  %s\n", product.About)
	}
	return nil
}

func (a *app) runCart(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		return a.showCart(ctx)
	}
	switch args[0] {
	case "add":
		if len(args) != 2 {
			return fmt.Errorf("usage: storefront cart add <slug>")
		}
		product, err := a.client.ProductBySlug(ctx, args[1])
		if err != nil {
			return err
		}
		if product == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if _, err := a.carts.Add(ctx, cart.LineItem{ProductID: product.ID, Slug: product.Slug, Quantity: 1}); err != nil {
			return err
		}
		fmt.Printf("added %s to cart\n", product.Name)
		return nil
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: storefront cart remove <slug>")
		}
		if _, err := a.carts.Remove(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("removed %s from cart\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown cart subcommand %q", args[0])
	}
}

func (a *app) showCart(ctx context.Context) error {
	reconciler, err := cart.NewReconciler(a.store, a.client, a.logg, nil, a.cfg.Catalog.MaxParallelResolves)
	if err != nil {
		return err
	}
	products, _, err := reconciler.Reconcile(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Println("cart is empty")
		return nil
	}
	for _, product := range products {
		fmt.Printf("%-28s %12s\n", product.Slug, formatIDR(decimal.NewFromInt(int64(product.Price))))
	}
	totals := checkout.ComputeTotals(products)
	fmt.Printf("\nsub total %s\ntax 11%%   %s\ngrand     %s\n",
		formatIDR(totals.Subtotal), formatIDR(totals.Tax), formatIDR(totals.Total))
	return nil
}

func (a *app) runOrder(ctx context.Context, args []string) error {
	prefill, err := a.machine.Begin(ctx)
	if err != nil {
		return err
	}

	flags := flag.NewFlagSet("order", flag.ContinueOnError)
	name := flags.String("name", prefill.Name, "full name")
	email := flags.String("email", prefill.Email, "email address")
	phone := flags.String("phone", prefill.Phone, "phone number")
	startedTime := flags.String("time", prefill.StartedTime, "start time ("+strings.Join(checkout.TimeSlots, ", ")+")")
	scheduleAt := flags.String("date", prefill.ScheduleAt, "schedule date (YYYY-MM-DD)")
	address := flags.String("address", prefill.Address, "street address")
	city := flags.String("city", prefill.City, "city")
	postCode := flags.String("postcode", prefill.PostCode, "post code")
	if err := flags.Parse(args); err != nil {
		return err
	}

	draft := checkout.OrderDraft{
		Name:        *name,
		Email:       *email,
		Phone:       *phone,
		StartedTime: *startedTime,
		ScheduleAt:  *scheduleAt,
		Address:     *address,
		City:        *city,
		PostCode:    *postCode,
	}
	if err := a.machine.SubmitDraft(ctx, draft); err != nil {
		return err
	}
	fmt.Println("order information saved; run `storefront pay -proof <file>` to finish")
	return nil
}

func (a *app) runPay(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("pay", flag.ContinueOnError)
	proofPath := flags.String("proof", "", "path to the payment proof image")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *proofPath == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment proof is required")
	}

	quote, err := a.machine.EnterPayment(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sub total %s, tax %s, grand total %s\n",
		formatIDR(quote.Totals.Subtotal), formatIDR(quote.Totals.Tax), formatIDR(quote.Totals.Total))

	file, err := os.Open(*proofPath)
	if err != nil {
		return fmt.Errorf("opening proof: %w", err)
	}
	defer file.Close()

	confirmation, err := a.machine.SubmitPayment(ctx, checkout.Proof{
		Filename: filepath.Base(*proofPath),
		Content:  file,
	})
	if err != nil {
		return err
	}
	fmt.Printf("payment proof submitted\n  trx id %s\n  email  %s\n", confirmation.TrxID, confirmation.Email)
	return nil
}

func (a *app) runBooking(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("booking", flag.ContinueOnError)
	email := flags.String("email", "", "email the order was placed under")
	trxID := flags.String("trx", "", "order transaction id")
	if err := flags.Parse(args); err != nil {
		return err
	}

	details, err := a.booking.Lookup(ctx, booking.Query{Email: *email, TrxID: *trxID})
	if err != nil {
		return err
	}
	status := "waiting for confirmation"
	if details.IsPaid {
		status = "paid"
	}
	fmt.Printf("%s / %s\n  %s, %s %s\n  scheduled %s at %s\n  total %s (%s)\n",
		details.OrderTrxID, details.Name,
		details.Address, details.City, details.PostCode,
		details.ScheduleAt, details.StartedTime,
		formatIDR(decimal.NewFromInt(int64(details.TotalAmount))), status)
	for _, line := range details.Transactions {
		if line.Product != nil {
			fmt.Printf("  - %s %s\n", line.Product.Name, formatIDR(decimal.NewFromInt(int64(line.Price))))
		}
	}
	return nil
}

// formatIDR renders a rupiah amount with thousands separators and no minor
// units, matching the storefront's display format.
func formatIDR(value decimal.Decimal) string {
	whole := value.Round(0).IntPart()
	negative := whole < 0
	if negative {
		whole = -whole
	}
	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune('.')
		}
		b.WriteRune(r)
	}
	out := "Rp " + b.String()
	if negative {
		out = "-" + out
	}
	return out
}

func renderError(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error: " + err.Error()
	}
	msg := "error: " + typed.Message()
	if details, ok := typed.Details().(checkout.FieldErrors); ok {
		for field, messages := range details {
			msg += fmt.Sprintf("\n  %s %s", field, strings.Join(messages, "; "))
		}
	}
	return msg
}
