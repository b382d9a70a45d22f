package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"

	"github.com/smartcafe/smartcafe-client/internal/cart"
	"github.com/smartcafe/smartcafe-client/internal/history"
	"github.com/smartcafe/smartcafe-client/internal/products"
	"github.com/smartcafe/smartcafe-client/internal/view"
	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/config"
	"github.com/smartcafe/smartcafe-client/pkg/enums"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
	"github.com/smartcafe/smartcafe-client/pkg/storage"
)

// browserOpener hands the hosted invoice URL to the system browser.
type browserOpener struct{}

func (browserOpener) Open(url string) error {
	return browser.OpenURL(url)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "menu"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "menu",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to open local storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(ctx, "error closing local storage", err)
		}
	}()

	apiClient, err := api.NewClient(cfg.API, logg)
	if err != nil {
		logg.Error(ctx, "failed to create api client", err)
		os.Exit(1)
	}

	terminal := view.NewTerminal(os.Stdout)

	cartManager, err := cart.NewManager(cart.ManagerParams{
		Store:    store,
		Orders:   apiClient,
		Payments: apiClient,
		Opener:   browserOpener{},
		Renderer: terminal,
		Notifier: terminal,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart", err)
		os.Exit(1)
	}
	if err := cartManager.Load(ctx); err != nil {
		logg.Warn(ctx, "failed to restore cart: "+err.Error())
	}

	catalog, err := products.NewService(products.ServiceParams{API: apiClient, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create catalog", err)
		os.Exit(1)
	}
	if err := catalog.Refresh(ctx); err != nil {
		logg.Warn(ctx, "failed to load menu: "+err.Error())
	}

	historyService, err := history.NewService(history.ServiceParams{
		Store:  store,
		Orders: apiClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create history", err)
		os.Exit(1)
	}

	terminal.RenderCatalog(catalog.Catalog(products.FilterAll))
	repl(ctx, catalog, cartManager, historyService, terminal)
}

func repl(ctx context.Context, catalog *products.Service, cartManager *cart.Manager, historyService *history.Service, terminal *view.Terminal) {
	fmt.Println(`Commands: menu [all|food|drink], add <id>, remove <id>, qty <id> <delta>, cart, history [name], checkout <name> <method>, quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return

		case "menu":
			filter := products.FilterAll
			if len(fields) > 1 {
				filter = products.Filter(fields[1])
			}
			if err := catalog.Refresh(ctx); err != nil {
				fmt.Printf("could not refresh menu: %v\n", err)
			}
			terminal.RenderCatalog(catalog.Catalog(filter))

		case "add":
			id, ok := parseID(fields, 1)
			if !ok {
				continue
			}
			product, err := catalog.Get(ctx, id)
			if err != nil {
				fmt.Printf("unknown product #%d: %v\n", id, err)
				continue
			}
			if err := cartManager.AddItem(ctx, product.ID, product.Name, product.Price); err != nil {
				fmt.Printf("could not add: %v\n", err)
			}

		case "remove":
			if id, ok := parseID(fields, 1); ok {
				if err := cartManager.RemoveItem(ctx, id); err != nil {
					fmt.Printf("could not remove: %v\n", err)
				}
			}

		case "qty":
			id, ok := parseID(fields, 1)
			if !ok || len(fields) < 3 {
				fmt.Println("usage: qty <id> <delta>")
				continue
			}
			delta, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("usage: qty <id> <delta>")
				continue
			}
			if err := cartManager.ChangeQuantity(ctx, id, delta); err != nil {
				fmt.Printf("could not change quantity: %v\n", err)
			}

		case "cart":
			total := cartManager.Total()
			fmt.Printf("%d items, %s\n", cartManager.ItemCount(), view.FormatRupiah(total))

		case "history":
			name := ""
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			terminal.RenderHistory(historyService.Load(ctx, name))

		case "checkout":
			if len(fields) < 3 {
				fmt.Println("usage: checkout <name> <method>")
				continue
			}
			method, err := enums.ParsePaymentMethod(fields[len(fields)-1])
			if err != nil {
				fmt.Printf("unknown payment method: %v\n", err)
				continue
			}
			name := strings.Join(fields[1:len(fields)-1], " ")
			conf, err := cartManager.Submit(ctx, name, method)
			if err != nil {
				continue
			}
			fmt.Printf("order #%d confirmed, total %s\n", conf.OrderID, view.FormatRupiah(conf.TotalAmount))

		default:
			fmt.Printf("unknown command: %s\n", fields[0])
		}
	}
}

func parseID(fields []string, idx int) (int64, bool) {
	if len(fields) <= idx {
		fmt.Println("missing product id")
		return 0, false
	}
	id, err := strconv.ParseInt(fields[idx], 10, 64)
	if err != nil {
		fmt.Printf("not a product id: %s\n", fields[idx])
		return 0, false
	}
	return id, true
}
