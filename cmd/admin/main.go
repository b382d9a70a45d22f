package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/smartcafe/smartcafe-client/internal/products"
	"github.com/smartcafe/smartcafe-client/internal/view"
	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/config"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
)

const usage = `usage: admin <command> [args]

commands:
  list                          show the full catalog
  get <id>                      show one product
  create [flags]                add a product
  update <id> [flags]           replace a product
  delete <id>                   remove a product

run "admin create -h" for the product flags`

func main() {
	logg := logger.New(logger.Options{ServiceName: "admin"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	apiClient, err := api.NewClient(cfg.API, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create api client", err)
		os.Exit(1)
	}

	svc, err := products.NewService(products.ServiceParams{API: apiClient, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	ctx := context.Background()
	if err := run(ctx, svc, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "admin %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *products.Service, command string, args []string) error {
	switch command {
	case "list":
		if err := svc.Refresh(ctx); err != nil {
			return err
		}
		view.NewTerminal(os.Stdout).RenderCatalog(svc.Catalog(products.FilterAll))
		return nil

	case "get":
		id, err := argID(args)
		if err != nil {
			return err
		}
		product, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		printProduct(*product)
		return nil

	case "create":
		req, err := parseProductFlags("create", args)
		if err != nil {
			return err
		}
		product, err := svc.Create(ctx, *req)
		if err != nil {
			return err
		}
		fmt.Printf("created product #%d\n", product.ID)
		return nil

	case "update":
		id, err := argID(args)
		if err != nil {
			return err
		}
		req, err := parseProductFlags("update", args[1:])
		if err != nil {
			return err
		}
		product, err := svc.Update(ctx, id, *req)
		if err != nil {
			return err
		}
		fmt.Printf("updated product #%d\n", product.ID)
		return nil

	case "delete":
		id, err := argID(args)
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted product #%d\n", id)
		return nil

	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func argID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("product id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a product id: %s", args[0])
	}
	return id, nil
}

func parseProductFlags(command string, args []string) (*api.ProductRequest, error) {
	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	name := flags.String("name", "", "product name")
	price := flags.String("price", "0", "price in rupiah")
	stock := flags.Int("stock", 0, "stock on hand")
	productType := flags.String("type", "", "FOOD or DRINK")
	description := flags.String("description", "", "description")
	imageURL := flags.String("image", "", "image url")
	available := flags.Bool("available", true, "available for ordering")
	vegetarian := flags.Bool("vegetarian", false, "food only")
	cold := flags.Bool("cold", false, "drink only")
	size := flags.String("size", "", "drink only")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	parsedPrice, err := decimal.NewFromString(*price)
	if err != nil {
		return nil, fmt.Errorf("bad price %q: %w", *price, err)
	}

	return &api.ProductRequest{
		Name:         *name,
		Price:        parsedPrice,
		Stock:        *stock,
		ProductType:  *productType,
		Description:  *description,
		ImageURL:     *imageURL,
		Available:    *available,
		IsVegetarian: *vegetarian,
		IsCold:       *cold,
		Size:         *size,
	}, nil
}

func printProduct(p api.Product) {
	fmt.Printf("#%d %s (%s)\n", p.ID, p.Name, p.ProductType)
	fmt.Printf("  price: %s  stock: %d  available: %v\n", view.FormatRupiah(p.Price), p.Stock, p.Available)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	if p.IsVegetarian != nil {
		fmt.Printf("  vegetarian: %v\n", *p.IsVegetarian)
	}
	if p.IsCold != nil {
		fmt.Printf("  cold: %v\n", *p.IsCold)
	}
	if p.Size != nil {
		fmt.Printf("  size: %s\n", *p.Size)
	}
}
