// Package products serves the customer-facing catalog and the admin CRUD
// surface over the product API.
package products

import (
	"context"
	"fmt"

	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/enums"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
)

// Filter narrows the catalog to one product family.
type Filter string

const (
	FilterAll   Filter = "all"
	FilterFood  Filter = "food"
	FilterDrink Filter = "drink"
)

type productsAPI interface {
	ListProducts(ctx context.Context) ([]api.Product, error)
	GetProduct(ctx context.Context, id int64) (*api.Product, error)
	CreateProduct(ctx context.Context, req api.ProductRequest) (*api.Product, error)
	UpdateProduct(ctx context.Context, id int64, req api.ProductRequest) (*api.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ServiceParams wires a product service.
type ServiceParams struct {
	API    productsAPI
	Logger *logger.Logger
}

// Service caches the full catalog per load and filters locally, the way the
// menu tabs switch without refetching.
type Service struct {
	client productsAPI
	logg   *logger.Logger

	catalog []api.Product
}

// NewService builds a product service.
func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, fmt.Errorf("products api required")
	}
	return &Service{client: params.API, logg: params.Logger}, nil
}

// Refresh reloads the catalog from the backend.
func (s *Service) Refresh(ctx context.Context) error {
	catalog, err := s.client.ListProducts(ctx)
	if err != nil {
		return err
	}
	s.catalog = catalog
	return nil
}

// Catalog returns the cached catalog narrowed by filter. Unavailable and
// out-of-stock products stay listed; ordering them is the backend's call to
// refuse.
func (s *Service) Catalog(filter Filter) []api.Product {
	if filter == FilterAll || filter == "" {
		out := make([]api.Product, len(s.catalog))
		copy(out, s.catalog)
		return out
	}
	var want enums.ProductType
	switch filter {
	case FilterFood:
		want = enums.ProductTypeFood
	case FilterDrink:
		want = enums.ProductTypeDrink
	default:
		return nil
	}
	out := make([]api.Product, 0, len(s.catalog))
	for _, product := range s.catalog {
		if product.ProductType == want.String() {
			out = append(out, product)
		}
	}
	return out
}

// Get fetches a single product by id.
func (s *Service) Get(ctx context.Context, id int64) (*api.Product, error) {
	return s.client.GetProduct(ctx, id)
}

// Create adds a product and refreshes the cached catalog.
func (s *Service) Create(ctx context.Context, req api.ProductRequest) (*api.Product, error) {
	product, err := s.client.CreateProduct(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "catalog refresh after create failed: "+err.Error())
	}
	return product, nil
}

// Update replaces a product and refreshes the cached catalog.
func (s *Service) Update(ctx context.Context, id int64, req api.ProductRequest) (*api.Product, error) {
	product, err := s.client.UpdateProduct(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "catalog refresh after update failed: "+err.Error())
	}
	return product, nil
}

// Delete removes a product and refreshes the cached catalog.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if err := s.Refresh(ctx); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "catalog refresh after delete failed: "+err.Error())
	}
	return nil
}
