package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

// Product is one catalog entry. The catalog is a read-only static JSON file;
// there is no upstream service behind it.
type Product struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Brand    string   `json:"brand"`
	Category string   `json:"category"`
	Price    float64  `json:"price"`
	Images   []string `json:"images"`
	Sizes    []string `json:"sizes"`
	Colors   []string `json:"colors"`
}

// Provider serves the product list loaded once at startup.
type Provider struct {
	products []Product
	byID     map[int]Product
	logger   logger.Logger
}

// Load reads the catalog file at path.
func Load(path string, log logger.Logger) (*Provider, error) {
	raw, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var products []Product

	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	p := &Provider{
		products: products,
		byID:     make(map[int]Product, len(products)),
		logger:   log,
	}

	for _, prod := range products {
		p.byID[prod.ID] = prod
	}

	log.Info("Catalog loaded", "products", len(products))
	return p, nil
}

// NewProvider builds a provider from an in-memory product list. Used in tests.
func NewProvider(products []Product, log logger.Logger) *Provider {
	p := &Provider{
		products: products,
		byID:     make(map[int]Product, len(products)),
		logger:   log,
	}

	for _, prod := range products {
		p.byID[prod.ID] = prod
	}

	return p
}

// All returns the full product list.
func (p *Provider) All() []Product {
	return p.products
}

// GetByID returns one product.
func (p *Provider) GetByID(id int) (Product, bool) {
	prod, ok := p.byID[id]
	return prod, ok
}

// MergeImages back-fills item images from the catalog. Webhook-sourced orders
// arrive without images because the gateway's metadata budget cannot carry
// them; absence stays a valid state when the product is no longer listed.
func (p *Provider) MergeImages(items []models.OrderItem) []models.OrderItem {
	merged := make([]models.OrderItem, len(items))

	for i, item := range items {
		merged[i] = item

		if len(item.Images) > 0 {
			continue
		}

		if prod, ok := p.byID[item.ProductID]; ok {
			merged[i].Images = prod.Images
		}
	}

	return merged
}
