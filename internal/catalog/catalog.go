// Package catalog loads tracked brands and their product pages from YAML.
package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/MichalMitros/restock-monitor/internal/extractor"
	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Catalog is list of tracked brands.
type Catalog struct {
	Brands []Brand `yaml:"brands"`
}

// Brand is tracked brand with its extraction settings.
type Brand struct {
	Name     string `yaml:"name"`
	Strategy string `yaml:"strategy"`
	// Phrases replace default phrase lists, empty lists keep defaults.
	Phrases  extractor.Phrases `yaml:"phrases"`
	Products []string          `yaml:"products"`
}

// Target is brand ready for monitoring.
type Target struct {
	Brand     string
	Products  []models.TrackedProduct
	Extractor extractor.Extractor
}

// Load reads, parses and validates catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read catalog file: %w", err)
	}

	return Parse(data)
}

// Parse parses and validates catalog.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("can't parse catalog: %w", err)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return &cat, nil
}

// Validate reports all problems found in catalog.
func (c *Catalog) Validate() error {
	if len(c.Brands) == 0 {
		return errors.New("no brands")
	}

	var errs []error
	seen := map[string]bool{}

	for ix, brand := range c.Brands {
		name := strings.TrimSpace(brand.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("brand %d: missing name", ix))
			continue
		}

		key := strings.ToLower(name)
		if seen[key] {
			errs = append(errs, fmt.Errorf("brand %s: duplicated", name))
		}
		seen[key] = true

		if _, err := extractor.New(brand.Strategy, extractor.DefaultPhrases()); err != nil {
			errs = append(errs, fmt.Errorf("brand %s: %w", name, err))
		}

		if len(brand.Products) == 0 {
			errs = append(errs, fmt.Errorf("brand %s: no products", name))
		}

		for _, product := range brand.Products {
			parsed, err := url.Parse(product)
			if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
				errs = append(errs, fmt.Errorf("brand %s: invalid product url %q", name, product))
			}
		}
	}

	return errors.Join(errs...)
}

// Names returns names of all brands in catalog order.
func (c *Catalog) Names() []string {
	return lo.Map(c.Brands, func(b Brand, _ int) string { return b.Name })
}

// Targets returns monitoring targets of provided brands, or of all brands when none is provided.
// Brand names are matched ignoring case.
func (c *Catalog) Targets(brands ...string) ([]Target, error) {
	selected := c.Brands
	if len(brands) > 0 {
		selected = make([]Brand, 0, len(brands))
		for _, name := range brands {
			brand, ok := lo.Find(c.Brands, func(b Brand) bool { return strings.EqualFold(b.Name, strings.TrimSpace(name)) })
			if !ok {
				return nil, fmt.Errorf("%w: %s", platform.ErrUnknownBrand, name)
			}
			selected = append(selected, brand)
		}
	}

	targets := make([]Target, 0, len(selected))
	for _, brand := range selected {
		ext, err := extractor.New(brand.Strategy, extractor.DefaultPhrases().Override(brand.Phrases))
		if err != nil {
			return nil, fmt.Errorf("can't create %s extractor: %w", brand.Name, err)
		}

		targets = append(targets, Target{
			Brand: brand.Name,
			Products: lo.Map(lo.Uniq(brand.Products), func(u string, _ int) models.TrackedProduct {
				return models.TrackedProduct{Brand: brand.Name, URL: u}
			}),
			Extractor: ext,
		})
	}

	return targets, nil
}
