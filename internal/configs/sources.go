package configs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"immo-parser-service/internal/constants"
	"immo-parser-service/internal/core/domain"
)

// FeedOverride - один фид из SOURCES_FILE
type FeedOverride struct {
	Category string `yaml:"category"`
	Region   string `yaml:"region"`
	URL      string `yaml:"url"`
}

// SourceOverrides - содержимое SOURCES_FILE. Пустые поля оставляют значения по умолчанию.
type SourceOverrides struct {
	Feeds              map[string][]FeedOverride `yaml:"feeds"`
	PhoneDenyList      []string                  `yaml:"phone_deny_list"`
	CommercialKeywords []string                  `yaml:"commercial_keywords"`
}

// LoadSourceOverrides читает YAML. Пустой путь дает пустые переопределения.
func LoadSourceOverrides(path string) (*SourceOverrides, error) {
	overrides := &SourceOverrides{}
	if path == "" {
		return overrides, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read sources file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, overrides); err != nil {
		return nil, fmt.Errorf("could not parse sources file %s: %w", path, err)
	}
	for source := range overrides.Feeds {
		if _, err := overrides.FeedsFor(domain.Source(source)); err != nil {
			return nil, err
		}
	}
	return overrides, nil
}

// FeedsFor возвращает шаблоны для источника; nil - переопределения нет
func (o *SourceOverrides) FeedsFor(source domain.Source) ([]constants.FeedTemplate, error) {
	items, ok := o.Feeds[string(source)]
	if !ok || len(items) == 0 {
		return nil, nil
	}
	templates := make([]constants.FeedTemplate, 0, len(items))
	for i, item := range items {
		category := domain.Category(item.Category)
		switch category {
		case domain.CategoryApartment, domain.CategoryHouse, domain.CategoryLand:
		default:
			return nil, fmt.Errorf("sources file: %s feed #%d: unknown category %q", source, i+1, item.Category)
		}
		region := domain.Region(item.Region)
		switch region {
		case domain.RegionVienna, domain.RegionLowerAustria:
		default:
			return nil, fmt.Errorf("sources file: %s feed #%d: unknown region %q", source, i+1, item.Region)
		}
		if item.URL == "" {
			return nil, fmt.Errorf("sources file: %s feed #%d: url is required", source, i+1)
		}
		templates = append(templates, constants.FeedTemplate{Category: category, Region: region, URLTemplate: item.URL})
	}
	return templates, nil
}
