package config

import (
	"os"

	"gopkg.in/yaml.v3"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
)

// catalogFile is the on-disk shape of a model table.
//
//	models:
//	  - id: gpt-4o
//	    name: GPT-4o
//	    provider: OpenAI
//	    family: gpt
//	    input_price: 0.005
//	    output_price: 0.015
//	    context_window: 128000
type catalogFile struct {
	Models []provider.Model `yaml:"models"`
}

// LoadCatalog reads a model table from path. An empty path returns the
// built-in catalog.
func LoadCatalog(path string) (*provider.Catalog, error) {
	if path == "" {
		return provider.DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainErrors.WithContext(
			domainErrors.NewError(domainErrors.CodeConfiguration, "failed to read catalog file", err),
			"path", path,
		)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domainErrors.WithContext(
			domainErrors.NewError(domainErrors.CodeConfiguration, "failed to parse catalog file", err),
			"path", path,
		)
	}

	catalog, err := provider.NewCatalog(file.Models)
	if err != nil {
		return nil, domainErrors.WithContext(
			domainErrors.NewError(domainErrors.CodeValidation, "invalid catalog file", err),
			"path", path,
		)
	}
	return catalog, nil
}

// SaveCatalog writes catalog to path in the format LoadCatalog reads.
func SaveCatalog(catalog *provider.Catalog, path string) error {
	data, err := yaml.Marshal(catalogFile{Models: catalog.All()})
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeConfiguration, "failed to marshal catalog", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return domainErrors.NewError(domainErrors.CodeConfiguration, "failed to write catalog file", err)
	}
	return nil
}
