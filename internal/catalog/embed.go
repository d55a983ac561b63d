package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed dist/catalog_bundle.json dist/catalog_bundle.manifest.json
var embeddedBundle embed.FS

var (
	bundleOnce sync.Once
	bundleData Bundle
	bundleErr  error
)

// LoadEmbeddedBundle returns the built-in property-finance catalog shipped
// with the binary. The payload is parsed once per process.
func LoadEmbeddedBundle() (Bundle, error) {
	bundleOnce.Do(func() {
		payload, err := embeddedBundle.ReadFile("dist/catalog_bundle.json")
		if err != nil {
			bundleErr = fmt.Errorf("read embedded catalog failed: %w", err)
			return
		}
		var bundle Bundle
		if err := json.Unmarshal(payload, &bundle); err != nil {
			bundleErr = fmt.Errorf("parse embedded catalog failed: %w", err)
			return
		}
		bundleData = bundle
	})
	if bundleErr != nil {
		return Bundle{}, bundleErr
	}
	return bundleData, nil
}
