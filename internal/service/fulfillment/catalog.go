package fulfillment

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"checkout/internal/entities"
)

// DefaultProducts maps a course id to the artifact files delivered for it.
var DefaultProducts = map[string][]string{
	"tracker-habitos":         {"tracker-habitos.xlsx"},
	"planificador-financiero": {"planificador-financiero.xlsx"},
	"pack-productividad":      {"tracker-habitos.xlsx", "planificador-financiero.xlsx"},
}

// Catalog resolves products to files inside files. Unknown products have no fallback.
type Catalog struct {
	products map[string][]string
	files    fs.FS
}

func NewCatalog(files fs.FS, products map[string][]string) *Catalog {
	return &Catalog{
		products: products,
		files:    files,
	}
}

func (c *Catalog) HasProduct(courseID string) bool {
	_, ok := c.products[courseID]
	return ok
}

func (c *Catalog) Products() []string {
	ids := make([]string, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Artifacts loads every existing file of the product. Missing files are skipped;
// ErrNoArtifacts is returned when none remain.
func (c *Catalog) Artifacts(courseID string) ([]entities.Attachment, error) {
	names, ok := c.products[courseID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, courseID)
	}

	attachments := make([]entities.Attachment, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(c.files, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read artifact %s: %w", name, err)
		}
		attachments = append(attachments, entities.Attachment{Filename: name, Content: content})
	}

	if len(attachments) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoArtifacts, courseID)
	}
	return attachments, nil
}
