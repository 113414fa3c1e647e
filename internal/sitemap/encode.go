package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/starlitjournals/sitemap/internal/models"
)

const lastModLayout = "2006-01-02"

// ToSitemap renders entries into the urlset document for domain. The encoder
// escapes any markup characters in loc.
func ToSitemap(domain string, entries []models.Entry) models.Sitemap {
	urls := make([]models.URL, 0, len(entries))
	for _, e := range entries {
		urls = append(urls, models.URL{
			Loc:        domain + e.Path,
			LastMod:    e.LastModified.UTC().Format(lastModLayout),
			ChangeFreq: string(e.ChangeFrequency),
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		})
	}
	return models.Sitemap{
		XMLNS: models.SitemapNamespace,
		URLs:  urls,
	}
}

func Encode(w io.Writer, sitemap models.Sitemap) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(sitemap); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile replaces path with the encoded sitemap. The document is written
// to a sibling temp file first so readers never see a half-written file.
func WriteFile(path string, sitemap models.Sitemap) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sitemap-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Encode(tmp, sitemap); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush sitemap: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set sitemap permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
