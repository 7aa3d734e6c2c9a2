package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/telephone/internal"
	"codeberg.org/snonux/telephone/internal/document"
)

// versionCatalog lists the available versions
type versionCatalog struct {
	Latest struct {
		Release string `json:"release"`
	} `json:"latest"`
	Versions []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"versions"`
}

// versionDetail describes the downloads of one version
type versionDetail struct {
	Downloads struct {
		Client struct {
			URL string `json:"url"`
		} `json:"client"`
	} `json:"downloads"`
}

// Catalog fetches a version catalog, downloads the archive of one version
// and extracts a single JSON entry from it
type Catalog struct {
	URL      string // catalog JSON
	Version  string // version id, latest release when empty
	Entry    string // archive entry holding the document
	CacheDir string // where archives are kept between runs

	client *http.Client
	logger *slog.Logger
}

// NewCatalog creates a catalog source
func NewCatalog(url, version, entry, cacheDir string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Catalog{
		URL:      url,
		Version:  version,
		Entry:    entry,
		CacheDir: cacheDir,
		client:   &http.Client{Timeout: 10 * time.Minute},
		logger:   logger,
	}
}

// Load implements processor.Source
func (c *Catalog) Load(ctx context.Context) (*document.Node, error) {
	id, archiveURL, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	path, err := c.download(ctx, id, archiveURL)
	if err != nil {
		return nil, err
	}

	data, err := ExtractEntry(path, c.Entry)
	if err != nil {
		return nil, err
	}

	doc, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", c.Entry, err)
	}
	return doc, nil
}

// Describe returns a human readable origin
func (c *Catalog) Describe() string {
	version := c.Version
	if version == "" {
		version = "latest release"
	}
	return fmt.Sprintf("%s (%s) from %s", c.Entry, version, c.URL)
}

// Resolve returns the version id and its archive URL
func (c *Catalog) Resolve(ctx context.Context) (string, string, error) {
	var cat versionCatalog
	if err := c.getJSON(ctx, c.URL, &cat); err != nil {
		return "", "", fmt.Errorf("failed to fetch version catalog: %w", err)
	}

	id := c.Version
	if id == "" {
		id = cat.Latest.Release
	}
	if id == "" {
		return "", "", fmt.Errorf("version catalog has no latest release")
	}

	detailURL := ""
	for _, v := range cat.Versions {
		if v.ID == id {
			detailURL = v.URL
			break
		}
	}
	if detailURL == "" {
		return "", "", fmt.Errorf("version %s not found in catalog", id)
	}

	var detail versionDetail
	if err := c.getJSON(ctx, detailURL, &detail); err != nil {
		return "", "", fmt.Errorf("failed to fetch version %s: %w", id, err)
	}
	if detail.Downloads.Client.URL == "" {
		return "", "", fmt.Errorf("version %s has no archive download", id)
	}
	return id, detail.Downloads.Client.URL, nil
}

func (c *Catalog) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return nil
}

func (c *Catalog) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return resp, nil
}

// download stores the archive of version id in the cache directory and
// returns its path. A cached archive is reused.
func (c *Catalog) download(ctx context.Context, id, url string) (string, error) {
	if err := os.MkdirAll(c.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := filepath.Join(c.CacheDir, internal.SanitizeFilename(id)+".zip")
	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("using cached archive", "version", id, "path", path)
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	c.logger.Info("downloading archive", "version", id, "url", url)
	resp, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(c.CacheDir, "download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name()) // Clean up on error

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to save archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store archive: %w", err)
	}
	return path, nil
}
