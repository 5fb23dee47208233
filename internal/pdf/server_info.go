package pdf

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a3tai/mcp-pdf-forms/internal/descriptions"
)

// DirectoryCache provides TTL-based caching for directory contents
type DirectoryCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

type cacheEntry struct {
	files      []FileInfo
	lastUpdate time.Time
}

// NewDirectoryCache creates a new directory cache with specified TTL
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached listing for path if it has not expired
func (c *DirectoryCache) Get(path string) ([]FileInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || time.Since(entry.lastUpdate) > c.ttl {
		return nil, false
	}
	return entry.files, true
}

// Set stores a listing
func (c *DirectoryCache) Set(path string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{files: files, lastUpdate: time.Now()}
}

// Clear removes expired entries
func (c *DirectoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for path, entry := range c.entries {
		if now.Sub(entry.lastUpdate) > c.ttl {
			delete(c.entries, path)
		}
	}
}

// PDFServerInfo answers server info requests with a cached, bounded scan
// of the input directory
type PDFServerInfo struct {
	cache     *DirectoryCache
	fileLimit int
	service   *Service
}

// NewPDFServerInfo creates a new server info handler
func NewPDFServerInfo(service *Service) *PDFServerInfo {
	return &PDFServerInfo{
		cache:     NewDirectoryCache(5 * time.Minute),
		fileLimit: 100,
		service:   service,
	}
}

// GetServerInfo describes the server and lists PDFs in the input directory
func (p *PDFServerInfo) GetServerInfo(ctx context.Context, serverName, version string) (*PDFServerInfoResult, error) {
	dir := p.service.Directory()

	files, ok := p.cache.Get(dir)
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scanned, err := p.service.search.FindPDFsInDirectoryLimited(dir, p.fileLimit)
		if err != nil {
			scanned = []FileInfo{}
		}
		p.cache.Set(dir, scanned)
		files = scanned
	}

	return &PDFServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  dir,
		OutputDirectory:   p.service.OutputDirectory(),
		MaxFileSize:       p.service.GetMaxFileSize(),
		AvailableTools:    availableTools(),
		DirectoryContents: files,
		UsageGuidance:     p.usageGuidance(),
	}, nil
}

// ClearCache clears expired cache entries
func (p *PDFServerInfo) ClearCache() {
	p.cache.Clear()
}

func availableTools() []ToolInfo {
	tools := make([]ToolInfo, 0, len(descriptions.ToolNames))
	for _, name := range descriptions.ToolNames {
		tools = append(tools, ToolInfo{
			Name:        name,
			Description: descriptions.GetToolSummary(name),
			Usage:       descriptions.GetToolUsage(name),
		})
	}
	return tools
}

func (p *PDFServerInfo) usageGuidance() string {
	maxFileSizeMB := p.service.GetMaxFileSize() / (1024 * 1024)

	return fmt.Sprintf(`PDF Forms MCP Server Usage Guide:

1. DISCOVER:
   - Use 'pdf_search_directory' to find PDF files
   - Use 'pdf_form_inspect' to see whether a file has a fillable AcroForm,
     an XFA form, or no form at all

2. READ:
   - Use 'pdf_form_export' to get current values as JSON or YAML
   - Use 'pdf_form_map' to list fields page by page in reading order
   - Use 'pdf_form_search' to find fields by name or tooltip text

3. FILL:
   - Use 'pdf_form_template' to get a template with every fillable field
   - Use 'pdf_form_fill' with a values object or a data file
   - Unmatched keys are reported with the closest field names

4. EDIT:
   - Use 'pdf_form_clear' to strip values (field names or ALL)
   - Use 'pdf_form_hide' to hide fields and their captions
   - Use 'pdf_form_unlock' to clear the read-only flag (field names or ALL)

IMPORTANT NOTES:
- Input files must be inside %s; outputs are written to %s
- The input file is never modified; every edit writes a new PDF
- The server can handle files up to %dMB
- Checkboxes accept true/yes/on/1 for checked, anything else unchecks
- Signature fields cannot be filled`, p.service.Directory(), p.service.OutputDirectory(), maxFileSizeMB)
}
