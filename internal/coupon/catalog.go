package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/bits-and-blooms/bloom/v3"
)

const (
	minFilterSize     = 1024
	filterFalseRate   = 0.01
	maxCouponLineSize = 64 * 1024
)

// Catalog holds coupon definitions in memory and counts redemptions.
// A bloom filter in front of the map rejects unknown codes without touching it.
type Catalog struct {
	mu      sync.RWMutex
	coupons map[string]models.Coupon
	usage   map[string]int
	filter  *bloom.BloomFilter
	files   []string
}

// fileLoadResult holds the result of loading a single file
type fileLoadResult struct {
	index   int
	coupons []models.Coupon
	err     error
}

// NewCatalog creates an empty coupon catalog
func NewCatalog() *Catalog {
	return &Catalog{
		coupons: make(map[string]models.Coupon),
		usage:   make(map[string]int),
		filter:  bloom.NewWithEstimates(minFilterSize, filterFalseRate),
		files:   make([]string, 0),
	}
}

// NormalizeCode trims and upper-cases a coupon code so lookups ignore case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Add stores coupons, replacing any with the same code.
func (c *Catalog) Add(coupons ...models.Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cp := range coupons {
		cp.Code = NormalizeCode(cp.Code)
		if cp.Code == "" {
			continue
		}
		c.coupons[cp.Code] = cp
	}
	c.rebuildFilter()
}

// rebuildFilter sizes a fresh filter for the current catalog. Caller holds mu.
func (c *Catalog) rebuildFilter() {
	size := uint(len(c.coupons) * 2)
	if size < minFilterSize {
		size = minFilterSize
	}

	filter := bloom.NewWithEstimates(size, filterFalseRate)
	for code := range c.coupons {
		filter.AddString(code)
	}
	c.filter = filter
}

// Lookup finds a coupon by code, ignoring case and surrounding whitespace.
func (c *Catalog) Lookup(code string) (models.Coupon, bool) {
	code = NormalizeCode(code)
	if code == "" {
		return models.Coupon{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.filter.TestString(code) {
		return models.Coupon{}, false
	}

	cp, ok := c.coupons[code]
	return cp, ok
}

// Usage returns how many times a code has been redeemed
func (c *Catalog) Usage(code string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.usage[NormalizeCode(code)]
}

// RecordRedemption counts one use of a code
func (c *Catalog) RecordRedemption(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage[NormalizeCode(code)]++
}

// LoadFromFiles loads coupon definitions from several files concurrently.
// Every file is JSON lines, gzip compressed when the name ends in ".gz".
// Returns error if any file fails to load; nothing is stored in that case.
func (c *Catalog) LoadFromFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no file paths provided")
	}

	resultChan := make(chan fileLoadResult, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(index int, filePath string) {
			defer wg.Done()

			coupons, err := loadFromFile(ctx, filePath)
			resultChan <- fileLoadResult{
				index:   index,
				coupons: coupons,
				err:     err,
			}
		}(i, path)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining order so later files win on duplicate codes
	results := make([]fileLoadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			return fmt.Errorf("failed to load file %d (%s): %w", i+1, paths[i], result.err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, result := range results {
		for _, cp := range result.coupons {
			cp.Code = NormalizeCode(cp.Code)
			if cp.Code == "" {
				continue
			}
			c.coupons[cp.Code] = cp
		}
	}
	c.files = append(c.files, paths...)
	c.rebuildFilter()

	return nil
}

// loadFromFile opens a coupon file and parses it
func loadFromFile(ctx context.Context, path string) ([]models.Coupon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	return parseCoupons(ctx, r)
}

// parseCoupons reads one JSON coupon per line. Blank lines and lines starting
// with '#' are skipped.
func parseCoupons(ctx context.Context, r io.Reader) ([]models.Coupon, error) {
	coupons := make([]models.Coupon, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxCouponLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var cp models.Coupon
		if err := json.Unmarshal([]byte(line), &cp); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := validateDefinition(cp); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		coupons = append(coupons, cp)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return coupons, nil
}

func validateDefinition(cp models.Coupon) error {
	if NormalizeCode(cp.Code) == "" {
		return fmt.Errorf("coupon code is required")
	}
	switch cp.Type {
	case models.DiscountPercentage, models.DiscountFixed:
	default:
		return fmt.Errorf("coupon %s: unknown discount type %q", cp.Code, cp.Type)
	}
	if cp.Value.IsNegative() {
		return fmt.Errorf("coupon %s: negative value", cp.Code)
	}
	return nil
}

// GetStats returns statistics about loaded coupons
func (c *Catalog) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	for _, cp := range c.coupons {
		if cp.Active {
			active++
		}
	}

	redemptions := 0
	for _, n := range c.usage {
		redemptions += n
	}

	filePaths := make([]string, len(c.files))
	copy(filePaths, c.files)

	stats := make(map[string]interface{})
	stats["total_files"] = len(c.files)
	stats["file_paths"] = filePaths
	stats["total_coupons"] = len(c.coupons)
	stats["active_coupons"] = active
	stats["total_redemptions"] = redemptions

	return stats
}
