// Package polycanyon implements the location core of the Poly Canyon guide:
// a fixed dataset of architectural structures and surveyed map points, a
// rectangular safe zone, nearest-point matching for incoming GPS fixes, and
// idempotent visit tracking persisted across restarts.
package polycanyon

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/gob"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

//go:embed canyon-data
var rawData embed.FS

// Data file names under the data directory (or the embedded canyon-data).
const (
	structuresFile = "structures.tsv"
	mapPointsFile  = "mappoints.tsv"
)

// dedupePrecision is the geohash precision used to collapse duplicate map
// points during loading. Nine characters is roughly a 5m x 5m cell, well
// below the spacing of distinct surveyed points.
const dedupePrecision = 9

// Config contains configuration options for Canyon initialization.
type Config struct {
	DataDir  string   // Directory for raw data files (default: "./canyon-data")
	CacheDir string   // Directory for cache files (default: "./canyon-cache")
	Zone     SafeZone // Geographic safe zone (default: DefaultSafeZone)
}

// Option is a functional option for configuring Canyon.
type Option func(*Config)

// WithDataDir sets the directory for raw data files.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithCacheDir sets the directory for cache files.
func WithCacheDir(dir string) Option {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithSafeZone overrides the default safe zone bounding box.
func WithSafeZone(z SafeZone) Option {
	return func(c *Config) {
		c.Zone = z
	}
}

func defaultConfig() *Config {
	return &Config{
		DataDir:  "./canyon-data",
		CacheDir: "./canyon-cache",
		Zone:     DefaultSafeZone,
	}
}

// Structure is one architectural project in the canyon.
type Structure struct {
	Number      int     // Stable structure number, the visit key
	Name        string  // Display name
	Year        int     // Year of construction
	Latitude    float64 // Canonical marker position
	Longitude   float64
	Description string
}

// MapPoint is a surveyed coordinate tied to a structure. Points with
// Structure == 0 are plain trail points and never produce visits.
type MapPoint struct {
	ID        int
	Latitude  float64
	Longitude float64
	Structure int
}

// Canyon provides safe-zone containment, nearest-point matching and structure
// lookup over the fixed dataset. Safe for concurrent use after initialization.
type Canyon struct {
	Structures []Structure
	Points     []MapPoint

	byNumber map[int]int      // structure number -> index into Structures
	buckets  map[string][]int // geohash bucket -> indices into Points
	config   *Config
}

// cacheMu protects cache generation from concurrent NewCanyon calls.
var cacheMu sync.Mutex

// Singleton pattern for the default Canyon instance.
var (
	defaultCanyon     *Canyon
	defaultCanyonOnce sync.Once
	defaultCanyonErr  error
)

// GetDefaultCanyon returns a shared Canyon instance, initializing it on first call.
func GetDefaultCanyon() (*Canyon, error) {
	defaultCanyonOnce.Do(func() {
		defaultCanyon, defaultCanyonErr = NewCanyon()
	})
	return defaultCanyon, defaultCanyonErr
}

// NewCanyon creates a Canyon with the structure and map point data loaded
// into memory. The gob cache is tried first; on a miss the embedded raw data
// files are parsed and the cache is rewritten.
//
// Example:
//
//	c, err := polycanyon.NewCanyon()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, dist, ok := c.NearestStructure(35.3145, -120.6542)
func NewCanyon(opts ...Option) (*Canyon, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Canyon{config: cfg}

	var err error
	c.Structures, err = loadCachedStructures(cfg.CacheDir)
	if err == nil {
		c.Points, err = loadCachedPoints(cfg.CacheDir)
	}
	if err != nil || len(c.Structures) == 0 || len(c.Points) == 0 {
		// Reset any partially loaded data before a full reload so a cache
		// hit on one file cannot mix with raw data from the other.
		c.Structures = nil
		c.Points = nil

		if loadErr := c.loadRawData(); loadErr != nil {
			return nil, fmt.Errorf("failed to load canyon data: %w", loadErr)
		}
		if storeErr := c.store(); storeErr != nil {
			log.Printf("warning: failed to store cache: %v", storeErr)
		}
	}

	c.buildIndexes()
	return c, nil
}

// buildIndexes creates the structure number index and the geohash bucket
// index used by proximity queries.
func (c *Canyon) buildIndexes() {
	c.byNumber = make(map[int]int, len(c.Structures))
	for i, s := range c.Structures {
		c.byNumber[s.Number] = i
	}
	c.buckets = make(map[string][]int)
	for i, p := range c.Points {
		h := geohash.EncodeWithPrecision(p.Latitude, p.Longitude, bucketPrecision)
		c.buckets[h] = append(c.buckets[h], i)
	}
}

// StructureByNumber returns the structure with the given number.
func (c *Canyon) StructureByNumber(n int) (Structure, bool) {
	idx, ok := c.byNumber[n]
	if !ok {
		return Structure{}, false
	}
	return c.Structures[idx], true
}

// InZone reports whether the coordinate falls inside the configured safe zone.
func (c *Canyon) InZone(lat, lng float64) bool {
	return c.config.Zone.Contains(lat, lng)
}

// Zone returns the configured safe zone.
func (c *Canyon) Zone() SafeZone {
	return c.config.Zone
}

// loadRawData parses the raw TSV data files and populates the Canyon instance.
func (c *Canyon) loadRawData() error {
	if err := c.loadStructures(); err != nil {
		return fmt.Errorf("loading structures: %w", err)
	}
	if err := c.loadMapPoints(); err != nil {
		return fmt.Errorf("loading map points: %w", err)
	}
	return nil
}

// openDataFile opens a raw data file, preferring the data directory on disk
// over the embedded copy so refreshed survey data can override the build.
func (c *Canyon) openDataFile(name string) (fs.File, error) {
	if fh, err := os.Open(filepath.Join(c.config.DataDir, name)); err == nil {
		return fh, nil
	}
	return rawData.Open("canyon-data/" + name)
}

// loadStructures parses structures.tsv.
// Format: number<tab>name<tab>year<tab>lat<tab>lng<tab>description
func (c *Canyon) loadStructures() error {
	fh, err := c.openDataFile(structuresFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", structuresFile, err)
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.SplitN(line, "\t", 6)
		if len(fields) != 6 {
			continue
		}

		num, errNum := strconv.Atoi(fields[0])
		lat, errLat := strconv.ParseFloat(fields[3], 64)
		lng, errLng := strconv.ParseFloat(fields[4], 64)
		if errNum != nil || errLat != nil || errLng != nil || num <= 0 {
			// Skip malformed rows rather than storing markers at (0,0).
			continue
		}
		year, _ := strconv.Atoi(fields[2]) // year 0 is acceptable for undated projects

		s := Structure{
			Number:      num,
			Name:        strings.TrimSpace(fields[1]),
			Year:        year,
			Latitude:    lat,
			Longitude:   lng,
			Description: strings.TrimSpace(fields[5]),
		}
		if s.Name != "" {
			c.Structures = append(c.Structures, s)
		}
	}
	return scanner.Err()
}

// loadMapPoints parses mappoints.tsv, deduplicating coincident points.
// Format: id<tab>lat<tab>lng<tab>structure-number
func (c *Canyon) loadMapPoints() error {
	fh, err := c.openDataFile(mapPointsFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", mapPointsFile, err)
	}
	defer fh.Close()

	dedupe := make(map[string]bool)

	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.SplitN(line, "\t", 4)
		if len(fields) != 4 {
			continue
		}

		id, errID := strconv.Atoi(fields[0])
		lat, errLat := strconv.ParseFloat(fields[1], 64)
		lng, errLng := strconv.ParseFloat(fields[2], 64)
		if errID != nil || errLat != nil || errLng != nil {
			continue
		}
		structure, _ := strconv.Atoi(fields[3]) // 0 = trail point

		// Survey exports occasionally repeat a point under two ids; keep
		// the first occurrence so nearest-point ties stay deterministic.
		key := geohash.EncodeWithPrecision(lat, lng, dedupePrecision)
		if dedupe[key] {
			continue
		}
		dedupe[key] = true

		c.Points = append(c.Points, MapPoint{
			ID:        id,
			Latitude:  lat,
			Longitude: lng,
			Structure: structure,
		})
	}
	return scanner.Err()
}

// store saves the parsed dataset to the gob disk cache.
func (c *Canyon) store() error {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if err := os.MkdirAll(c.config.CacheDir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	b := new(bytes.Buffer)
	enc := gob.NewEncoder(b)
	if err := enc.Encode(c.Structures); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.config.CacheDir, "structures.dmp"), b.Bytes(), 0644); err != nil {
		return err
	}

	b.Reset()
	if err := enc.Encode(c.Points); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.config.CacheDir, "points.dmp"), b.Bytes(), 0644); err != nil {
		return err
	}
	return nil
}

func openCacheFile(cacheDir, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(cacheDir, name))
}

func loadCachedStructures(cacheDir string) ([]Structure, error) {
	fh, err := openCacheFile(cacheDir, "structures.dmp")
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var ss []Structure
	if err := gob.NewDecoder(fh).Decode(&ss); err != nil {
		return nil, err
	}
	return ss, nil
}

func loadCachedPoints(cacheDir string) ([]MapPoint, error) {
	fh, err := openCacheFile(cacheDir, "points.dmp")
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var ps []MapPoint
	if err := gob.NewDecoder(fh).Decode(&ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// RegenerateCache forces a reload from the raw data files and rewrites the
// gob cache. The raw files must exist in the data directory (or embedded).
func RegenerateCache(opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Canyon{config: cfg}
	if err := c.loadRawData(); err != nil {
		return fmt.Errorf("failed to load raw data: %w", err)
	}
	if err := c.store(); err != nil {
		return fmt.Errorf("failed to store cache: %w", err)
	}
	return nil
}

// Validation thresholds for dataset integrity checks.
const (
	minStructureCount = 30  // full structure roster
	minMapPointCount  = 190 // ~200 surveyed points, minus dedupe
)

// ValidateData loads the dataset and performs integrity and functional checks.
func ValidateData(opts ...Option) error {
	c, err := NewCanyon(opts...)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if n := len(c.Structures); n < minStructureCount {
		return fmt.Errorf("structure count too low: got %d, want >= %d", n, minStructureCount)
	}
	if n := len(c.Points); n < minMapPointCount {
		return fmt.Errorf("map point count too low: got %d, want >= %d", n, minMapPointCount)
	}

	// Every non-trail point must reference a known structure.
	for _, p := range c.Points {
		if p.Structure == 0 {
			continue
		}
		if _, ok := c.byNumber[p.Structure]; !ok {
			return fmt.Errorf("map point %d references unknown structure %d", p.ID, p.Structure)
		}
	}

	// Every structure marker must resolve to itself via nearest-point search.
	for _, s := range c.Structures {
		p, _, ok := c.NearestPoint(s.Latitude, s.Longitude)
		if !ok {
			return fmt.Errorf("no nearest point for structure %d (%s)", s.Number, s.Name)
		}
		if p.Structure != s.Number {
			return fmt.Errorf("marker for structure %d (%s) resolves to structure %d",
				s.Number, s.Name, p.Structure)
		}
	}
	return nil
}
