// Package tzdata builds an immutable, case-insensitive catalog of the IANA
// zone identifiers available on the host system.
package tzdata

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"telegram-worldtime-bot/internal/domain"
)

// ErrNoZoneData means the host carries no usable zoneinfo database. The bot
// cannot validate zone names without one, so startup fails on it.
var ErrNoZoneData = errors.New("no time zone database found on host")

// zoneDirs are the usual locations of the host zoneinfo database.
var zoneDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
}

// Catalog maps lowercase zone identifiers to their canonical form.
// It is built once at startup and read-only afterwards.
type Catalog struct {
	byLower map[string]string
}

// NewCatalog enumerates the host time zone database. Identifiers are verified
// through time.LoadLocation before admission, so every catalog entry is usable
// for time conversion.
func NewCatalog() (*Catalog, error) {
	names := hostZoneNames()
	c := &Catalog{byLower: make(map[string]string, len(names))}
	for _, name := range names {
		if _, err := time.LoadLocation(name); err != nil {
			continue
		}
		c.byLower[strings.ToLower(name)] = name
	}
	if len(c.byLower) == 0 {
		return nil, ErrNoZoneData
	}
	return c, nil
}

// NewCatalogFromNames builds a catalog from a fixed identifier list.
// Intended for tests.
func NewCatalogFromNames(names []string) *Catalog {
	c := &Catalog{byLower: make(map[string]string, len(names))}
	for _, name := range names {
		c.byLower[strings.ToLower(name)] = name
	}
	return c
}

// Resolve normalizes free-text zone input to its canonical identifier.
// Matching is case-insensitive and exact; no fuzzy or abbreviation matching.
func (c *Catalog) Resolve(input string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(input))
	// The database itself aliases Calcutta, but the link is absent from some
	// distro packages. Kept from the previous generation of this bot.
	if key == "asia/calcutta" {
		key = "asia/kolkata"
	}
	if canonical, ok := c.byLower[key]; ok {
		return canonical, nil
	}
	return "", domain.ErrInvalidZone
}

// Size returns the number of catalog entries.
func (c *Catalog) Size() int { return len(c.byLower) }

// Names returns the canonical identifiers in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.byLower))
	for _, name := range c.byLower {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func hostZoneNames() []string {
	var zones []string
	for _, dir := range zoneDirs {
		zones = walkZoneDir(dir, "", zones)
	}
	return zones
}

// walkZoneDir recursively collects zone names under root. Zone identifiers
// are capitalized by convention; lowercase entries (localtime, posixrules,
// leap second tables) are skipped.
func walkZoneDir(root, prefix string, zones []string) []string {
	entries, err := os.ReadDir(filepath.Join(root, prefix))
	if err != nil {
		return zones
	}
	for _, entry := range entries {
		name := entry.Name()
		if name[:1] != strings.ToUpper(name[:1]) {
			continue
		}
		rel := name
		if prefix != "" {
			rel = prefix + "/" + name
		}
		if entry.IsDir() {
			zones = walkZoneDir(root, rel, zones)
			continue
		}
		zones = append(zones, rel)
	}
	return zones
}
