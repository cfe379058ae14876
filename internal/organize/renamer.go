// Package organize computes destination names for classified documents
// and performs the filesystem moves.
package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sprintpoint/paperchase/internal/common"
	"github.com/sprintpoint/paperchase/internal/model"
)

// maxSuffix caps collision suffix probing.
const maxSuffix = 999

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	spacing     = regexp.MustCompile(`[\s_]+`)
)

// Organizer moves documents into place. Under DryRun it computes exact
// destinations, including collision suffixes, without touching the disk;
// planned destinations are tracked in memory so dry-run output matches a
// real run byte for byte.
type Organizer struct {
	taken  map[string]bool
	DryRun bool
}

// NewOrganizer creates an organizer.
func NewOrganizer(dryRun bool) *Organizer {
	return &Organizer{
		taken:  make(map[string]bool),
		DryRun: dryRun,
	}
}

// Filename computes the new base name for a document, or "" when the
// document keeps its current name.
func Filename(doc *model.ClassifiedDocument) string {
	switch doc.Type {
	case model.TypeExpense:
		return fmt.Sprintf("%s_%s", Sanitize(doc.Vendor), doc.Date.Format("2006-01-02"))
	case model.TypeBankStatement:
		return fmt.Sprintf("%s_%s_%s",
			Sanitize(doc.BankName),
			doc.PeriodStart.Format("2006-01-02"),
			doc.PeriodEnd.Format("2006-01-02"))
	default:
		return ""
	}
}

// MonthFolder returns the destination folder name for a date, e.g.
// "10 October".
func MonthFolder(date time.Time) string {
	return fmt.Sprintf("%02d %s", int(date.Month()), date.Month().String())
}

// Move renames src to newBase (or keeps its name when newBase is empty)
// inside folder (relative to src's directory; empty means stay put) and
// returns the destination path. Collisions get the first free _1, _2, ...
// suffix per destination folder.
func (o *Organizer) Move(src, newBase, folder string) (string, error) {
	dir := filepath.Dir(src)
	if folder != "" {
		dir = filepath.Join(dir, folder)
	}

	base := newBase
	ext := filepath.Ext(src)
	if base == "" {
		name := filepath.Base(src)
		base = strings.TrimSuffix(name, ext)
	}

	dest, err := o.uniqueDest(src, dir, base, ext)
	if err != nil {
		return "", err
	}
	o.taken[dest] = true

	if dest == src || o.DryRun {
		return dest, nil
	}

	if folder != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("%w: creating %s: %v", common.ErrFilesystem, dir, err)
		}
	}
	if err := os.Rename(src, dest); err != nil {
		return "", fmt.Errorf("%w: moving %s: %v", common.ErrFilesystem, src, err)
	}
	return dest, nil
}

// uniqueDest finds the first destination path not already on disk or
// claimed earlier in this run. The source path itself never counts as a
// collision.
func (o *Organizer) uniqueDest(src, dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	for i := 0; ; i++ {
		if i > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		}
		if i > maxSuffix {
			return "", fmt.Errorf("%w: too many duplicates for %s", common.ErrFilesystem, base)
		}
		if candidate == src {
			return candidate, nil
		}
		if o.taken[candidate] {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			continue
		}
		return candidate, nil
	}
}

// Sanitize makes a string safe for use as a filename: problematic
// characters stripped, runs of whitespace and underscores collapsed to
// hyphens, length capped at 50 breaking at a hyphen where possible.
func Sanitize(name string) string {
	name = unsafeChars.ReplaceAllString(name, "")
	name = spacing.ReplaceAllString(name, "-")
	name = strings.Trim(name, ". ")
	if len(name) > 50 {
		name = name[:50]
		if idx := strings.LastIndex(name, "-"); idx > 0 {
			name = name[:idx]
		}
	}
	if name == "" {
		return "Unknown"
	}
	return name
}
