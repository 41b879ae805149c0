package rules

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	id "caseflow/pkg/domain"
	dErrors "caseflow/pkg/domain-errors"
)

//go:embed packs/*.yaml
var embeddedPacks embed.FS

// Loader resolves (jurisdiction, product) to an immutable rule pack. Packs
// ship embedded in the binary; an override directory lets operators hot-fix
// rule content without a release. Loaded packs are cached forever - rule
// authoring happens out-of-band and a restart picks up new content.
type Loader struct {
	overrideDir string
	validate    *validator.Validate

	mu    sync.RWMutex
	cache map[string]*Pack
	group singleflight.Group
}

// NewLoader creates a loader. overrideDir may be empty.
func NewLoader(overrideDir string) *Loader {
	return &Loader{
		overrideDir: overrideDir,
		validate:    validator.New(),
		cache:       make(map[string]*Pack),
	}
}

// Load returns the pack for the partition. A missing pack is a not_found
// domain error; the loader NEVER falls back to a different jurisdiction's
// rules.
func (l *Loader) Load(jurisdiction id.Jurisdiction, product id.Product) (*Pack, error) {
	key := partitionKey(jurisdiction, product)

	l.mu.RLock()
	pack, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return pack, nil
	}

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.mu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.mu.RUnlock()
			return cached, nil
		}
		l.mu.RUnlock()

		loaded, err := l.read(jurisdiction, product)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cache[key] = loaded
		l.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Pack), nil
}

func (l *Loader) read(jurisdiction id.Jurisdiction, product id.Product) (*Pack, error) {
	name := fmt.Sprintf("%s_%s.yaml", jurisdiction, product)

	raw, err := l.readFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dErrors.Newf(dErrors.CodeNotFound,
				"no rule pack for jurisdiction %q product %q", jurisdiction, product)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read rule pack")
	}

	var pack Pack
	if err := yaml.Unmarshal(raw, &pack); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("parse rule pack %s", name))
	}

	if err := l.validate.Struct(&pack); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("invalid rule pack %s", name))
	}

	// A pack claiming a different partition than its filename is authoring
	// error, and the exact failure mode cross-jurisdiction leakage starts as.
	if pack.Jurisdiction != jurisdiction || pack.Product != product {
		return nil, dErrors.Newf(dErrors.CodeInternal,
			"rule pack %s declares partition %s/%s", name, pack.Jurisdiction, pack.Product)
	}

	return &pack, nil
}

func (l *Loader) readFile(name string) ([]byte, error) {
	if l.overrideDir != "" {
		raw, err := os.ReadFile(filepath.Join(l.overrideDir, name))
		if err == nil {
			return raw, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	raw, err := embeddedPacks.ReadFile("packs/" + name)
	if err != nil {
		// Normalize embed fs errors so callers can branch on os.IsNotExist.
		if errors.Is(err, fs.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, err
	}
	return raw, nil
}

func partitionKey(jurisdiction id.Jurisdiction, product id.Product) string {
	return string(jurisdiction) + "/" + string(product)
}
