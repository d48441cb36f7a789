package track

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrDuplicateID is returned when two records share an id.
var ErrDuplicateID = errors.New("duplicate track id")

//go:embed tracks.json
var defaultTracks []byte

// File is the serialisable shape of a track file.
type File struct {
	Tracks []Definition `json:"tracks" yaml:"tracks"`
}

// Catalog is a read-only lookup over validated track definitions.
type Catalog struct {
	order []Definition
	byID  map[ID]int
}

// NewCatalog validates defs and indexes them by id. Load order is preserved.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{
		order: make([]Definition, 0, len(defs)),
		byID:  make(map[ID]int, len(defs)),
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byID[d.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		d.Points = append([]Point(nil), d.Points...)
		c.byID[d.ID] = len(c.order)
		c.order = append(c.order, d)
	}
	return c, nil
}

// Get looks up a track by id. ok is false for unknown ids.
func (c *Catalog) Get(id ID) (Definition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.order[i].clone(), true
}

// List returns every definition in load order.
func (c *Catalog) List() []Definition {
	out := make([]Definition, len(c.order))
	for i, d := range c.order {
		out[i] = d.clone()
	}
	return out
}

// Len returns the number of tracks in the catalog.
func (c *Catalog) Len() int { return len(c.order) }

func (d Definition) clone() Definition {
	d.Points = append([]Point(nil), d.Points...)
	return d
}

// LoadJSON reads a track file in JSON form.
func LoadJSON(r io.Reader) (*Catalog, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding track json: %w", err)
	}
	return NewCatalog(f.Tracks...)
}

// LoadYAML reads a track file in YAML form.
func LoadYAML(r io.Reader) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding track yaml: %w", err)
	}
	return NewCatalog(f.Tracks...)
}

// LoadFile reads a track file, choosing the decoder from the extension.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	case ".json":
		return LoadJSON(f)
	default:
		return nil, fmt.Errorf("track file %q: unsupported extension", path)
	}
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return LoadJSON(bytes.NewReader(defaultTracks))
}
