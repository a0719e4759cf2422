package pricelist

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
)

var (
	ErrNotFound   = errors.New("pricing document not found")
	ErrInvalidKey = errors.New("invalid pricing document key")
)

const catalogFile = "index.json"

var keyPart = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Key addresses one pricing document. The zero Key is the services catalog;
// everything else lives under pricelists/<family>/<name>.json.
type Key struct {
	Family string
	Name   string
}

func CatalogKey() Key {
	return Key{}
}

func FileKey(family, name string) Key {
	return Key{Family: family, Name: name}
}

func (k Key) IsCatalog() bool {
	return k.Family == "" && k.Name == ""
}

// Path returns the slash-separated location of the document relative to the
// store root.
func (k Key) Path() (string, error) {
	if k.IsCatalog() {
		return catalogFile, nil
	}
	if !keyPart.MatchString(k.Family) || !keyPart.MatchString(k.Name) {
		return "", fmt.Errorf("%w: %q/%q", ErrInvalidKey, k.Family, k.Name)
	}
	return path.Join("pricelists", k.Family, k.Name+".json"), nil
}

func (k Key) String() string {
	p, err := k.Path()
	if err != nil {
		return k.Family + "/" + k.Name
	}
	return p
}

// Store holds raw pricing documents. Reads return the bytes verbatim.
type Store interface {
	Read(ctx context.Context, key Key) ([]byte, error)
	Write(ctx context.Context, key Key, data []byte) error
}
