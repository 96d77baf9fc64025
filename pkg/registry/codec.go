package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/authenticator/pkg/totp"
)

// Format is an import/export document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DocumentVersion is written into every export.
const DocumentVersion = 1

// ParseFormat accepts "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.Join(ErrUnsupportedFormat, fmt.Errorf("format %q", s))
}

type document struct {
	Version     int             `json:"version" yaml:"version"`
	Credentials []documentEntry `json:"credentials" yaml:"credentials"`
}

type documentEntry struct {
	ID        string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string         `json:"name" yaml:"name"`
	Issuer    string         `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Secret    string         `json:"secret" yaml:"secret"`
	Algorithm totp.Algorithm `json:"algorithm" yaml:"algorithm"`
	Digits    int            `json:"digits,omitempty" yaml:"digits,omitempty"`
	Period    int            `json:"period,omitempty" yaml:"period,omitempty"`
	Preset    Preset         `json:"preset,omitempty" yaml:"preset,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Export writes creds as a versioned document. Secrets are written in plain
// Base32 so the file can be read by other authenticators.
func Export(w io.Writer, creds []Credential, format Format) error {
	doc := document{Version: DocumentVersion, Credentials: make([]documentEntry, 0, len(creds))}
	for _, c := range creds {
		if !c.Algorithm.Valid() {
			return errors.Join(ErrFailedToExport, totp.ErrInvalidAlgorithm,
				fmt.Errorf("credential %q has an unsupported algorithm, fix it before exporting", c.Label()))
		}
		e := documentEntry{
			ID:        c.ID,
			Name:      c.Name,
			Issuer:    c.Issuer,
			Secret:    c.Secret,
			Algorithm: c.Algorithm,
			Digits:    c.Digits,
			Period:    c.Period,
			Preset:    c.Preset,
		}
		if !c.CreatedAt.IsZero() {
			created := c.CreatedAt
			e.CreatedAt = &created
		}
		doc.Credentials = append(doc.Credentials, e)
	}

	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(doc)
		if err == nil {
			err = enc.Close()
		}
	default:
		return errors.Join(ErrFailedToExport, ErrUnsupportedFormat, fmt.Errorf("format %q", format))
	}
	if err != nil {
		return errors.Join(ErrFailedToExport, err)
	}
	return nil
}

// Import reads a document produced by Export or written by hand. Missing digits
// and period fall back to the RFC 6238 defaults; every entry is validated.
func Import(r io.Reader, format Format) ([]Credential, error) {
	var doc document
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	default:
		return nil, errors.Join(ErrFailedToImport, ErrUnsupportedFormat, fmt.Errorf("format %q", format))
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToImport, err)
	}
	if doc.Version > DocumentVersion {
		return nil, errors.Join(ErrFailedToImport, fmt.Errorf("document version %d is newer than supported %d", doc.Version, DocumentVersion))
	}

	creds := make([]Credential, 0, len(doc.Credentials))
	for i, e := range doc.Credentials {
		c := PresetOther.Apply(Credential{
			ID:        e.ID,
			Name:      e.Name,
			Issuer:    e.Issuer,
			Secret:    e.Secret,
			Algorithm: e.Algorithm,
			Digits:    e.Digits,
			Period:    e.Period,
			Preset:    e.Preset,
		}).Normalize()
		if e.CreatedAt != nil {
			c.CreatedAt = *e.CreatedAt
		}
		if err := c.Validate(); err != nil {
			return nil, errors.Join(ErrFailedToImport, fmt.Errorf("credential #%d (%s): %w", i, c.Name, err))
		}
		creds = append(creds, c)
	}
	return creds, nil
}
