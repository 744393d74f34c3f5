package operator

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is a typed, validated projection of a per-call configuration
// document for one backend kind. A Config belongs to the call that
// produced it and is never shared.
type Config interface {
	Scheme() Scheme
	Validate() error
}

// FSConfig configures the local filesystem backend.
type FSConfig struct {
	// Root is the directory all paths are resolved against. Required;
	// must already exist.
	Root string
}

// Scheme returns the backend kind for this configuration.
func (c *FSConfig) Scheme() Scheme { return SchemeFS }

// Validate validates the filesystem configuration.
func (c *FSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// MemoryConfig configures the in-memory backend. Stores are named;
// calls carrying the same name address the same store.
type MemoryConfig struct {
	Name string
}

// Scheme returns the backend kind for this configuration.
func (c *MemoryConfig) Scheme() Scheme { return SchemeMemory }

// Validate validates the in-memory configuration.
func (c *MemoryConfig) Validate() error {
	if c.Name == "" {
		c.Name = "default"
	}
	return nil
}

// S3Config configures the object storage backend.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Scheme returns the backend kind for this configuration.
func (c *S3Config) Scheme() Scheme { return SchemeS3 }

// Validate validates the object storage configuration. Static credentials
// are optional but must be supplied as a complete pair.
func (c *S3Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.Region, validation.Required),
	); err != nil {
		return err
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("%w: access_key_id and secret_access_key must be set together", ErrMissingKey)
	}
	return nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteConfig configures the SQLite key/value backend.
type SQLiteConfig struct {
	// Path is the database file. Required.
	Path string
	// Table holds the key/value rows; defaults to "objects". The name is
	// interpolated into DDL, so it must be a plain identifier.
	Table string
}

// Scheme returns the backend kind for this configuration.
func (c *SQLiteConfig) Scheme() Scheme { return SchemeSQLite }

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	if c.Table == "" {
		c.Table = "objects"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Table, validation.Match(identRe)),
	)
}

// Translate converts an untyped configuration document into the typed
// configuration for the given backend kind. It is pure: no I/O, no side
// effects. Unknown keys are ignored for forward compatibility; missing
// or mistyped required keys fail with ErrMissingKey or ErrInvalidType.
func Translate(scheme Scheme, doc map[string]any) (Config, error) {
	var cfg Config
	var err error

	switch scheme {
	case SchemeFS:
		c := &FSConfig{}
		c.Root, err = stringKey(doc, "root", true)
		cfg = c
	case SchemeMemory:
		c := &MemoryConfig{}
		c.Name, err = stringKey(doc, "name", false)
		cfg = c
	case SchemeS3:
		c := &S3Config{}
		keys := []struct {
			name     string
			dst      *string
			required bool
		}{
			{"bucket", &c.Bucket, true},
			{"region", &c.Region, true},
			{"endpoint", &c.Endpoint, false},
			{"access_key_id", &c.AccessKeyID, false},
			{"secret_access_key", &c.SecretAccessKey, false},
		}
		for _, k := range keys {
			*k.dst, err = stringKey(doc, k.name, k.required)
			if err != nil {
				break
			}
		}
		cfg = c
	case SchemeSQLite:
		c := &SQLiteConfig{}
		c.Path, err = stringKey(doc, "path", true)
		if err == nil {
			c.Table, err = stringKey(doc, "table", false)
		}
		cfg = c
	default:
		return nil, wrapScheme(string(scheme))
	}

	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		if !isConfigErr(err) {
			err = fmt.Errorf("%w: %v", ErrInvalidType, err)
		}
		return nil, fmt.Errorf("%s config: %w", scheme, err)
	}
	return cfg, nil
}

func isConfigErr(err error) bool {
	return errors.Is(err, ErrMissingKey) || errors.Is(err, ErrInvalidType)
}

// stringKey extracts a string-valued key from the document. A present
// key with a non-string value is always an error, required or not.
func stringKey(doc map[string]any, name string, required bool) (string, error) {
	v, ok := doc[name]
	if !ok {
		if required {
			return "", fmt.Errorf("%w: %q", ErrMissingKey, name)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string", ErrInvalidType, name)
	}
	if required && s == "" {
		return "", fmt.Errorf("%w: %q", ErrMissingKey, name)
	}
	return s, nil
}
