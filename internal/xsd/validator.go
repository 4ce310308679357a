// Package xsd validates rendered invoices against the Factur-X schema
// sets. Two profiles are compiled: the strict EN 16931 profile that every
// exported document must satisfy, and the more permissive Extended profile
// used to classify foreign documents on import.
package xsd

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/lestrrat-go/libxml2"
	libxsd "github.com/lestrrat-go/libxml2/xsd"

	"github.com/rezonia/facturx/internal/model"
)

//go:embed schema/en16931 schema/extended
var schemaFS embed.FS

// Profile identifies the schema set a document conforms to.
type Profile string

const (
	ProfileEN16931  Profile = "EN16931"
	ProfileExtended Profile = "EXTENDED"
	ProfileInvalid  Profile = "INVALID"
)

// Validator holds the compiled schema sets. It is safe for concurrent use
// once constructed; construction is not. Callers keep one Validator for
// the lifetime of the process and Close it on shutdown.
type Validator struct {
	en16931  *libxsd.Schema
	extended *libxsd.Schema
}

// New compiles both schema profiles. The embedded schema files are
// materialized to a temporary directory so that libxml2 can resolve their
// relative imports; the directory is removed again before New returns.
func New() (*Validator, error) {
	dir, err := os.MkdirTemp("", "facturx-xsd-")
	if err != nil {
		return nil, model.NewIOError("xsd: create temp dir", err)
	}
	defer os.RemoveAll(dir)

	if err := materialize(dir); err != nil {
		return nil, err
	}

	en, err := compile(filepath.Join(dir, "en16931", "FACTUR-X_EN16931.xsd"))
	if err != nil {
		return nil, err
	}
	ext, err := compile(filepath.Join(dir, "extended", "FACTUR-X_EXTENDED.xsd"))
	if err != nil {
		en.Free()
		return nil, err
	}

	return &Validator{en16931: en, extended: ext}, nil
}

// Close releases the compiled schemas.
func (v *Validator) Close() {
	if v.en16931 != nil {
		v.en16931.Free()
	}
	if v.extended != nil {
		v.extended.Free()
	}
}

// Validate checks a document against the strict EN 16931 profile. A
// conforming document returns nil; a well-formed but non-conforming one
// returns a SchemaInvalidError listing every violation, and anything that
// is not XML at all returns an InputInvalidError.
func (v *Validator) Validate(data []byte) error {
	doc, err := libxml2.Parse(data)
	if err != nil {
		return model.NewInputInvalidError("not an XML document: " + err.Error())
	}
	defer doc.Free()

	if err := v.en16931.Validate(doc); err != nil {
		return schemaError(err)
	}
	return nil
}

// Classify reports the narrowest profile a document satisfies: EN 16931
// first, the Extended profile as fallback, invalid otherwise.
func (v *Validator) Classify(data []byte) Profile {
	doc, err := libxml2.Parse(data)
	if err != nil {
		return ProfileInvalid
	}
	defer doc.Free()

	if v.en16931.Validate(doc) == nil {
		return ProfileEN16931
	}
	if v.extended.Validate(doc) == nil {
		return ProfileExtended
	}
	return ProfileInvalid
}

func compile(path string) (*libxsd.Schema, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewIOError("xsd: read schema", err)
	}
	schema, err := libxsd.Parse(buf, libxsd.WithURI(path))
	if err != nil {
		return nil, model.NewIOError("xsd: compile schema", err)
	}
	return schema, nil
}

func materialize(dir string) error {
	return fs.WalkDir(schemaFS, "schema", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return model.NewIOError("xsd: walk embedded schemas", err)
		}
		rel, _ := filepath.Rel("schema", path)
		target := filepath.Join(dir, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return model.NewIOError("xsd: create schema dir", err)
			}
			return nil
		}
		buf, err := schemaFS.ReadFile(path)
		if err != nil {
			return model.NewIOError("xsd: read embedded schema", err)
		}
		if err := os.WriteFile(target, buf, 0o644); err != nil {
			return model.NewIOError("xsd: write schema file", err)
		}
		return nil
	})
}

func schemaError(err error) error {
	sv, ok := err.(libxsd.SchemaValidationError)
	if !ok {
		return model.NewSchemaInvalidError([]model.Violation{{Message: err.Error()}})
	}
	errs := sv.Errors()
	violations := make([]model.Violation, 0, len(errs))
	for _, e := range errs {
		msg := e.Error()
		violations = append(violations, model.Violation{
			Line:    lineFromMessage(msg),
			Message: msg,
		})
	}
	return model.NewSchemaInvalidError(violations)
}

// libxml2 positions appear either as "file:17:" or as a bare "17:0:"
// prefix, depending on how the message was produced.
var linePattern = regexp.MustCompile(`(?:^|:)(\d+):`)

// lineFromMessage pulls the line number out of a libxml2 error message.
// Messages without a position yield 0.
func lineFromMessage(msg string) int {
	m := linePattern.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
