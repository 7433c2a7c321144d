// Package store persists catalog documents and their snapshot history.
package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/constants"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/save"
)

// Encode renders doc in the given format. YAML keeps the JSON key order.
func Encode(doc *catalog.Document, format save.Format, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" && format == save.FormatJSON {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, errors.WrapParse(format.String(), "", err)
	}
	if format == save.FormatJSON {
		return buf.Bytes(), nil
	}
	out, err := yaml.JSONToYAML(buf.Bytes())
	if err != nil {
		return nil, errors.WrapParse(format.String(), "", err)
	}
	return out, nil
}

// WriteDocument writes doc to a writer or, atomically, to a file.
func WriteDocument(doc *catalog.Document, opts ...save.Option) error {
	o := save.Defaults().Apply(opts...)
	data, err := Encode(doc, o.Format(), o.Indent())
	if err != nil {
		return err
	}
	if w := o.Writer(); w != nil {
		if _, err := w.Write(data); err != nil {
			return errors.WrapIO("write", "writer", err)
		}
		return nil
	}
	if o.Path() == "" {
		return errors.NewValidationError("path", "", "a path or writer is required")
	}
	return writeAtomic(o.Path(), data)
}

// writeAtomic replaces path with data through a temp file in the same
// directory, so readers never see a partial document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	name := tmp.Name()
	cleanup := func() { _ = os.Remove(name) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapIO("write", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.WrapIO("close", name, err)
	}
	if err := os.Chmod(name, constants.FilePermissions); err != nil {
		cleanup()
		return errors.WrapIO("chmod", name, err)
	}
	if err := os.Rename(name, path); err != nil {
		cleanup()
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// Decode parses a document in the given format, validates it against the
// catalog schema and checks its version.
func Decode(data []byte, format save.Format, name string) (*catalog.Document, error) {
	if format == save.FormatYAML {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, errors.NewParseError("yaml", name, "invalid YAML", err)
		}
		data = converted
	}
	if err := ValidateJSON(data, name); err != nil {
		return nil, err
	}
	var doc catalog.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewParseError("json", name, "invalid catalog document", err)
	}
	if err := doc.CheckVersion(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadDocument loads a document file, choosing the format by extension.
func ReadDocument(path string) (*catalog.Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("catalog", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return Decode(data, save.FormatFromPath(path), path)
}
