package sources

import (
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/playmap/pkg/canonicalize"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/identity"
)

// recordKeys are the object keys searched for a record array, in order.
// A caller-supplied key is tried after "items".
var recordKeys = []string{"owned", "wishlist"}

// cacheKeys are the object keys searched for a cache entry array.
var cacheKeys = []string{"items", "data"}

// Decode parses a record list. It accepts a bare array, or an object with
// an "items", key, "owned" or "wishlist" array. String items become
// {"title": s}; other non-object items are skipped. Files named *.yaml or
// *.yml are read as YAML.
func Decode(name string, data []byte, key string) ([]*catalog.RawRecord, error) {
	doc, format, err := parse(name, data)
	if err != nil {
		return nil, errors.WrapSource(name, name, err)
	}

	items, ok := doc.([]any)
	if !ok {
		if obj, isObj := doc.(*catalog.RawRecord); isObj {
			keys := append([]string{"items"}, recordKeys...)
			if key != "" {
				keys = append([]string{"items", key}, recordKeys...)
			}
			items, ok = findArray(obj, keys...)
		}
	}
	if !ok {
		return nil, errors.WrapSource(name, name,
			errors.NewParseError(format, name, "no record array found", nil))
	}

	out := make([]*catalog.RawRecord, 0, len(items))
	for _, v := range items {
		switch item := v.(type) {
		case *catalog.RawRecord:
			out = append(out, item)
		case string:
			rec := catalog.NewRawRecord()
			rec.Set("title", item)
			out = append(out, rec)
		}
	}
	return out, nil
}

// DecodeCache parses a provider cache. It accepts an array of entries
// keyed by their "matchKey" or folded title, an object with an "items" or
// "data" array of such entries, or an object already keyed by match key.
// Entries that are not objects or have no key are skipped.
func DecodeCache(name string, data []byte) (canonicalize.Cache, error) {
	doc, format, err := parse(name, data)
	if err != nil {
		return nil, errors.WrapSource(name, name, err)
	}

	cache := make(canonicalize.Cache)
	switch v := doc.(type) {
	case []any:
		addEntries(cache, v)
	case *catalog.RawRecord:
		if entries, ok := findArray(v, cacheKeys...); ok {
			addEntries(cache, entries)
			break
		}
		for _, k := range v.Keys() {
			if entry, ok := v.Get(k).(*catalog.RawRecord); ok && k != "" {
				cache[k] = entry
			}
		}
	default:
		return nil, errors.WrapSource(name, name,
			errors.NewParseError(format, name, "cache is neither an array nor an object", nil))
	}
	return cache, nil
}

func addEntries(cache canonicalize.Cache, entries []any) {
	for _, v := range entries {
		entry, ok := v.(*catalog.RawRecord)
		if !ok {
			continue
		}
		key, _ := entry.Get("matchKey").(string)
		if key == "" {
			title, _ := entry.Get("title").(string)
			key = identity.MatchKey(title)
		}
		if key != "" {
			cache[key] = entry
		}
	}
}

func findArray(obj *catalog.RawRecord, keys ...string) ([]any, bool) {
	for _, k := range keys {
		if arr, ok := obj.Get(k).([]any); ok {
			return arr, true
		}
	}
	return nil, false
}

// parse decodes JSON or YAML into ordered records, arrays and scalars.
func parse(name string, data []byte) (any, string, error) {
	format := "json"
	if isYAML(name) {
		format = "yaml"
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, format, errors.NewParseError(format, name, "invalid YAML", err)
		}
		data = converted
	}
	doc, err := catalog.DecodeDocument(data)
	if err != nil {
		return nil, format, errors.NewParseError(format, name, "invalid document", err)
	}
	return doc, format, nil
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
