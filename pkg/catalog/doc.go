// Package catalog defines the data model shared by every reconciliation
// stage: raw source records, normalized entities, canonical merged
// entities, and the persisted catalog document.
//
// RawRecord keeps source key order, and Prices keeps region insertion
// order, because downstream tie-breaks depend on both.
//
//	var rec catalog.RawRecord
//	if err := json.Unmarshal(data, &rec); err != nil {
//		return err
//	}
//	title := rec.Get("title")
package catalog
