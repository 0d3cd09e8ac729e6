package importer

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// RequiredFields son los campos que usan las consultas del catálogo
var RequiredFields = []string{"product_id", "name", "category", "price"}

// MissingFields devuelve los campos obligatorios ausentes, nulos o vacíos
func MissingFields(doc bson.D) []string {
	present := make(map[string]bool, len(doc))
	for _, e := range doc {
		switch v := e.Value.(type) {
		case nil:
		case string:
			present[e.Key] = strings.TrimSpace(v) != ""
		default:
			present[e.Key] = true
		}
	}

	var missing []string
	for _, field := range RequiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

// ProductID devuelve el product_id del documento si es un string no vacío
func ProductID(doc bson.D) (string, bool) {
	for _, e := range doc {
		if e.Key != "product_id" {
			continue
		}
		id, ok := e.Value.(string)
		id = strings.TrimSpace(id)
		return id, ok && id != ""
	}
	return "", false
}

// duplicateTracker detecta product_id repetidos dentro del mismo archivo
type duplicateTracker struct {
	seen     map[string]int
	repeated []string
}

func newDuplicateTracker() *duplicateTracker {
	return &duplicateTracker{seen: make(map[string]int)}
}

// observe registra id y devuelve true si ya había aparecido
func (d *duplicateTracker) observe(id string) bool {
	d.seen[id]++
	switch d.seen[id] {
	case 1:
		return false
	case 2:
		d.repeated = append(d.repeated, id)
	}
	return true
}
