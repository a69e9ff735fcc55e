package badger

import (
	"fmt"

	"github.com/poiesic/indexit/core"
)

// Key prefixes for different data types
const (
	objectRecordPrefix  = "knorec"
	indexManifestPrefix = "idxman"
	vectorRecordPrefix  = "vecrec"
)

// makeObjectKey generates a key for a knowledge object by ID.
func makeObjectKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", objectRecordPrefix, id))
}

// makeIndexManifestKey generates a key for an index manifest entry.
// Format: prefix:type:field
func makeIndexManifestKey(typeName, fieldName string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", indexManifestPrefix, typeName, fieldName))
}

// makeVectorRecordKey generates a key for an embedded record.
// Format: prefix:type:field:id
func makeVectorRecordKey(typeName, fieldName string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%d", vectorRecordPrefix, typeName, fieldName, id))
}

// makePartialVectorKey generates a prefix for scanning all embedded
// records of one index.
// Format: prefix:type:field:
func makePartialVectorKey(typeName, fieldName string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", vectorRecordPrefix, typeName, fieldName))
}

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[:len(prefix)]) == string(prefix)
}
