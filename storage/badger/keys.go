package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/poiesic/tickerdex/core"
)

// Key prefixes for different data types
const (
	securityRecordPrefix  = "secrec"
	securitySymbolPrefix  = "secsym"
	securityNamePrefix    = "secnam"
	referenceRecordPrefix = "refrec"
	referenceCodePrefix   = "refcode"
	checkpointPrefix      = "chkpt"
)

// indexTerminator separates the indexed text from the trailing ID so that a
// shorter value always sorts before any longer value it prefixes.
const indexTerminator = 0x00

// makeSecurityKey generates a key for a security record by ID.
func makeSecurityKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", securityRecordPrefix, id))
}

// makeIndexKey generates a composite key for a text index.
// Format: prefix:normalized-text\x00id
func makeIndexKey(prefix, text string, id core.ID) []byte {
	partial := makePartialIndexKey(prefix, text)
	buf := make([]byte, len(partial)+8)
	offset := copy(buf, partial)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialIndexKey generates the seek prefix for every key whose indexed
// text equals text. Format: prefix:normalized-text\x00
func makePartialIndexKey(prefix, text string) []byte {
	normalized := core.Normalize(text)
	buf := make([]byte, 0, len(prefix)+1+len(normalized)+1)
	buf = append(buf, prefix...)
	buf = append(buf, ':')
	buf = append(buf, normalized...)
	return append(buf, indexTerminator)
}

// makeIndexPrefix returns the prefix shared by every key of an index.
func makeIndexPrefix(prefix string) []byte {
	return []byte(prefix + ":")
}

// parseIndexKey splits an index key into its normalized text and ID.
func parseIndexKey(prefix, key []byte) (string, core.ID, bool) {
	if len(key) < len(prefix)+9 {
		return "", 0, false
	}
	text := key[len(prefix) : len(key)-9]
	if key[len(key)-9] != indexTerminator {
		return "", 0, false
	}
	return string(text), core.ID(binary.BigEndian.Uint64(key[len(key)-8:])), true
}

// makeReferenceKey generates a key for a reference entry by ID.
func makeReferenceKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", referenceRecordPrefix, id))
}

// makeReferenceCodeKey generates the lookup key for a reference entry.
// Format: prefix:kind:CODE
func makeReferenceCodeKey(kind core.ReferenceKind, code string) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s", referenceCodePrefix, kind, strings.ToUpper(strings.TrimSpace(code))))
}

// makeReferenceKindPrefix returns the prefix shared by every code key of a kind.
func makeReferenceKindPrefix(kind core.ReferenceKind) []byte {
	return []byte(fmt.Sprintf("%s:%d:", referenceCodePrefix, kind))
}

// makeCheckpointKey generates a key for an ingestion source checkpoint.
func makeCheckpointKey(source string) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, source))
}
