package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// Hash is a hex-encoded SHA-256 digest
type Hash string

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// DatasetHash fingerprints an ordered long-format dataset
type DatasetHash Hash

func (h DatasetHash) String() string { return Hash(h).String() }

// DatasetHasher accumulates (participant, value) rows in order. Values are
// hashed by their IEEE-754 bits so that identical inputs always produce the
// same fingerprint regardless of formatting.
type DatasetHasher struct {
	h   hash.Hash
	buf [8]byte
}

// NewDatasetHasher creates an empty hasher
func NewDatasetHasher() *DatasetHasher {
	return &DatasetHasher{h: sha256.New()}
}

// Add appends one row
func (d *DatasetHasher) Add(participant ParticipantID, value float64) {
	binary.BigEndian.PutUint64(d.buf[:], uint64(len(participant)))
	d.h.Write(d.buf[:])
	d.h.Write([]byte(participant))
	binary.BigEndian.PutUint64(d.buf[:], math.Float64bits(value))
	d.h.Write(d.buf[:])
}

// Sum returns the fingerprint of all rows added so far
func (d *DatasetHasher) Sum() DatasetHash {
	return DatasetHash(hex.EncodeToString(d.h.Sum(nil)))
}
