package objstore

import (
	"encoding/hex"
	"errors"
)

// HashSize is the length, in bytes, of a Git object id in this
// module. gitjfs targets SHA-1 repositories only; the object-store
// collaborators never return ids of any other length.
const HashSize = 20

// OID is the binary object id of a Git object (commit, tree, blob, or
// tag).
type OID struct {
	v [HashSize]byte
}

// NullOID is the all-zero object id.
var NullOID OID

// NewOID parses `s`, a 40-character lowercase hex string, into an
// OID.
func NewOID(s string) (OID, error) {
	if len(s) != HashSize*2 {
		return OID{}, errors.New("oid has the wrong length")
	}
	var oid OID
	if _, err := hex.Decode(oid.v[:], []byte(s)); err != nil {
		return OID{}, err
	}
	return oid, nil
}

// OIDFromBytes converts a binary object id into an OID.
func OIDFromBytes(b []byte) (OID, error) {
	var oid OID
	if len(b) != HashSize {
		return OID{}, errors.New("oid has the wrong length")
	}
	copy(oid.v[:], b)
	return oid, nil
}

// String formats oid in lowercase hex.
func (oid OID) String() string {
	return hex.EncodeToString(oid.v[:])
}

// Bytes returns a view of oid's binary representation.
func (oid OID) Bytes() []byte {
	return oid.v[:]
}

// IsZero reports whether oid is the all-zero id.
func (oid OID) IsZero() bool {
	return oid == NullOID
}

func (oid OID) MarshalJSON() ([]byte, error) {
	src := oid.v[:]
	dst := make([]byte, hex.EncodedLen(len(src))+2)
	dst[0] = '"'
	dst[len(dst)-1] = '"'
	hex.Encode(dst[1:len(dst)-1], src)
	return dst, nil
}
