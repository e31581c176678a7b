package model

import (
	"strings"

	"github.com/google/uuid"
)

// Origin tags where a record's identity was assigned.
//
// The local_/tmp_ id prefixes are a serialization detail of this tag: a
// record whose id was minted on-device is OriginLocal until the migration
// engine rewrites it with a cloud-assigned id.
type Origin int

const (
	// OriginLocal means the id was minted on-device (or is absent).
	OriginLocal Origin = iota
	// OriginCloud means the id was assigned by the backend.
	OriginCloud
)

// String returns a human-readable representation of the origin.
func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginCloud:
		return "cloud"
	default:
		return "unknown"
	}
}

// IsLocalID reports whether id was minted on-device.
// An id is local iff it is empty or begins with local_ or tmp_.
func IsLocalID(id string) bool {
	return id == "" || strings.HasPrefix(id, "local_") || strings.HasPrefix(id, "tmp_")
}

// OriginOf classifies an id as local or cloud.
func OriginOf(id string) Origin {
	if IsLocalID(id) {
		return OriginLocal
	}
	return OriginCloud
}

// NewLocalID mints a device-local identifier. It is replaced by the
// cloud-assigned id when the record migrates.
func NewLocalID() string {
	return "local_" + uuid.NewString()
}

// Reconcile resolves the two-source conflict between a local record and its
// cloud counterpart: cloud wins by authority once it exists.
func Reconcile[T any](local, cloud *T) *T {
	if cloud != nil {
		return cloud
	}
	return local
}
