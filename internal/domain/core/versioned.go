package core

// VersionedBlob pairs a config value with its write counter. A blob that was
// never written has Version 0.
type VersionedBlob[T any] struct {
	Value   T
	Version int
}

// Replace is the only way to produce the next state of a blob.
func (b VersionedBlob[T]) Replace(v T) VersionedBlob[T] {
	return VersionedBlob[T]{Value: v, Version: b.Version + 1}
}

// BlobOf lifts a nullable persisted counter into a VersionedBlob.
func BlobOf[T any](v T, version *int) VersionedBlob[T] {
	if version == nil {
		return VersionedBlob[T]{Value: v}
	}
	return VersionedBlob[T]{Value: v, Version: *version}
}
