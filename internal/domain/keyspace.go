package domain

// DefaultKeyPrefix namespaces every key and index the pipeline creates.
const DefaultKeyPrefix = "imgsearch:"

// Keyspace derives storage key names for each kind.
type Keyspace struct {
	Prefix string
}

// IndexName returns the FT index name for kind, e.g. "imgsearch:image:idx".
func (k Keyspace) IndexName(kind Kind) string {
	return k.DocPrefix(kind) + "idx"
}

// DocPrefix returns the hash key prefix covered by kind's index.
func (k Keyspace) DocPrefix(kind Kind) string {
	return k.prefix() + kind.IndexName() + ":"
}

// DocKey returns the hash key of one document.
func (k Keyspace) DocKey(kind Kind, id string) string {
	return k.DocPrefix(kind) + id
}

func (k Keyspace) prefix() string {
	if k.Prefix == "" {
		return DefaultKeyPrefix
	}
	return k.Prefix
}
