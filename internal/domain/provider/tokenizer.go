package provider

// BPECodec is the byte-pair encoding capability used by BPE-backed families.
// Implementations must be deterministic and free of side effects; the
// estimator treats any error (or panic) as "capability unavailable".
type BPECodec interface {
	// Encode returns the ordered token ids for text.
	Encode(text string) ([]int, error)

	// Decode returns the text for ids.
	Decode(ids []int) (string, error)

	// Name identifies the vocabulary, e.g. "cl100k_base".
	Name() string
}
