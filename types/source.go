package types

// Source identifies where a resolved variant came from.
//
// The resolver consults sources in a fixed precedence order:
//
//	SourceCookie → SourceLocalCache → SourceBackend → SourceGenerated
//
// SourceFallback is never produced by the resolver itself; the Manager
// substitutes it when resolution fails and a fallback variant is configured.
type Source int

const (
	// SourceCookie means the variant was adopted from the cookie cache tier.
	SourceCookie Source = iota

	// SourceLocalCache means the variant came from the durable cache tier.
	SourceLocalCache

	// SourceBackend means the variant came from a persisted Assignment row.
	SourceBackend

	// SourceGenerated means the variant was freshly sampled, or forced by an
	// inactive experiment's baseline override.
	SourceGenerated

	// SourceFallback means resolution failed and the configured fallback
	// variant was substituted.
	SourceFallback
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceCookie:
		return "cookie"
	case SourceLocalCache:
		return "local-cache"
	case SourceBackend:
		return "backend"
	case SourceGenerated:
		return "generated"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of one resolver pass: which variant to show and
// which source it was adopted from.
type Resolution struct {
	// Variant is the resolved variant name.
	Variant string `json:"variant"`

	// Source records which tier produced the variant.
	Source Source `json:"source"`
}
