package errors

// Kind classifies an llmaid error. The set is closed.
type Kind int

const (
	// KindConfig indicates a required setting is unresolved or a value is unparsable.
	KindConfig Kind = iota + 1
	// KindTemplate indicates strict rendering found unbound placeholders.
	KindTemplate
	// KindProviderHTTP indicates the provider answered with a non-2xx status.
	KindProviderHTTP
	// KindProvider indicates a malformed response, a stream decode failure or a
	// transport failure.
	KindProvider
)

// Kinds lists every Kind in declaration order.
var Kinds = []Kind{KindConfig, KindTemplate, KindProviderHTTP, KindProvider}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTemplate:
		return "template"
	case KindProviderHTTP:
		return "provider_http"
	case KindProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// PreFlight reports whether errors of this kind are raised before any request is sent.
func (k Kind) PreFlight() bool {
	return k == KindConfig || k == KindTemplate
}
