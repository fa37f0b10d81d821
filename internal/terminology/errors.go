package terminology

import "errors"

// Sentinel errors for terminology operations. Lookup failures degrade to
// empty codes at the enricher; ErrAuthentication marks token-exchange
// failures distinctly so they can be logged louder than transport errors.
var (
	ErrLookupFailed   = errors.New("terminology lookup failed")
	ErrAuthentication = errors.New("terminology authentication failed")
)
