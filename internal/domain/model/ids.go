package model

// Prefixes of the generated string ids.
const (
	IDPrefixUser     = "UID"
	IDPrefixCategory = "CAT"
	IDPrefixProduct  = "PID"
	IDPrefixCart     = "CART"
	IDPrefixCartItem = "CARTI"
	IDPrefixOrder    = "ORD"
)
