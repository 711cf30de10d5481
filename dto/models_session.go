package dto

// Session holds the endpoints and token resolved by auth negotiation.
// A session belongs to exactly one client instance; concurrently spawned
// tasks each carry their own.
type Session struct {
	StorageURL string
	CDNURL     string
	Token      string
}

// Valid reports whether the session can be used for storage requests.
func (s Session) Valid() bool {
	return s.StorageURL != "" && s.Token != ""
}
