// Package token generates and inspects session tokens.
//
// A token has the shape
//
//	<userID>-<epochMillis>x<32 hex characters>
//
// The user id comes first so that log lines and admin views can show whose
// session a token belongs to without a store lookup. The millisecond timestamp
// records when the token was issued, and the 128-bit random suffix makes the
// token unguessable and unique even for identical user and instant.
//
// # Usage
//
//	gen := token.NewGenerator()
//
//	tok, err := gen.New("alice", time.Now())
//	if err != nil {
//		// only possible with a custom random source
//	}
//
//	token.IsWellFormed(tok) // true
//	token.UserID(tok)       // "alice"
//
//	parts, err := token.Parse(tok)
//	if errors.Is(err, token.ErrMalformed) {
//		// reject
//	}
//	fmt.Println(parts.IssuedAt)
//
// # Well-formedness
//
// IsWellFormed is a purely syntactic check. It never consults a store and is
// safe to call before taking any lock. Empty segments produced by repeated
// separators are ignored, so "--1x<suffix>" has a single segment and is
// rejected, while "a--1x<suffix>" is accepted.
package token
