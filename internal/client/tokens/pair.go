// Package tokens keeps the access/refresh credential pair in durable client
// storage and decides when an access token has to be replaced.
//
// Store is pure data access and never talks to the network. Policy decodes
// the expiry claim of an access token without verifying its signature; the
// client has no key to verify with and only needs the timestamp.
package tokens

// Pair is the credential pair issued by /login and /refresh.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether neither token is set.
func (p Pair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// Complete reports whether both tokens are set.
func (p Pair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}
