package domain

import "time"

// TokenPair is the access/refresh credential pair handed to a client.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// ActivationTicket is the signed token plus the short code mailed to the user.
type ActivationTicket struct {
	Token string
	Code  string
}
