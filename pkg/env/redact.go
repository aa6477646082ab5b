package env

import (
	"net/url"
	"strings"
)

// RedactSecret masks a secret, showing only the first 4 and last
// 4 characters.
func RedactSecret(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] +
		strings.Repeat("*", len(secret)-8) +
		secret[len(secret)-4:]
}

// RedactURL masks the password and the token query parameter of
// a server URL.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			u.User = url.UserPassword(
				u.User.Username(), RedactSecret(password),
			)
		}
	}
	q := u.Query()
	if token := q.Get("token"); token != "" {
		q.Set("token", RedactSecret(token))
		u.RawQuery = q.Encode()
	}
	return u.String()
}
