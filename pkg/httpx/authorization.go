package httpx

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// Scheme identifies which credential variant an Authorization header carries.
type Scheme int

const (
	// SchemeNone covers an absent header and any scheme other than Bearer or
	// Basic. Requests with it are treated as anonymous.
	SchemeNone Scheme = iota
	SchemeBearer
	SchemeBasic
)

func (s Scheme) String() string {
	switch s {
	case SchemeBearer:
		return "bearer"
	case SchemeBasic:
		return "basic"
	default:
		return "none"
	}
}

var ErrMalformedBasic = errors.New("httpx: malformed basic credentials")

// Authorization is a parsed Authorization header.
type Authorization struct {
	Scheme      Scheme
	Credentials string
}

// ParseAuthorization selects the scheme by the header's first token,
// compared case-insensitively. It never looks past the scheme to guess.
func ParseAuthorization(header string) Authorization {
	header = strings.TrimSpace(header)
	if header == "" {
		return Authorization{}
	}

	scheme, rest, _ := strings.Cut(header, " ")
	switch {
	case strings.EqualFold(scheme, "bearer"):
		return Authorization{Scheme: SchemeBearer, Credentials: strings.TrimSpace(rest)}
	case strings.EqualFold(scheme, "basic"):
		return Authorization{Scheme: SchemeBasic, Credentials: strings.TrimSpace(rest)}
	default:
		return Authorization{}
	}
}

// BasicCredentials decodes base64(id:secret). The secret may contain colons;
// the id may not.
func (a Authorization) BasicCredentials() (id, secret string, err error) {
	if a.Scheme != SchemeBasic {
		return "", "", ErrMalformedBasic
	}
	raw, err := base64.StdEncoding.DecodeString(a.Credentials)
	if err != nil {
		return "", "", ErrMalformedBasic
	}
	id, secret, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return "", "", ErrMalformedBasic
	}
	return id, secret, nil
}

// SetBearerChallenge sets an RFC 6750 WWW-Authenticate header.
func SetBearerChallenge(w http.ResponseWriter, code, desc string) {
	v := `Bearer realm="ut4master"`
	if code != "" {
		v += `, error="` + code + `"`
	}
	if desc != "" {
		v += `, error_description="` + desc + `"`
	}
	w.Header().Set("WWW-Authenticate", v)
}

// SetBasicChallenge sets an RFC 7617 WWW-Authenticate header.
func SetBasicChallenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="ut4master", charset="UTF-8"`)
}
