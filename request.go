package geoapi

import (
	"fmt"
	"net/url"
	"strings"
)

// buildQuery assembles a query string from ordered key/value pairs. The
// caller's ordering is preserved verbatim so the string that gets signed is
// exactly the string the server sees.
func buildQuery(pairs []string) (string, error) {
	if len(pairs)%2 != 0 {
		return "", fmt.Errorf("%w: odd parameter count %d", ErrInvalidParams, len(pairs))
	}

	seen := make(map[string]struct{}, len(pairs)/2)
	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		k, v := pairs[i], pairs[i+1]
		if k == "" {
			return "", fmt.Errorf("%w: empty parameter name at position %d", ErrInvalidParams, i)
		}
		if _, dup := seen[k]; dup {
			return "", fmt.Errorf("%w: duplicate parameter %q", ErrInvalidParams, k)
		}
		seen[k] = struct{}{}

		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	return b.String(), nil
}

// requestURL builds the full request URL: base path, caller parameters,
// credentials, and, when a signing secret is configured, the signature over
// path+query. Caller-supplied parameters are never modified.
func (c *Client) requestURL(basePath string, params []string) (string, error) {
	query, err := buildQuery(params)
	if err != nil {
		return "", err
	}

	if c.apiKey != "" {
		if query != "" {
			query += "&"
		}
		query += "key=" + url.QueryEscape(c.apiKey)
	} else if c.clientID != "" {
		if query != "" {
			query += "&"
		}
		query += "client=" + url.QueryEscape(c.clientID)
	}

	pathQuery := basePath + "?" + query
	if c.signer != nil {
		pathQuery += "&signature=" + c.signer.Sign(pathQuery)
	}
	return c.baseURL + pathQuery, nil
}
