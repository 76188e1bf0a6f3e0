package ratelimit

import "strings"

// MatchEndpoint resolves the rate limit configuration for a request path and
// method. Exact path matches win over prefix matches; configs whose Path ends
// in "/" act as prefixes (so "/rules/" covers "/rules/reload"). The health
// endpoint is always unthrottled.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}

	return nil
}
