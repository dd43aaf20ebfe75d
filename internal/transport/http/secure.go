// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureOptions configures response security headers
type SecureOptions struct {
	Production   bool
	AllowedHosts []string
}

// SecureHeaders sets browser hardening headers on every response.
// Host checks and HTTPS redirects apply only in production.
func SecureHeaders(opts SecureOptions) func(http.Handler) http.Handler {
	mw := secure.New(secure.Options{
		AllowedHosts:          opts.AllowedHosts,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           opts.Production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:            31536000,
		IsDevelopment:         !opts.Production,
	})
	return mw.Handler
}
