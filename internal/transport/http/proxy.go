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
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedProxies lists the peers whose forwarding headers are believed.
type TrustedProxies struct {
	prefixes []netip.Prefix
}

// ParseTrustedProxies accepts addresses and CIDR prefixes.
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	var tp TrustedProxies
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return TrustedProxies{}, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
			}
			tp.prefixes = append(tp.prefixes, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(e)
		if err != nil {
			return TrustedProxies{}, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		tp.prefixes = append(tp.prefixes, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
	}
	return tp, nil
}

// Contains reports whether addr belongs to a trusted proxy.
func (tp TrustedProxies) Contains(addr string) bool {
	a, err := netip.ParseAddr(strings.TrimSpace(addr))
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range tp.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

type peer struct {
	ip       string
	viaProxy bool
}

const peerKey contextKey = "peer"

// ClientIPMiddleware resolves the caller address once per request.
// Forwarding headers count only when the direct peer is a trusted proxy;
// X-Forwarded-For is read right to left, skipping trusted hops.
func ClientIPMiddleware(tp TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), peerKey, tp.resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (tp TrustedProxies) resolve(r *http.Request) peer {
	remote := remoteHost(r)
	if !tp.Contains(remote) {
		return peer{ip: remote}
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			break
		}
		if !tp.Contains(hop) {
			return peer{ip: hop, viaProxy: true}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if _, err := netip.ParseAddr(realIP); err == nil {
			return peer{ip: realIP, viaProxy: true}
		}
	}
	return peer{ip: remote, viaProxy: true}
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// clientIP returns the address resolved by ClientIPMiddleware, or the
// direct peer when the middleware did not run.
func clientIP(r *http.Request) string {
	if p, ok := r.Context().Value(peerKey).(peer); ok {
		return p.ip
	}
	return remoteHost(r)
}

// fromTrustedProxy reports whether the request arrived through a trusted proxy.
func fromTrustedProxy(r *http.Request) bool {
	p, ok := r.Context().Value(peerKey).(peer)
	return ok && p.viaProxy
}
