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
	"errors"
	"io/fs"
	"net/http"
	"strings"
)

// SPAHandler serves the payroll console bundle. Client routes such as
// /payroll/history fall back to index.html; API paths never do.
type SPAHandler struct {
	StaticFS fs.FS
}

func (h SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	if strings.HasPrefix(path, "api/") {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	if path == "" {
		h.serveIndex(w)
		return
	}

	f, err := h.StaticFS.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.serveIndex(w)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err == nil && stat.IsDir() {
		h.serveIndex(w)
		return
	}

	http.FileServer(http.FS(h.StaticFS)).ServeHTTP(w, r)
}

func (h SPAHandler) serveIndex(w http.ResponseWriter) {
	content, err := fs.ReadFile(h.StaticFS, "index.html")
	if err != nil {
		http.Error(w, "index.html not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
