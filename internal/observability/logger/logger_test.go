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

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_JSONWithDomainAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf, DisableOTel: true})

	log.InfoContext(context.Background(), "access decision",
		Role(rbac.RoleManager),
		Feature(rbac.FeatureLoans),
		Level(rbac.AccessFull),
		Granted(false),
		Error(errors.New("boom")),
	)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "MANAGER", record["role"])
	assert.Equal(t, "loans", record["feature"])
	assert.Equal(t, "FULL", record["level"])
	assert.Equal(t, false, record["granted"])
	assert.Equal(t, "boom", record["error"])
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text", Output: &buf, DisableOTel: true})

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFanoutHandler_WritesToAll(t *testing.T) {
	var a, b bytes.Buffer
	h := NewFanoutHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	)
	slog.New(h).With(Component("test")).Info("hello")

	assert.Contains(t, a.String(), "component=test")
	assert.Contains(t, b.String(), "hello")
}
