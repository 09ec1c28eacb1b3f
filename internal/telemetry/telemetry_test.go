/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestClient_EventAndUploadCrash(t *testing.T) {
	var mu sync.Mutex
	var events [][]byte
	var crashes [][]byte

	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		mu.Lock()
		events = append(events, append([]byte(nil), b...))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		mu.Lock()
		crashes = append(crashes, append([]byte(nil), b...))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second}
	c := New(cfg)
	defer c.Close()

	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Event("chapter_renumbered", map[string]any{"chapters": 3})
	c.Flush(context.Background())
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	ecount := len(events)
	mu.Unlock()
	if ecount == 0 {
		t.Fatalf("expected at least one event to be sent")
	}
	var m map[string]any
	if err := json.Unmarshal(events[0], &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["name"] != "chapter_renumbered" {
		t.Fatalf("event name mismatch: %v", m["name"])
	}
	if _, ok := m["ts"].(string); !ok {
		t.Fatalf("missing ts field")
	}
	if _, ok := m["version"].(string); !ok {
		t.Fatalf("missing version field")
	}

	c.UploadCrash([]byte("crash body"))
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	ccount := len(crashes)
	mu.Unlock()
	if ccount == 0 {
		t.Fatalf("expected crash upload to be sent")
	}
	if string(crashes[0]) != "crash body" {
		t.Fatalf("crash body mismatch: %q", string(crashes[0]))
	}
}

func TestClient_DisabledDropsEverything(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	// Opt-in false: nothing may be sent even with URLs configured.
	c := New(Config{OptIn: false, EventsURL: srv.URL, CrashURL: srv.URL, Timeout: time.Second})
	defer c.Close()

	if c.Enabled() {
		t.Fatalf("client reports enabled without opt-in")
	}
	c.Event("ignored", nil)
	c.UploadCrash([]byte("ignored"))
	time.Sleep(100 * time.Millisecond)
	if hits != 0 {
		t.Fatalf("disabled client sent %d requests", hits)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ND_TELEMETRY_OPT_IN", "")
	t.Setenv("ND_TELEMETRY_URL", "")
	t.Setenv("ND_CRASH_UPLOAD_URL", "")
	t.Setenv("ND_TELEMETRY_TIMEOUT_MS", "")

	cfg := FromEnv()
	if cfg.OptIn {
		t.Fatalf("telemetry must be opt-in")
	}
	if cfg.Timeout != 1500*time.Millisecond {
		t.Fatalf("default timeout = %v", cfg.Timeout)
	}
}

func TestFromEnvParsesOverrides(t *testing.T) {
	t.Setenv("ND_TELEMETRY_OPT_IN", "yes")
	t.Setenv("ND_TELEMETRY_URL", "https://example.test/t")
	t.Setenv("ND_TELEMETRY_TIMEOUT_MS", "250")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "https://example.test/t" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v, want 250ms", cfg.Timeout)
	}
}
