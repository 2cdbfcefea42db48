// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package option

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCredentialStoreLoadsAndCachesPerDatasource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orders.properties"), []byte("user=scott\npassword=tiger\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewCredentialStore(dir)

	got, err := store.Get("orders")
	if err != nil {
		t.Fatal(err)
	}
	if got["user"] != "scott" || got["password"] != "tiger" {
		t.Errorf("got %#v", got)
	}

	// Removing the backing file must not affect the cached result.
	if err := os.Remove(filepath.Join(dir, "orders.properties")); err != nil {
		t.Fatal(err)
	}
	got2, err := store.Get("orders")
	if err != nil {
		t.Fatal(err)
	}
	if got2["user"] != "scott" {
		t.Errorf("expected cached result, got %#v", got2)
	}
}

func TestCredentialStoreMissingDatasourceErrors(t *testing.T) {
	store := NewCredentialStore(t.TempDir())
	if _, err := store.Get("nobody"); err == nil {
		t.Fatal("expected error for missing credential file")
	}
}
