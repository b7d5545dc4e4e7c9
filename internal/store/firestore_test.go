// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"ventureclub/internal/models"
)

// testFirestore connects to the Firestore emulator. The test is skipped
// unless FIRESTORE_EMULATOR_HOST is set.
func testFirestore(t *testing.T) *FirestoreCollections {
	t.Helper()

	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("skipping integration test: FIRESTORE_EMULATOR_HOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewFirestoreCollections(ctx, envOr("FIRESTORE_PROJECT_ID", "ventureclub-test"), "")
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// cleanFirestore deletes every document and schema marker.
func cleanFirestore(t *testing.T, s *FirestoreCollections) {
	t.Helper()
	ctx := context.Background()
	names := []string{schemaCollection}
	for _, c := range models.Collections {
		names = append(names, string(c))
	}
	for _, name := range names {
		refs, err := s.client.Collection(name).DocumentRefs(ctx).GetAll()
		if err != nil {
			t.Fatalf("list %s: %v", name, err)
		}
		for _, ref := range refs {
			ref.Delete(ctx)
		}
	}
}

func TestFirestoreCollections(t *testing.T) {
	s := testFirestore(t)
	testCollections(t, func(t *testing.T) Collections {
		cleanFirestore(t, s)
		t.Cleanup(func() { cleanFirestore(t, s) })
		return s
	})
}
