package jcs

import "testing"

func TestDigestStableAcrossKeyOrder(t *testing.T) {
	a := []byte(`{"metadata":{"original_size":4,"content_hash":"ab"},"ciphertext":"zz"}`)
	b := []byte(`{"ciphertext":"zz","metadata":{"content_hash":"ab","original_size":4}}`)
	digestA, err := Digest(a)
	if err != nil {
		t.Fatalf("digest a: %v", err)
	}
	digestB, err := Digest(b)
	if err != nil {
		t.Fatalf("digest b: %v", err)
	}
	if digestA != digestB {
		t.Fatalf("digest mismatch: %s vs %s", digestA, digestB)
	}
	if len(digestA) != 64 {
		t.Fatalf("unexpected digest length: %d", len(digestA))
	}
}

func TestDigestDiffersOnContent(t *testing.T) {
	digestA, err := Digest([]byte(`{"v":1}`))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	digestB, err := Digest([]byte(`{"v":2}`))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if digestA == digestB {
		t.Fatal("expected different digests")
	}
}

func TestDigestRejectsInvalidJSON(t *testing.T) {
	if _, err := Digest([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
