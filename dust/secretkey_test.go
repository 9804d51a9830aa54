package dust

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/midnightntwrk/ledger-go/serialize"
)

func testSeed(b byte) Seed {
	var seed Seed
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func TestDeriveSecretKeyDeterministic(t *testing.T) {
	a, err := DeriveSecretKey(testSeed(1)).PublicKey()
	if err != nil {
		t.Fatal(err)
	}
	b, err := DeriveSecretKey(testSeed(1)).PublicKey()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("same seed derived different keys")
	}
	c, err := DeriveSecretKey(testSeed(2)).PublicKey()
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Fatal("different seeds derived the same key")
	}
}

func TestClearPoisonsPublicKey(t *testing.T) {
	sk := DeriveSecretKey(testSeed(1))
	p0, err := sk.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey before clear: %v", err)
	}
	sk.Clear()
	if _, err := sk.PublicKey(); !errors.Is(err, ErrKeyCleared) {
		t.Fatalf("want ErrKeyCleared, got %v", err)
	}
	if got, _ := sk.PublicKey(); got == p0 {
		t.Fatal("cleared container returned the pre-clear public key")
	}
	if err := sk.Serialize(&bytes.Buffer{}); !errors.Is(err, ErrKeyCleared) {
		t.Fatalf("Serialize after clear: want ErrKeyCleared, got %v", err)
	}
}

func TestKeyClearedMessageIsStable(t *testing.T) {
	if ErrKeyCleared.Error() != "Dust secret key was cleared" {
		t.Fatalf("ErrKeyCleared message changed: %q", ErrKeyCleared.Error())
	}
}

func TestClearIsIdempotent(t *testing.T) {
	sk := DeriveSecretKey(testSeed(1))
	sk.Clear()
	sk.Clear()
	if !sk.Cleared() {
		t.Fatal("double clear resurrected the container")
	}
	if _, err := sk.PublicKey(); !errors.Is(err, ErrKeyCleared) {
		t.Fatalf("want ErrKeyCleared, got %v", err)
	}
}

func TestClearZeroizesMaterial(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	sk := NewSecretKey(raw)
	// The container copies; clearing must not depend on the caller's slice.
	held := sk.key
	sk.Clear()
	for i, b := range held {
		if b != 0 {
			t.Fatalf("key byte %d not zeroized", i)
		}
	}
}

func TestStringNeverLeaksMaterial(t *testing.T) {
	sk := NewSecretKey([]byte("super secret bytes here........."))
	if sk.String() != "<dust secret key>" {
		t.Fatalf("String: %q", sk.String())
	}
	sk.Clear()
	if sk.String() != "<dust secret key>" {
		t.Fatalf("String after clear: %q", sk.String())
	}
}

func TestSecretKeySerializeRoundTrip(t *testing.T) {
	sk := DeriveSecretKey(testSeed(9))
	var out bytes.Buffer
	if err := serialize.TaggedSerialize(&out, sk); err != nil {
		t.Fatalf("TaggedSerialize: %v", err)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("midnight:dust-secret-key[v1]:")) {
		t.Fatalf("missing tag: % x", out.Bytes()[:32])
	}
	back, err := serialize.TaggedDeserialize[SecretKey](bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("TaggedDeserialize: %v", err)
	}
	pkA, err := sk.PublicKey()
	if err != nil {
		t.Fatal(err)
	}
	pkB, err := back.PublicKey()
	if err != nil {
		t.Fatal(err)
	}
	if pkA != pkB {
		t.Fatal("deserialized key derives a different public key")
	}
}

func TestConcurrentClearAndPublicKey(t *testing.T) {
	sk := DeriveSecretKey(testSeed(3))
	want, err := sk.PublicKey()
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				pk, err := sk.PublicKey()
				if err == nil {
					// A successful read must be of fully-live material.
					if pk != want {
						t.Error("observed a partially-cleared read")
						return
					}
				} else if !errors.Is(err, ErrKeyCleared) {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		sk.Clear()
	}()
	close(start)
	wg.Wait()
}
