package kv

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// openStores returns one store per implementation, registered under a name
// so the contract tests below run against both.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := Open(filepath.Join(t.TempDir(), "contract.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(ctx, func(tx Tx) error {
				return tx.Put([]byte("report:1"), []byte(`{"id":1}`))
			})
			if err != nil {
				t.Fatalf("Update() failed: %v", err)
			}

			err = s.View(ctx, func(tx Tx) error {
				value, ok, err := tx.Get([]byte("report:1"))
				if err != nil {
					return err
				}
				if !ok {
					t.Fatal("key not found after Put")
				}
				if string(value) != `{"id":1}` {
					t.Errorf("value = %q", value)
				}

				_, ok, err = tx.Get([]byte("report:2"))
				if err != nil {
					return err
				}
				if ok {
					t.Error("absent key reported as present")
				}
				return nil
			})
			if err != nil {
				t.Fatalf("View() failed: %v", err)
			}

			err = s.Update(ctx, func(tx Tx) error {
				if err := tx.Delete([]byte("report:1")); err != nil {
					return err
				}
				// Deleting an absent key is a no-op.
				return tx.Delete([]byte("report:404"))
			})
			if err != nil {
				t.Fatalf("delete Update() failed: %v", err)
			}

			err = s.View(ctx, func(tx Tx) error {
				_, ok, err := tx.Get([]byte("report:1"))
				if err != nil {
					return err
				}
				if ok {
					t.Error("key still present after Delete")
				}
				return nil
			})
			if err != nil {
				t.Fatalf("View() failed: %v", err)
			}
		})
	}
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(ctx, func(tx Tx) error {
				return tx.Put([]byte("meta:owner"), []byte("alice"))
			})
			if err != nil {
				t.Fatalf("seed Update() failed: %v", err)
			}

			err = s.Update(ctx, func(tx Tx) error {
				if err := tx.Put([]byte("meta:owner"), []byte("mallory")); err != nil {
					return err
				}
				if err := tx.Put([]byte("meta:greeting"), []byte("pwned")); err != nil {
					return err
				}
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("Update() error = %v, want boom", err)
			}

			err = s.View(ctx, func(tx Tx) error {
				value, ok, err := tx.Get([]byte("meta:owner"))
				if err != nil {
					return err
				}
				if !ok || string(value) != "alice" {
					t.Errorf("meta:owner = %q (present=%v), rollback failed", value, ok)
				}
				_, ok, err = tx.Get([]byte("meta:greeting"))
				if err != nil {
					return err
				}
				if ok {
					t.Error("meta:greeting written despite rollback")
				}
				return nil
			})
			if err != nil {
				t.Fatalf("View() failed: %v", err)
			}
		})
	}
}

func TestStore_ViewRejectsWrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.View(ctx, func(tx Tx) error {
				return tx.Put([]byte("k"), []byte("v"))
			})
			if err == nil {
				t.Fatal("Put inside View should fail")
			}

			err = s.View(ctx, func(tx Tx) error {
				return tx.Delete([]byte("k"))
			})
			if err == nil {
				t.Fatal("Delete inside View should fail")
			}
		})
	}
}

func TestStore_AscendOrderAndPrefix(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(ctx, func(tx Tx) error {
				pairs := map[string]string{
					"report:00000000000000000002":  "two",
					"report:00000000000000000000":  "zero",
					"report:00000000000000000010":  "ten",
					"meta:greeting":                "Hello",
					"journal:00000000000000000000": "entry",
				}
				for k, v := range pairs {
					if err := tx.Put([]byte(k), []byte(v)); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				t.Fatalf("Update() failed: %v", err)
			}

			var keys []string
			err = s.View(ctx, func(tx Tx) error {
				return tx.Ascend([]byte("report:"), func(key, value []byte) error {
					keys = append(keys, string(key))
					return nil
				})
			})
			if err != nil {
				t.Fatalf("View() failed: %v", err)
			}

			want := []string{
				"report:00000000000000000000",
				"report:00000000000000000002",
				"report:00000000000000000010",
			}
			if len(keys) != len(want) {
				t.Fatalf("keys = %v, want %v", keys, want)
			}
			for i := range want {
				if keys[i] != want[i] {
					t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
				}
			}
		})
	}
}

func TestStore_AscendStopsOnError(t *testing.T) {
	ctx := context.Background()
	stop := errors.New("stop")

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(ctx, func(tx Tx) error {
				if err := tx.Put([]byte("a:1"), []byte("x")); err != nil {
					return err
				}
				return tx.Put([]byte("a:2"), []byte("y"))
			})
			if err != nil {
				t.Fatalf("Update() failed: %v", err)
			}

			seen := 0
			err = s.View(ctx, func(tx Tx) error {
				return tx.Ascend([]byte("a:"), func(key, value []byte) error {
					seen++
					return stop
				})
			})
			if !errors.Is(err, stop) {
				t.Fatalf("Ascend error = %v, want stop", err)
			}
			if seen != 1 {
				t.Errorf("fn called %d times after error, want 1", seen)
			}
		})
	}
}

func TestPrefixUpperBound(t *testing.T) {
	cases := []struct {
		prefix, want []byte
	}{
		{[]byte("report:"), []byte("report;")},
		{[]byte{0x01, 0xFF}, []byte{0x02}},
		{[]byte{0xFF, 0xFF}, nil},
	}
	for _, c := range cases {
		got := prefixUpperBound(c.prefix)
		if !bytes.Equal(got, c.want) {
			t.Errorf("prefixUpperBound(%q) = %v, want %v", c.prefix, got, c.want)
		}
	}
}
