package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/celerix-dev/imperivm/internal/vault"
)

type sample struct {
	Members []string `json:"members"`
	Closed  bool     `json:"closed"`
}

func roundTrip(t *testing.T, opts Options, passphrase string) []byte {
	t.Helper()
	in := sample{Members: []string{"Dante", "Lia", "Dante", "Lia", "Dante", "Lia"}, Closed: true}
	data, err := Encode(in, opts)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	plain, err := Decode(data, passphrase)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	var out sample
	if err := json.Unmarshal(plain, &out); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("Expected %+v, got %+v", in, out)
	}
	return data
}

func TestPlainJSON(t *testing.T) {
	data := roundTrip(t, Options{}, "")
	if !json.Valid(data) {
		t.Error("plain export should be readable JSON")
	}
}

func TestCompressed(t *testing.T) {
	data := roundTrip(t, Options{Compress: true}, "")
	if !IsCompressed(data) {
		t.Error("expected zstd frame")
	}
}

func TestSealedCompressed(t *testing.T) {
	opts := Options{Compress: true, Passphrase: "omertà", WorkFactor: 10}
	data := roundTrip(t, opts, "omertà")
	if !vault.IsSealed(data) {
		t.Error("expected age header")
	}
	if _, err := Decode(data, ""); !errors.Is(err, vault.ErrPassphraseRequired) {
		t.Errorf("expected ErrPassphraseRequired, got %v", err)
	}
	if _, err := Decode(data, "errada"); err == nil {
		t.Error("expected failure with wrong passphrase")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a backup"), ""); err == nil {
		t.Error("expected error for non-JSON input")
	}
}

func TestDecodeRejectsOversizedFrame(t *testing.T) {
	padding := bytes.Repeat([]byte(" "), MaxDecodedSize+1)
	doc := append(append([]byte(`{"members":[]`), padding...), '}')
	bomb := encoder.EncodeAll(doc, nil)
	if len(bomb) > 1<<20 {
		t.Fatalf("expected a small compressed frame, got %d bytes", len(bomb))
	}
	if _, err := Decode(bomb, ""); err == nil {
		t.Error("expected oversized frame to be rejected")
	}
}
