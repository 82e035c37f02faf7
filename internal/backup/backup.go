// Package backup turns an exported bundle into a file payload and back.
//
// Layers, innermost first: JSON, optional zstd compression, optional age
// passphrase sealing. Decode detects each layer from its magic bytes, so
// plain JSON files exported by older versions load unchanged.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/celerix-dev/imperivm/internal/vault"
)

// MaxDecodedSize bounds the decompressed size of a backup.
const MaxDecodedSize = 32 << 20

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// zstd encoders and decoders are safe for concurrent use.
var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("backup: zstd encoder initialization failed: " + err.Error())
	}
	decoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecodedSize))
	if err != nil {
		panic("backup: zstd decoder initialization failed: " + err.Error())
	}
}

// Options selects the optional layers.
type Options struct {
	Compress   bool
	Passphrase string
	// WorkFactor overrides the scrypt cost when sealing. Zero uses the
	// vault default.
	WorkFactor int
}

// Encode marshals v and applies the layers chosen in opts.
func Encode(v any, opts Options) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	if opts.Compress {
		data = encoder.EncodeAll(data, nil)
	}
	if opts.Passphrase != "" {
		wf := opts.WorkFactor
		if wf == 0 {
			wf = vault.DefaultWorkFactor
		}
		data, err = vault.SealWork(data, opts.Passphrase, wf)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Decode strips every detected layer and returns the JSON document.
func Decode(data []byte, passphrase string) ([]byte, error) {
	if vault.IsSealed(data) {
		opened, err := vault.Open(data, passphrase)
		if err != nil {
			return nil, err
		}
		data = opened
	}
	if IsCompressed(data) {
		plain, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		data = plain
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("backup is not valid JSON")
	}
	return data, nil
}

// IsCompressed reports whether data starts with a zstd frame.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}
