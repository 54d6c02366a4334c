// Package chainconfig loads the node-level configuration — authorities,
// block timing, mempool and VM tunables — from TOML, the way the teacher's
// cmd/geth config.go loads gethConfig via naoina/toml's Decoder.
package chainconfig

import (
	stded25519 "crypto/ed25519"
	"fmt"
	"io"
	"reflect"

	"github.com/naoina/toml"

	"github.com/tos-network/minichain/common"
	"github.com/tos-network/minichain/consensus/poa"
	"github.com/tos-network/minichain/vm"
)

// tomlSettings mirrors the teacher's package-level tomlSettings: a
// shared Config value that rejects unknown keys instead of silently
// ignoring a typo'd field name.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("chainconfig: field %q is not defined in %s", field, rt.String())
	},
}

// AuthorityEntry is one configured PoA authority: its address and the
// hex-encoded Ed25519 public key used to verify its block signatures.
type AuthorityEntry struct {
	Address   string
	PublicKey string
}

// Config is the complete node configuration: consensus authorities and
// timing, mempool caps, and VM limits. Every tunable has a spec.md
// default applied by Defaults; Authorities defaults to empty.
type Config struct {
	Authorities []AuthorityEntry

	BlockTimeSecs uint64
	MaxClockDrift uint64

	MempoolMaxTransactions int
	MempoolMaxPerSender    int

	VMMaxMemoryBytes int
	MaxBlockSize     int
}

// DefaultMaxBlockSize bounds how many pending transactions ProposeBlock
// will draw from the mempool in one block.
const DefaultMaxBlockSize = 500

// Defaults returns a Config with every tunable set to its spec.md
// default, authorities empty.
func Defaults() Config {
	return Config{
		BlockTimeSecs:          5,
		MaxClockDrift:          poa.DefaultMaxClockDrift,
		MempoolMaxTransactions: 10_000,
		MempoolMaxPerSender:    100,
		VMMaxMemoryBytes:       vm.DefaultMaxMemory,
		MaxBlockSize:           DefaultMaxBlockSize,
	}
}

// LoadConfig decodes a TOML document from r into a Config seeded with
// Defaults(), the same load-over-defaults pattern as the teacher's
// loadConfig(file, &cfg).
func LoadConfig(r io.Reader) (Config, error) {
	cfg := Defaults()
	if err := tomlSettings.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("chainconfig: decode: %w", err)
	}
	return cfg, nil
}

// ParsedAuthorities resolves each AuthorityEntry's address/pubkey hex
// strings into the inputs poa.NewAuthoritySet expects, failing on any
// malformed entry.
func (c Config) ParsedAuthorities() ([]common.Address, map[common.Address]stded25519.PublicKey, error) {
	addrs := make([]common.Address, 0, len(c.Authorities))
	pubkeys := make(map[common.Address]stded25519.PublicKey, len(c.Authorities))
	for _, entry := range c.Authorities {
		addr, err := common.AddressFromHex(entry.Address)
		if err != nil {
			return nil, nil, fmt.Errorf("chainconfig: authority address: %w", err)
		}
		pub, err := decodeHexPubkey(entry.PublicKey)
		if err != nil {
			return nil, nil, fmt.Errorf("chainconfig: authority pubkey: %w", err)
		}
		addrs = append(addrs, addr)
		pubkeys[addr] = pub
	}
	return addrs, pubkeys, nil
}

func decodeHexPubkey(s string) (stded25519.PublicKey, error) {
	h, err := common.HashFromHex(pad64(s))
	if err != nil {
		return nil, err
	}
	return stded25519.PublicKey(h[:]), nil
}

// pad64 left-pads a hex string (with or without 0x prefix) to 64 hex
// digits so it can be parsed through common.HashFromHex, a convenience
// since Ed25519 public keys are the same 32-byte width as a Hash.
func pad64(s string) string {
	prefix := ""
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		prefix = s[:2]
		s = s[2:]
	}
	for len(s) < 64 {
		s = "0" + s
	}
	return prefix + s
}
