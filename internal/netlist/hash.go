package netlist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainMaster = "analogen/master/v1"
	DomainCell   = "analogen/cell/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MasterID computes the content-addressed identity of a generated
// master: the same generator with the same parameters always yields the
// same ID. The template database uses this to reuse already-generated
// masters instead of regenerating them.
func MasterID(generator string, params Params) (string, error) {
	obj := Dict{
		"generator": String(generator),
		"params":    params,
	}
	data, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("master ID: %w", err)
	}
	return hashWithDomain(DomainMaster, data), nil
}

// CellID computes the content-addressed identity of a concrete cell
// from its canonical signature. Two structurally equal cells hash to
// the same ID regardless of instance order or internal net naming.
func CellID(c *Cell) (string, error) {
	sig, err := Signature(c)
	if err != nil {
		return "", fmt.Errorf("cell ID: %w", err)
	}
	data, err := MarshalCanonical(sig)
	if err != nil {
		return "", fmt.Errorf("cell ID: %w", err)
	}
	return hashWithDomain(DomainCell, data), nil
}
