package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CredentialType is the credential a proof was generated with.
type CredentialType string

const (
	CredentialOrb            CredentialType = "orb"
	CredentialDevice         CredentialType = "device"
	CredentialDocument       CredentialType = "document"
	CredentialSecureDocument CredentialType = "secure_document"
)

// VerificationLevel is the minimum verification level a relying party accepts.
type VerificationLevel string

const (
	LevelOrb            VerificationLevel = "orb"
	LevelDevice         VerificationLevel = "device"
	LevelDocument       VerificationLevel = "document"
	LevelSecureDocument VerificationLevel = "secure_document"
)

// ErrUnknownVerificationLevel is returned by ParseVerificationLevel.
var ErrUnknownVerificationLevel = errors.New("unknown verification level")

// ParseVerificationLevel validates s as a verification level.
func ParseVerificationLevel(s string) (VerificationLevel, error) {
	switch l := VerificationLevel(s); l {
	case LevelOrb, LevelDevice, LevelDocument, LevelSecureDocument:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVerificationLevel, s)
}

// CredentialTypes lists the credential types that satisfy l.
func (l VerificationLevel) CredentialTypes() []CredentialType {
	switch l {
	case LevelOrb:
		return []CredentialType{CredentialOrb}
	case LevelDevice:
		return []CredentialType{CredentialOrb, CredentialDevice}
	case LevelSecureDocument:
		return []CredentialType{CredentialOrb, CredentialSecureDocument}
	case LevelDocument:
		return []CredentialType{CredentialDocument, CredentialSecureDocument, CredentialOrb}
	default:
		return nil
	}
}

// Proof is the wallet's answer to a uniqueness request.
type Proof struct {
	Proof             string         `json:"proof"`
	MerkleRoot        string         `json:"merkle_root"`
	NullifierHash     string         `json:"nullifier_hash"`
	VerificationLevel CredentialType `json:"verification_level"`
}

// UnmarshalJSON accepts the legacy credential_type key in place of
// verification_level.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var aux struct {
		Proof             *string        `json:"proof"`
		MerkleRoot        *string        `json:"merkle_root"`
		NullifierHash     *string        `json:"nullifier_hash"`
		CredentialType    CredentialType `json:"credential_type"`
		VerificationLevel CredentialType `json:"verification_level"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Proof == nil || aux.MerkleRoot == nil || aux.NullifierHash == nil {
		return errors.New("proof: missing proof, merkle_root or nullifier_hash")
	}
	level := aux.CredentialType
	if level == "" {
		level = aux.VerificationLevel
	}
	if level == "" {
		return errors.New("proof: missing verification_level")
	}
	*p = Proof{
		Proof:             *aux.Proof,
		MerkleRoot:        *aux.MerkleRoot,
		NullifierHash:     *aux.NullifierHash,
		VerificationLevel: level,
	}
	return nil
}
