package crypto

import (
	"crypto"
	"hash"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/pkg/errors"
)

// VerifiedSignature is the verification record of a single signature packet.
// A record with Valid false means the signature could not be tied to a key of
// the verification keyring, or failed to verify against it.
type VerifiedSignature struct {
	KeyID uint64
	Valid bool
}

// HexKeyID returns the issuer key ID of the signature as a lowercase hex
// string, zero padded to 16 characters.
func (vs *VerifiedSignature) HexKeyID() string {
	return keyIDToHex(vs.KeyID)
}

// allowedHashes are the digest algorithms accepted during verification.
// Anything weaker is rejected regardless of the signing key.
var allowedHashes = map[crypto.Hash]struct{}{
	crypto.SHA224: {},
	crypto.SHA256: {},
	crypto.SHA384: {},
	crypto.SHA512: {},
}

// VerifyDetached verifies a detached signature against the plaintext with the
// keys of the keyring. One record is returned per signature packet; a
// signature from an unknown signer yields an invalid record, not an error.
func (keyRing *KeyRing) VerifyDetached(
	message *PlainMessage, signature *PGPSignature, unixTime int64,
) ([]*VerifiedSignature, error) {
	sigs, err := parseSignaturePackets(signature.Data)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, errors.New("openpgpjs: signature does not contain signature packets")
	}
	return keyRing.verifySignaturePackets(sigs, message.GetBinary(), unixTime), nil
}

// Verify checks the inline signatures of the message against the keys of the
// keyring. An unsigned message yields an empty result.
func (sc *SignedContent) Verify(keyRing *KeyRing, unixTime int64) []*VerifiedSignature {
	return keyRing.verifySignaturePackets(sc.sigs, sc.Plain.GetBinary(), unixTime)
}

// VerifyCleartext verifies the armored signature of a cleartext message
// against the keys of the keyring.
func (keyRing *KeyRing) VerifyCleartext(
	message *CleartextMessage, unixTime int64,
) ([]*VerifiedSignature, error) {
	if !message.IsSigned() {
		return nil, errors.New("openpgpjs: cleartext message is not signed")
	}
	sigs, err := parseSignaturePackets(message.Signature.Data)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, errors.New("openpgpjs: signature does not contain signature packets")
	}
	return keyRing.verifySignaturePackets(sigs, []byte(message.GetText()), unixTime), nil
}

func (keyRing *KeyRing) verifySignaturePackets(
	sigs []*packet.Signature, content []byte, unixTime int64,
) []*VerifiedSignature {
	records := make([]*VerifiedSignature, 0, len(sigs))
	for _, sig := range sigs {
		var keyID uint64
		if sig.IssuerKeyId != nil {
			keyID = *sig.IssuerKeyId
		}
		record := &VerifiedSignature{KeyID: keyID}
		records = append(records, record)

		if _, ok := allowedHashes[sig.Hash]; !ok {
			continue
		}
		if unixTime > 0 && sig.SigExpired(time.Unix(unixTime, 0)) {
			continue
		}

		for _, pub := range keyRing.signingKeysByID(keyID) {
			if verifyWithKey(pub, sig, content) {
				record.Valid = true
				break
			}
		}
	}
	return records
}

func verifyWithKey(pub *packet.PublicKey, sig *packet.Signature, content []byte) bool {
	if !sig.Hash.Available() {
		return false
	}
	h := sig.Hash.New()
	var w hash.Hash = h
	if sig.SigType == packet.SigTypeText {
		w = openpgp.NewCanonicalTextHash(h)
	}
	if _, err := w.Write(content); err != nil {
		return false
	}
	return pub.VerifySignature(h, sig) == nil
}

// signingKeysByID collects the public key packets of the keyring matching the
// issuer key ID. A zero ID matches every key, covering signatures without an
// issuer subpacket.
func (keyRing *KeyRing) signingKeysByID(id uint64) []*packet.PublicKey {
	if keyRing == nil {
		return nil
	}
	var pubs []*packet.PublicKey
	for _, key := range keyRing.keys {
		entity := key.entity
		if id == 0 || entity.PrimaryKey.KeyId == id {
			pubs = append(pubs, entity.PrimaryKey)
		}
		for i := range entity.Subkeys {
			sub := &entity.Subkeys[i]
			if id == 0 || sub.PublicKey.KeyId == id {
				pubs = append(pubs, sub.PublicKey)
			}
		}
	}
	return pubs
}
