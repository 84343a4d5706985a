package crypto

import (
	"crypto"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/pkg/errors"
)

// Identity is one user ID of a key.
type Identity struct {
	Name    string
	Comment string
	Email   string
}

func (id Identity) valid() error {
	if len(id.Email) == 0 && len(id.Name) == 0 {
		return errors.New("openpgpjs: neither name nor email set in user id")
	}
	return nil
}

// curveAlgorithms maps the curve selectors accepted in key generation to the
// curves of the underlying library.
var curveAlgorithms = map[string]packet.Curve{
	"curve25519":      packet.Curve25519,
	"ed25519":         packet.Curve25519,
	"curve448":        packet.Curve448,
	"p256":            packet.CurveNistP256,
	"p384":            packet.CurveNistP384,
	"p521":            packet.CurveNistP521,
	"secp256k1":       packet.CurveSecP256k1,
	"brainpoolP256r1": packet.CurveBrainpoolP256,
	"brainpoolP384r1": packet.CurveBrainpoolP384,
	"brainpoolP512r1": packet.CurveBrainpoolP512,
}

// GenerateKey generates a new key pair carrying the given identities.
//
// algorithm selects the key type: "rsa" generates an RSA key of bits size,
// any other value is looked up as a curve selector. Curve25519 keys sign
// with EdDSA, the NIST, Koblitz and Brainpool curves with ECDSA.
// lifetimeSecs sets the expiration of the key relative to its creation
// time, zero means no expiration.
func GenerateKey(
	identities []Identity, algorithm string, bits int, lifetimeSecs uint32, unixTime int64,
) (*Key, error) {
	if len(identities) == 0 {
		return nil, errors.New("openpgpjs: key generation requires a user id")
	}
	for _, id := range identities {
		if err := id.valid(); err != nil {
			return nil, err
		}
	}

	config := &packet.Config{
		DefaultHash:     crypto.SHA256,
		DefaultCipher:   packet.CipherAES256,
		KeyLifetimeSecs: lifetimeSecs,
		Time:            NewConstantClock(resolveUnixTime(unixTime)),
	}
	switch algorithm {
	case "rsa":
		config.Algorithm = packet.PubKeyAlgoRSA
		config.RSABits = bits
	default:
		curve, ok := curveAlgorithms[algorithm]
		if !ok {
			return nil, errors.New("openpgpjs: unknown key algorithm: " + algorithm)
		}
		config.Curve = curve
		if curve == packet.Curve25519 || curve == packet.Curve448 {
			config.Algorithm = packet.PubKeyAlgoEdDSA
		} else {
			config.Algorithm = packet.PubKeyAlgoECDSA
		}
	}

	first := identities[0]
	entity, err := openpgp.NewEntity(first.Name, first.Comment, first.Email, config)
	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in creating new entity")
	}
	for _, id := range identities[1:] {
		if err := entity.AddUserId(id.Name, id.Comment, id.Email, config); err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in adding user id")
		}
	}

	if entity.PrivateKey == nil {
		return nil, errors.New("openpgpjs: error in generating private key")
	}
	return &Key{entity: entity}, nil
}

// ReformatKey builds a new key around the key material of an unlocked
// private key, replacing its user IDs and self-signatures. The key packets
// are shared with the source key, the certification layer is rebuilt.
func ReformatKey(
	key *Key, identities []Identity, lifetimeSecs uint32, unixTime int64,
) (*Key, error) {
	if len(identities) == 0 {
		return nil, errors.New("openpgpjs: key reformat requires a user id")
	}
	for _, id := range identities {
		if err := id.valid(); err != nil {
			return nil, err
		}
	}
	if !key.IsPrivate() {
		return nil, errors.New("openpgpjs: reformat requires a private key")
	}
	if locked, err := key.IsLocked(); err != nil || locked {
		return nil, errors.New("openpgpjs: reformat requires an unlocked private key")
	}

	config := &packet.Config{
		DefaultHash:     crypto.SHA256,
		DefaultCipher:   packet.CipherAES256,
		KeyLifetimeSecs: lifetimeSecs,
		Time:            NewConstantClock(resolveUnixTime(unixTime)),
	}

	entity := &openpgp.Entity{
		PrimaryKey: key.entity.PrimaryKey,
		PrivateKey: key.entity.PrivateKey,
		Identities: make(map[string]*openpgp.Identity),
		Subkeys:    key.entity.Subkeys,
	}
	for _, id := range identities {
		if err := entity.AddUserId(id.Name, id.Comment, id.Email, config); err != nil {
			return nil, errors.Wrap(err, "openpgpjs: error in adding user id")
		}
	}

	return &Key{entity: entity}, nil
}

// keyEncryptionConfig is the passphrase protection used when locking secret
// key material.
func keyEncryptionConfig() *packet.Config {
	return &packet.Config{
		DefaultCipher: packet.CipherAES256,
		DefaultHash:   crypto.SHA256,
		S2KCount:      65536,
	}
}

// resolveUnixTime treats a zero time as "now" according to the package
// clock.
func resolveUnixTime(unixTime int64) int64 {
	if unixTime == 0 {
		return GetUnixTime()
	}
	return unixTime
}
