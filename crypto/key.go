package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/pkg/errors"

	"github.com/ninetyfivenorth/openpgpjs/armor"
	"github.com/ninetyfivenorth/openpgpjs/constants"
)

// Key contains a single public or private key.
type Key struct {
	// PGP entity backing this key.
	entity *openpgp.Entity
}

// --- Create Key object

// NewKeyFromReader reads binary or armored data into a Key object.
func NewKeyFromReader(r io.Reader) (*Key, error) {
	key := &Key{}
	r, armored := armor.IsPGPArmored(r)
	if err := key.readFrom(r, armored); err != nil {
		return nil, err
	}
	return key, nil
}

// NewKey creates a new key from the first key in the unarmored binary data.
func NewKey(binKeys []byte) (*Key, error) {
	return NewKeyFromReader(bytes.NewReader(clone(binKeys)))
}

// NewKeyFromArmored creates a new key from the first key in an armored string.
func NewKeyFromArmored(armored string) (*Key, error) {
	return NewKeyFromReader(strings.NewReader(armored))
}

// NewKeyFromEntity creates a key from the provided go-crypto/openpgp entity.
func NewKeyFromEntity(entity *openpgp.Entity) (*Key, error) {
	if entity == nil {
		return nil, errors.New("openpgpjs: nil entity provided")
	}
	return &Key{entity: entity}, nil
}

// --- Operate on key

// Copy creates a deep copy of the key.
func (key *Key) Copy() (*Key, error) {
	serialized, err := key.Serialize()
	if err != nil {
		return nil, err
	}

	return NewKey(serialized)
}

// Lock encrypts the secret material of a copy of the key under passphrase.
func (key *Key) Lock(passphrase []byte) (*Key, error) {
	unlocked, err := key.IsUnlocked()
	if err != nil {
		return nil, err
	}

	if !unlocked {
		return nil, errors.New("openpgpjs: key is not unlocked")
	}

	lockedKey, err := key.Copy()
	if err != nil {
		return nil, err
	}

	if passphrase == nil {
		return lockedKey, nil
	}

	if err = lockedKey.entity.EncryptPrivateKeys(passphrase, keyEncryptionConfig()); err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in locking key")
	}

	locked, err := lockedKey.IsLocked()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, errors.New("openpgpjs: unable to lock key")
	}

	return lockedKey, nil
}

// Unlock decrypts the secret material of a copy of the key.
func (key *Key) Unlock(passphrase []byte) (*Key, error) {
	unlockedKey, err := key.Copy()
	if err != nil {
		return nil, err
	}
	if err := unlockedKey.Decrypt(passphrase); err != nil {
		return nil, err
	}
	return unlockedKey, nil
}

// Decrypt transitions the secret material of the key from locked to unlocked,
// in place. The one primitive that mutates its receiver rather than copying.
func (key *Key) Decrypt(passphrase []byte) error {
	isLocked, err := key.IsLocked()
	if err != nil {
		return err
	}

	if !isLocked {
		// Unlocking an unlocked key is a no-op.
		return nil
	}

	if err := key.entity.DecryptPrivateKeys(passphrase); err != nil {
		return errors.New("openpgpjs: error in unlocking key")
	}

	isUnlocked, err := key.IsUnlocked()
	if err != nil {
		return err
	}
	if !isUnlocked {
		return errors.New("openpgpjs: unable to unlock key")
	}

	return nil
}

// --- Export key

// Serialize returns the binary serialization of the key, secret material
// included for private keys.
func (key *Key) Serialize() ([]byte, error) {
	var buffer bytes.Buffer
	var err error

	if key.entity.PrivateKey == nil {
		err = key.entity.Serialize(&buffer)
	} else {
		err = key.entity.SerializePrivateWithoutSigning(&buffer, nil)
	}

	if err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in serializing key")
	}

	return buffer.Bytes(), nil
}

// Armor returns the armored key as a string.
func (key *Key) Armor() (string, error) {
	serialized, err := key.Serialize()
	if err != nil {
		return "", err
	}

	if key.IsPrivate() {
		return armor.ArmorWithType(serialized, constants.PrivateKeyHeader)
	}

	return armor.ArmorWithType(serialized, constants.PublicKeyHeader)
}

// GetArmoredPublicKey returns the armored public part of this key.
func (key *Key) GetArmoredPublicKey() (string, error) {
	serialized, err := key.GetPublicKey()
	if err != nil {
		return "", err
	}

	return armor.ArmorWithType(serialized, constants.PublicKeyHeader)
}

// GetPublicKey returns the unarmored public part of this key.
func (key *Key) GetPublicKey() ([]byte, error) {
	var outBuf bytes.Buffer
	if err := key.entity.Serialize(&outBuf); err != nil {
		return nil, errors.Wrap(err, "openpgpjs: error in serializing public key")
	}

	return outBuf.Bytes(), nil
}

// ToPublic returns the corresponding public key of the given private key.
func (key *Key) ToPublic() (*Key, error) {
	if !key.IsPrivate() {
		return nil, errors.New("openpgpjs: key is already public")
	}

	serialized, err := key.GetPublicKey()
	if err != nil {
		return nil, err
	}

	return NewKey(serialized)
}

// --- Key object properties

// CanVerify returns true if any of the subkeys can be used for verification.
func (key *Key) CanVerify(unixTime int64) bool {
	_, canVerify := key.entity.SigningKey(time.Unix(unixTime, 0))
	return canVerify
}

// CanEncrypt returns true if any of the subkeys can be used for encryption.
func (key *Key) CanEncrypt(unixTime int64) bool {
	_, canEncrypt := key.entity.EncryptionKey(time.Unix(unixTime, 0))
	return canEncrypt
}

// IsPrivate returns true if the key is private.
func (key *Key) IsPrivate() bool {
	return key.entity.PrivateKey != nil
}

// IsLocked checks if a private key is locked.
func (key *Key) IsLocked() (bool, error) {
	if key.entity.PrivateKey == nil {
		return false, errors.New("openpgpjs: a public key cannot be locked")
	}

	return key.countEncryptedPackets() > 0, nil
}

// IsUnlocked checks if a private key is unlocked.
func (key *Key) IsUnlocked() (bool, error) {
	if key.entity.PrivateKey == nil {
		return true, errors.New("openpgpjs: a public key cannot be unlocked")
	}

	return key.countEncryptedPackets() == 0, nil
}

// GetHexKeyID returns the key ID, hex encoded as a string.
func (key *Key) GetHexKeyID() string {
	return keyIDToHex(key.GetKeyID())
}

// GetKeyID returns the key ID, encoded as 8-byte int.
func (key *Key) GetKeyID() uint64 {
	return key.entity.PrimaryKey.KeyId
}

// GetFingerprint gets the hex encoded fingerprint from the key.
func (key *Key) GetFingerprint() string {
	return hex.EncodeToString(key.entity.PrimaryKey.Fingerprint)
}

// GetEntity gets the go-crypto entity backing the key.
func (key *Key) GetEntity() *openpgp.Entity {
	return key.entity
}

// --- Internal methods

func (key *Key) countEncryptedPackets() int {
	encryptedKeys := 0

	for _, sub := range key.entity.Subkeys {
		if sub.PrivateKey != nil && !sub.PrivateKey.Dummy() && sub.PrivateKey.Encrypted {
			encryptedKeys++
		}
	}

	if key.entity.PrivateKey.Encrypted {
		encryptedKeys++
	}

	return encryptedKeys
}

// decryptionPrivateKeys lists the candidate private key packets for
// session key decryption, primary key first.
func (key *Key) decryptionPrivateKeys() []*packet.PrivateKey {
	var keys []*packet.PrivateKey
	if key.entity.PrivateKey != nil {
		keys = append(keys, key.entity.PrivateKey)
	}
	for i := range key.entity.Subkeys {
		sub := &key.entity.Subkeys[i]
		if sub.PrivateKey != nil && !sub.PrivateKey.Dummy() {
			keys = append(keys, sub.PrivateKey)
		}
	}
	return keys
}

// readFrom reads an unarmored or armored key from r into the key object.
func (key *Key) readFrom(r io.Reader, armored bool) error {
	var err error
	var entities openpgp.EntityList

	if armored {
		entities, err = openpgp.ReadArmoredKeyRing(r)
	} else {
		entities, err = openpgp.ReadKeyRing(r)
	}
	if err != nil {
		return errors.Wrap(err, "openpgpjs: error in reading key ring")
	}

	if len(entities) > 1 {
		return errors.New("openpgpjs: the key contains too many entities")
	}

	if len(entities) == 0 {
		return errors.New("openpgpjs: the key does not contain any entity")
	}

	key.entity = entities[0]
	return nil
}

// keyIDToHex casts a keyID to hex with the correct padding.
func keyIDToHex(keyID uint64) string {
	return fmt.Sprintf("%016v", strconv.FormatUint(keyID, 16))
}
