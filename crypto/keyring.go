package crypto

import (
	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/pkg/errors"
)

// KeyRing contains multiple private and public keys.
// Fan-out operations treat it as a set; order is preserved wherever
// the output depends on it, such as signature attachment.
type KeyRing struct {
	keys []*Key
}

// NewKeyRing creates a new KeyRing, empty if the key is nil.
func NewKeyRing(key *Key) (*KeyRing, error) {
	keyRing := &KeyRing{}
	if key != nil {
		if err := keyRing.AddKey(key); err != nil {
			return nil, err
		}
	}
	return keyRing, nil
}

// NewKeyRingFromKeys creates a KeyRing holding the given keys, in order.
func NewKeyRingFromKeys(keys []*Key) (*KeyRing, error) {
	keyRing := &KeyRing{}
	for _, key := range keys {
		if err := keyRing.AddKey(key); err != nil {
			return nil, err
		}
	}
	return keyRing, nil
}

// AddKey appends a key to the keyring.
func (keyRing *KeyRing) AddKey(key *Key) error {
	if key == nil {
		return errors.New("openpgpjs: nil key provided")
	}
	if key.entity == nil {
		return errors.New("openpgpjs: empty key provided")
	}
	keyRing.keys = append(keyRing.keys, key)
	return nil
}

// GetKeys returns the keys contained in this keyring, in order.
func (keyRing *KeyRing) GetKeys() []*Key {
	return keyRing.keys
}

// CountKeys returns the number of keys in the keyring.
func (keyRing *KeyRing) CountKeys() int {
	return len(keyRing.keys)
}

// GetEntities returns the openpgp entities contained in this keyring.
func (keyRing *KeyRing) GetEntities() openpgp.EntityList {
	entities := make(openpgp.EntityList, 0, len(keyRing.keys))
	for _, key := range keyRing.keys {
		entities = append(entities, key.entity)
	}
	return entities
}

// KeysByID returns the keys in the keyring whose primary key or subkey
// matches the given key ID. A zero id matches every key.
func (keyRing *KeyRing) KeysByID(id uint64) []*Key {
	if id == 0 {
		return keyRing.keys
	}
	var matches []*Key
	for _, key := range keyRing.keys {
		if key.entity.PrimaryKey.KeyId == id {
			matches = append(matches, key)
			continue
		}
		for i := range key.entity.Subkeys {
			if key.entity.Subkeys[i].PublicKey.KeyId == id {
				matches = append(matches, key)
				break
			}
		}
	}
	return matches
}
