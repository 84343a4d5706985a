package openpgpjs

import (
	"crypto/aes"
	"crypto/cipher"
)

// nativeAEADSupported probes whether the execution context provides a
// working AES-GCM construction. The probe runs fresh on every call, it is
// never cached.
func nativeAEADSupported() bool {
	block, err := aes.NewCipher(make([]byte, 16))
	if err != nil {
		return false
	}
	_, err = cipher.NewGCM(block)
	return err == nil
}

// aeadCapable reports whether authenticated encryption is both enabled in
// configuration and natively available. Only the Encrypt and Decrypt
// operations consult it when routing.
func aeadCapable() bool {
	return GetConfig().AEADProtect && nativeAEADSupported()
}
