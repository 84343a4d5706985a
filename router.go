package openpgpjs

// Operation names as sent to a worker.
const (
	opEncrypt            = "encrypt"
	opDecrypt            = "decrypt"
	opSign               = "sign"
	opVerify             = "verify"
	opEncryptSessionKey  = "encryptSessionKey"
	opDecryptSessionKeys = "decryptSessionKeys"
	opGenerateKey        = "generateKey"
	opReformatKey        = "reformatKey"
	opDecryptKey         = "decryptKey"
)

// capabilityDependent marks the operations whose routing depends on native
// authenticated encryption support. All other operations delegate purely on
// worker presence.
var capabilityDependent = map[string]bool{
	opEncrypt: true,
	opDecrypt: true,
}

// routeWorker decides, fresh on every call, whether the operation is
// delegated. It returns the worker to delegate to, or nil for local
// execution. A registered worker receives every capability-independent
// operation; capability-dependent operations stay local when the context
// is natively capable.
func routeWorker(operation string) Worker {
	w := GetWorker()
	if w == nil {
		return nil
	}
	if capabilityDependent[operation] && aeadCapable() {
		return nil
	}
	return w
}

// delegate forwards the operation to the worker and checks the shape of the
// result. The caller casts the returned value to the operation's result
// type.
func delegate(w Worker, operation string, args interface{}) (interface{}, error) {
	result, err := w.Delegate(operation, args)
	if err != nil {
		return nil, &Error{Kind: WorkerFailure, Op: operationDescription(operation), Cause: err}
	}
	return result, nil
}

// operationDescription maps an operation name to the user-facing failure
// description used by the error translator.
func operationDescription(operation string) string {
	switch operation {
	case opEncrypt:
		return "Error encrypting message"
	case opDecrypt:
		return "Error decrypting message"
	case opSign:
		return "Error signing message"
	case opVerify:
		return "Error verifying signed message"
	case opEncryptSessionKey:
		return "Error encrypting session key"
	case opDecryptSessionKeys:
		return "Error decrypting session keys"
	case opGenerateKey:
		return "Error generating keypair"
	case opReformatKey:
		return "Error reformatting keypair"
	case opDecryptKey:
		return "Error decrypting private key"
	}
	return "Error in operation " + operation
}
