package crypto

const testTime = 1557754627 // 2019-05-13T13:37:07+00:00

var (
	keyTestAlice *Key
	keyTestBob   *Key

	keyRingTestAlice *KeyRing
	keyRingTestBob   *KeyRing
)

func init() {
	UpdateTime(testTime)

	var err error
	keyTestAlice, err = GenerateKey(
		[]Identity{{Name: "Alice", Email: "alice@example.com"}},
		"curve25519", 0, 0, testTime,
	)
	if err != nil {
		panic(err)
	}
	keyTestBob, err = GenerateKey(
		[]Identity{{Name: "Bob", Email: "bob@example.com"}},
		"curve25519", 0, 0, testTime,
	)
	if err != nil {
		panic(err)
	}

	keyRingTestAlice, err = NewKeyRing(keyTestAlice)
	if err != nil {
		panic(err)
	}
	keyRingTestBob, err = NewKeyRing(keyTestBob)
	if err != nil {
		panic(err)
	}
}
