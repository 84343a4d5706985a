package constants

// Compression algorithm selectors for the encrypt pipeline.
const (
	// Use no compression.
	NoCompression int8 = 0
	// Use the library default, ZLIB.
	DefaultCompression int8 = 1
	// Use ZIP compression.
	ZIPCompression int8 = 2
	// Use ZLIB compression.
	ZLIBCompression int8 = 3
)
