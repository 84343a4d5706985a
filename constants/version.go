package constants

// Version of the library, to be kept in sync with the releases.
const Version = "1.0.0"
