package service

import (
	"crypto/md5"
	"encoding/hex"
)

// ShortIDLength is the length of the public file id.
const ShortIDLength = 10

// maxShortIDAttempts bounds rehashing when a short id is already taken.
const maxShortIDAttempts = 8

// ShortID derives the public file id from the original filename.
// An empty salt hashes the name alone; otherwise "#<salt>" is appended.
func ShortID(filename, salt string) string {
	input := filename
	if salt != "" {
		input += "#" + salt
	}
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:ShortIDLength]
}
