package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// NanoidSize is the length of entity ids. Upload keys use a shorter id.
var NanoidSize = 32

const nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NanoID returns an id for accounts, reports and notifications.
func NanoID() string {
	return NanoIDSize(NanoidSize)
}

func NanoIDSize(size int) string {
	if size <= 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}
