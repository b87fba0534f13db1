// Package content holds the text-level concerns of the pipeline: the content
// fingerprint, the duplicate guard and the pre-publish validator.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize case-folds, collapses whitespace runs and trims the text, so that
// cosmetically different but semantically identical captions compare equal.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Fingerprint returns the stable hex digest of the normalized text. It is a
// pure function: equal normalized inputs always produce equal digests.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// tokens returns the set of normalized words in the text.
func tokens(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(text)) {
		set[w] = struct{}{}
	}
	return set
}

// Similarity returns the token-overlap ratio (Jaccard) of two texts in
// [0, 1]. Two empty texts are fully similar.
func Similarity(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	inter := 0
	for w := range ta {
		if _, ok := tb[w]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
