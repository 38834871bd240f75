package reconcile

import (
	"github.com/Veraticus/policy-sync/internal/normalize"
)

// transactionMarkers are words that mark a row as a movement on an existing
// contract rather than a contract of its own: endorsements, cancellations,
// refunds, renewal notices and addenda.
var transactionMarkers = []string{"zeyil", "zeyl", "iptal", "iade", "yenileme", "ek belge"}

// transactionMarker returns the first marker found in any of the texts.
func transactionMarker(texts ...string) (string, bool) {
	for _, text := range texts {
		if text == "" {
			continue
		}
		for _, m := range transactionMarkers {
			if normalize.ContainsWord(text, m) {
				return m, true
			}
		}
	}
	return "", false
}
