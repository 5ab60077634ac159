package callbacksig

import "strings"

// recipientBound reports whether the signed message is addressed to the
// expected recipient.
//
// Pass identifiers are of the form "<issuerID>.<suffix>"
// (e.g. "1234.LOYALTY_CLASS_x"). The segment before the first '.' must
// equal the expected recipient ID exactly - case-sensitive, no
// normalization, no partial-prefix matches. Either classId or objectId
// matching is sufficient; absent identifiers never match.
func recipientBound(recipientID, classID, objectID string) bool {
	return idBoundTo(classID, recipientID) || idBoundTo(objectID, recipientID)
}

func idBoundTo(id, recipientID string) bool {
	if id == "" || recipientID == "" {
		return false
	}
	prefix, _, _ := strings.Cut(id, ".")
	return prefix == recipientID
}
