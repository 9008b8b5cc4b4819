package entity

import (
	"fmt"
	"strings"
)

// Verification-link tag prefixes. The tag is the opaque payload embedded in
// a QR code or verification link; rendering it is external.
const (
	TagSingle = "DS"
	TagMulti  = "MS"
)

// VerifyTag builds the tag payload for a document.
func VerifyTag(doc *Document) string {
	if doc.IsMultiSigner() {
		return TagMulti + ":" + doc.ID
	}
	return TagSingle + ":" + doc.ID
}

// ParseVerifyTag splits a tag into its prefix and document id.
func ParseVerifyTag(tag string) (prefix, documentID string, err error) {
	parts := strings.SplitN(tag, ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("malformed verification tag %q", tag)
	}
	if parts[0] != TagSingle && parts[0] != TagMulti {
		return "", "", fmt.Errorf("unknown verification tag prefix %q", parts[0])
	}
	return parts[0], parts[1], nil
}
