package mapping

import (
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// Signature is the normalized raw description a rule matches on.
type Signature string

// NewSignature lowercases raw and collapses every whitespace run to one space.
//
//	NewSignature("  IME   Physician\tExam ") // "ime physician exam"
func NewSignature(raw string) (Signature, error) {
	s := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if s == "" {
		return "", errs.NewValueIsRequiredError("signature")
	}
	return Signature(s), nil
}

func (s Signature) String() string {
	return string(s)
}
