package domain

import "fmt"

// Kind identifies a dataset variant and, equally, the index its documents land in.
type Kind string

// Supported kinds.
const (
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// IndexName returns the logical target index for the kind.
func (k Kind) IndexName() string { return string(k) }

// Validate rejects anything outside the closed set of kinds.
func (k Kind) Validate() error {
	switch k {
	case KindImage, KindText:
		return nil
	}
	return fmt.Errorf("unknown kind %q", string(k))
}
