package enums

import "fmt"

// UploadKind defines where an uploaded object is used.
type UploadKind string

const (
	UploadKindProfilePicture UploadKind = "profile_picture"
	UploadKindGymLogo        UploadKind = "gym_logo"
	UploadKindClassAsset     UploadKind = "class_asset"
)

var validUploadKinds = []UploadKind{
	UploadKindProfilePicture,
	UploadKindGymLogo,
	UploadKindClassAsset,
}

// String returns the literal string for the kind.
func (u UploadKind) String() string {
	return string(u)
}

// IsValid reports whether the kind is known.
func (u UploadKind) IsValid() bool {
	for _, candidate := range validUploadKinds {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUploadKind converts raw input into an UploadKind.
func ParseUploadKind(value string) (UploadKind, error) {
	for _, candidate := range validUploadKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid upload kind %q", value)
}
