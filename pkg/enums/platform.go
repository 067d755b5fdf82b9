package enums

import "fmt"

// Platform identifies the app store a download link points to.
type Platform string

const (
	PlatformIOS     Platform = "IOS"
	PlatformAndroid Platform = "ANDROID"
)

var validPlatforms = []Platform{
	PlatformIOS,
	PlatformAndroid,
}

func (p Platform) String() string {
	return string(p)
}

// IsValid reports whether the platform is known.
func (p Platform) IsValid() bool {
	for _, candidate := range validPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlatform converts raw input into a Platform.
func ParsePlatform(value string) (Platform, error) {
	for _, candidate := range validPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid platform %q", value)
}
