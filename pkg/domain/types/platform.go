package types

import "strings"

// Platform is the game platform of a rescue reporter. Cases opened without a
// recognizable platform tag carry the Unidentified flag until someone sets it.
type Platform string

const (
	PlatformPC          Platform = "PC"
	PlatformXbox        Platform = "XBOX"
	PlatformPlaystation Platform = "PS"
	PlatformUnknown     Platform = ""
)

// IsValid checks if the platform is a known value
func (p Platform) IsValid() bool {
	switch p {
	case PlatformPC, PlatformXbox, PlatformPlaystation:
		return true
	default:
		return false
	}
}

// String returns the string representation of the platform
func (p Platform) String() string {
	return string(p)
}

var platformTokens = map[string]Platform{
	"pc":          PlatformPC,
	"xb":          PlatformXbox,
	"xb1":         PlatformXbox,
	"xbox":        PlatformXbox,
	"ps":          PlatformPlaystation,
	"ps4":         PlatformPlaystation,
	"ps5":         PlatformPlaystation,
	"playstation": PlatformPlaystation,
}

// SniffPlatform scans free-form signal text for a platform tag. Returns
// PlatformUnknown when no token matches.
func SniffPlatform(text string) Platform {
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, "()[]{},.!?:;\"'")
		if p, ok := platformTokens[tok]; ok {
			return p
		}
	}
	return PlatformUnknown
}

// ParsePlatform parses an explicit platform argument from a command
func ParsePlatform(s string) (Platform, bool) {
	if p, ok := platformTokens[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, true
	}
	return PlatformUnknown, false
}
