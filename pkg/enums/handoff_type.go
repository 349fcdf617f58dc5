package enums

import "fmt"

// HandoffType distinguishes machine sourcing from white-label product runs.
type HandoffType string

const (
	HandoffTypeSourcing   HandoffType = "sourcing"
	HandoffTypeWhiteLabel HandoffType = "white_label"
)

var validHandoffTypes = []HandoffType{
	HandoffTypeSourcing,
	HandoffTypeWhiteLabel,
}

// IsValid reports whether the value is a known HandoffType.
func (h HandoffType) IsValid() bool {
	for _, candidate := range validHandoffTypes {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseHandoffType converts raw input into a HandoffType.
func ParseHandoffType(value string) (HandoffType, error) {
	for _, candidate := range validHandoffTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid handoff type %q", value)
}

// HandoffMode records how the engagement entered the pipeline.
type HandoffMode string

const (
	HandoffModeFree      HandoffMode = "free"
	HandoffModePaidHuman HandoffMode = "paid_human"
)

var validHandoffModes = []HandoffMode{
	HandoffModeFree,
	HandoffModePaidHuman,
}

// IsValid reports whether the value is a known HandoffMode.
func (h HandoffMode) IsValid() bool {
	for _, candidate := range validHandoffModes {
		if candidate == h {
			return true
		}
	}
	return false
}
