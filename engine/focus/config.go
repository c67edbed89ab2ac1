package focus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
)

// BokehMode selects the pass topology and the per-pixel kernel shape.
type BokehMode int

const (
	// BokehModeHexagonal approximates a hexagonal aperture with two directional blurs.
	BokehModeHexagonal BokehMode = iota

	// BokehModeCircular runs a separable circular-disc convolution.
	BokehModeCircular
)

// ResolutionMode selects whether the blur works at native or halved resolution.
type ResolutionMode int

const (
	// ResolutionFull blurs at the scene color buffer's resolution.
	ResolutionFull ResolutionMode = iota

	// ResolutionHalf downsamples to half width and height, blurs, then upsamples and composites.
	ResolutionHalf
)

// Configured ranges for the numeric tunables.
const (
	MinFocusDistance float32 = 0.1
	MaxFocusDistance float32 = 100

	MinBokehStrength float32 = 0
	MaxBokehStrength float32 = 10

	MinMaxBlurRadius float32 = 0.1
	MaxMaxBlurRadius float32 = 10
)

// String returns the lower-case name of the bokeh mode.
func (m BokehMode) String() string {
	switch m {
	case BokehModeHexagonal:
		return "hexagonal"
	case BokehModeCircular:
		return "circular"
	default:
		return fmt.Sprintf("BokehMode(%d)", int(m))
	}
}

// ParseBokehMode parses "hexagonal" or "circular".
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - BokehMode: the parsed mode
//   - error: ErrUnknownMode if s is not recognized
func ParseBokehMode(s string) (BokehMode, error) {
	switch s {
	case "hexagonal", "hex":
		return BokehModeHexagonal, nil
	case "circular", "circle":
		return BokehModeCircular, nil
	}
	return 0, fmt.Errorf("bokeh mode %q: %w", s, ErrUnknownMode)
}

// String returns the lower-case name of the resolution mode.
func (m ResolutionMode) String() string {
	switch m {
	case ResolutionFull:
		return "full"
	case ResolutionHalf:
		return "half"
	default:
		return fmt.Sprintf("ResolutionMode(%d)", int(m))
	}
}

// ParseResolutionMode parses "full" or "half".
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - ResolutionMode: the parsed mode
//   - error: ErrUnknownMode if s is not recognized
func ParseResolutionMode(s string) (ResolutionMode, error) {
	switch s {
	case "full":
		return ResolutionFull, nil
	case "half":
		return ResolutionHalf, nil
	}
	return 0, fmt.Errorf("resolution mode %q: %w", s, ErrUnknownMode)
}

// Config holds the user tunables of the effect. These are the only values that persist between frames.
type Config struct {
	// AutoFocus derives the focus distance from the camera's forward ray hitting the reference plane.
	AutoFocus bool `json:"auto_focus"`
	// FocusDistance is the fixed focus distance used when AutoFocus is off.
	FocusDistance float32 `json:"focus_distance"`
	// BokehStrength scales blur growth with distance from the focal plane. Zero disables growth.
	BokehStrength float32 `json:"bokeh_strength"`
	// MaxBlurRadius caps the per-pixel kernel extent, in texels at the working resolution.
	MaxBlurRadius float32 `json:"max_blur_radius"`
	// BokehMode selects hexagonal or circular bokeh.
	BokehMode BokehMode `json:"bokeh_mode"`
	// ResolutionMode selects full or half working resolution.
	ResolutionMode ResolutionMode `json:"resolution_mode"`
}

// DefaultConfig returns the stock tuning: auto focus, circular bokeh at half resolution.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	return Config{
		AutoFocus:      true,
		FocusDistance:  10,
		BokehStrength:  2,
		MaxBlurRadius:  2,
		BokehMode:      BokehModeCircular,
		ResolutionMode: ResolutionHalf,
	}
}

// Clamped returns a copy of the config with every numeric field limited to its configured range
// and unknown enum values replaced by the defaults.
//
// Returns:
//   - Config: the clamped configuration
func (c Config) Clamped() Config {
	out := c
	out.FocusDistance = common.Clamp(c.FocusDistance, MinFocusDistance, MaxFocusDistance)
	out.BokehStrength = common.Clamp(c.BokehStrength, MinBokehStrength, MaxBokehStrength)
	out.MaxBlurRadius = common.Clamp(c.MaxBlurRadius, MinMaxBlurRadius, MaxMaxBlurRadius)
	if c.BokehMode != BokehModeHexagonal && c.BokehMode != BokehModeCircular {
		out.BokehMode = BokehModeCircular
	}
	if c.ResolutionMode != ResolutionFull && c.ResolutionMode != ResolutionHalf {
		out.ResolutionMode = ResolutionHalf
	}
	return out
}

// Warnings lists tuning problems that do not stop the effect from running.
//
// Returns:
//   - []string: human-readable warnings, empty when the tuning is sound
func (c Config) Warnings() []string {
	var warnings []string
	if c.BokehStrength <= 0 {
		warnings = append(warnings, "bokeh strength is zero: blur does not grow with distance from the focal plane")
	}
	if !c.AutoFocus && (c.FocusDistance < MinFocusDistance || c.FocusDistance > MaxFocusDistance) {
		warnings = append(warnings, fmt.Sprintf("focus distance %.2f is outside [%.1f, %.0f] and will be clamped",
			c.FocusDistance, MinFocusDistance, MaxFocusDistance))
	}
	return warnings
}

// LoadConfig reads a JSON config file. Fields missing from the file keep their DefaultConfig values.
//
// Parameters:
//   - path: path to the JSON file
//
// Returns:
//   - Config: the loaded configuration, clamped to the configured ranges
//   - error: an error if the file cannot be read or parsed
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read focus config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse focus config %s: %w", path, err)
	}
	return cfg.Clamped(), nil
}

// MarshalJSON encodes the mode by name.
func (m BokehMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts the mode by name.
func (m *BokehMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBokehMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalJSON encodes the mode by name.
func (m ResolutionMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts the mode by name.
func (m *ResolutionMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseResolutionMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
