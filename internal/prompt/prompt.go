package prompt

import (
	"fmt"
	"strings"
)

// presetPhrases maps tuning category keys to provider-facing instruction
// fragments. Keys mirror the seeded catalog.
var presetPhrases = map[string]string{
	"body_kit":     "install an aggressive wide body kit",
	"bumpers":      "replace the front and rear bumpers with sport versions",
	"hood":         "fit a vented performance hood",
	"spoiler":      "add a rear spoiler",
	"wheels":       "mount larger aftermarket alloy wheels",
	"tire_size":    "fit wider low-profile tires",
	"suspension":   "lower the suspension for a flush stance",
	"lights":       "upgrade to modern LED headlights and taillights",
	"diffuser":     "add a rear diffuser",
	"side_skirts":  "add matching side skirts",
	"vinyl_wrap":   "apply a full vinyl wrap",
	"color_finish": "repaint with a premium finish",
	"accessories":  "add subtle exterior accessories",
}

var effectPhrases = map[string]string{
	"360_spin":       "a smooth 360 degree turntable spin around the car",
	"neon_driveby":   "a night drive-by pass with neon street lighting reflections",
	"light_sweep":    "a studio light sweep traveling across the body panels",
	"showroom_pan":   "a slow cinematic showroom camera pan",
	"zoom_reveal":    "a dramatic zoom-out reveal from a detail shot",
	"spec_highlight": "camera moves highlighting the car's key features",
}

// BuildTuneInstruction composes the image-editing prompt for a tuning job.
// The source photo is attached separately; the instruction only describes the
// desired modification.
func BuildTuneInstruction(brand, model string, presets []string) string {
	parts := []string{}
	car := strings.TrimSpace(strings.TrimSpace(brand) + " " + strings.TrimSpace(model))
	if car != "" {
		parts = append(parts, fmt.Sprintf("Modify this photo of a %s.", car))
	} else {
		parts = append(parts, "Modify this car photo.")
	}
	for _, key := range presets {
		if phrase, ok := presetPhrases[key]; ok {
			parts = append(parts, strings.ToUpper(phrase[:1])+phrase[1:]+".")
		}
	}
	parts = append(parts, "Keep the original body proportions, background and camera angle. Photorealistic result, no artifacts.")
	return strings.Join(parts, " ")
}

// BuildEffectInstruction composes the video prompt for an effect job.
func BuildEffectInstruction(effectKey string) string {
	phrase, ok := effectPhrases[effectKey]
	if !ok {
		phrase = "a short cinematic showcase of the car"
	}
	return fmt.Sprintf("Animate this car photo into %s. Around 10 seconds, stable framing, photorealistic lighting.", phrase)
}
