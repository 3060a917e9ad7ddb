package hui

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/normen/obs-hui/gohui"
	"gonum.org/v1/gonum/interp"
)

var vowels = regexp.MustCompile(`([^-_ ]+)[AEIOUaeiou]([^-_ ]+)`)
var trailingNumber = regexp.MustCompile(`[0-9]+$`)

var faderToObs interp.PiecewiseLinear
var obsToFader interp.PiecewiseLinear

// prepares the interpolation for the hui fader to obs fader translation
func InitInterp() {
	// fader values for -inf, -60, -50, -40, -30, -20, -10, -6, 0
	faderVals := []float64{0, 732, 1680, 3050, 4614, 5816, 7940, 10007, 12382}
	obsVals := []float64{0, 0.000952, 0.002919, 0.009665, 0.031204, 0.096298, 0.315420, 0.488820, 1}
	if err := faderToObs.Fit(faderVals, obsVals); err != nil {
		panic(err)
	}
	if err := obsToFader.Fit(obsVals, faderVals); err != nil {
		panic(err)
	}
}

func init() {
	InitInterp()
}

// ShortenText squeezes input into width characters: drops vowels inside
// words, then separators, and keeps a trailing number visible.
func ShortenText(input string, width int) string {
	if width <= 0 {
		return ""
	}
	input = strings.ReplaceAll(input, "Input", "In")
	input = strings.ReplaceAll(input, "Output", "Out")
	length := utf8.RuneCountInString(input)
	for length > width && vowels.MatchString(input) {
		input = vowels.ReplaceAllString(input, `$1$2`)
		length = utf8.RuneCountInString(input)
	}
	if length > width {
		input = strings.NewReplacer(" ", "", "-", "", "_", "", "/", "").Replace(input)
		length = utf8.RuneCountInString(input)
	}
	runes := []rune(input)
	if length > width {
		number := []rune(trailingNumber.FindString(input))
		if len(number) >= width {
			number = number[len(number)-width+1:]
		}
		runes = append(runes[:width-len(number)], number...)
	}
	return fmt.Sprintf("%-*s", width, string(runes))
}

// VolumeToFader converts an obs volume multiplier to a fader level.
func VolumeToFader(level float64) uint16 {
	v := math.Round(obsToFader.Predict(clamp(level, 0, 1)))
	return uint16(clamp(v, 0, gohui.FaderMax))
}

// FaderToVolume converts a fader level to an obs volume multiplier.
func FaderToVolume(fader uint16) float64 {
	return clamp(faderToObs.Predict(float64(fader)), 0, 1)
}

// PanToVPot shows a balance of 0 (left) to 1 (right) on a V-Pot ring.
func PanToVPot(pan float64) gohui.VPotDisplay {
	pos := math.Round(MapToRange(clamp(pan, 0, 1), 0, 1, 1, 11))
	return gohui.NewVPotDisplay(gohui.LEDCenterTo, uint8(pos), false)
}

// VolumeText formats a volume multiplier in dB for a five character cell.
func VolumeText(level float64) string {
	if level <= 0 {
		return "-inf"
	}
	db := LinearToDb(level)
	if db <= -100 {
		return "-inf"
	}
	return fmt.Sprintf("%.1f", db)
}

func MapToRange(value, fromMin, fromMax, toMin, toMax float64) float64 {
	if fromMax == fromMin {
		return toMin
	}
	return ((value-fromMin)*(toMax-toMin)/(fromMax-fromMin) + toMin)
}

func LinearToDb(linear float64) float64 {
	return 20 * math.Log10(linear)
}

func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
