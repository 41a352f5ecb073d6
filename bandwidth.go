package opusconfig

import (
	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// BandwidthForRate maps an input sample rate to the Opus bandwidth class
// that covers it. Rates outside the set Opus defines fall back to fullband.
func BandwidthForRate(sampleRate uint32) opus.Bandwidth {
	switch sampleRate {
	case 8000:
		return opus.BandwidthNarrowband
	case 12000:
		return opus.BandwidthMediumband
	case 16000:
		return opus.BandwidthWideband
	case 24000:
		return opus.BandwidthSuperwideband
	case 48000:
		return opus.BandwidthFullband
	default:
		logrus.WithFields(logrus.Fields{
			"function":    "BandwidthForRate",
			"sample_rate": sampleRate,
		}).Warn("Unsupported sample rate, defaulting to fullband")
		return opus.BandwidthFullband
	}
}
