package atlink

import "fmt"

// HeaderMode selects the LoRa packet header mode for AT+CFG.
type HeaderMode int

const (
	HeaderExplicit HeaderMode = iota
	HeaderImplicit
)

func (h HeaderMode) code() int {
	if h == HeaderImplicit {
		return 1
	}
	return 0
}

// ReceiveMode selects whether the radio keeps listening after a receive.
type ReceiveMode int

const (
	ReceiveContinuous ReceiveMode = iota
	ReceiveSingle
)

func (r ReceiveMode) code() int {
	if r == ReceiveSingle {
		return 1
	}
	return 0
}

// Config is the 13-field AT+CFG radio configuration line (spec §6),
// grounded on original_source/hoppy/src/at_module/config.rs.
type Config struct {
	Frequency       uint32
	Power           uint8
	Bandwidth       uint8
	SpreadingFactor uint8
	ErrorCoding     uint8
	CRC             bool
	HeaderMode      HeaderMode
	ReceiveMode     ReceiveMode
	FrequencyHop    bool
	HopPeriod       uint32
	ReceiveTimeout  uint16
	PayloadLength   uint8
	PreambleLength  uint16
}

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// String renders the comma-joined AT+CFG command body.
func (c Config) String() string {
	return fmt.Sprintf(
		"%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d",
		c.Frequency,
		c.Power,
		c.Bandwidth,
		c.SpreadingFactor,
		c.ErrorCoding,
		boolDigit(c.CRC),
		c.HeaderMode.code(),
		c.ReceiveMode.code(),
		boolDigit(c.FrequencyHop),
		c.HopPeriod,
		c.ReceiveTimeout,
		c.PayloadLength,
		c.PreambleLength,
	)
}
