package receiver

// Mode is the receiver's operating context. Exactly one holds at a time.
// Setup exists only between power-on and the first control tick; the other
// three are entered and left only while the main loop runs.
type Mode uint8

const (
	ModeReady Mode = iota
	ModeTest
	ModeDiagnostic
	ModeSetup
)

func (m Mode) String() string {
	switch m {
	case ModeReady:
		return "ready"
	case ModeTest:
		return "test"
	case ModeDiagnostic:
		return "diagnostic"
	case ModeSetup:
		return "setup"
	default:
		return "unknown"
	}
}
