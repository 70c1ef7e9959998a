package pins

// Signal логическое имя выходной линии.
type Signal int

const (
	BlackFlag Signal = iota
	RedFlag
	PitSoon
	BoxBox
)

func (s Signal) String() string {
	switch s {
	case BlackFlag:
		return "black-flag"
	case RedFlag:
		return "red-flag"
	case PitSoon:
		return "pit-soon"
	case BoxBox:
		return "box-box"
	default:
		return "unknown"
	}
}

// Level уровень выходной линии.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Driver управляет выходными линиями.
type Driver interface {
	SetLevel(sig Signal, level Level) error
	Close() error
}

// DefaultMapping номера GPIO из исходной прошивки контроллера.
var DefaultMapping = map[Signal]int{
	BlackFlag: 14,
	RedFlag:   27,
	PitSoon:   26,
	BoxBox:    12,
}

// Ensure both drivers implement Driver.
var _ Driver = (*Sysfs)(nil)
var _ Driver = (*Mock)(nil)
