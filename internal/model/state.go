package model

// Slice is the short-term (motion window) movement classification of a player.
type Slice int32

const (
	// SliceRush - player is pushing forward along the route
	SliceRush Slice = iota
	// SliceDefend - player is holding position
	SliceDefend
	// SliceBack - player is retreating along the route
	SliceBack
)

// String returns human-readable slice name
func (s Slice) String() string {
	switch s {
	case SliceRush:
		return "RUSH"
	case SliceDefend:
		return "DEFEND"
	case SliceBack:
		return "BACK"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is a known slice.
func (s Slice) Valid() bool {
	return s >= SliceRush && s <= SliceBack
}

// Normalize resets an unknown slice to SliceRush.
func (s Slice) Normalize() Slice {
	if !s.Valid() {
		return SliceRush
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (s Slice) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// SliceRush.
func (s *Slice) UnmarshalText(b []byte) error {
	*s = parseName(string(b), SliceRush, SliceBack)
	return nil
}

// Status is the medium-term behavioral classification of a player.
type Status int32

const (
	// StatusRush - player has mostly been rushing
	StatusRush Status = iota
	// StatusDefend - fallback when neither rush nor back dominates
	StatusDefend
	// StatusBack - player has mostly been retreating
	StatusBack
	// StatusSafe - player reached the final safe area (or was put there by its group)
	StatusSafe
	// StatusIncapacitated - player is down or hanging from a ledge
	StatusIncapacitated
)

// String returns human-readable status name
func (s Status) String() string {
	switch s {
	case StatusRush:
		return "RUSH"
	case StatusDefend:
		return "DEFEND"
	case StatusBack:
		return "BACK"
	case StatusSafe:
		return "SAFE"
	case StatusIncapacitated:
		return "INCAPACITATED"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s >= StatusRush && s <= StatusIncapacitated
}

// Normalize resets an unknown status to StatusRush.
func (s Status) Normalize() Status {
	if !s.Valid() {
		return StatusRush
	}
	return s
}

// Active reports whether the player is neither incapacitated nor safe.
func (s Status) Active() bool {
	return s != StatusIncapacitated && s != StatusSafe
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// StatusRush.
func (s *Status) UnmarshalText(b []byte) error {
	*s = parseName(string(b), StatusRush, StatusIncapacitated)
	return nil
}

// Logic is the group-level analog of Status.
type Logic int32

const (
	LogicRush Logic = iota
	LogicDefend
	LogicBack
	LogicSafe
	LogicIncapacitated
)

// String returns human-readable logic name
func (l Logic) String() string {
	switch l {
	case LogicRush:
		return "RUSH"
	case LogicDefend:
		return "DEFEND"
	case LogicBack:
		return "BACK"
	case LogicSafe:
		return "SAFE"
	case LogicIncapacitated:
		return "INCAPACITATED"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether l is a known logic.
func (l Logic) Valid() bool {
	return l >= LogicRush && l <= LogicIncapacitated
}

// Normalize resets an unknown logic to LogicRush.
func (l Logic) Normalize() Logic {
	if !l.Valid() {
		return LogicRush
	}
	return l
}

// CanRequestSpawn reports whether a group in this logic may ask for an antagonist.
func (l Logic) CanRequestSpawn() bool {
	return l == LogicRush || l == LogicDefend || l == LogicBack
}

// MarshalText implements encoding.TextMarshaler.
func (l Logic) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// LogicRush.
func (l *Logic) UnmarshalText(b []byte) error {
	*l = parseName(string(b), LogicRush, LogicIncapacitated)
	return nil
}

func parseName[E interface {
	~int32
	String() string
}](name string, first, last E) E {
	for v := first; v <= last; v++ {
		if v.String() == name {
			return v
		}
	}
	return first
}
