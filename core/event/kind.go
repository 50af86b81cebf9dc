package event

// Kind classifies an object storage modification event.
// The set is closed: any wire value that is not recognised maps to KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindCreated
	KindDeleted
	KindDeleteMarkerCreated
)

// Wire names used by the Rados gateway push endpoint.
const (
	wireCreated             = "OBJECT_CREATE"
	wireDeleted             = "OBJECT_DELETE"
	wireDeleteMarkerCreated = "DELETE_MARKER_CREATE"
	wireUnknown             = "UNKNOWN_EVENT"
)

// ParseKind maps a wire event name to a Kind. Unrecognised names yield KindUnknown.
func ParseKind(s string) Kind {
	switch s {
	case wireCreated:
		return KindCreated
	case wireDeleted:
		return KindDeleted
	case wireDeleteMarkerCreated:
		return KindDeleteMarkerCreated
	default:
		return KindUnknown
	}
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCreated:
		return wireCreated
	case KindDeleted:
		return wireDeleted
	case KindDeleteMarkerCreated:
		return wireDeleteMarkerCreated
	default:
		return wireUnknown
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}
