package enum

// StayType represents how a cast is attached to a bill
type StayType string

const (
	StayFree    StayType = "free"
	StayInHouse StayType = "in"
	StayNom     StayType = "nom"
	StayDohan   StayType = "dohan"
)

// RateKey maps the short stay-type code to the rate field name used on
// stores, categories and casts (free/nomination/inhouse/dohan).
func (s StayType) RateKey() string {
	switch s {
	case StayFree:
		return "free"
	case StayNom:
		return "nomination"
	case StayInHouse:
		return "inhouse"
	case StayDohan:
		return "dohan"
	}
	return ""
}

// Valid reports whether the stay type is one of the four known codes
func (s StayType) Valid() bool {
	switch s {
	case StayFree, StayInHouse, StayNom, StayDohan:
		return true
	}
	return false
}

func (s StayType) String() string {
	return string(s)
}
