package domain

// BloodGroup represents one of the eight canonical ABO/Rh groups
type BloodGroup string

const (
	BloodAPositive  BloodGroup = "A+"
	BloodANegative  BloodGroup = "A-"
	BloodBPositive  BloodGroup = "B+"
	BloodBNegative  BloodGroup = "B-"
	BloodABPositive BloodGroup = "AB+"
	BloodABNegative BloodGroup = "AB-"
	BloodOPositive  BloodGroup = "O+"
	BloodONegative  BloodGroup = "O-"
)

// AllBloodGroups lists every canonical group, in display order
func AllBloodGroups() []BloodGroup {
	return []BloodGroup{
		BloodAPositive, BloodANegative,
		BloodBPositive, BloodBNegative,
		BloodABPositive, BloodABNegative,
		BloodOPositive, BloodONegative,
	}
}

// Valid reports whether g is a canonical blood group
func (g BloodGroup) Valid() bool {
	switch g {
	case BloodAPositive, BloodANegative,
		BloodBPositive, BloodBNegative,
		BloodABPositive, BloodABNegative,
		BloodOPositive, BloodONegative:
		return true
	}
	return false
}

// ParseBloodGroup validates a raw string as a canonical blood group
func ParseBloodGroup(s string) (BloodGroup, error) {
	g := BloodGroup(s)
	if !g.Valid() {
		return "", ErrInvalidBloodGroup
	}
	return g, nil
}
