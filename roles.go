package users

// IsValid checks if the type is one of the predefined account types
func (t AccountType) IsValid() bool {
	switch t {
	case TypeUser, TypeAdmin, TypeOwner:
		return true
	default:
		return false
	}
}

// IsAdministrative reports whether the type carries the administrative
// capability required by bulk provisioning and list-all
func (t AccountType) IsAdministrative() bool {
	switch t {
	case TypeAdmin, TypeOwner:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this type meets the minimum required level
func (t AccountType) IsAtLeast(min AccountType) bool {
	hierarchy := map[AccountType]int{
		TypeUser:  0,
		TypeAdmin: 1,
		TypeOwner: 2,
	}

	level, ok := hierarchy[t]
	if !ok {
		return false
	}

	required, ok := hierarchy[min]
	if !ok {
		return false
	}

	return level >= required
}

// ParseType converts a string to an AccountType, reporting validity
func ParseType(raw string) (AccountType, bool) {
	t := AccountType(raw)
	return t, t.IsValid()
}
