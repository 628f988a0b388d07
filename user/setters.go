package user

// SetValues returns an UpdateSetter that replaces every editable field.
func SetValues(v Values) UpdateSetter {
	return func(u *User) error {
		u.Values = v
		return nil
	}
}
