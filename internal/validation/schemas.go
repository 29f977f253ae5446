package validation

import "account_service/internal/models"

// Login is a validated sign-in payload.
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is a validated sign-up payload; Password is still plaintext here.
type Registration struct {
	FirstName string `json:"first_name" validate:"nonempty"`
	LastName  string `json:"last_name" validate:"nonempty"`
	Email     string `json:"email" validate:"email"`
	Username  string `json:"username" validate:"nonempty"`
	Password  string `json:"password" validate:"password"`
}

// profileUpdate mirrors models.UserPatch with validation tags.
type profileUpdate struct {
	FirstName *string `json:"first_name" validate:"omitnil,nonempty"`
	LastName  *string `json:"last_name" validate:"omitnil,nonempty"`
}

// PasswordChange is a validated change-password payload. New == Confirm is not checked here.
type PasswordChange struct {
	Old     string `json:"old"`
	New     string `json:"new" validate:"password"`
	Confirm string `json:"confirm" validate:"password"`
}

// ParseLogin requires username and password strings.
func ParseLogin(payload map[string]any) (Login, error) {
	verr := &Error{}
	vals := readStrings(payload, []fieldSpec{
		{name: "username", required: true},
		{name: "password", required: true},
	}, verr)
	if err := verr.orNil(); err != nil {
		return Login{}, err
	}
	return Login{Username: vals["username"], Password: vals["password"]}, nil
}

// ParseRegistration checks names and username are non-empty, email is well formed
// and password length is within [6,20].
func ParseRegistration(payload map[string]any) (Registration, error) {
	verr := &Error{}
	vals := readStrings(payload, []fieldSpec{
		{name: "first_name", required: true},
		{name: "last_name", required: true},
		{name: "email", required: true},
		{name: "username", required: true},
		{name: "password", required: true},
	}, verr)

	in := Registration{
		FirstName: vals["first_name"],
		LastName:  vals["last_name"],
		Email:     vals["email"],
		Username:  vals["username"],
		Password:  vals["password"],
	}
	checkStruct(in, verr)

	if err := verr.orNil(); err != nil {
		return Registration{}, err
	}
	return in, nil
}

// ParseProfileUpdate accepts only first_name and last_name; at least one must be present and non-empty.
func ParseProfileUpdate(payload map[string]any) (models.UserPatch, error) {
	verr := &Error{}
	vals := readStrings(payload, []fieldSpec{
		{name: "first_name"},
		{name: "last_name"},
	}, verr)

	var in profileUpdate
	if v, ok := vals["first_name"]; ok {
		in.FirstName = &v
	}
	if v, ok := vals["last_name"]; ok {
		in.LastName = &v
	}
	checkStruct(in, verr)

	if len(payload) == 0 {
		verr.add(SchemaKey, MsgAtLeastOne)
	}
	if err := verr.orNil(); err != nil {
		return models.UserPatch{}, err
	}
	return models.UserPatch{FirstName: in.FirstName, LastName: in.LastName}, nil
}

// ParsePasswordChange requires old, new and confirm; new and confirm must be 6-20 characters long.
func ParsePasswordChange(payload map[string]any) (PasswordChange, error) {
	verr := &Error{}
	vals := readStrings(payload, []fieldSpec{
		{name: "old", required: true},
		{name: "new", required: true},
		{name: "confirm", required: true},
	}, verr)

	in := PasswordChange{Old: vals["old"], New: vals["new"], Confirm: vals["confirm"]}
	checkStruct(in, verr)

	if err := verr.orNil(); err != nil {
		return PasswordChange{}, err
	}
	return in, nil
}
