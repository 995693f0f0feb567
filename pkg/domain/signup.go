package domain

// SignupDraft collects the fields needed to finish registering a delegated
// identity the backend does not know yet.
type SignupDraft struct {
	ProvisionalDisplayName string
	ChosenHandle           string
	PhoneNumber            string
}

// NewSignupDraft pre-fills a draft from the provider's profile hint.
func NewSignupDraft(hint ProviderProfile) SignupDraft {
	return SignupDraft{ProvisionalDisplayName: NormalizeDisplayName(hint.Nickname)}
}

// Validate runs every field check in form order and returns the normalized
// draft. Missing fields fail before format checks.
func (d SignupDraft) Validate() (SignupDraft, error) {
	name, err := ValidateDisplayName(d.ProvisionalDisplayName)
	if err != nil {
		return d, err
	}
	if err := ValidateHandle(d.ChosenHandle); err != nil {
		return d, err
	}
	phone, err := ValidateStrictPhone(d.PhoneNumber)
	if err != nil {
		return d, err
	}
	return SignupDraft{
		ProvisionalDisplayName: name,
		ChosenHandle:           d.ChosenHandle,
		PhoneNumber:            phone,
	}, nil
}
