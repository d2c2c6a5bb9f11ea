package memo

// ProfileCreation is carried in the burn envelope of create_profile.
type ProfileCreation struct {
	Header
	UserPubkey string
	Username   string
	Image      string
	AboutMe    *string `bin:"optional"`
}

func NewProfileCreation(user, username, image string, aboutMe *string) *ProfileCreation {
	return &ProfileCreation{
		Header:     newHeader(CategoryProfile, OpCreateProfile),
		UserPubkey: user,
		Username:   username,
		Image:      image,
		AboutMe:    aboutMe,
	}
}

func (p *ProfileCreation) Category() string  { return CategoryProfile }
func (p *ProfileCreation) Operation() string { return OpCreateProfile }

func (p *ProfileCreation) Validate(expected Expectation) error {
	if err := p.check(CategoryProfile, OpCreateProfile); err != nil {
		return err
	}
	if err := checkActor("user", p.UserPubkey, expected.Actor); err != nil {
		return err
	}
	if err := checkLen("username", p.Username, 1, MaxUsernameLen); err != nil {
		return err
	}
	if err := checkLen("image", p.Image, 0, MaxProfileImageLen); err != nil {
		return err
	}
	return checkOptLen("about_me", p.AboutMe, 0, MaxAboutMeLen)
}

// ProfileUpdate leaves absent fields unchanged. AboutMe can additionally be
// cleared.
type ProfileUpdate struct {
	Header
	UserPubkey string
	Username   *string `bin:"optional"`
	Image      *string `bin:"optional"`
	AboutMe    Patch[string]
}

func NewProfileUpdate(user string, username, image *string, aboutMe Patch[string]) *ProfileUpdate {
	return &ProfileUpdate{
		Header:     newHeader(CategoryProfile, OpUpdateProfile),
		UserPubkey: user,
		Username:   username,
		Image:      image,
		AboutMe:    aboutMe,
	}
}

func (p *ProfileUpdate) Category() string  { return CategoryProfile }
func (p *ProfileUpdate) Operation() string { return OpUpdateProfile }

func (p *ProfileUpdate) Validate(expected Expectation) error {
	if err := p.check(CategoryProfile, OpUpdateProfile); err != nil {
		return err
	}
	if err := checkActor("user", p.UserPubkey, expected.Actor); err != nil {
		return err
	}
	if err := checkOptLen("username", p.Username, 1, MaxUsernameLen); err != nil {
		return err
	}
	if err := checkOptLen("image", p.Image, 0, MaxProfileImageLen); err != nil {
		return err
	}
	if v, ok := p.AboutMe.Value(); ok {
		return checkLen("about_me", v, 0, MaxAboutMeLen)
	}
	return nil
}
