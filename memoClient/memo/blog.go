package memo

// BlogCreation is carried in the burn envelope of create_blog.
type BlogCreation struct {
	Header
	Creator     string
	Name        string
	Description string
	Image       string
}

func NewBlogCreation(creator, name, description, image string) *BlogCreation {
	return &BlogCreation{
		Header:      newHeader(CategoryBlog, OpCreateBlog),
		Creator:     creator,
		Name:        name,
		Description: description,
		Image:       image,
	}
}

func (p *BlogCreation) Category() string  { return CategoryBlog }
func (p *BlogCreation) Operation() string { return OpCreateBlog }

func (p *BlogCreation) Validate(expected Expectation) error {
	if err := p.check(CategoryBlog, OpCreateBlog); err != nil {
		return err
	}
	if err := checkActor("creator", p.Creator, expected.Actor); err != nil {
		return err
	}
	if err := checkLen("name", p.Name, 1, MaxBlogNameLen); err != nil {
		return err
	}
	if err := checkLen("description", p.Description, 0, MaxBlogDescriptionLen); err != nil {
		return err
	}
	return checkLen("image", p.Image, 0, MaxBlogImageLen)
}

// BlogUpdate changes only the fields that are present.
type BlogUpdate struct {
	Header
	Creator     string
	Name        *string `bin:"optional"`
	Description *string `bin:"optional"`
	Image       *string `bin:"optional"`
}

func NewBlogUpdate(creator string, name, description, image *string) *BlogUpdate {
	return &BlogUpdate{
		Header:      newHeader(CategoryBlog, OpUpdateBlog),
		Creator:     creator,
		Name:        name,
		Description: description,
		Image:       image,
	}
}

func (p *BlogUpdate) Category() string  { return CategoryBlog }
func (p *BlogUpdate) Operation() string { return OpUpdateBlog }

func (p *BlogUpdate) Validate(expected Expectation) error {
	if err := p.check(CategoryBlog, OpUpdateBlog); err != nil {
		return err
	}
	if err := checkActor("creator", p.Creator, expected.Actor); err != nil {
		return err
	}
	if err := checkOptLen("name", p.Name, 1, MaxBlogNameLen); err != nil {
		return err
	}
	if err := checkOptLen("description", p.Description, 0, MaxBlogDescriptionLen); err != nil {
		return err
	}
	return checkOptLen("image", p.Image, 0, MaxBlogImageLen)
}

// BlogInteraction is the shared shape of burn_for_blog and mint_for_blog.
// The actor is the burner or the minter respectively.
type BlogInteraction struct {
	Header
	Actor   string
	Message string
}

// NewBlogBurn builds the burn_for_blog payload.
func NewBlogBurn(burner, message string) *BlogInteraction {
	return &BlogInteraction{
		Header:  newHeader(CategoryBlog, OpBurnForBlog),
		Actor:   burner,
		Message: message,
	}
}

// NewBlogMint builds the mint_for_blog payload.
func NewBlogMint(minter, message string) *BlogInteraction {
	p := NewBlogBurn(minter, message)
	p.Header.Operation = OpMintForBlog
	return p
}

func (p *BlogInteraction) Category() string  { return CategoryBlog }
func (p *BlogInteraction) Operation() string { return p.Header.Operation }

func (p *BlogInteraction) Validate(expected Expectation) error {
	op := p.Header.Operation
	if op != OpBurnForBlog && op != OpMintForBlog {
		return invalid("Invalid operation %q (expected %q or %q)", op, OpBurnForBlog, OpMintForBlog)
	}
	if err := p.check(CategoryBlog, op); err != nil {
		return err
	}
	field := "burner"
	if op == OpMintForBlog {
		field = "minter"
	}
	if err := checkActor(field, p.Actor, expected.Actor); err != nil {
		return err
	}
	return checkMessage(p.Message, 0, MaxBurnMessageLen)
}
