package memo

// PostCreation is carried in the burn envelope of create_post.
type PostCreation struct {
	Header
	Creator string
	PostID  uint64
	Title   string
	Content string
	Image   string
}

func NewPostCreation(creator string, postID uint64, title, content, image string) *PostCreation {
	return &PostCreation{
		Header:  newHeader(CategoryForum, OpCreatePost),
		Creator: creator,
		PostID:  postID,
		Title:   title,
		Content: content,
		Image:   image,
	}
}

func (p *PostCreation) Category() string  { return CategoryForum }
func (p *PostCreation) Operation() string { return OpCreatePost }

func (p *PostCreation) Validate(expected Expectation) error {
	if err := p.check(CategoryForum, OpCreatePost); err != nil {
		return err
	}
	if err := checkActor("creator", p.Creator, expected.Actor); err != nil {
		return err
	}
	if err := checkID("post", p.PostID, expected.ID); err != nil {
		return err
	}
	if err := checkLen("title", p.Title, 1, MaxPostTitleLen); err != nil {
		return err
	}
	if err := checkLen("content", p.Content, 1, MaxPostContentLen); err != nil {
		return err
	}
	return checkLen("image", p.Image, 0, MaxPostImageLen)
}

// PostInteraction is the shared shape of burn_for_post and mint_for_post.
type PostInteraction struct {
	Header
	User    string
	PostID  uint64
	Message string
}

// NewPostBurn builds the burn_for_post payload.
func NewPostBurn(user string, postID uint64, message string) *PostInteraction {
	return &PostInteraction{
		Header:  newHeader(CategoryForum, OpBurnForPost),
		User:    user,
		PostID:  postID,
		Message: message,
	}
}

// NewPostMint builds the mint_for_post payload.
func NewPostMint(user string, postID uint64, message string) *PostInteraction {
	p := NewPostBurn(user, postID, message)
	p.Header.Operation = OpMintForPost
	return p
}

func (p *PostInteraction) Category() string  { return CategoryForum }
func (p *PostInteraction) Operation() string { return p.Header.Operation }

func (p *PostInteraction) Validate(expected Expectation) error {
	op := p.Header.Operation
	if op != OpBurnForPost && op != OpMintForPost {
		return invalid("Invalid operation %q (expected %q or %q)", op, OpBurnForPost, OpMintForPost)
	}
	if err := p.check(CategoryForum, op); err != nil {
		return err
	}
	if err := checkActor("user", p.User, expected.Actor); err != nil {
		return err
	}
	if err := checkID("post", p.PostID, expected.ID); err != nil {
		return err
	}
	return checkMessage(p.Message, 0, MaxBurnMessageLen)
}
