package memo

// ProjectCreation is carried in the burn envelope of create_project.
type ProjectCreation struct {
	Header
	ProjectID   uint64
	Name        string
	Description string
	Image       string
	Website     string
	Tags        []string
}

func NewProjectCreation(projectID uint64, name, description, image, website string, tags []string) *ProjectCreation {
	return &ProjectCreation{
		Header:      newHeader(CategoryProject, OpCreateProject),
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		Image:       image,
		Website:     website,
		Tags:        tags,
	}
}

func (p *ProjectCreation) Category() string  { return CategoryProject }
func (p *ProjectCreation) Operation() string { return OpCreateProject }

func (p *ProjectCreation) Validate(expected Expectation) error {
	if err := p.check(CategoryProject, OpCreateProject); err != nil {
		return err
	}
	if err := checkID("project", p.ProjectID, expected.ID); err != nil {
		return err
	}
	if err := checkLen("name", p.Name, 1, MaxProjectNameLen); err != nil {
		return err
	}
	if err := checkLen("description", p.Description, 0, MaxProjectDescLen); err != nil {
		return err
	}
	if err := checkLen("image", p.Image, 0, MaxProjectImageLen); err != nil {
		return err
	}
	if err := checkLen("website", p.Website, 0, MaxProjectWebsiteLen); err != nil {
		return err
	}
	return checkTags(p.Tags)
}

// ProjectUpdate changes only the fields that are present.
type ProjectUpdate struct {
	Header
	ProjectID   uint64
	Name        *string   `bin:"optional"`
	Description *string   `bin:"optional"`
	Image       *string   `bin:"optional"`
	Website     *string   `bin:"optional"`
	Tags        *[]string `bin:"optional"`
}

func NewProjectUpdate(projectID uint64) *ProjectUpdate {
	return &ProjectUpdate{
		Header:    newHeader(CategoryProject, OpUpdateProject),
		ProjectID: projectID,
	}
}

func (p *ProjectUpdate) Category() string  { return CategoryProject }
func (p *ProjectUpdate) Operation() string { return OpUpdateProject }

func (p *ProjectUpdate) Validate(expected Expectation) error {
	if err := p.check(CategoryProject, OpUpdateProject); err != nil {
		return err
	}
	if err := checkID("project", p.ProjectID, expected.ID); err != nil {
		return err
	}
	if err := checkOptLen("name", p.Name, 1, MaxProjectNameLen); err != nil {
		return err
	}
	if err := checkOptLen("description", p.Description, 0, MaxProjectDescLen); err != nil {
		return err
	}
	if err := checkOptLen("image", p.Image, 0, MaxProjectImageLen); err != nil {
		return err
	}
	if err := checkOptLen("website", p.Website, 0, MaxProjectWebsiteLen); err != nil {
		return err
	}
	if p.Tags != nil {
		return checkTags(*p.Tags)
	}
	return nil
}

// ProjectBurn is carried in the burn envelope of burn_for_project.
type ProjectBurn struct {
	Header
	ProjectID uint64
	Burner    string
	Message   string
}

func NewProjectBurn(projectID uint64, burner, message string) *ProjectBurn {
	return &ProjectBurn{
		Header:    newHeader(CategoryProject, OpBurnForProject),
		ProjectID: projectID,
		Burner:    burner,
		Message:   message,
	}
}

func (p *ProjectBurn) Category() string  { return CategoryProject }
func (p *ProjectBurn) Operation() string { return OpBurnForProject }

func (p *ProjectBurn) Validate(expected Expectation) error {
	if err := p.check(CategoryProject, OpBurnForProject); err != nil {
		return err
	}
	if err := checkID("project", p.ProjectID, expected.ID); err != nil {
		return err
	}
	if err := checkActor("burner", p.Burner, expected.Actor); err != nil {
		return err
	}
	return checkMessage(p.Message, 0, MaxBurnMessageLen)
}
