package mutation

import (
	"strings"

	"ecoreport/internal/validate"
	"ecoreport/pkg/types"
)

// SignupBase holds the fields every signup variant shares.
type SignupBase struct {
	UserType        types.Role `json:"userType" validate:"required,oneof=USER EXPERT VOLUNTEER"`
	Name            string     `json:"name" validate:"required,min=2,max=100"`
	Email           string     `json:"email" validate:"required,email,max=254"`
	Password        string     `json:"password" validate:"required,min=8,maxbytes=72,password"`
	ConfirmPassword string     `json:"confirmPassword" validate:"required,eqfield=Password"`
	Location        *string    `json:"location" validate:"omitempty,max=200"`
	AgreeTerms      bool       `json:"agreeTerms" validate:"accepted"`
}

func (b *SignupBase) ApplyDefaults() {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
	if b.Location != nil {
		loc := strings.TrimSpace(*b.Location)
		b.Location = &loc
	}
}

// SignupCommand is one of UserSignup, ExpertSignup or VolunteerSignup,
// selected by the userType tag.
type SignupCommand interface {
	base() *SignupBase
	account() *types.Account
}

type UserSignup struct {
	SignupBase
	Interests []string `json:"interests" validate:"omitempty,max=20,dive,min=2,max=50"`
}

type ExpertSignup struct {
	SignupBase
	Expertise string `json:"expertise" validate:"required,min=2,max=100"`
}

type VolunteerSignup struct {
	SignupBase
	Skills []string `json:"skills" validate:"required,min=1,max=20,dive,min=2,max=50"`
}

func (c *UserSignup) base() *SignupBase      { return &c.SignupBase }
func (c *ExpertSignup) base() *SignupBase    { return &c.SignupBase }
func (c *VolunteerSignup) base() *SignupBase { return &c.SignupBase }

func (c *UserSignup) account() *types.Account {
	a := c.SignupBase.newAccount(types.RoleUser)
	a.Interests = c.Interests
	return a
}

func (c *ExpertSignup) account() *types.Account {
	a := c.SignupBase.newAccount(types.RoleExpert)
	expertise := strings.TrimSpace(c.Expertise)
	a.Expertise = &expertise
	return a
}

func (c *VolunteerSignup) account() *types.Account {
	a := c.SignupBase.newAccount(types.RoleVolunteer)
	a.Skills = c.Skills
	return a
}

func (b *SignupBase) newAccount(role types.Role) *types.Account {
	return &types.Account{
		Email:    b.Email,
		Name:     b.Name,
		Role:     role,
		Location: b.Location,
	}
}

// SignupVariants maps each userType tag to its payload shape.
var SignupVariants = map[string]func() any{
	string(types.RoleUser):      func() any { return new(UserSignup) },
	string(types.RoleExpert):    func() any { return new(ExpertSignup) },
	string(types.RoleVolunteer): func() any { return new(VolunteerSignup) },
}

type LoginCommand struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,maxbytes=72"`
	RememberMe bool   `json:"rememberMe"`
}

func (c *LoginCommand) ApplyDefaults() {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

type UpdateProfileCommand struct {
	Name        *string            `json:"name" validate:"omitempty,min=2,max=100"`
	Bio         *string            `json:"bio" validate:"omitempty,max=500"`
	Location    *string            `json:"location" validate:"omitempty,max=200"`
	Skills      []string           `json:"skills" validate:"omitempty,max=20,dive,min=2,max=50"`
	Interests   []string           `json:"interests" validate:"omitempty,max=20,dive,min=2,max=50"`
	Expertise   *string            `json:"expertise" validate:"omitempty,max=100"`
	Image       *string            `json:"image" validate:"omitempty,url,max=500"`
	SocialLinks *types.SocialLinks `json:"socialLinks"`
}

func (c *UpdateProfileCommand) ApplyDefaults() {
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		c.Name = &name
	}
}

func (c *UpdateProfileCommand) update() *types.ProfileUpdate {
	return &types.ProfileUpdate{
		Name:        c.Name,
		Bio:         c.Bio,
		Location:    c.Location,
		Skills:      c.Skills,
		Interests:   c.Interests,
		Expertise:   c.Expertise,
		Image:       c.Image,
		SocialLinks: c.SocialLinks,
	}
}

type RegisterExpertCommand struct {
	Title           string   `json:"title" validate:"required,min=2,max=100"`
	Specialties     []string `json:"specialties" validate:"required,min=1,max=10,dive,min=2,max=50"`
	Credentials     []string `json:"credentials" validate:"omitempty,max=20,dive,min=2,max=200"`
	Bio             string   `json:"bio" validate:"required,min=20,max=1000"`
	ConsultationFee *float64 `json:"consultationFee" validate:"omitempty,gte=0,lte=10000"`
}

// ApplyDefaults normalises specialties to the category tag form so they can be
// matched against report categories.
func (c *RegisterExpertCommand) ApplyDefaults() {
	c.Title = strings.TrimSpace(c.Title)
	c.Specialties = normalizeTags(c.Specialties)
	if c.Credentials == nil {
		c.Credentials = []string{}
	}
}

type CreateReportCommand struct {
	Title              string        `json:"title" validate:"required,min=5,max=100"`
	Description        string        `json:"description" validate:"required,min=20,max=2000"`
	Location           string        `json:"location" validate:"required,min=3,max=200"`
	Latitude           *float64      `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude          *float64      `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Urgency            types.Urgency `json:"urgency" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	Category           string        `json:"category" validate:"required,min=2,max=50"`
	PotentialSolutions *string       `json:"potentialSolutions" validate:"omitempty,max=1000"`
	Images             []string      `json:"images" validate:"omitempty,max=10,dive,required,max=500"`
}

func (c *CreateReportCommand) ApplyDefaults() {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Location = strings.TrimSpace(c.Location)
	c.Category = normalizeTag(c.Category)
	if c.Images == nil {
		c.Images = []string{}
	}
}

// Refine requires coordinates to arrive as a pair.
func (c *CreateReportCommand) Refine() validate.Violations {
	switch {
	case c.Latitude != nil && c.Longitude == nil:
		return validate.Violations{{Path: "longitude", Message: "must be provided together with latitude"}}
	case c.Longitude != nil && c.Latitude == nil:
		return validate.Violations{{Path: "latitude", Message: "must be provided together with longitude"}}
	}
	return nil
}

func (c *CreateReportCommand) report(accountID string) *types.Report {
	return &types.Report{
		AccountID:          accountID,
		Title:              c.Title,
		Description:        c.Description,
		Location:           c.Location,
		Latitude:           c.Latitude,
		Longitude:          c.Longitude,
		Urgency:            c.Urgency,
		Category:           c.Category,
		PotentialSolutions: c.PotentialSolutions,
		Images:             c.Images,
	}
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPage keeps offsets well inside Postgres' bigint range.
	MaxPage          = 1_000_000
)

type ListReportsQuery struct {
	Category string             `form:"category" validate:"omitempty,max=50"`
	Urgency  types.Urgency      `form:"urgency" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Status   types.ReportStatus `form:"status" validate:"omitempty,oneof=PENDING VERIFIED IN_PROGRESS RESOLVED REJECTED"`
	Location string             `form:"location" validate:"omitempty,max=200"`
	Page     int                `form:"page"`
	Limit    int                `form:"limit"`
}

// ApplyDefaults clamps paging instead of rejecting it.
func (q *ListReportsQuery) ApplyDefaults() {
	q.Category = normalizeTag(q.Category)
	q.Urgency = types.Urgency(strings.ToUpper(strings.TrimSpace(string(q.Urgency))))
	q.Status = types.ReportStatus(strings.ToUpper(strings.TrimSpace(string(q.Status))))
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
}

func (q *ListReportsQuery) filter() types.ReportFilter {
	return types.ReportFilter{
		Category: q.Category,
		Urgency:  q.Urgency,
		Status:   q.Status,
		Location: q.Location,
		Page:     q.Page,
		Limit:    q.Limit,
	}
}

type SignUploadCommand struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
}

func (c *SignUploadCommand) ApplyDefaults() {
	c.Filename = strings.TrimSpace(c.Filename)
	c.ContentType = strings.ToLower(strings.TrimSpace(c.ContentType))
}

func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return strings.Join(strings.Fields(tag), "-")
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, normalizeTag(tag))
	}
	return out
}
