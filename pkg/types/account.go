package types

import "time"

type Role string

const (
	RoleUser      Role = "USER"
	RoleExpert    Role = "EXPERT"
	RoleVolunteer Role = "VOLUNTEER"
	RoleAdmin     Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleExpert, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

type SocialLinks struct {
	Website   string `json:"website,omitempty" validate:"omitempty,url,max=200"`
	Twitter   string `json:"twitter,omitempty" validate:"omitempty,max=100"`
	LinkedIn  string `json:"linkedin,omitempty" validate:"omitempty,url,max=200"`
	Instagram string `json:"instagram,omitempty" validate:"omitempty,max=100"`
}

// Account is a registered identity. PasswordHash never leaves the server.
type Account struct {
	ID           string       `db:"id" json:"id"`
	Email        string       `db:"email" json:"email"`
	Name         string       `db:"name" json:"name"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Role         Role         `db:"role" json:"role"`
	Bio          *string      `db:"bio" json:"bio,omitempty"`
	Location     *string      `db:"location" json:"location,omitempty"`
	Skills       []string     `db:"skills" json:"skills"`
	Interests    []string     `db:"interests" json:"interests"`
	Expertise    *string      `db:"expertise" json:"expertise,omitempty"`
	Image        *string      `db:"image" json:"image,omitempty"`
	SocialLinks  *SocialLinks `db:"social_links" json:"socialLinks,omitempty"`
	ImpactPoints int          `db:"impact_points" json:"impactPoints"`
	IsVerified   bool         `db:"is_verified" json:"isVerified"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// ProfileUpdate carries only the fields a caller asked to change.
type ProfileUpdate struct {
	Name        *string
	Bio         *string
	Location    *string
	Skills      []string
	Interests   []string
	Expertise   *string
	Image       *string
	SocialLinks *SocialLinks
}

func (u *ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Bio == nil && u.Location == nil && u.Skills == nil &&
		u.Interests == nil && u.Expertise == nil && u.Image == nil && u.SocialLinks == nil
}
