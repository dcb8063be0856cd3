package models

import "time"

// User is the public profile row of an account. Its ID is the auth user id.
type User struct {
	ID        string    `gorm:"primaryKey;size:36"     json:"id"`
	Email     string    `gorm:"size:255;index"         json:"email"`
	FullName  string    `gorm:"size:255"               json:"full_name"`
	Phone     string    `gorm:"size:50"                json:"phone"`
	Address   string    `gorm:"type:text"              json:"address"`
	AvatarURL string    `gorm:"size:512"               json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// ProfileUpdate is a partial profile change. Nil fields are left alone.
type ProfileUpdate struct {
	FullName  *string `json:"full_name,omitempty"  validate:"omitempty,max=255"`
	Phone     *string `json:"phone,omitempty"      validate:"omitempty,max=50"`
	Address   *string `json:"address,omitempty"    validate:"omitempty,max=1000"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// Fields returns the set columns keyed by column name.
func (p ProfileUpdate) Fields() map[string]interface{} {
	out := map[string]interface{}{}
	if p.FullName != nil {
		out["full_name"] = *p.FullName
	}
	if p.Phone != nil {
		out["phone"] = *p.Phone
	}
	if p.Address != nil {
		out["address"] = *p.Address
	}
	if p.AvatarURL != nil {
		out["avatar_url"] = *p.AvatarURL
	}
	return out
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool { return len(p.Fields()) == 0 }

// Credential is a local login for the SQL backend. The hosted backend
// keeps these in its own auth schema.
type Credential struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time
}

func (Credential) TableName() string { return "auth_credentials" }
