package models

import (
	"time"
)

type UserRole string

const (
	RoleLearner UserRole = "learner"
	RoleMentor  UserRole = "mentor"
	RoleAdmin   UserRole = "admin"
)

// User mirrors the identity held by Casdoor; it is never stored locally.
type User struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`

	AvatarURL     *string `json:"avatar_url,omitempty"`
	EmailVerified bool    `json:"email_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MemberRole string

const (
	MemberLearner MemberRole = "learner"
	MemberMentor  MemberRole = "mentor"
)

// CourseMember records a user's enrollment or mentorship in a course.
type CourseMember struct {
	CourseID  uint       `json:"course_id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"primaryKey;size:255"`
	Role      MemberRole `json:"role" gorm:"primaryKey;size:20"`
	CreatedAt time.Time  `json:"created_at"`
}

func (CourseMember) TableName() string {
	return "course_members"
}
