package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole restringe o papel do usuário aos três valores aceitos pela plataforma.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleProfessor UserRole = "professor"
	RoleAluno     UserRole = "aluno"
)

// ValidRole reporta se o valor recebido é um dos papéis enumerados.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleAluno:
		return true
	}
	return false
}

// User é o registro de identidade. PasswordHash nunca é serializado para fora;
// handlers expõem apenas projeções via UserResponse.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;"`
	Name          string    `gorm:"size:255;not null"`
	Email         string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	Role          UserRole  `gorm:"type:varchar(20);not null;default:'aluno'"`
	AvatarURL     string    `gorm:"size:512;default:''"`
	TOTPSecret    string    `gorm:"size:255" json:"-"`
	IsTOTPEnabled bool      `gorm:"default:false;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Courses       []Course `gorm:"foreignKey:ProfessorID"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;"`
	Name      string    `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Courses   []Course `gorm:"foreignKey:CategoryID"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

type Course struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;"`
	Title        string     `gorm:"size:255;not null"`
	Description  string     `gorm:"type:text"`
	Price        float64    `gorm:"not null"`
	CategoryID   *uuid.UUID `gorm:"type:uuid"`
	ProfessorID  *uuid.UUID `gorm:"type:uuid"`
	ThumbnailURL string     `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Category     *Category      `gorm:"foreignKey:CategoryID"`
	Professor    *User          `gorm:"foreignKey:ProfessorID"`
	Modules      []CourseModule `gorm:"foreignKey:CourseID"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// CourseModule agrupa aulas dentro de um curso. "Module" a secas colide com o
// conceito de módulo Go, então o nome carrega o prefixo.
type CourseModule struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;"`
	Name      string    `gorm:"size:255;not null"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Course    Course   `gorm:"foreignKey:CourseID"`
	Lessons   []Lesson `gorm:"foreignKey:ModuleID"`
}

func (m *CourseModule) TableName() string { return "course_modules" }

func (m *CourseModule) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

type Lesson struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text"`
	VideoURL    string    `gorm:"size:512;not null"`
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Module      CourseModule `gorm:"foreignKey:ModuleID"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

type Video struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text;not null"`
	FileURL     string    `gorm:"size:512;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (v *Video) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
