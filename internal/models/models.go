package models

import (
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Roles a dashboard user can hold
const (
	RoleAdmin            = "admin"
	RolePlacementOfficer = "placement_officer"
	RoleRecruiter        = "recruiter"
)

// User represents a dashboard account
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	Role         string    `json:"role" gorm:"not null;default:placement_officer"`
	CompanyID    *string   `json:"company_id,omitempty"` // recruiters belong to a company
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Company is an organisation that posts jobs
type Company struct {
	BaseModel
	Name         string    `json:"name" gorm:"unique;not null"`
	Industry     string    `json:"industry"`
	Website      string    `json:"website"`
	Location     string    `json:"location"`
	ContactEmail string    `json:"contact_email"`
	Description  string    `json:"description" gorm:"type:text"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Jobs []Job `json:"jobs,omitempty" gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

// Job statuses
const (
	JobOpen   = "open"
	JobClosed = "closed"
)

// Employment types
const (
	EmploymentFullTime   = "full_time"
	EmploymentInternship = "internship"
	EmploymentContract   = "contract"
)

// Job is a posting students apply to
type Job struct {
	BaseModel
	CompanyID      string     `json:"company_id" gorm:"not null;index"`
	Title          string     `json:"title" gorm:"not null"`
	Description    string     `json:"description" gorm:"type:text"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employment_type" gorm:"not null;default:full_time"`
	SalaryMin      int        `json:"salary_min"`
	SalaryMax      int        `json:"salary_max"`
	Openings       int        `json:"openings" gorm:"not null;default:1"`
	Deadline       *time.Time `json:"deadline"`
	Status         string     `json:"status" gorm:"not null;default:open;index"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

// Expired reports whether the deadline has passed at now
func (j *Job) Expired(now time.Time) bool {
	return j.Deadline != nil && j.Deadline.Before(now)
}

// Application statuses
const (
	ApplicationApplied     = "applied"
	ApplicationShortlisted = "shortlisted"
	ApplicationInterview   = "interview"
	ApplicationOffered     = "offered"
	ApplicationRejected    = "rejected"
	ApplicationWithdrawn   = "withdrawn"
)

// ApplicationStatuses lists every application status in pipeline order
var ApplicationStatuses = []string{
	ApplicationApplied,
	ApplicationShortlisted,
	ApplicationInterview,
	ApplicationOffered,
	ApplicationRejected,
	ApplicationWithdrawn,
}

// Application is a student's application to a job
type Application struct {
	BaseModel
	JobID        string    `json:"job_id" gorm:"not null;index"`
	StudentName  string    `json:"student_name" gorm:"not null"`
	StudentEmail string    `json:"student_email" gorm:"not null"`
	Department   string    `json:"department"`
	CGPA         float64   `json:"cgpa"`
	ResumeURL    string    `json:"resume_url"`
	Status       string    `json:"status" gorm:"not null;default:applied;index"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Job *Job `json:"job,omitempty" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// CanMoveTo reports whether the application may change to status.
// Rejected and withdrawn applications are final.
func (a *Application) CanMoveTo(status string) bool {
	if !slices.Contains(ApplicationStatuses, status) {
		return false
	}
	return a.Status != ApplicationRejected && a.Status != ApplicationWithdrawn
}

// Notification is a message shown in a user's notification list
type Notification struct {
	BaseModel
	UserID string     `json:"user_id" gorm:"not null;index"`
	Title  string     `json:"title" gorm:"not null"`
	Body   string     `json:"body" gorm:"type:text"`
	Kind   string     `json:"kind"` // application, job, ticket, system
	ReadAt *time.Time `json:"read_at"`
}

// Ticket statuses and priorities
const (
	TicketOpen     = "open"
	TicketPending  = "pending"
	TicketResolved = "resolved"
	TicketClosed   = "closed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Ticket is a support request raised from the dashboard
type Ticket struct {
	BaseModel
	Subject     string    `json:"subject" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Status      string    `json:"status" gorm:"not null;default:open;index"`
	Priority    string    `json:"priority" gorm:"not null;default:medium"`
	CreatedByID string    `json:"created_by_id" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Messages []TicketMessage `json:"messages,omitempty" gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

// TicketMessage is one reply in a ticket thread
type TicketMessage struct {
	BaseModel
	TicketID   string `json:"ticket_id" gorm:"not null;index"`
	AuthorID   string `json:"author_id" gorm:"not null"`
	AuthorName string `json:"author_name"`
	Body       string `json:"body" gorm:"type:text;not null"`
}

// Summary holds the counts shown on the dashboard overview
type Summary struct {
	Companies            int64            `json:"companies"`
	OpenJobs             int64            `json:"open_jobs"`
	TotalApplications    int64            `json:"total_applications"`
	ApplicationsByStatus map[string]int64 `json:"applications_by_status"`
	UnreadNotifications  int64            `json:"unread_notifications"`
	OpenTickets          int64            `json:"open_tickets"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Company{}, &Job{}, &Application{}, &Notification{}, &Ticket{}, &TicketMessage{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
