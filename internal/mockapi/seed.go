package mockapi

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/placeboard/placeboard/internal/models"
)

//go:embed fixtures/seed.yaml
var seedYAML []byte

// Fixture is the development data set loaded into an empty database
type Fixture struct {
	Companies     []CompanyFixture      `yaml:"companies"`
	Users         []UserFixture         `yaml:"users"`
	Notifications []NotificationFixture `yaml:"notifications"`
	Tickets       []TicketFixture       `yaml:"tickets"`
}

type CompanyFixture struct {
	Name         string       `yaml:"name"`
	Industry     string       `yaml:"industry"`
	Website      string       `yaml:"website"`
	Location     string       `yaml:"location"`
	ContactEmail string       `yaml:"contact_email"`
	Description  string       `yaml:"description"`
	Jobs         []JobFixture `yaml:"jobs"`
}

// JobFixture places the deadline relative to seed time; negative values
// seed an already-expired posting.
type JobFixture struct {
	Title          string               `yaml:"title"`
	Description    string               `yaml:"description"`
	Location       string               `yaml:"location"`
	EmploymentType string               `yaml:"employment_type"`
	SalaryMin      int                  `yaml:"salary_min"`
	SalaryMax      int                  `yaml:"salary_max"`
	Openings       int                  `yaml:"openings"`
	DeadlineDays   *int                 `yaml:"deadline_days"`
	Applications   []ApplicationFixture `yaml:"applications"`
}

type ApplicationFixture struct {
	StudentName  string  `yaml:"student_name"`
	StudentEmail string  `yaml:"student_email"`
	Department   string  `yaml:"department"`
	CGPA         float64 `yaml:"cgpa"`
	ResumeURL    string  `yaml:"resume_url"`
	Status       string  `yaml:"status"`
}

type UserFixture struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Company  string `yaml:"company"`
}

type NotificationFixture struct {
	User  string `yaml:"user"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Kind  string `yaml:"kind"`
	Read  bool   `yaml:"read"`
}

type TicketFixture struct {
	Subject     string                 `yaml:"subject"`
	Description string                 `yaml:"description"`
	Priority    string                 `yaml:"priority"`
	Status      string                 `yaml:"status"`
	CreatedBy   string                 `yaml:"created_by"`
	Messages    []TicketMessageFixture `yaml:"messages"`
}

type TicketMessageFixture struct {
	Author string `yaml:"author"`
	Body   string `yaml:"body"`
}

// DefaultFixture parses the embedded development data set
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(seedYAML)
}

// ParseFixture parses a YAML fixture
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &fx, nil
}

// Seed loads the embedded fixture when the database has no users yet
func (s *Server) Seed() error {
	fx, err := DefaultFixture()
	if err != nil {
		return err
	}
	return s.SeedFixture(fx)
}

// SeedFixture loads fx in one transaction. It is a no-op when any user exists.
func (s *Server) SeedFixture(fx *Fixture) error {
	var users int64
	if err := s.db.Model(&models.User{}).Count(&users).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if users > 0 {
		s.logger.Debug().Int64("users", users).Msg("Database already seeded")
		return nil
	}

	now := s.now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		companyIDs := map[string]string{}
		for _, cf := range fx.Companies {
			if err := seedCompany(tx, cf, now, companyIDs); err != nil {
				return err
			}
		}

		userIDs := map[string]string{}
		for _, uf := range fx.Users {
			user := models.User{
				Email: strings.ToLower(uf.Email),
				Name:  uf.Name,
				Role:  uf.Role,
			}
			if uf.Company != "" {
				id, ok := companyIDs[uf.Company]
				if !ok {
					return fmt.Errorf("user %s: unknown company %q", uf.Email, uf.Company)
				}
				user.CompanyID = &id
			}
			hash, err := HashPassword(uf.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user %s: %w", uf.Email, err)
			}
			userIDs[user.Email] = user.ID
		}

		lookup := func(email string) (string, error) {
			id, ok := userIDs[strings.ToLower(email)]
			if !ok {
				return "", fmt.Errorf("unknown user %q", email)
			}
			return id, nil
		}

		for _, nf := range fx.Notifications {
			userID, err := lookup(nf.User)
			if err != nil {
				return err
			}
			notification := models.Notification{UserID: userID, Title: nf.Title, Body: nf.Body, Kind: nf.Kind}
			if nf.Read {
				notification.ReadAt = &now
			}
			if err := tx.Create(&notification).Error; err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}

		for _, tf := range fx.Tickets {
			if err := seedTicket(tx, tf, lookup); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	s.logger.Info().
		Int("companies", len(fx.Companies)).
		Int("users", len(fx.Users)).
		Msg("Seeded development data")
	return nil
}

func seedCompany(tx *gorm.DB, cf CompanyFixture, now time.Time, ids map[string]string) error {
	company := models.Company{
		Name:         cf.Name,
		Industry:     cf.Industry,
		Website:      cf.Website,
		Location:     cf.Location,
		ContactEmail: cf.ContactEmail,
		Description:  cf.Description,
	}
	if err := tx.Create(&company).Error; err != nil {
		return fmt.Errorf("failed to create company %s: %w", cf.Name, err)
	}
	ids[company.Name] = company.ID

	for _, jf := range cf.Jobs {
		job := models.Job{
			CompanyID:      company.ID,
			Title:          jf.Title,
			Description:    jf.Description,
			Location:       jf.Location,
			EmploymentType: jf.EmploymentType,
			SalaryMin:      jf.SalaryMin,
			SalaryMax:      jf.SalaryMax,
			Openings:       jf.Openings,
			Status:         models.JobOpen,
		}
		if job.EmploymentType == "" {
			job.EmploymentType = models.EmploymentFullTime
		}
		if job.Openings == 0 {
			job.Openings = 1
		}
		if jf.DeadlineDays != nil {
			deadline := now.AddDate(0, 0, *jf.DeadlineDays)
			job.Deadline = &deadline
		}
		if err := tx.Create(&job).Error; err != nil {
			return fmt.Errorf("failed to create job %s: %w", jf.Title, err)
		}

		for _, af := range jf.Applications {
			application := models.Application{
				JobID:        job.ID,
				StudentName:  af.StudentName,
				StudentEmail: strings.ToLower(af.StudentEmail),
				Department:   af.Department,
				CGPA:         af.CGPA,
				ResumeURL:    af.ResumeURL,
				Status:       af.Status,
			}
			if application.Status == "" {
				application.Status = models.ApplicationApplied
			}
			if err := tx.Create(&application).Error; err != nil {
				return fmt.Errorf("failed to create application for %s: %w", af.StudentEmail, err)
			}
		}
	}
	return nil
}

func seedTicket(tx *gorm.DB, tf TicketFixture, lookup func(string) (string, error)) error {
	createdBy, err := lookup(tf.CreatedBy)
	if err != nil {
		return err
	}

	ticket := models.Ticket{
		Subject:     tf.Subject,
		Description: tf.Description,
		Status:      tf.Status,
		Priority:    tf.Priority,
		CreatedByID: createdBy,
	}
	if ticket.Status == "" {
		ticket.Status = models.TicketOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = models.PriorityMedium
	}
	if err := tx.Create(&ticket).Error; err != nil {
		return fmt.Errorf("failed to create ticket %s: %w", tf.Subject, err)
	}

	for _, mf := range tf.Messages {
		authorID, err := lookup(mf.Author)
		if err != nil {
			return err
		}
		var author models.User
		if err := tx.Where("id = ?", authorID).First(&author).Error; err != nil {
			return err
		}
		message := models.TicketMessage{
			TicketID:   ticket.ID,
			AuthorID:   authorID,
			AuthorName: author.Name,
			Body:       mf.Body,
		}
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to create ticket message: %w", err)
		}
	}
	return nil
}
