package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"winkclass/internal/model"
	"winkclass/internal/pkg/jwtutil"
	"winkclass/internal/repository"
)

const slugMaxLen = 32

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already registered")
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrInvalidPasscode    = errors.New("invalid passcode")
)

// IndexCreator provisions the instructor's private document index. Register
// persists nothing unless this call succeeds.
type IndexCreator interface {
	CreateVectorStore(ctx context.Context, name string) (string, error)
}

// AuditEventPublisher enqueues an audit event for durable persistence.
// Publishing is best-effort from the caller's point of view.
type AuditEventPublisher interface {
	Publish(ctx context.Context, event model.AuditEvent) error
}

type InstructorService struct {
	instructorRepo *repository.InstructorRepository
	auditRepo      *repository.AuditEventRepository
	indexes        IndexCreator
	audit          AuditEventPublisher
	jwtSecret      string
	jwtExpiration  time.Duration
}

type RegisterInput struct {
	Email    string
	Name     string
	Passcode string
}

type LoginInput struct {
	Email    string
	Passcode string
}

type AuthResult struct {
	Token      string
	Instructor *model.Instructor
}

type UpdateProfileInput struct {
	Name           *string
	LeftColumnHTML *string
}

func NewInstructorService(
	instructorRepo *repository.InstructorRepository,
	auditRepo *repository.AuditEventRepository,
	indexes IndexCreator,
	audit AuditEventPublisher,
	jwtSecret string,
	jwtExpiration time.Duration,
) *InstructorService {
	return &InstructorService{
		instructorRepo: instructorRepo,
		auditRepo:      auditRepo,
		indexes:        indexes,
		audit:          audit,
		jwtSecret:      jwtSecret,
		jwtExpiration:  jwtExpiration,
	}
}

// Register creates the instructor together with its private vector store.
// The store is provisioned first: if that call fails nothing is persisted.
func (s *InstructorService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := cleanEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}

	existing, err := s.instructorRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	slug, err := s.uniqueSlug(email)
	if err != nil {
		return nil, err
	}

	storeID, err := s.indexes.CreateVectorStore(ctx, "wink-"+slug)
	if err != nil {
		return nil, fmt.Errorf("create private vector store failed: %w", err)
	}

	instructor := &model.Instructor{
		Email:         email,
		Name:          strings.TrimSpace(input.Name),
		Slug:          slug,
		VectorStoreID: storeID,
	}
	if passcode := strings.TrimSpace(input.Passcode); passcode != "" {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, fmt.Errorf("hash passcode failed: %w", hashErr)
		}
		instructor.PasscodeHash = string(hash)
	}

	if err := s.instructorRepo.Create(instructor); err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Publish(ctx, model.AuditEvent{
			Action:       model.AuditInstructorRegistered,
			InstructorID: instructor.ID,
		})
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, instructor.ID, instructor.Slug)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Instructor: instructor}, nil
}

// Login is an email-keyed lookup. A passcode is only checked when the
// instructor registered one.
func (s *InstructorService) Login(input LoginInput) (*AuthResult, error) {
	email := cleanEmail(input.Email)
	if email == "" {
		return nil, ErrInvalidInput
	}

	instructor, err := s.instructorRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if instructor == nil {
		return nil, ErrInstructorNotFound
	}

	if instructor.PasscodeHash != "" {
		if err := bcrypt.CompareHashAndPassword(
			[]byte(instructor.PasscodeHash),
			[]byte(strings.TrimSpace(input.Passcode)),
		); err != nil {
			return nil, ErrInvalidPasscode
		}
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, instructor.ID, instructor.Slug)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Instructor: instructor}, nil
}

func (s *InstructorService) GetByID(id uint) (*model.Instructor, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.instructorRepo.GetByID(id)
}

func (s *InstructorService) GetBySlug(slug string) (*model.Instructor, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrInvalidInput
	}
	return s.instructorRepo.GetBySlug(slug)
}

func (s *InstructorService) ListAll() ([]model.Instructor, error) {
	return s.instructorRepo.ListAll()
}

// AuditTrail returns the instructor's recent index mutations, newest first.
func (s *InstructorService) AuditTrail(id uint, limit int) ([]model.AuditEvent, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.auditRepo.ListByInstructorID(id, limit)
}

func (s *InstructorService) UpdateProfile(id uint, input UpdateProfileInput) (*model.Instructor, error) {
	instructor, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if instructor == nil {
		return nil, ErrInstructorNotFound
	}

	if input.Name != nil {
		instructor.Name = strings.TrimSpace(*input.Name)
	}
	if input.LeftColumnHTML != nil {
		instructor.LeftColumnHTML = *input.LeftColumnHTML
	}
	if err := s.instructorRepo.Update(instructor); err != nil {
		return nil, err
	}
	return instructor, nil
}

// LeftColumn returns the instructor's presentation payload, generating a
// plain default when none was customized.
func LeftColumn(instructor *model.Instructor) string {
	if html := strings.TrimSpace(instructor.LeftColumnHTML); html != "" {
		return html
	}
	display := strings.TrimSpace(instructor.Name)
	if display == "" {
		display = instructor.Slug
	}
	return fmt.Sprintf("<h2>%s</h2><p>Ask me anything about this course.</p>", display)
}

func cleanEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// slugifyBase lower-cases the text and strips everything that is not a
// letter or digit, capped at slugMaxLen runes.
func slugifyBase(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() >= slugMaxLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "instructor"
	}
	return b.String()
}

func (s *InstructorService) uniqueSlug(email string) (string, error) {
	base := email
	if at := strings.Index(email, "@"); at >= 0 {
		base = email[:at]
	}
	slug := slugifyBase(base)

	existing, err := s.instructorRepo.GetBySlug(slug)
	if err != nil {
		return "", err
	}
	if existing != nil {
		slug = slug + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	}
	return slug, nil
}
