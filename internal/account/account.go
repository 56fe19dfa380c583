// Package account holds the demo signup and profile logic. Nothing is stored
// beyond the visitor's session.
package account

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jjenkins/globeguru/internal/model"
)

// ErrInvalid is returned when a form fails validation
var ErrInvalid = errors.New("invalid form")

// ValidationError carries one message per invalid field, keyed by the json field name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range fieldOrder {
		if msg, ok := e.Fields[field]; ok {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

var fieldOrder = []string{"name", "email", "password", "confirmPassword", "agreeToTerms"}

var messages = map[string]string{
	"name.required":           "name is required",
	"email.required":          "email is required",
	"email.email":             "email is not a valid address",
	"password.required":       "password is required",
	"password.min":            "password must be at least 8 characters",
	"confirmPassword.eqfield": "passwords do not match",
	"agreeToTerms.required":   "you must agree to the terms",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// ValidateSignup checks a signup form. The result is either nil or a *ValidationError.
func ValidateSignup(form model.SignupForm) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)

	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

// DefaultProfile is the demo account every session starts with
func DefaultProfile() model.Profile {
	return model.Profile{
		Name:           "John Traveler",
		Email:          "john@example.com",
		Country:        "United States",
		Language:       "English",
		Notifications:  true,
		TravelAlerts:   true,
		Newsletter:     false,
		OfflineCountry: "France",
	}
}

// Favorites are the bookmarked countries of the demo account
var Favorites = []model.FavoriteCountry{
	{Name: "France", Flag: "🇫🇷", LawCount: 134, LastVisited: "2024-01-15"},
	{Name: "Japan", Flag: "🇯🇵", LawCount: 145, LastVisited: "2023-12-20"},
	{Name: "Thailand", Flag: "🇹🇭", LawCount: 167, LastVisited: "2023-11-10"},
}

// RecentSearches are the last searches of the demo account
var RecentSearches = []string{
	"Alcohol laws in UAE",
	"Photography restrictions Qatar",
	"Customs declaration Japan",
	"Dress code Saudi Arabia",
}

// RecentActivity is the activity feed of the demo account
var RecentActivity = []model.Activity{
	{Action: "Viewed", Item: "UAE Alcohol Laws", When: "2 hours ago"},
	{Action: "Saved", Item: "Japan Customs Guide", When: "1 day ago"},
	{Action: "Downloaded", Item: "France Laws (Offline)", When: "3 days ago"},
	{Action: "Searched", Item: "Photography restrictions", When: "1 week ago"},
}

// Store keeps one visitor's profile in memory
type Store struct {
	mu      sync.RWMutex
	profile model.Profile
}

// NewStore creates a store holding the demo profile
func NewStore() *Store {
	return &Store{profile: DefaultProfile()}
}

// Profile returns the current profile
func (s *Store) Profile() model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Update replaces the profile. Name and email may not be blank.
func (s *Store) Update(p model.Profile) (model.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)

	fields := map[string]string{}
	if p.Name == "" {
		fields["name"] = messages["name.required"]
	}
	if err := validate.Var(p.Email, "required,email"); err != nil {
		fields["email"] = messages["email.email"]
	}
	if len(fields) > 0 {
		return s.Profile(), &ValidationError{Fields: fields}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return p, nil
}
