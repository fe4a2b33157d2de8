// Package saga contains multi-step business processes that orchestrate
// several domain operations in a coordinated manner.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/identity"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ONBOARDING SAGA
// Registers a parent account and the first child profile in one flow:
// Validate → Check Existence → Hash PIN → Create Parent → Create First Child
// ══════════════════════════════════════════════════════════════════════════════

// OnboardingInput contains all data required to onboard a parent.
type OnboardingInput struct {
	// ExternalID - identity from the auth gateway (required).
	ExternalID string

	// ParentName - display name of the parent (required).
	ParentName string

	// PIN - parental PIN guarding settings, 4-6 digits (required).
	PIN string

	// ConsentGiven - data processing consent for the children's data.
	ConsentGiven bool

	// FirstChild - optional first child profile to create right away.
	FirstChild *FirstChildInput
}

// FirstChildInput describes the first child profile.
type FirstChildInput struct {
	Name   string
	Age    int
	Avatar string
}

// Validate checks if the input is valid for onboarding.
func (i OnboardingInput) Validate() error {
	if i.ExternalID == "" {
		return errors.New("onboarding: external id is required")
	}
	if err := identity.ValidateParentName(i.ParentName); err != nil {
		return fmt.Errorf("onboarding: %w", err)
	}
	if err := identity.ValidatePIN(i.PIN); err != nil {
		return fmt.Errorf("onboarding: %w", err)
	}
	if !i.ConsentGiven {
		return fmt.Errorf("onboarding: %w", identity.ErrConsentRequired)
	}
	return nil
}

// OnboardingResult contains the result of a successful onboarding.
type OnboardingResult struct {
	// Parent - the newly created parent account.
	Parent *identity.Parent

	// FirstChild - the first child profile, if one was requested.
	FirstChild *child.Child

	// OnboardedAt - timestamp of successful onboarding.
	OnboardedAt time.Time
}

// OnboardingStep represents a step in the onboarding process.
type OnboardingStep string

const (
	StepValidateInput  OnboardingStep = "validate_input"
	StepCheckExistence OnboardingStep = "check_existence"
	StepHashPIN        OnboardingStep = "hash_pin"
	StepCreateParent   OnboardingStep = "create_parent"
	StepCreateChild    OnboardingStep = "create_child"
	StepComplete       OnboardingStep = "complete"
)

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	NewID() string
}

// ══════════════════════════════════════════════════════════════════════════════
// SAGA IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// OnboardingSaga orchestrates parent registration.
// Compensation: if the first child profile fails to save, the parent
// account is kept - the client retries profile creation separately.
type OnboardingSaga struct {
	parents  identity.Repository
	children child.Repository
	ids      IDGenerator
	log      *logger.Logger

	bcryptCost int
}

// NewOnboardingSaga creates a new OnboardingSaga.
func NewOnboardingSaga(
	parents identity.Repository,
	children child.Repository,
	ids IDGenerator,
	log *logger.Logger,
) *OnboardingSaga {
	return &OnboardingSaga{
		parents:    parents,
		children:   children,
		ids:        ids,
		log:        log,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Execute runs the onboarding flow.
func (s *OnboardingSaga) Execute(ctx context.Context, input OnboardingInput) (*OnboardingResult, error) {
	step := StepValidateInput
	if err := input.Validate(); err != nil {
		return nil, s.fail(step, err)
	}

	step = StepCheckExistence
	if _, err := s.parents.GetByExternalID(ctx, input.ExternalID); err == nil {
		return nil, s.fail(step, identity.ErrParentExists)
	} else if !errors.Is(err, identity.ErrParentNotFound) {
		return nil, s.fail(step, err)
	}

	step = StepHashPIN
	pinHash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), s.bcryptCost)
	if err != nil {
		return nil, s.fail(step, err)
	}

	step = StepCreateParent
	now := time.Now().UTC()
	parent := &identity.Parent{
		ID:             s.ids.NewID(),
		ExternalID:     input.ExternalID,
		Name:           input.ParentName,
		PINHash:        string(pinHash),
		ConsentGivenAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.parents.Create(ctx, parent); err != nil {
		return nil, s.fail(step, err)
	}

	result := &OnboardingResult{
		Parent:      parent,
		OnboardedAt: now,
	}

	if input.FirstChild != nil {
		step = StepCreateChild
		c, err := child.NewChild(child.NewChildParams{
			ID:       s.ids.NewID(),
			ParentID: parent.ID,
			Name:     input.FirstChild.Name,
			Age:      input.FirstChild.Age,
			Avatar:   child.AvatarToken(input.FirstChild.Avatar),
		})
		if err != nil {
			return nil, s.fail(step, err)
		}
		if err := s.children.Create(ctx, c); err != nil {
			// The parent account survives: profile creation can be retried.
			s.log.Error("first child profile creation failed",
				logger.ParentID(parent.ID), logger.Err(err))
			return result, nil
		}
		result.FirstChild = c
	}

	s.log.Info("parent onboarded",
		logger.ParentID(parent.ID),
		logger.Bool("with_child", result.FirstChild != nil))

	return result, nil
}

// VerifyPIN checks a PIN against the parent's stored hash.
func (s *OnboardingSaga) VerifyPIN(ctx context.Context, parentID, pin string) error {
	parent, err := s.parents.GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(parent.PINHash), []byte(pin)); err != nil {
		return identity.ErrUnauthenticated
	}
	return nil
}

func (s *OnboardingSaga) fail(step OnboardingStep, err error) error {
	s.log.Warn("onboarding step failed",
		logger.String("step", string(step)), logger.Err(err))
	return fmt.Errorf("onboarding: step %s: %w", step, err)
}
