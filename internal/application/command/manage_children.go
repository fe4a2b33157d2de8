package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/shared"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHILD PROFILE COMMANDS
// Create and soft-delete child profiles. Every operation verifies the
// profile belongs to the requesting parent.
// ══════════════════════════════════════════════════════════════════════════════

// MaxChildrenPerParent caps profiles per parent account.
const MaxChildrenPerParent = 10

// ErrTooManyChildren - the parent reached the profile limit.
var ErrTooManyChildren = fmt.Errorf("parent has reached the limit of %d child profiles", MaxChildrenPerParent)

// CreateChildCommand contains the data to create a child profile.
type CreateChildCommand struct {
	ParentID string
	Name     string
	Age      int
	Avatar   string
}

// Validate validates the command.
func (c CreateChildCommand) Validate() error {
	if c.ParentID == "" {
		return errors.New("create_child: parent_id is required")
	}
	return nil
}

// CreateChildResult contains the created profile.
type CreateChildResult struct {
	Child *child.Child
}

// CreateChildHandler handles the CreateChildCommand.
type CreateChildHandler struct {
	children child.Repository
	ids      IDGenerator
	log      *logger.Logger
}

// NewCreateChildHandler creates a new CreateChildHandler.
func NewCreateChildHandler(children child.Repository, ids IDGenerator, log *logger.Logger) *CreateChildHandler {
	return &CreateChildHandler{children: children, ids: ids, log: log}
}

// Handle executes the create child command.
func (h *CreateChildHandler) Handle(ctx context.Context, cmd CreateChildCommand) (*CreateChildResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	count, err := h.children.CountByParent(ctx, cmd.ParentID)
	if err != nil {
		return nil, fmt.Errorf("create_child: failed to count profiles: %w", err)
	}
	if count >= MaxChildrenPerParent {
		return nil, ErrTooManyChildren
	}

	c, err := child.NewChild(child.NewChildParams{
		ID:       h.ids.NewID(),
		ParentID: cmd.ParentID,
		Name:     cmd.Name,
		Age:      cmd.Age,
		Avatar:   child.AvatarToken(cmd.Avatar),
	})
	if err != nil {
		return nil, fmt.Errorf("create_child: %w", err)
	}

	if err := h.children.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create_child: failed to save profile: %w", err)
	}

	h.log.Info("child profile created",
		logger.ChildID(c.ID),
		logger.ParentID(cmd.ParentID))

	return &CreateChildResult{Child: c}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE CHILD
// ══════════════════════════════════════════════════════════════════════════════

// DeleteChildCommand soft-deletes a child profile.
type DeleteChildCommand struct {
	ParentID string
	ChildID  string
}

// Validate validates the command.
func (c DeleteChildCommand) Validate() error {
	if c.ParentID == "" {
		return errors.New("delete_child: parent_id is required")
	}
	if c.ChildID == "" {
		return errors.New("delete_child: child_id is required")
	}
	return nil
}

// DeleteChildHandler handles the DeleteChildCommand.
type DeleteChildHandler struct {
	children    child.Repository
	invalidator SummaryInvalidator
	log         *logger.Logger
}

// NewDeleteChildHandler creates a new DeleteChildHandler.
func NewDeleteChildHandler(children child.Repository, invalidator SummaryInvalidator, log *logger.Logger) *DeleteChildHandler {
	return &DeleteChildHandler{children: children, invalidator: invalidator, log: log}
}

// Handle executes the delete child command. Progress data is kept,
// the profile just stops being visible and writable.
func (h *DeleteChildHandler) Handle(ctx context.Context, cmd DeleteChildCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	c, err := h.children.GetByID(ctx, cmd.ChildID)
	if err != nil {
		return fmt.Errorf("delete_child: %w", err)
	}
	if c.ParentID != cmd.ParentID {
		return fmt.Errorf("delete_child: %w", shared.ErrForbidden)
	}

	if err := c.SoftDelete(); err != nil {
		return fmt.Errorf("delete_child: %w", err)
	}

	if err := h.children.Update(ctx, c); err != nil {
		return fmt.Errorf("delete_child: failed to save profile: %w", err)
	}

	if h.invalidator != nil {
		if err := h.invalidator.InvalidateSummary(ctx, cmd.ChildID); err != nil {
			h.log.Warn("summary cache invalidation failed",
				logger.ChildID(cmd.ChildID), logger.Err(err))
		}
	}

	h.log.Info("child profile deleted",
		logger.ChildID(cmd.ChildID),
		logger.ParentID(cmd.ParentID))

	return nil
}
