package command

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/shared"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

func TestCreateChild(t *testing.T) {
	env := newTestEnv()
	h := NewCreateChildHandler(env.children, env.ids, logger.Default())

	result, err := h.Handle(context.Background(), CreateChildCommand{
		ParentID: "parent-1",
		Name:     "Yusuf",
		Age:      9,
		Avatar:   "AVATAR_3",
	})
	require.NoError(t, err)

	assert.Equal(t, "Yusuf", result.Child.Name)
	assert.Equal(t, child.Avatar3, result.Child.Avatar)
	assert.Equal(t, child.Level(1), result.Child.Level)

	stored, err := env.children.GetByID(context.Background(), result.Child.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive())
}

func TestCreateChild_InvalidAge(t *testing.T) {
	env := newTestEnv()
	h := NewCreateChildHandler(env.children, env.ids, logger.Default())

	_, err := h.Handle(context.Background(), CreateChildCommand{
		ParentID: "parent-1",
		Name:     "Yusuf",
		Age:      15,
	})
	assert.ErrorIs(t, err, child.ErrInvalidAge)
}

func TestCreateChild_ProfileLimit(t *testing.T) {
	env := newTestEnv()
	h := NewCreateChildHandler(env.children, env.ids, logger.Default())

	for i := 0; i < MaxChildrenPerParent; i++ {
		_, err := h.Handle(context.Background(), CreateChildCommand{
			ParentID: "parent-1",
			Name:     fmt.Sprintf("Child %d", i),
			Age:      8,
		})
		require.NoError(t, err)
	}

	_, err := h.Handle(context.Background(), CreateChildCommand{
		ParentID: "parent-1",
		Name:     "One Too Many",
		Age:      8,
	})
	assert.ErrorIs(t, err, ErrTooManyChildren)
}

func TestDeleteChild(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := NewDeleteChildHandler(env.children, env.invalidator, logger.Default())

	err := h.Handle(context.Background(), DeleteChildCommand{
		ParentID: "parent-1",
		ChildID:  "child-1",
	})
	require.NoError(t, err)

	stored, err := env.children.GetByID(context.Background(), "child-1")
	require.NoError(t, err)
	assert.False(t, stored.IsActive())
	assert.Equal(t, []string{"child-1"}, env.invalidator.calls)
}

func TestDeleteChild_WrongParent(t *testing.T) {
	env := newTestEnv()
	env.addChild("child-1", "parent-1")
	h := NewDeleteChildHandler(env.children, env.invalidator, logger.Default())

	err := h.Handle(context.Background(), DeleteChildCommand{
		ParentID: "parent-2",
		ChildID:  "child-1",
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
