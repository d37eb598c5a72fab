package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/recoverykit/errors"
	"github.com/kbukum/recoverykit/fallback"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/recovery"
	"github.com/kbukum/recoverykit/sanitize"
	"github.com/kbukum/recoverykit/server/middleware"
)

const opCreateWorkout = "create workout log"

// WorkoutStore persists workout logs and can resolve a duplicate into the
// row that already exists. Get returns a nil result for an unknown id.
type WorkoutStore interface {
	Create(ctx context.Context, input map[string]any) (any, error)
	Get(ctx context.Context, id string) (any, error)
	fallback.ExistingFinder
	fallback.ExistingUpdater
}

// owned is implemented by results that belong to a user.
type owned interface {
	Owner() string
}

// WorkoutHandler serves the workout endpoints. A failed save is handed to
// the recovery manager before the client sees an error.
type WorkoutHandler struct {
	store   WorkoutStore
	manager *recovery.Manager
	log     *logger.Logger
}

// NewWorkoutHandler creates a handler.
func NewWorkoutHandler(store WorkoutStore, manager *recovery.Manager, log *logger.Logger) *WorkoutHandler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &WorkoutHandler{store: store, manager: manager, log: log.WithComponent("workouts")}
}

// Create handles POST /api/workouts. The authenticated user, when present,
// owns the workout regardless of the body.
func (h *WorkoutHandler) Create(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondWithError(c, errors.Wrap(errors.KindDataTypeMismatch, err, "request body must be a JSON object"))
		return
	}
	if uid := userID(c); uid != "" {
		body["userId"] = uid
	}

	ctx := c.Request.Context()
	input := map[string]any{
		sanitize.KeyWorkoutData:  body,
		fallback.KeyFindExisting: h.store,
		errors.DetailOperation:   opCreateWorkout,
	}

	result, err := h.store.Create(ctx, input)
	if err == nil {
		RespondCreated(c, result, nil)
		return
	}

	h.log.Info("Workout save failed, attempting recovery", logger.ErrorFields(opCreateWorkout, err))
	result, err = h.manager.RecoverFailure(ctx, err, h.store.Create, input)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondCreated(c, result, &Meta{Recovered: true})
}

// Get handles GET /api/workouts/:id.
func (h *WorkoutHandler) Get(c *gin.Context) {
	result, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if result == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if uid := userID(c); uid != "" {
		if o, ok := result.(owned); ok && o.Owner() != uid {
			RespondWithError(c, errors.New(errors.KindForbidden, "workout belongs to another user"))
			return
		}
	}
	RespondOK(c, result)
}

func userID(c *gin.Context) string {
	uid, _ := c.Get(middleware.ContextUserID)
	s, _ := uid.(string)
	return s
}
