package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/workout"
	"github.com/geocoder89/fitlog/internal/http/middlewares"
	"github.com/geocoder89/fitlog/internal/validate"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 3 * time.Second

type WorkoutsHandler struct {
	store workout.Store
}

func NewWorkoutsHandler(store workout.Store) *WorkoutsHandler {
	return &WorkoutsHandler{store: store}
}

// scope returns the caller id and a store context bounded by storeTimeout.
func scope(ctx *gin.Context) (string, context.Context, context.CancelFunc) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	return userID, cctx, cancel
}

func (h *WorkoutsHandler) Create(ctx *gin.Context) {
	var req workout.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, cctx, cancel := scope(ctx)
	defer cancel()

	w, err := h.store.Create(cctx, req.Data(), userID)
	if err != nil {
		if errors.Is(err, workout.ErrInvalidOwner) {
			RespondUnauthorized(ctx, middlewares.CodeInvalidToken, "Token does not identify a valid user")
			return
		}
		RespondInternal(ctx, "Internal server error while creating workout", err)
		return
	}

	slog.InfoContext(ctx.Request.Context(), "workout created", "workout_id", w.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Workout created successfully",
		"workout": w,
	})
}

func (h *WorkoutsHandler) List(ctx *gin.Context) {
	var q workout.ListQuery

	if !BindQuery(ctx, &q) {
		return
	}

	userID, cctx, cancel := scope(ctx)
	defer cancel()

	items, err := h.store.List(cctx, userID, q.Filter())
	if err != nil {
		RespondInternal(ctx, "Internal server error while fetching workouts", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"message":  "Workouts retrieved successfully",
		"count":    len(items),
		"workouts": items,
	})
}

func (h *WorkoutsHandler) Stats(ctx *gin.Context) {
	userID, cctx, cancel := scope(ctx)
	defer cancel()

	stats, err := h.store.Stats(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Internal server error while fetching workout statistics", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Workout statistics retrieved successfully",
		"stats":   stats,
	})
}

func (h *WorkoutsHandler) Get(ctx *gin.Context) {
	userID, cctx, cancel := scope(ctx)
	defer cancel()

	w, err := h.store.GetByID(cctx, ctx.Param("id"), userID)
	if err != nil {
		if errors.Is(err, workout.ErrNotFound) {
			RespondNotFound(ctx, "Workout not found or you do not have permission to access it")
			return
		}
		RespondInternal(ctx, "Internal server error while fetching workout", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"message": "Workout retrieved successfully",
		"workout": w,
	})
}

func (h *WorkoutsHandler) Replace(ctx *gin.Context) {
	var req workout.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, cctx, cancel := scope(ctx)
	defer cancel()

	w, err := h.store.Replace(cctx, ctx.Param("id"), userID, req.Data())
	h.respondUpdated(ctx, w, err)
}

func (h *WorkoutsHandler) Patch(ctx *gin.Context) {
	var req workout.PatchRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.IsEmpty() {
		RespondValidation(ctx, validate.Errors{{
			Field:   "body",
			Rule:    "required",
			Message: "At least one field must be provided for partial update (PATCH)",
		}})
		return
	}

	userID, cctx, cancel := scope(ctx)
	defer cancel()

	w, err := h.store.Merge(cctx, ctx.Param("id"), userID, req.Patch())
	h.respondUpdated(ctx, w, err)
}

func (h *WorkoutsHandler) respondUpdated(ctx *gin.Context, w workout.Workout, err error) {
	if err != nil {
		if errors.Is(err, workout.ErrNotFound) {
			RespondNotFound(ctx, "Workout not found or you do not have permission to update it")
			return
		}
		RespondInternal(ctx, "Internal server error while updating workout", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Workout updated successfully",
		"workout": w,
	})
}

func (h *WorkoutsHandler) Delete(ctx *gin.Context) {
	userID, cctx, cancel := scope(ctx)
	defer cancel()

	deleted, err := h.store.Delete(cctx, ctx.Param("id"), userID)
	if err != nil {
		RespondInternal(ctx, "Internal server error while deleting workout", err)
		return
	}
	if !deleted {
		RespondNotFound(ctx, "Workout not found or you do not have permission to delete it")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Workout deleted successfully"})
}
