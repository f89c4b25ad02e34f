package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/enescc00/b2bsitesibitmis-sub000/pricing"
	"github.com/enescc00/b2bsitesibitmis-sub000/utils"
	"github.com/enescc00/b2bsitesibitmis-sub000/workflow"
	"github.com/gin-gonic/gin"
)

// Generic CRUD adapters: bind JSON, call the model function, map the error.

func createHandler[In any, Out any](create func(ctx context.Context, input *In) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := create(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func updateHandler[In any, Out any](update func(ctx context.Context, id int, input *In) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := update(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getHandler[Out any](get func(ctx context.Context, id int) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listHandler[Out any](list func(ctx context.Context) ([]*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := list(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func parseDateOrNow(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", value)
}

// respondError maps the error taxonomy onto HTTP statuses. Shortages carry
// their per-component detail so the caller can draft or partially fulfill.
func respondError(c *gin.Context, err error) {
	var shortage *workflow.StockShortageError
	if errors.As(err, &shortage) {
		c.JSON(http.StatusConflict, gin.H{"error": shortage.Error(), "shortages": shortage.Shortages})
		return
	}

	switch {
	case errors.Is(err, utils.ErrorRecordNotFound), errors.Is(err, pricing.ErrComponentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, pricing.ErrInvalidQuantity), errors.Is(err, pricing.ErrInvalidDiscount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrCreditLimitExceeded), errors.Is(err, models.ErrInsufficientStock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, pricing.ErrUnknownCurrency), errors.Is(err, workflow.ErrLedgerReplayInconsistency):
		// configuration or data-integrity faults, not caller mistakes; the
		// correlation id links the response to the server-side log entry
		payload := gin.H{"error": err.Error()}
		if cid, ok := utils.GetCorrelationIdFromContext(c.Request.Context()); ok {
			payload["correlation_id"] = cid
		}
		c.JSON(http.StatusInternalServerError, payload)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
