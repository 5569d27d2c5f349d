package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/http/dto"
	"github.com/traceops/backend/internal/middleware"
	"github.com/traceops/backend/internal/services"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses. Anything unknown is
// logged and hidden behind a 500.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: verr.Msg})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found"})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "already exists"})
	}

	reqID, _ := c.Locals(middleware.CtxRequestID).(string)
	log.Error("request failed",
		zap.String("request_id", reqID),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error", RequestID: reqID})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}

// parseBody decodes and validates a JSON body into req. When ok is false the
// 400 has already been written and err is the result of writing it.
func parseBody(c *fiber.Ctx, req any) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, badRequest(c, "invalid request body")
	}
	if err := dto.Validate(req); err != nil {
		return false, badRequest(c, err.Error())
	}
	return true, nil
}

func mustCaller(c *fiber.Ctx) middleware.Caller {
	caller, _ := middleware.GetCaller(c)
	return caller
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// pageParams reads limit/offset. An absent limit is 0 so the service default
// applies; a present one below 1 becomes 1.
func pageParams(c *fiber.Ctx) (int, int) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = max(n, 1)
		}
	}
	offset := c.QueryInt("offset", 0)
	return limit, offset
}

// timeQuery parses an optional RFC 3339 query parameter.
func timeQuery(c *fiber.Ctx, key string) (*time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	t := dto.ParseTimestamp(v)
	if t.IsZero() {
		return nil, false
	}
	return &t, true
}

func list[T any](p services.Page[T]) dto.SuccessResponse {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return dto.SuccessResponse{OK: true, Data: dto.ListResponse[T]{
		Paging: dto.Paging{Limit: p.Limit, Offset: p.Offset, Total: p.Total, HasMore: p.HasMore()},
		Items:  items,
	}}
}
