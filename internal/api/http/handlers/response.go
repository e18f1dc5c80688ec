package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-desk/internal/api/dto"
	"github.com/spec-kit/asset-desk/internal/auth"
	"github.com/spec-kit/asset-desk/internal/domain"
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"ok": true, "data": data})
}

func respondList(c *fiber.Ctx, data any, count, total int) error {
	return c.JSON(fiber.Map{"ok": true, "data": data, "count": count, "total": total})
}

func currentActor(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}

// parseBody rejects empty or malformed JSON bodies with a ValidationError.
func parseBody(c *fiber.Ctx, out any) error {
	if len(strings.TrimSpace(string(c.Body()))) == 0 {
		return apperrors.NewValidationError("request body is required", nil)
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}

func queryString(c *fiber.Ctx, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(key+" must be an integer", map[string]any{key: raw})
	}
	return value, nil
}

func queryBool(c *fiber.Ctx, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	value, err := dto.ParseDate(c.Query(key))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"param": key})
	}
	return value, nil
}

// pageParams reads limit and skip.
func pageParams(c *fiber.Ctx) (limit, skip int, err error) {
	if limit, err = queryInt(c, "limit"); err != nil {
		return 0, 0, err
	}
	if skip, err = queryInt(c, "skip"); err != nil {
		return 0, 0, err
	}
	return limit, skip, nil
}

// dateRange reads a <prefix>Desde/<prefix>Hasta pair. An upper bound given as
// a calendar day covers that whole day.
func dateRange(c *fiber.Ctx, from, to string) (*time.Time, *time.Time, error) {
	start, err := queryDate(c, from)
	if err != nil {
		return nil, nil, err
	}
	end, err := queryDate(c, to)
	if err != nil {
		return nil, nil, err
	}
	if end != nil && len(strings.TrimSpace(c.Query(to))) == len("2006-01-02") {
		endOfDay := end.Add(24*time.Hour - time.Nanosecond)
		end = &endOfDay
	}
	return start, end, nil
}
