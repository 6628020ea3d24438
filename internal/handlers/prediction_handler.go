package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"futurisys/attrition-api/internal/records"
	"futurisys/attrition-api/internal/repositories"
	"futurisys/attrition-api/internal/services"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type PredictionHandler struct {
	service services.PredictionService
}

func NewPredictionHandler(service services.PredictionService) *PredictionHandler {
	return &PredictionHandler{service: service}
}

// HandleCreate handles POST /predictions
func (h *PredictionHandler) HandleCreate(c *fiber.Ctx) error {
	raw, err := decodeObject(c.Body())
	if err != nil {
		return err
	}

	result, err := h.service.Predict(c.UserContext(), raw)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleList handles GET /predictions
func (h *PredictionHandler) HandleList(c *fiber.Ctx) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return err
	}

	inputs, err := h.service.List(c.UserContext(), repositories.ListParams{
		Skip:      skip,
		Limit:     limit,
		Matricule: c.Query(records.FieldMatricule),
	})
	if err != nil {
		return err
	}
	return c.JSON(inputs)
}

// HandleGet handles GET /predictions/:id
func (h *PredictionHandler) HandleGet(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	input, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(input)
}

// HandleDelete handles DELETE /predictions/:id
func (h *PredictionHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListOutputs handles GET /outputs
func (h *PredictionHandler) HandleListOutputs(c *fiber.Ctx) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return err
	}

	outputs, err := h.service.ListOutputs(c.UserContext(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(outputs)
}

// decodeObject keeps numbers as json.Number so integer fields are not
// silently rounded through float64.
func decodeObject(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "request body is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "invalid JSON body: "+err.Error())
	}
	if dec.More() {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "invalid JSON body: trailing data")
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "request body must be a JSON object")
	}
	return obj, nil
}

func pagination(c *fiber.Ctx) (skip, limit int, err error) {
	skip, err = queryInt(c, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		return 0, 0, invalidParam("skip", records.KindOutOfBounds, "must be greater than or equal to 0")
	}

	limit, err = queryInt(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > maxLimit {
		return 0, 0, invalidParam("limit", records.KindOutOfBounds, "must be between 1 and "+strconv.Itoa(maxLimit))
	}
	return skip, limit, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	value := c.Query(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, invalidParam(key, records.KindTypeMismatch, "must be an integer")
	}
	return n, nil
}

func pathID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, invalidParam("id", records.KindTypeMismatch, "must be a positive integer")
	}
	return uint(id), nil
}
