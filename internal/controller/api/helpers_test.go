package api

import (
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/server/httpserver"
	"properly.homes/backend/internal/service"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpserver.ErrorHandler})
	app.Use(middlewares.InjectI18n())
	return app
}

func decodeCode(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Code string `json:"code"`
	}
	if resp.StatusCode != fiber.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body.Code
}

func TestParamID(t *testing.T) {
	app := newTestApp()
	app.Get("/inquiries/:id", func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}
		return ctx.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/inquiries/42", fiber.StatusOK},
		{"/inquiries/0", fiber.StatusBadRequest},
		{"/inquiries/-3", fiber.StatusBadRequest},
		{"/inquiries/abc", fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, code := decodeCode(t, app, tt.path)
			assert.Equal(t, tt.status, status)
			if tt.status != fiber.StatusOK {
				assert.Equal(t, prerr.CodeInvalidRequest, code)
			}
		})
	}
}

func TestRefParam(t *testing.T) {
	app := newTestApp()
	app.Get("/properties/:ref", func(ctx *fiber.Ctx) error {
		ref, err := refParam(ctx)
		if err != nil {
			return err
		}
		return ctx.SendString(ref)
	})

	status, _ := decodeCode(t, app, "/properties/01HX3Q8Z9V7K2M4N6P8R0T2W4Y")
	assert.Equal(t, fiber.StatusOK, status)

	status, code := decodeCode(t, app, "/properties/not-a-ref")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, prerr.CodeInvalidRequest, code)

	status, _ = decodeCode(t, app, "/properties/0123456789012345678901234567890123456789")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestStepPayload(t *testing.T) {
	tests := []struct {
		step int
		want any
	}{
		{service.StepPersonal, &types.AgentPersonalStep{}},
		{service.StepAgency, &types.AgentAgencyStep{}},
		{service.StepAccount, &types.AgentAccountStep{}},
		{service.StepPlan, &types.AgentPlanStep{}},
	}
	for _, tt := range tests {
		got, err := stepPayload(tt.step)
		require.NoError(t, err)
		assert.IsType(t, tt.want, got)
	}

	_, err := stepPayload(5)
	assert.ErrorIs(t, err, prerr.ErrInvalidReq)
}
