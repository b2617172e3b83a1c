package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline/pkg/channels/gochannel"
	"github.com/prepline/prepline/pkg/eventbus"
	"github.com/prepline/prepline/pkg/log"
	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/persistence/file"
	"github.com/prepline/prepline/pkg/rules"
	"github.com/prepline/prepline/pkg/services"
	"github.com/prepline/prepline/pkg/validation"
	"github.com/prepline/prepline/pkg/web"
)

// passingReasoner approves every semantic check.
type passingReasoner struct{}

func (passingReasoner) Generate(context.Context, string, string) (string, error) {
	return `{"pass": true, "reasoning": "looks fine"}`, nil
}

func setupTestApp(t *testing.T) (*fiber.App, *file.Persistence) {
	t.Helper()

	logger := log.WithModule("test")
	p := file.NewPersistence(t.TempDir(), logger)

	cache := rules.NewCachedSource(rules.NewPersistenceSource(p))
	orchestrator := validation.NewOrchestrator(cache, passingReasoner{}, logger)

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(p),
		services.NewPromotion(p, orchestrator, bus, logger),
		services.NewRule(p, cache, bus, logger),
		validator.New(validator.WithRequiredStructEnabled()),
	)

	app := fiber.New()

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/validate", handlers.ValidateWorkflow)
	w.Post("/:id/promote", handlers.PromoteWorkflow)
	w.Post("/:id/demote", handlers.DemoteWorkflow)

	r := app.Group("/rules")
	r.Get("/", handlers.GetRules)
	r.Post("/", handlers.CreateRule)
	r.Get("/:id", handlers.GetRule)
	r.Patch("/:id", handlers.UpdateRule)
	r.Post("/:id/toggle", handlers.ToggleRule)
	r.Delete("/:id", handlers.DeleteRule)

	return app, p
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, raw
}

func TestAPIHandlers_CreateWorkflow(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name: "successful creation",
			requestBody: web.CreateWorkflowRequest{
				Name:   "Brunch Line",
				Author: "chef",
				Steps: []models.Step{
					{ID: "step-1", Tags: map[string]any{"action": "PREP", "target": "eggs"}},
				},
			},
			expectedStatus: http.StatusCreated,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var workflow models.Workflow
				require.NoError(t, json.Unmarshal(body, &workflow))
				assert.NotEmpty(t, workflow.ID)
				assert.Equal(t, "Brunch Line", workflow.Name)
				assert.Equal(t, models.WorkflowStatusDraft, workflow.Status)
				assert.Equal(t, 1, workflow.Version)
			},
		},
		{
			name:           "validation error - missing name",
			requestBody:    web.CreateWorkflowRequest{Author: "chef"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error - name too short",
			requestBody:    web.CreateWorkflowRequest{Name: "Br", Author: "chef"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error - missing author",
			requestBody:    web.CreateWorkflowRequest{Name: "Brunch Line"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)

			resp, body := doJSON(t, app, http.MethodPost, "/workflows/", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateResult != nil {
				tt.validateResult(t, body)
			}
		})
	}
}

func TestAPIHandlers_GetWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/workflows/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_UpdateWorkflow_PartialUpdate(t *testing.T) {
	app, _ := setupTestApp(t)

	_, created := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name:   "Brunch Line",
		Author: "chef",
	})

	var workflow models.Workflow
	require.NoError(t, json.Unmarshal(created, &workflow))

	newName := "Dinner Line"
	resp, body := doJSON(t, app, http.MethodPatch, "/workflows/"+workflow.ID, web.UpdateWorkflowRequest{
		Name: &newName,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Workflow
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Dinner Line", updated.Name)
	assert.Equal(t, "chef", updated.Author, "untouched fields survive")
	assert.Equal(t, models.WorkflowStatusDraft, updated.Status)
}

func TestAPIHandlers_DeleteWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	_, created := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name:   "Brunch Line",
		Author: "chef",
	})

	var workflow models.Workflow
	require.NoError(t, json.Unmarshal(created, &workflow))

	resp, _ := doJSON(t, app, http.MethodDelete, "/workflows/"+workflow.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/workflows/"+workflow.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_CreateRule(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    web.CreateRuleRequest
		expectedStatus int
	}{
		{
			name: "structured rule",
			requestBody: web.CreateRuleRequest{
				Name:      "equipment required",
				Type:      models.RuleTypeStructured,
				Enabled:   true,
				AppliesTo: []string{"COOK"},
				Condition: &models.RuleCondition{Field: "tags.equipment", Operator: models.OperatorNotEmpty},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "semantic rule",
			requestBody: web.CreateRuleRequest{
				Name:    "culinary sanity",
				Type:    models.RuleTypeSemantic,
				Enabled: true,
				Prompt:  "Does this step make culinary sense?",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "structured rule without condition",
			requestBody: web.CreateRuleRequest{
				Name:    "broken",
				Type:    models.RuleTypeStructured,
				Enabled: true,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "semantic rule with condition",
			requestBody: web.CreateRuleRequest{
				Name:      "broken",
				Type:      models.RuleTypeSemantic,
				Enabled:   true,
				Prompt:    "check",
				Condition: &models.RuleCondition{Field: "tags.action", Operator: models.OperatorNotEmpty},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)

			resp, _ := doJSON(t, app, http.MethodPost, "/rules/", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAPIHandlers_UpdateRule_TypeChangeRejected(t *testing.T) {
	app, _ := setupTestApp(t)

	_, created := doJSON(t, app, http.MethodPost, "/rules/", web.CreateRuleRequest{
		Name:      "equipment required",
		Type:      models.RuleTypeStructured,
		Enabled:   true,
		Condition: &models.RuleCondition{Field: "tags.equipment", Operator: models.OperatorNotEmpty},
	})

	var rule models.ValidationRule
	require.NoError(t, json.Unmarshal(created, &rule))

	// Swapping the variant payload would require a type change, which the
	// service rejects.
	prompt := "is equipment present?"
	resp, _ := doJSON(t, app, http.MethodPatch, "/rules/"+rule.ID, web.UpdateRuleRequest{
		Prompt: &prompt,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_ToggleRule(t *testing.T) {
	app, _ := setupTestApp(t)

	_, created := doJSON(t, app, http.MethodPost, "/rules/", web.CreateRuleRequest{
		Name:      "equipment required",
		Type:      models.RuleTypeStructured,
		Enabled:   true,
		Condition: &models.RuleCondition{Field: "tags.equipment", Operator: models.OperatorNotEmpty},
	})

	var rule models.ValidationRule
	require.NoError(t, json.Unmarshal(created, &rule))

	resp, body := doJSON(t, app, http.MethodPost, "/rules/"+rule.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var toggled models.ValidationRule
	require.NoError(t, json.Unmarshal(body, &toggled))
	assert.False(t, toggled.Enabled)
}

func TestAPIHandlers_DeleteRule_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodDelete, "/rules/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
