package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/streakedin/streakedin/internal/client"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/services"
)

// Tools adapts the REST client to MCP tool handlers.
type Tools struct {
	client *client.Client
}

func NewTools(c *client.Client) *Tools { return &Tools{client: c} }

// Register adds every tool to s.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_goals",
		mcp.WithDescription("List the user's goals with progress and status"),
	), t.handleListGoals)

	s.AddTool(mcp.NewTool("create_goal",
		mcp.WithDescription("Create a goal; returns the stored goal"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Goal title (≤200 chars)")),
		mcp.WithString("description", mcp.Description("Optional description")),
		mcp.WithString("deadline", mcp.Description("Deadline as YYYY-MM-DD")),
		mcp.WithString("category", mcp.Description("Category such as Health or Career")),
	), t.handleCreateGoal)

	s.AddTool(mcp.NewTool("update_goal_progress",
		mcp.WithDescription("Set a goal's progress percentage (0-100)"),
		mcp.WithString("goal_id", mcp.Required(), mcp.Description("Goal ID")),
		mcp.WithNumber("progress", mcp.Required(), mcp.Description("Progress 0-100")),
	), t.handleUpdateGoalProgress)

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List the user's tasks"),
	), t.handleListTasks)

	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("priority", mcp.Description("low, medium or high")),
		mcp.WithString("due_date", mcp.Description("Due date as YYYY-MM-DD")),
		mcp.WithString("goal_id", mcp.Description("Goal the task belongs to")),
	), t.handleCreateTask)

	s.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task completed"),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
	), t.handleCompleteTask)

	s.AddTool(mcp.NewTool("generate_reminder",
		mcp.WithDescription("Draft a reminder from a natural-language request without saving it"),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("e.g. 'remind me to stretch every morning'")),
	), t.handleGenerateReminder)

	s.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Productivity stats: completion rates, score and streak"),
	), t.handleGetStats)
}

func textResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func failed(tool string, start time.Time, err error) (*mcp.CallToolResult, error) {
	log.Error().Err(err).Dur("elapsed", time.Since(start)).Msgf("%s failed", tool)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", tool, err)), nil
}

func optString(req mcp.CallToolRequest, key string) string {
	if v, ok := req.GetArguments()[key].(string); ok {
		return v
	}
	return ""
}

func (t *Tools) handleListGoals(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	goals, err := t.client.ListGoals(ctx)
	if err != nil {
		return failed("list_goals", start, err)
	}
	type lite struct {
		ID       string           `json:"goalId"`
		Title    string           `json:"title"`
		Progress int              `json:"progress"`
		Status   model.GoalStatus `json:"status"`
		Deadline string           `json:"deadline,omitempty"`
	}
	out := make([]lite, len(goals))
	for i, g := range goals {
		out[i] = lite{ID: g.ID, Title: g.Title, Progress: g.Progress, Status: g.Status, Deadline: g.Deadline}
	}
	return textResult(out)
}

func (t *Tools) handleCreateGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	log.Debug().Str("title", title).Msg("create_goal invoked")

	start := time.Now()
	g, err := t.client.CreateGoal(ctx, services.GoalInput{
		Title:       title,
		Description: optString(req, "description"),
		Deadline:    optString(req, "deadline"),
		Category:    optString(req, "category"),
	})
	if err != nil {
		return failed("create_goal", start, err)
	}
	return textResult(g)
}

func (t *Tools) handleUpdateGoalProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goalID, err := req.RequireString("goal_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	progress, err := req.RequireInt("progress")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start := time.Now()
	g, err := t.client.UpdateGoal(ctx, goalID, model.GoalPatch{Progress: &progress})
	if err != nil {
		return failed("update_goal_progress", start, err)
	}
	return textResult(g)
}

func (t *Tools) handleListTasks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	tasks, err := t.client.ListTasks(ctx)
	if err != nil {
		return failed("list_tasks", start, err)
	}
	return textResult(tasks)
}

func (t *Tools) handleCreateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := services.TaskInput{Title: title, Priority: model.Priority(optString(req, "priority"))}
	if v := optString(req, "due_date"); v != "" {
		in.DueDate = &v
	}
	if v := optString(req, "goal_id"); v != "" {
		in.GoalID = &v
	}

	start := time.Now()
	task, err := t.client.CreateTask(ctx, in)
	if err != nil {
		return failed("create_task", start, err)
	}
	return textResult(task)
}

func (t *Tools) handleCompleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := req.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start := time.Now()
	task, err := t.client.CompleteTask(ctx, taskID)
	if err != nil {
		return failed("complete_task", start, err)
	}
	return textResult(task)
}

func (t *Tools) handleGenerateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start := time.Now()
	res, err := t.client.GenerateReminder(ctx, prompt)
	if err != nil {
		return failed("generate_reminder", start, err)
	}
	return textResult(res)
}

func (t *Tools) handleGetStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	st, err := t.client.Stats(ctx)
	if err != nil {
		return failed("get_stats", start, err)
	}
	return textResult(st)
}
