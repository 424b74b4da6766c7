package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/numera/internal/numerology"
	"github.com/kalambet/numera/internal/profile"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Engine        Calculator
	Profiles      *profile.Manager // optional; without it save and the recent resource are unavailable
	DefaultSystem numerology.System
	Version       string
	Now           func() time.Time
}

func (d MCPDeps) app() AppDeps {
	return AppDeps{Engine: d.Engine, Profiles: d.Profiles, DefaultSystem: d.DefaultSystem, Now: d.Now}
}

// NewMCPServer creates an MCP server with all numera tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.DefaultSystem == "" {
		deps.DefaultSystem = numerology.Pythagorean
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	s := server.NewMCPServer(
		"numera",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("numera computes numerology readings, compatibility scores and personal cycles from a full name and birth date."),
		server.WithRecovery(),
	)

	systems := make([]string, 0, len(numerology.Systems()))
	for _, sys := range numerology.Systems() {
		systems = append(systems, string(sys))
	}

	s.AddTool(
		mcp.NewTool("compute_reading",
			mcp.WithDescription("Compute a full numerology reading: life path, destiny, soul urge, personality, birthday, karmic debt and master numbers with interpretations."),
			mcp.WithString("full_name", mcp.Description("Full birth name"), mcp.Required()),
			mcp.WithString("birth_date", mcp.Description("Birth date as YYYY-MM-DD"), mcp.Required()),
			mcp.WithString("system", mcp.Description("Letter system: "+strings.Join(systems, ", "))),
			mcp.WithBoolean("save", mcp.Description("Store the reading for later retrieval")),
		),
		mcpComputeReading(deps),
	)

	s.AddTool(
		mcp.NewTool("compute_compatibility",
			mcp.WithDescription("Score the numerology compatibility of two people from 10 to 100."),
			mcp.WithString("name_a", mcp.Description("First person's full name"), mcp.Required()),
			mcp.WithString("date_a", mcp.Description("First person's birth date (YYYY-MM-DD)"), mcp.Required()),
			mcp.WithString("name_b", mcp.Description("Second person's full name"), mcp.Required()),
			mcp.WithString("date_b", mcp.Description("Second person's birth date (YYYY-MM-DD)"), mcp.Required()),
			mcp.WithString("system", mcp.Description("Letter system: "+strings.Join(systems, ", "))),
		),
		mcpComputeCompatibility(deps),
	)

	s.AddTool(
		mcp.NewTool("interpret_number",
			mcp.WithDescription("Look up the meaning of a number in an interpretation category."),
			mcp.WithString("category", mcp.Description("Category such as life_path, destiny, karmic_debt or compatibility"), mcp.Required()),
			mcp.WithNumber("number", mcp.Description("The number to interpret"), mcp.Required()),
		),
		mcpInterpretNumber(deps),
	)

	s.AddTool(
		mcp.NewTool("personal_cycles",
			mcp.WithDescription("Compute personal year, month and day numbers for a birth date."),
			mcp.WithString("birth_date", mcp.Description("Birth date as YYYY-MM-DD"), mcp.Required()),
			mcp.WithString("on", mcp.Description("Day to compute for (YYYY-MM-DD, default today)")),
		),
		mcpPersonalCycles(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"numera://readings/recent",
			"Recent Readings",
			mcp.WithResourceDescription("Last 10 saved readings (core numbers only)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpComputeReading(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("full_name")
		if err != nil {
			return mcpError("full_name is required"), nil
		}
		date, err := req.RequireString("birth_date")
		if err != nil {
			return mcpError("birth_date is required"), nil
		}
		d, err := numerology.ParseBirthDate(date)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		reading, err := deps.Engine.ComputeReading(ctx, name, d, deps.app().system(req.GetString("system", "")))
		if err != nil {
			return mcpError(err.Error()), nil
		}

		var out any = reading
		if req.GetBool("save", false) {
			if deps.Profiles == nil {
				return mcpError("saving is not available"), nil
			}
			saved, err := deps.Profiles.SaveReading(reading, "")
			if err != nil {
				return mcpError(fmt.Sprintf("failed to save reading: %v", err)), nil
			}
			out = saved
		}
		return mcpJSON(out)
	}
}

func mcpComputeCompatibility(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var people [2]numerology.BirthProfile
		for i, side := range []string{"a", "b"} {
			name, err := req.RequireString("name_" + side)
			if err != nil {
				return mcpError(fmt.Sprintf("name_%s is required", side)), nil
			}
			date, err := req.RequireString("date_" + side)
			if err != nil {
				return mcpError(fmt.Sprintf("date_%s is required", side)), nil
			}
			d, err := numerology.ParseBirthDate(date)
			if err != nil {
				return mcpError(err.Error()), nil
			}
			people[i] = numerology.BirthProfile{FullName: name, BirthDate: d}
		}

		result, err := deps.Engine.ComputeCompatibility(ctx, people[0], people[1], deps.app().system(req.GetString("system", "")))
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpJSON(result)
	}
}

func mcpInterpretNumber(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("category")
		if err != nil {
			return mcpError("category is required"), nil
		}
		n, err := req.RequireInt("number")
		if err != nil || n < 0 {
			return mcpError("number must be a non-negative integer"), nil
		}

		if strings.EqualFold(raw, "compatibility") {
			return mcpText(numerology.CompatibilityBand(n)), nil
		}
		cat, err := numerology.ParseCategory(raw)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpText(numerology.Interpret(cat, n)), nil
	}
}

func mcpPersonalCycles(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := req.RequireString("birth_date")
		if err != nil {
			return mcpError("birth_date is required"), nil
		}
		birth, err := numerology.ParseBirthDate(date)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		on := deps.Now().UTC()
		if s := req.GetString("on", ""); s != "" {
			if on, err = numerology.ParseBirthDate(s); err != nil {
				return mcpError("on must be a YYYY-MM-DD date"), nil
			}
		}
		return mcpJSON(cyclesResponse{
			BirthDate: birth.Format(numerology.DateLayout),
			On:        on.Format(numerology.DateLayout),
			Cycles:    numerology.PersonalCycles(birth, on),
		})
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		if deps.Profiles == nil {
			return nil, fmt.Errorf("saved readings are not available")
		}
		readings, err := deps.Profiles.ListReadings("", 10, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list readings: %w", err)
		}

		type readingSummary struct {
			ID        string `json:"id"`
			SavedAt   string `json:"saved_at"`
			System    string `json:"system"`
			LifePath  int    `json:"life_path"`
			Destiny   int    `json:"destiny"`
			SoulUrge  int    `json:"soul_urge"`
			Birthday  int    `json:"birthday"`
			ProfileID string `json:"profile_id,omitempty"`
		}

		summaries := make([]readingSummary, len(readings))
		for i, r := range readings {
			summaries[i] = readingSummary{
				ID:        r.ID,
				SavedAt:   r.SavedAt.Format(time.RFC3339),
				System:    string(r.System),
				LifePath:  r.LifePath,
				Destiny:   r.Destiny,
				SoulUrge:  r.SoulUrge,
				Birthday:  r.Birthday,
				ProfileID: r.ProfileID,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal readings: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
