package tools

import (
	"context"
	"fmt"
	"strings"

	"chat-agent-be/internal/entity"
	"chat-agent-be/pkg/agent/errs"
	"chat-agent-be/pkg/llm"
)

// ProfileWriter is the slice of the profile service the tools need.
type ProfileWriter interface {
	GetProfile(ctx context.Context, platformUserId string) (*entity.UserProfile, error)
	SetField(ctx context.Context, platformUserId, field, value string) (entity.SaveOutcome, error)
	SavePreference(ctx context.Context, platformUserId, kind, value string) (entity.SaveOutcome, error)
}

// SavePreferenceTool records a stated preference or demographic fact. An
// invalid value is reported back to the model as a quiet no-op, never as a
// user-visible error.
type SavePreferenceTool struct {
	profiles ProfileWriter
}

func NewSavePreferenceTool(profiles ProfileWriter) *SavePreferenceTool {
	return &SavePreferenceTool{profiles: profiles}
}

var demographicFields = map[string]bool{
	"name":       true,
	"gender":     true,
	"phone":      true,
	"age":        true,
	"birth_year": true,
}

func (t *SavePreferenceTool) Decl() llm.ToolDecl {
	return llm.ToolDecl{
		Name:        "save_preference",
		Description: "Remember a fact the guest stated about themselves: a preference (e.g. seating_preference, food_preference) or a demographic field (name, gender, phone, age, birth_year).",
		Properties: map[string]llm.ToolProperty{
			"kind": {
				Type:        "string",
				Description: "Snake_case category of the fact, e.g. seating_preference, food_preference, phone, birth_year.",
			},
			"value": {
				Type:        "string",
				Description: "The value to remember, e.g. quiet, spicy food, 1990.",
			},
		},
		Required: []string{"kind", "value"},
	}
}

func (t *SavePreferenceTool) Execute(ctx context.Context, inv Invocation) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(stringArg(inv.Args, "kind")))
	value := stringArg(inv.Args, "value")

	var (
		outcome entity.SaveOutcome
		err     error
	)
	if demographicFields[kind] {
		outcome, err = t.profiles.SetField(ctx, inv.UserID, kind, value)
	} else {
		outcome, err = t.profiles.SavePreference(ctx, inv.UserID, kind, value)
	}
	if err != nil {
		// Rejected values are logged upstream; the model just moves on.
		if outcome == entity.SaveOutcomeRejectedInvalid {
			return "value not saved (invalid), do not mention this to the guest", nil
		}
		return "", errs.NewToolError("save_preference", err)
	}

	switch outcome {
	case entity.SaveOutcomeSkippedDuplicate:
		return "already known", nil
	default:
		return "saved", nil
	}
}

// GetUserProfileTool exposes the stored profile so the generator can
// personalize replies and detect missing fields.
type GetUserProfileTool struct {
	profiles ProfileWriter
}

func NewGetUserProfileTool(profiles ProfileWriter) *GetUserProfileTool {
	return &GetUserProfileTool{profiles: profiles}
}

func (t *GetUserProfileTool) Decl() llm.ToolDecl {
	return llm.ToolDecl{
		Name:        "get_user_profile",
		Description: "Fetch what is known about the guest: demographic fields, stored preferences, and which fields are still missing.",
		Properties:  map[string]llm.ToolProperty{},
	}
}

func (t *GetUserProfileTool) Execute(ctx context.Context, inv Invocation) (string, error) {
	profile, err := t.profiles.GetProfile(ctx, inv.UserID)
	if err != nil {
		return "", errs.NewToolError("get_user_profile", err)
	}

	var sb strings.Builder
	if profile.Name != "" {
		fmt.Fprintf(&sb, "name: %s\n", profile.Name)
	}
	if profile.Gender != nil {
		fmt.Fprintf(&sb, "gender: %s\n", *profile.Gender)
	}
	if profile.Phone != nil && *profile.Phone != "" {
		fmt.Fprintf(&sb, "phone: %s\n", *profile.Phone)
	}
	if profile.Age != nil {
		fmt.Fprintf(&sb, "age: %d\n", *profile.Age)
	}
	if profile.BirthYear != nil {
		fmt.Fprintf(&sb, "birth_year: %d\n", *profile.BirthYear)
	}
	for kind, value := range profile.Preferences {
		fmt.Fprintf(&sb, "%s: %s\n", kind, value)
	}
	if missing := profile.MissingFields(); len(missing) > 0 {
		fmt.Fprintf(&sb, "missing fields: %s\n", strings.Join(missing, ", "))
	}
	if sb.Len() == 0 {
		return "nothing known about this guest yet", nil
	}
	return sb.String(), nil
}
