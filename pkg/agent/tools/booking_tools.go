package tools

import (
	"context"
	"fmt"
	"time"

	"chat-agent-be/internal/dto"
	"chat-agent-be/internal/entity"
	"chat-agent-be/pkg/agent/errs"
	"chat-agent-be/pkg/agent/retrieval"
	"chat-agent-be/pkg/llm"
)

// FindBranchTool resolves a fuzzy branch description ("the one near the
// station") to a canonical branch entry via vector search over the branch
// namespace.
type FindBranchTool struct {
	retriever retrieval.Retriever
}

func NewFindBranchTool(retriever retrieval.Retriever) *FindBranchTool {
	return &FindBranchTool{retriever: retriever}
}

func (t *FindBranchTool) Decl() llm.ToolDecl {
	return llm.ToolDecl{
		Name:        "find_branch",
		Description: "Look up restaurant branches matching a description or area, returning their canonical names and addresses.",
		Properties: map[string]llm.ToolProperty{
			"query": {
				Type:        "string",
				Description: "Branch name fragment or area description, e.g. 'near central station'.",
			},
		},
		Required: []string{"query"},
	}
}

func (t *FindBranchTool) Execute(ctx context.Context, inv Invocation) (string, error) {
	query := stringArg(inv.Args, "query")
	docs, err := t.retriever.Retrieve(ctx, query, []string{"branches"})
	if err != nil {
		return "", errs.NewToolError("find_branch", err)
	}
	if len(docs) == 0 {
		return "no matching branch found", nil
	}

	result := ""
	for _, d := range docs {
		if d.Title != "" {
			result += d.Title + ": "
		}
		result += d.Content + "\n"
	}
	return result, nil
}

// BookingCreator is the slice of the booking service the tool needs.
type BookingCreator interface {
	Create(ctx context.Context, input dto.CreateBookingRequest) (*entity.Booking, error)
}

// CreateBookingTool executes a confirmed reservation. The generator must only
// call it after the guest confirmed all fields.
type CreateBookingTool struct {
	bookings BookingCreator
	profiles ProfileWriter
}

func NewCreateBookingTool(bookings BookingCreator, profiles ProfileWriter) *CreateBookingTool {
	return &CreateBookingTool{
		bookings: bookings,
		profiles: profiles,
	}
}

func (t *CreateBookingTool) Decl() llm.ToolDecl {
	return llm.ToolDecl{
		Name:        "create_booking",
		Description: "Create a table reservation. Call ONLY after the guest has explicitly confirmed branch, date and time, guest count, and phone number.",
		Properties: map[string]llm.ToolProperty{
			"branch_name": {
				Type:        "string",
				Description: "Canonical branch name, as returned by find_branch.",
			},
			"booking_time": {
				Type:        "string",
				Description: "Reservation time in RFC3339 format, e.g. 2026-09-05T19:00:00+07:00.",
			},
			"guest_count": {
				Type:        "integer",
				Description: "Number of guests.",
			},
			"phone": {
				Type:        "string",
				Description: "Contact phone number.",
			},
			"note": {
				Type:        "string",
				Description: "Optional special request.",
			},
		},
		Required: []string{"branch_name", "booking_time", "guest_count", "phone"},
	}
}

func (t *CreateBookingTool) Execute(ctx context.Context, inv Invocation) (string, error) {
	bookingTime, err := time.Parse(time.RFC3339, stringArg(inv.Args, "booking_time"))
	if err != nil {
		return "", errs.NewToolError("create_booking", fmt.Errorf("invalid booking_time: %w", err))
	}

	name := ""
	if profile, perr := t.profiles.GetProfile(ctx, inv.UserID); perr == nil {
		name = profile.Name
	}

	booking, err := t.bookings.Create(ctx, dto.CreateBookingRequest{
		UserId:      inv.UserID,
		ThreadId:    inv.ThreadID,
		BranchName:  stringArg(inv.Args, "branch_name"),
		GuestCount:  intArg(inv.Args, "guest_count"),
		BookingTime: bookingTime,
		Phone:       stringArg(inv.Args, "phone"),
		Note:        stringArg(inv.Args, "note"),
		Name:        name,
	})
	if err != nil {
		return "", err
	}

	// Persist the phone number for next time; duplicates and rejects are
	// no-ops here.
	_, _ = t.profiles.SetField(ctx, inv.UserID, "phone", booking.Phone)

	ref := booking.ExternalRef
	if ref == "" {
		ref = booking.Id.String()
	}
	if booking.Status != entity.BookingStatusConfirmed {
		return fmt.Sprintf("booking submitted but not yet confirmed, reference %s", ref), nil
	}
	return fmt.Sprintf("booking confirmed, reference %s", ref), nil
}
