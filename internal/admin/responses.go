package admin

import (
	"time"

	"presale/pkg/platform/audit"
)

// UserActivityResponse is one row of the activity view.
type UserActivityResponse struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	IsActive        bool       `json:"isActive"`
	LicenseVerified bool       `json:"licenseVerified"`
	SessionCount    int        `json:"sessionCount"`
	LastActive      *time.Time `json:"lastActive,omitempty"`
}

type ActivityListResponse struct {
	Users []UserActivityResponse `json:"users"`
	Total int                    `json:"total"`
}

type AuditEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	UserID    string    `json:"userId"`
	ActorID   string    `json:"actorId,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

type AuditListResponse struct {
	Events []AuditEventResponse `json:"events"`
	Total  int                  `json:"total"`
}

func toActivityList(rows []UserActivity) ActivityListResponse {
	out := make([]UserActivityResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, UserActivityResponse{
			ID:              r.User.ID.String(),
			Username:        r.User.Username,
			Email:           r.User.Email,
			Role:            r.User.Role.String(),
			IsActive:        r.User.IsActive,
			LicenseVerified: r.User.LicenseVerified,
			SessionCount:    r.ActiveSessions,
			LastActive:      r.LastActive,
		})
	}
	return ActivityListResponse{Users: out, Total: len(out)}
}

func toAuditList(events []audit.Event) AuditListResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			Timestamp: e.Timestamp,
			Category:  string(e.Category),
			Action:    e.Action,
			UserID:    e.UserID.String(),
			ActorID:   e.ActorID,
			Subject:   e.Subject,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RequestID: e.RequestID,
		})
	}
	return AuditListResponse{Events: out, Total: len(out)}
}
