package service

import (
	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/models"
)

// Viewer is the caller of a service operation. A zero Viewer is an anonymous visitor.
type Viewer struct {
	UserID string
	Role   string
}

func (v Viewer) Authenticated() bool {
	return v.UserID != ""
}

func (v Viewer) IsAdmin() bool {
	return v.Role == models.RoleAdmin
}

// CanManage reports whether the viewer may edit the story.
func (v Viewer) CanManage(story *contentclient.Story) bool {
	if !v.Authenticated() {
		return false
	}
	return v.IsAdmin() || story.AuthorID == v.UserID
}

// CanSee applies the draft visibility rule.
func (v Viewer) CanSee(story *contentclient.Story) bool {
	if story.Status == contentclient.StatusDraft {
		return v.CanManage(story)
	}
	return true
}

// userPtr returns nil for anonymous viewers.
func (v Viewer) userPtr() *string {
	if !v.Authenticated() {
		return nil
	}
	id := v.UserID
	return &id
}
