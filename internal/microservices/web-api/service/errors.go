package service

import (
	"errors"
	"fmt"

	"storyhub/internal/microservices/web-api/contentclient"
)

var (
	ErrNameInUse           = errors.New("username already in use")
	ErrEmailInUse          = errors.New("email already in use")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidRole         = errors.New("invalid role")
	ErrCannotChangeOwnRole = errors.New("admins cannot change their own role")
	ErrUserNotFound        = errors.New("user not found")

	ErrStoryNotFound       = errors.New("story not found")
	ErrPageNotFound        = errors.New("page not found")
	ErrChoiceNotFound      = errors.New("choice not found")
	ErrForbidden           = errors.New("you do not have permission to modify this story")
	ErrStorySuspended      = errors.New("story is suspended")
	ErrStoryNotPublished   = errors.New("story is not published")
	ErrInvalidStatusChange = errors.New("invalid status change")

	ErrNoStartPage     = errors.New("Story has no start page set yet")
	ErrNoSession       = errors.New("no active play session for this story")
	ErrChoiceNotOnPage = errors.New("choice is not available on the current page")

	ErrRatingNotFound      = errors.New("rating not found")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrReportNotFound      = errors.New("report not found")
	ErrInvalidReason       = errors.New("invalid report reason")
	ErrInvalidReportStatus = errors.New("invalid report status")
)

// mapContent turns a content API 404 into notFound and wraps everything else.
func mapContent(err error, notFound error, op string) error {
	if err == nil {
		return nil
	}
	if contentclient.IsNotFound(err) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
