package views

import (
	"context"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
)

// Session is the part of the session store views read. Only the store mutates it.
type Session interface {
	User() *models.User
	Authenticated() bool
	IsAdmin() bool
	IsSaved(id int) bool
	ToggleSave(ctx context.Context, id int) (bool, error)
	HandleError(err error) bool
}

// describe turns err into the message a view shows. Auth failures log the session out and
// produce no message.
func describe(sess Session, err error, fallback string) string {
	if sess != nil && sess.HandleError(err) {
		return ""
	}
	return api.Message(err, fallback)
}

func isOwner(sess Session, r models.Recipe) bool {
	if sess == nil {
		return false
	}
	u := sess.User()
	return u != nil && r.CreatorUsername != nil && *r.CreatorUsername == u.Username
}
