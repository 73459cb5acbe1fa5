package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"golang.org/x/oauth2"
)

// Login exchanges username and password for an access token using the OAuth2 password grant at
// POST /token. The token is returned, not installed; callers decide whether to keep it.
func (c *Client) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, newError(re.Response.StatusCode, http.MethodPost, "/token", re.Body)
		}
		return nil, fmt.Errorf("%w: POST /token: %w", shared.ErrNetwork, err)
	}

	c.logger.Debug("logged in", "username", username, "token_type", tok.TokenType)
	return tok, nil
}

// Signup creates an account via POST /users/.
func (c *Client) Signup(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	body := models.Credentials{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/users/", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the authenticated user via GET /users/me/.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me/", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SavedRecipes returns one page of the user's saved recipes.
func (c *Client) SavedRecipes(ctx context.Context, skip, limit int) (*models.RecipePage, error) {
	return c.userRecipes(ctx, "/users/me/saved-recipes", skip, limit)
}

// CreatedRecipes returns one page of the recipes the user authored.
func (c *Client) CreatedRecipes(ctx context.Context, skip, limit int) (*models.RecipePage, error) {
	return c.userRecipes(ctx, "/users/me/created-recipes", skip, limit)
}

func (c *Client) userRecipes(ctx context.Context, path string, skip, limit int) (*models.RecipePage, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var page models.RecipePage
	if err := c.do(ctx, http.MethodGet, path, pageQuery(skip, limit), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
