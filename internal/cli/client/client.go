package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// MaxAvatarSize is the largest avatar upload accepted client-side (5 MB).
const MaxAvatarSize = 5 * 1024 * 1024

// Client represents an HTTP client for the Savora API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client. baseURL is the API root, e.g.
// "http://localhost:3000/api".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// User represents a user record as returned by the API. The fields beyond
// ID are owned by the backend; the client only caches them.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Credentials represents the login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration represents the register request body
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the response of login and register
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdate carries the profile fields that can be changed. Nil fields
// are left untouched by the backend.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Location *string `json:"location,omitempty"`
}

// Stats summarizes the current user's activity
type Stats struct {
	RecipeCount int `json:"recipeCount"`
}

// Recipe represents a recipe record
type Recipe struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Category     string   `json:"category" yaml:"category"`
	PrepTime     int      `json:"prepTime" yaml:"prepTime"`
	CookTime     int      `json:"cookTime" yaml:"cookTime"`
	Ingredients  []string `json:"ingredients" yaml:"ingredients"`
	Instructions []string `json:"instructions" yaml:"instructions"`
	Image        string   `json:"image,omitempty" yaml:"image,omitempty"`
	CreatedBy    string   `json:"createdBy,omitempty" yaml:"-"`
	CreatedAt    string   `json:"createdAt,omitempty" yaml:"-"`
}

// request describes a single API call: method, path, optional JSON body and
// whether a bearer token must be attached.
type request struct {
	method       string
	path         string
	body         any
	token        string
	requiresAuth bool
	op           string
}

// errorBody is the JSON error envelope the backend returns on failure
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do performs the request and decodes a 2xx JSON response into out.
// It fails fast with AuthRequiredError when auth is required and no token
// was supplied, wraps connection failures in TransportError and non-2xx
// responses in RemoteError.
func (c *Client) do(req request, out any) error {
	if req.requiresAuth && req.token == "" {
		return &AuthRequiredError{Op: req.op}
	}

	var body io.Reader
	if req.body != nil {
		jsonData, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	httpReq, err := http.NewRequest(req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", req.token))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// remoteError builds a RemoteError from a non-2xx response, using the
// server message when the body carries one.
func remoteError(resp *http.Response) *RemoteError {
	raw, _ := io.ReadAll(resp.Body)

	var eb errorBody
	message := ""
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Message != "" {
			message = eb.Message
		} else if eb.Error != "" {
			message = eb.Error
		}
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}

	return &RemoteError{Status: resp.StatusCode, Message: message}
}

// Login authenticates the user and returns a token plus the user record
func (c *Client) Login(creds Credentials) (*AuthResult, error) {
	var result AuthResult
	err := c.do(request{
		method: "POST",
		path:   "/user/login",
		body:   creds,
		op:     "login",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new account and returns a token plus the user record
func (c *Client) Register(reg Registration) (*AuthResult, error) {
	var result AuthResult
	err := c.do(request{
		method: "POST",
		path:   "/user/register",
		body:   reg,
		op:     "register",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProfile persists profile changes and returns the updated user record
func (c *Client) UpdateProfile(update ProfileUpdate, token string) (*User, error) {
	var user User
	err := c.do(request{
		method:       "PUT",
		path:         "/user/profile",
		body:         update,
		token:        token,
		requiresAuth: true,
		op:           "profile update",
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetStats returns activity statistics for the current user
func (c *Client) GetStats(token string) (*Stats, error) {
	var stats Stats
	err := c.do(request{
		method:       "GET",
		path:         "/user/stats",
		token:        token,
		requiresAuth: true,
		op:           "stats",
	}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AvatarFile describes an avatar image to upload
type AvatarFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// uploadAvatarResponse is the upload-avatar response envelope
type uploadAvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// UploadAvatar uploads a new avatar image and returns its public URL.
// The file is validated before any request is made: at most 5 MB and an
// image/* content type.
func (c *Client) UploadAvatar(file AvatarFile, token string) (string, error) {
	if token == "" {
		return "", &AuthRequiredError{Op: "avatar upload"}
	}
	if file.Size > MaxAvatarSize {
		return "", &ValidationError{Field: "avatar", Message: "file must not exceed 5MB"}
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return "", &ValidationError{Field: "avatar", Message: "only image files are accepted"}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", file.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart form: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return "", fmt.Errorf("failed to read avatar file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/user/upload-avatar", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", remoteError(resp)
	}

	var uploadResp uploadAvatarResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return uploadResp.AvatarURL, nil
}

// ListRecipes returns all published recipes
func (c *Client) ListRecipes() ([]Recipe, error) {
	var recipes []Recipe
	err := c.do(request{
		method: "GET",
		path:   "/recipes",
		op:     "recipe list",
	}, &recipes)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe returns a single recipe by ID
func (c *Client) GetRecipe(id string) (*Recipe, error) {
	var recipe Recipe
	err := c.do(request{
		method: "GET",
		path:   fmt.Sprintf("/recipes/%s", id),
		op:     "recipe get",
	}, &recipe)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// CreateRecipe publishes a new recipe
func (c *Client) CreateRecipe(recipe Recipe, token string) (*Recipe, error) {
	var created Recipe
	err := c.do(request{
		method:       "POST",
		path:         "/recipes",
		body:         recipe,
		token:        token,
		requiresAuth: true,
		op:           "recipe create",
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRecipe replaces an existing recipe
func (c *Client) UpdateRecipe(id string, recipe Recipe, token string) (*Recipe, error) {
	var updated Recipe
	err := c.do(request{
		method:       "PUT",
		path:         fmt.Sprintf("/recipes/%s", id),
		body:         recipe,
		token:        token,
		requiresAuth: true,
		op:           "recipe update",
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteRecipe removes a recipe
func (c *Client) DeleteRecipe(id, token string) error {
	return c.do(request{
		method:       "DELETE",
		path:         fmt.Sprintf("/recipes/%s", id),
		token:        token,
		requiresAuth: true,
		op:           "recipe delete",
	}, nil)
}
