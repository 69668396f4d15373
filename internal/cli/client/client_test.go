package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// countingServer wraps httptest.Server and counts the requests it saw
type countingServer struct {
	*httptest.Server
	requests int
}

func newCountingServer(t *testing.T, handler http.HandlerFunc) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.requests++
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func TestLogin_SendsCredentials(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/user/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if creds.Email != "ana@example.com" {
			t.Errorf("unexpected email: %q", creds.Email)
		}
		json.NewEncoder(w).Encode(AuthResult{
			Token: "t1",
			User:  User{ID: "u1", Name: "Ana", Email: creds.Email},
		})
	})

	c := New(srv.URL + "/api")
	result, err := c.Login(Credentials{Email: "ana@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token != "t1" || result.User.ID != "u1" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestLogin_RemoteError(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid email or password"})
	})

	c := New(srv.URL + "/api")
	_, err := c.Login(Credentials{Email: "ana@example.com", Password: "wrong"})

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %T: %v", err, err)
	}
	if remoteErr.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", remoteErr.Status)
	}
	if remoteErr.Message != "Invalid email or password" {
		t.Errorf("expected server message, got %q", remoteErr.Message)
	}
}

func TestRemoteError_FallbackEnvelopes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{name: "message field", body: `{"message":"nope"}`, status: 400, message: "nope"},
		{name: "error field", body: `{"error":"broken"}`, status: 500, message: "broken"},
		{name: "no body", body: "", status: 502, message: "request failed with status 502"},
		{name: "non-json body", body: "<html>gateway</html>", status: 503, message: "request failed with status 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			c := New(srv.URL + "/api")
			_, err := c.Login(Credentials{Email: "a@b.com", Password: "x"})

			var remoteErr *RemoteError
			if !errors.As(err, &remoteErr) {
				t.Fatalf("expected RemoteError, got %T: %v", err, err)
			}
			if remoteErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, remoteErr.Status)
			}
			if remoteErr.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, remoteErr.Message)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	// Point at a server that is already gone
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url + "/api")
	_, err := c.Login(Credentials{Email: "a@b.com", Password: "x"})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if transportErr.Unwrap() == nil {
		t.Error("expected wrapped cause")
	}
}

func TestAuthRequired_FailsFastWithoutToken(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
	}{
		{name: "profile update", call: func(c *Client) error {
			name := "Ana"
			_, err := c.UpdateProfile(ProfileUpdate{Name: &name}, "")
			return err
		}},
		{name: "stats", call: func(c *Client) error {
			_, err := c.GetStats("")
			return err
		}},
		{name: "avatar upload", call: func(c *Client) error {
			_, err := c.UploadAvatar(AvatarFile{
				Name:        "a.png",
				ContentType: "image/png",
				Size:        10,
				Content:     strings.NewReader("0123456789"),
			}, "")
			return err
		}},
		{name: "recipe create", call: func(c *Client) error {
			_, err := c.CreateRecipe(Recipe{Name: "Tarte"}, "")
			return err
		}},
		{name: "recipe delete", call: func(c *Client) error {
			return c.DeleteRecipe("r1", "")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request should reach the server")
			})
			c := New(srv.URL + "/api")

			err := tt.call(c)

			var authErr *AuthRequiredError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthRequiredError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), "savora login") {
				t.Errorf("error should point at the login command, got %q", err)
			}
			if srv.requests != 0 {
				t.Errorf("expected zero requests, got %d", srv.requests)
			}
		})
	}
}

func TestUpdateProfile_SendsBearerToken(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer t1" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.Method != "PUT" || r.URL.Path != "/api/user/profile" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var update ProfileUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if update.Bio == nil || *update.Bio != "new bio" {
			t.Errorf("unexpected patch: %+v", update)
		}
		if update.Name != nil {
			t.Error("untouched fields must not be sent")
		}

		json.NewEncoder(w).Encode(User{ID: "u1", Name: "Ana", Bio: "new bio"})
	})

	c := New(srv.URL + "/api")
	bio := "new bio"
	user, err := c.UpdateProfile(ProfileUpdate{Bio: &bio}, "t1")
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if user.Bio != "new bio" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestUploadAvatar_RejectsBeforeRequest(t *testing.T) {
	tests := []struct {
		name  string
		file  AvatarFile
		field string
	}{
		{
			name: "oversized file",
			file: AvatarFile{
				Name:        "big.png",
				ContentType: "image/png",
				Size:        MaxAvatarSize + 1,
				Content:     strings.NewReader(""),
			},
			field: "avatar",
		},
		{
			name: "non-image content type",
			file: AvatarFile{
				Name:        "resume.pdf",
				ContentType: "application/pdf",
				Size:        1024,
				Content:     strings.NewReader(""),
			},
			field: "avatar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("invalid files must be rejected before any request")
			})
			c := New(srv.URL + "/api")

			_, err := c.UploadAvatar(tt.file, "t1")

			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if valErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, valErr.Field)
			}
			if srv.requests != 0 {
				t.Errorf("expected zero requests, got %d", srv.requests)
			}
		})
	}
}

func TestUploadAvatar_SizeBoundary(t *testing.T) {
	// Exactly 5 MB is accepted
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(MaxAvatarSize + 1024); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		if _, _, err := r.FormFile("avatar"); err != nil {
			t.Errorf("expected avatar form field: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"avatarUrl": "http://localhost:3000/uploads/a.png"})
	})

	c := New(srv.URL + "/api")
	url, err := c.UploadAvatar(AvatarFile{
		Name:        "a.png",
		ContentType: "image/png",
		Size:        MaxAvatarSize,
		Content:     strings.NewReader(strings.Repeat("x", 64)),
	}, "t1")
	if err != nil {
		t.Fatalf("UploadAvatar failed: %v", err)
	}
	if url != "http://localhost:3000/uploads/a.png" {
		t.Errorf("unexpected avatar URL: %q", url)
	}
	if srv.requests != 1 {
		t.Errorf("expected exactly one request, got %d", srv.requests)
	}
}

func TestRecipes_PublicReads(t *testing.T) {
	srv := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("public reads must not send a token, got %q", got)
		}
		switch r.URL.Path {
		case "/api/recipes":
			json.NewEncoder(w).Encode([]Recipe{{ID: "r1", Name: "Tarte"}, {ID: "r2", Name: "Soupe"}})
		case "/api/recipes/r1":
			json.NewEncoder(w).Encode(Recipe{ID: "r1", Name: "Tarte"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	c := New(srv.URL + "/api")

	recipes, err := c.ListRecipes()
	if err != nil {
		t.Fatalf("ListRecipes failed: %v", err)
	}
	if len(recipes) != 2 {
		t.Errorf("expected 2 recipes, got %d", len(recipes))
	}

	recipe, err := c.GetRecipe("r1")
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if recipe.Name != "Tarte" {
		t.Errorf("unexpected recipe: %+v", recipe)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:3000/api/")
	if c.baseURL != "http://localhost:3000/api" {
		t.Errorf("expected trimmed base URL, got %q", c.baseURL)
	}
}
