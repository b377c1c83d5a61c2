package client

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"simple-shop/internal/model"
)

// ShopClient calls the shop API.
type ShopClient struct {
	*HTTPClient
}

func NewShopClient(c *HTTPClient) *ShopClient {
	return &ShopClient{HTTPClient: c}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
}

type message struct {
	Message string `json:"message"`
}

func registerPath(role model.Role) string {
	if role == model.RoleSeller {
		return "/api/seller/register"
	}
	return "/api/auth/user-register"
}

func loginPath(role model.Role) string {
	if role == model.RoleSeller {
		return "/api/seller/login"
	}
	return "/api/auth/user-login"
}

func (c *ShopClient) Register(ctx context.Context, role model.Role, r Registration) (string, error) {
	var out message
	err := c.Post(ctx, registerPath(role), r, &out)
	return out.Message, err
}

// Login signs in and authenticates the client with the returned token.
func (c *ShopClient) Login(ctx context.Context, role model.Role, creds Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.Post(ctx, loginPath(role), creds, &out); err != nil {
		return "", err
	}
	c.SetBearer(out.Token)
	return out.Token, nil
}

func (c *ShopClient) Me(ctx context.Context) (*model.Account, error) {
	var out model.Account
	if err := c.Get(ctx, "/api/auth/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ShopClient) Categories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := c.Get(ctx, "/api/category", &out)
	return out, err
}

func (c *ShopClient) CreateCategory(ctx context.Context, name, description string) (*model.Category, error) {
	var out model.Category
	if err := c.Post(ctx, "/api/category", map[string]string{"name": name, "description": description}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ShopClient) Products(ctx context.Context) ([]model.ProductView, error) {
	var out []model.ProductView
	err := c.Get(ctx, "/api/product", &out)
	return out, err
}

// CreateProduct uploads fields and one image as a multipart form.
func (c *ShopClient) CreateProduct(ctx context.Context, fields map[string]string, filename string, image []byte) (*model.ProductView, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out model.ProductView
	if _, err := c.Do(ctx, http.MethodPost, "/api/product", mw.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
