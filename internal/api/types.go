package api

import (
	"github.com/slyyfoxx/foxxtalk/internal/section"
	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// ErrorResponse is the generic failure body.
type ErrorResponse struct {
	Message string `json:"message" example:"Not authenticated"`
}

// DetailResponse is the body of the settings and account endpoints.
type DetailResponse struct {
	Detail string `json:"detail" example:"Settings saved"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"author@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
}

// UserResponse is the public shape of an account. Backends may send id as a
// string or a number.
type UserResponse struct {
	ID    section.Flex `json:"id" swaggertype:"string" example:"0b9f5c6e-7f0e-4e7a-9a59-3d8f1b1f2d4c"`
	Email string       `json:"email" example:"author@example.com"`
	Name  string       `json:"name,omitempty" example:"Sly Foxx"`
}

func toUserResponse(u *session.User) UserResponse {
	return UserResponse{ID: section.Flex(u.ID), Email: u.Email, Name: u.Name}
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string       `json:"token" example:"eyJhbGciOiJIUzI1NiIs..."`
	User  UserResponse `json:"user"`
}

// CallbackRequest is the body of POST /auth/callback.
type CallbackRequest struct {
	Code         string `json:"code" example:"SplxlOBeZQQYbYS6WxSbIA"`
	CodeVerifier string `json:"code_verifier,omitempty"`
}

// CallbackResponse carries the token issued for an authorization code.
type CallbackResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIs..."`
}

// ChangeEmailRequest is the body of POST /auth/change-email.
type ChangeEmailRequest struct {
	Email    string `json:"email" example:"new@example.com"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PostRequest is the body of POST /posts and PUT /posts/{id}. Published
// defaults to true when omitted.
type PostRequest struct {
	Title       string `json:"title" example:"Hello FoxxTalk"`
	Content     string `json:"content" example:"Markdown **body**"`
	Category    string `json:"category,omitempty" example:"tech"`
	Tags        string `json:"tags,omitempty" example:"go,web"`
	Image       string `json:"image,omitempty" example:"/uploads/1b2c.jpg"`
	Author      string `json:"author" example:"Sly Foxx"`
	AuthorImage string `json:"authorImage,omitempty"`
	Published   *bool  `json:"published,omitempty"`
}

func (req *PostRequest) toPost() *store.Post {
	published := true
	if req.Published != nil {
		published = *req.Published
	}
	return &store.Post{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		Image:       req.Image,
		Author:      req.Author,
		AuthorImage: req.AuthorImage,
		Published:   published,
	}
}

// UploadResponse carries the public URL of a stored image.
type UploadResponse struct {
	URL string `json:"url" example:"/uploads/1b2c.jpg"`
}

// GenerateImageRequest is the body of POST /ai/generate-image.
type GenerateImageRequest struct {
	Prompt string `json:"prompt" example:"A fox reading a newspaper, watercolor"`
	Size   string `json:"size,omitempty" example:"1024x1024"`
}
