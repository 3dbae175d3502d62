// Package profile implements viewing and editing the user's own profile.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/api"
	"github.com/devtinder/devtinder/internal/session"
)

// Service performs profile operations. Edits merge the server's updated-user
// response back into the session store.
type Service struct {
	client *api.Client
	store  *session.Store
	logger *zap.Logger
}

// NewService creates the profile service.
func NewService(client *api.Client, store *session.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, store: store, logger: logger}
}

// View fetches the user's own profile.
func (s *Service) View(ctx context.Context) (*session.User, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, api.PathProfileView, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return decodeUser(raw)
}

// EditRequest carries the editable profile fields. Zero values are omitted
// from the submission.
type EditRequest struct {
	FirstName string
	LastName  string
	Age       int
	Gender    string
	About     string
	Skills    []string
	// PhotoPath is a local image file to upload, if any.
	PhotoPath string
}

// Edit submits the changed fields (and photo, when given) as a multipart
// PATCH, then writes the server's updated user into the session store.
func (s *Service) Edit(ctx context.Context, req EditRequest) (*session.User, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	fields := map[string]string{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"gender":    req.Gender,
		"about":     req.About,
	}
	if req.Age > 0 {
		fields["age"] = strconv.Itoa(req.Age)
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}
	for _, skill := range req.Skills {
		if err := mw.WriteField("skills", skill); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}

	if req.PhotoPath != "" {
		if err := attachPhoto(mw, req.PhotoPath); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var raw json.RawMessage
	err := s.client.Patch(ctx, api.PathProfileEdit, nil, &raw,
		api.WithBody(body, mw.FormDataContentType()))
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	updated, err := decodeUser(raw)
	if err != nil {
		return nil, err
	}

	if setErr := s.store.Set(updated); setErr != nil {
		s.logger.Warn("updated profile not persisted to cache", zap.Error(setErr))
	}
	s.logger.Info("profile updated", zap.String("user_id", updated.ID))
	return updated, nil
}

func attachPhoto(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open photo %s: %w", path, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("photo", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to attach photo: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to attach photo: %w", err)
	}
	return nil
}

// decodeUser accepts both a bare user object and a {"user": {...}} envelope.
func decodeUser(raw json.RawMessage) (*session.User, error) {
	var envelope struct {
		User *session.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.User != nil {
		return envelope.User, nil
	}

	var u session.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("malformed profile response: %w", err)
	}
	return &u, nil
}
