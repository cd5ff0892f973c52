package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duckytan/DotCircle/internal/middleware"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store/memory"
)

type avatarStub struct {
	calls int
}

func (a *avatarStub) UploadAvatar(ctx context.Context, file multipart.File, userID string) (string, error) {
	a.calls++
	return "https://cdn.example.com/avatars/" + userID + ".jpg", nil
}

// avatarRequest construit une requête multipart authentifiée avec un fichier
// "avatar"
func avatarRequest(t *testing.T, user model.UserProfile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", "avatar.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(middleware.ContextWithUser(req.Context(), user))
}

func TestUploadAvatar(t *testing.T) {
	db := memory.New()
	stub := &avatarStub{}
	Init(Deps{Users: db, Avatar: stub})

	user := &model.UserProfile{Nickname: "用户", AvatarURL: "https://old.example.com/a.jpg"}
	require.NoError(t, db.CreateUser(context.Background(), user))

	rec := httptest.NewRecorder()
	UploadAvatar(rec, avatarRequest(t, *user))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, stub.calls)
	require.Contains(t, rec.Body.String(), "https://cdn.example.com/avatars/"+user.ID+".jpg")

	fresh, err := db.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/avatars/"+user.ID+".jpg", fresh.AvatarURL)
}

func TestUploadAvatarUnavailable(t *testing.T) {
	db := memory.New()
	Init(Deps{Users: db, Avatar: nil})

	user := &model.UserProfile{Nickname: "用户"}
	require.NoError(t, db.CreateUser(context.Background(), user))

	rec := httptest.NewRecorder()
	UploadAvatar(rec, avatarRequest(t, *user))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "UPLOAD_UNAVAILABLE")
}
