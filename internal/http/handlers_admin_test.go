package httpx

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/ports"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

func TestAdminHandlers_ChangeRole_PublishesEvent(t *testing.T) {
	f := newRouterFixture(t)
	f.profiles.EXPECT().SetRole(gomock.Any(), "user-1", domainauth.RoleLawyer).
		Return(&model.Profile{SubjectID: "user-1", Email: "user@example.com", Role: domainauth.RoleLawyer}, nil)

	w := f.serve(withSession(apiRequest(http.MethodPut, "/api/admin/users/user-1/role", `{"role":"Lawyer"}`), "admin-session"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domainauth.RoleLawyer, decodeBody[model.Profile](t, w).Role)

	events := f.events.Published()
	require.Len(t, events, 1)
	assert.Equal(t, ports.CauseRoleChange, events[0].Cause)
	assert.Equal(t, "user-1", events[0].SubjectID)
}

func TestAdminHandlers_ChangeRole_InvalidRole(t *testing.T) {
	f := newRouterFixture(t)

	w := f.serve(withSession(apiRequest(http.MethodPut, "/api/admin/users/user-1/role", `{"role":"superuser"}`), "admin-session"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "role", decodeBody[errorBody](t, w).Field)
	assert.Empty(t, f.events.Published())
}

func TestAdminHandlers_DeleteUser(t *testing.T) {
	f := newRouterFixture(t)
	f.profiles.EXPECT().Delete(gomock.Any(), "user-1").Return(true, nil)
	f.profiles.EXPECT().Delete(gomock.Any(), "user-9").Return(false, nil)

	w := f.serve(withSession(apiRequest(http.MethodDelete, "/api/admin/users/user-1", ""), "admin-session"))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.serve(withSession(apiRequest(http.MethodDelete, "/api/admin/users/user-9", ""), "admin-session"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.serve(withSession(apiRequest(http.MethodDelete, "/api/admin/users/admin-1", ""), "admin-session"))
	assert.Equal(t, http.StatusBadRequest, w.Code, "admins cannot delete themselves")
}

func TestAdminHandlers_ListUsers_RoleFilter(t *testing.T) {
	f := newRouterFixture(t)
	f.profiles.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts model.ProfileListOptions) ([]*model.Profile, error) {
			require.NotNil(t, opts.Role)
			assert.Equal(t, domainauth.RoleLawyer, *opts.Role)
			return nil, nil
		})

	w := f.serve(withSession(apiRequest(http.MethodGet, "/api/admin/users?role=LAWYER", ""), "admin-session"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[]`, w.Body.String())
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/evidence", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req
}

func TestProfileHandlers_UploadEvidence(t *testing.T) {
	f := newRouterFixture(t)

	w := f.serve(withSession(multipartUpload(t, "file", "Photo.JPG", []byte("jpeg-bytes")), "user-session"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decodeBody[service.EvidenceResult](t, w)
	assert.True(t, strings.HasPrefix(got.Key, "evidence/user-1/"), got.Key)
	assert.True(t, strings.HasSuffix(got.Key, ".jpg"), got.Key)
	assert.Equal(t, "https://evidence.test/"+got.Key, got.URL)
}

func TestProfileHandlers_UploadEvidence_Rejections(t *testing.T) {
	f := newRouterFixture(t)

	w := f.serve(withSession(multipartUpload(t, "", "", nil), "user-session"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file", decodeBody[errorBody](t, w).Field)

	w = f.serve(multipartUpload(t, "file", "a.png", []byte("x")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
