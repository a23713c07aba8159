package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
	authmocks "github.com/crimetracker/crimetracker-api/internal/mocks/auth"
)

func TestEvidenceService_Upload(t *testing.T) {
	store := authmocks.NewMemoryEvidenceStore()
	svc := NewEvidenceService(EvidenceServiceOptions{Store: store})

	res, err := svc.Upload(context.Background(), ownerID, EvidenceUpload{
		Filename:    "Photo.JPG",
		ContentType: "image/jpeg",
		Size:        5,
		Body:        strings.NewReader("hello"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Key, "evidence/"+ownerID.SubjectID+"/"))
	assert.True(t, strings.HasSuffix(res.Key, ".jpg"))
	assert.Equal(t, "https://evidence.test/"+res.Key, res.URL)
	assert.Equal(t, []byte("hello"), store.Objects[res.Key])
}

func TestEvidenceService_Upload_Rejects(t *testing.T) {
	store := authmocks.NewMemoryEvidenceStore()
	svc := NewEvidenceService(EvidenceServiceOptions{Store: store, MaxBytes: 4})
	ctx := context.Background()

	_, err := svc.Upload(ctx, ownerID, EvidenceUpload{Filename: "a.txt", Size: 5, Body: strings.NewReader("hello")})
	requireCode(t, err, apperrors.ErrCodeValidation)

	_, err = svc.Upload(ctx, ownerID, EvidenceUpload{Filename: "a.txt"})
	requireCode(t, err, apperrors.ErrCodeValidation)
	assert.Empty(t, store.Objects)
}

func TestEvidenceService_Upload_StoreError(t *testing.T) {
	store := authmocks.NewMemoryEvidenceStore()
	store.PutErr = errors.New("bucket gone")
	svc := NewEvidenceService(EvidenceServiceOptions{Store: store})

	_, err := svc.Upload(context.Background(), ownerID, EvidenceUpload{Size: 1, Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store evidence")
}

func TestCleanExt(t *testing.T) {
	cases := map[string]string{
		"report.PDF":           ".pdf",
		"noext":                "",
		"weird.p$f":            "",
		"archive.tar.gz":       ".gz",
		"x.averylongextension": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanExt(in), in)
	}
}
