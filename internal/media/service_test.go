package media

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ezoostore/storefront-backend/pkg/config"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"github.com/ezoostore/storefront-backend/pkg/storage/gcs"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

const publicPrefix = "https://storage.googleapis.com/bucket/"

type fakeStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr map[string]error
}

func (f *fakeStore) Upload(_ context.Context, objectName, _ string, _ []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, objectName)
	return publicPrefix + objectName, nil
}

func (f *fakeStore) Delete(_ context.Context, objectName string) error {
	f.deletes = append(f.deletes, objectName)
	return f.deleteErr[objectName]
}

func (f *fakeStore) ObjectFromURL(raw string) (string, bool) {
	if !strings.HasPrefix(raw, publicPrefix) {
		return "", false
	}
	return strings.TrimPrefix(raw, publicPrefix), true
}

func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	svc, err := NewService(store, config.MediaConfig{MaxUploadMB: 1}, logger.New(logger.Options{Output: io.Discard}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

func TestUploadDataURI(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	asset, err := svc.UploadDataURI(context.Background(), "tshirt-logos", pngDataURI())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(asset.Object, "tshirt-logos/") || !strings.HasSuffix(asset.Object, ".png") {
		t.Fatalf("unexpected object name %q", asset.Object)
	}
	if asset.URL != publicPrefix+asset.Object || asset.ContentType != "image/png" {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if !svc.InFolder(asset.URL, "tshirt-logos") || svc.InFolder(asset.URL, "admin-logos") {
		t.Fatalf("folder detection failed for %q", asset.URL)
	}
}

func TestUploadDataURIRejectsNonImages(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	text := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("just some text"))
	for _, input := range []string{text, "not base64 !!", "data:image/png,raw"} {
		_, err := svc.UploadDataURI(context.Background(), "x", input)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %q, got %v", input, err)
		}
	}
	if len(store.uploads) != 0 {
		t.Fatalf("invalid input reached the image host")
	}
}

func TestUploadDataURIRejectsOversized(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	big := append(append([]byte{}, pngBytes...), make([]byte, 1<<20)...)
	_, err := svc.UploadDataURI(context.Background(), "x", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(big))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadDataURIHostFailure(t *testing.T) {
	svc := newTestService(t, &fakeStore{uploadErr: errors.New("boom")})
	_, err := svc.UploadDataURI(context.Background(), "x", pngDataURI())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestDeleteAllOncePerDistinctAsset(t *testing.T) {
	store := &fakeStore{deleteErr: map[string]error{"b.png": errors.New("host down")}}
	svc := newTestService(t, store)

	failed, err := svc.DeleteAll(context.Background(), []string{
		publicPrefix + "a.png",
		publicPrefix + "b.png",
		publicPrefix + "a.png",
		"https://elsewhere.example.com/c.png",
	})
	if failed != 1 || err == nil {
		t.Fatalf("expected one failure, got %d (%v)", failed, err)
	}
	if len(store.deletes) != 2 {
		t.Fatalf("expected two delete calls, got %v", store.deletes)
	}
}

func TestDeleteURLIgnoresMissingObjects(t *testing.T) {
	store := &fakeStore{deleteErr: map[string]error{"gone.png": gcs.ErrObjectNotFound}}
	svc := newTestService(t, store)

	if err := svc.DeleteURL(context.Background(), publicPrefix+"gone.png"); err != nil {
		t.Fatalf("expected missing object to be ignored, got %v", err)
	}
	if err := svc.DeleteURL(context.Background(), "https://elsewhere.example.com/x.png"); err != nil {
		t.Fatalf("expected foreign url to be ignored, got %v", err)
	}
	if len(store.deletes) != 1 {
		t.Fatalf("expected one delete call, got %v", store.deletes)
	}
}

func TestDecodeDataURI(t *testing.T) {
	declared, data, err := DecodeDataURI(pngDataURI())
	if err != nil || declared != "image/png" || len(data) != len(pngBytes) {
		t.Fatalf("unexpected decode result %q %d %v", declared, len(data), err)
	}

	declared, _, err = DecodeDataURI(base64.StdEncoding.EncodeToString(pngBytes))
	if err != nil || declared != "" {
		t.Fatalf("bare base64 should decode, got %q %v", declared, err)
	}

	if _, _, err := DecodeDataURI(""); !errors.Is(err, ErrInvalidDataURI) {
		t.Fatalf("expected ErrInvalidDataURI, got %v", err)
	}
}
