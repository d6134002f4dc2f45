package videos

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cliplearn/backend/internal/models"
	"github.com/cliplearn/backend/pkg/apperr"
	"github.com/cliplearn/backend/pkg/storage"
)

type fakeProber struct {
	dur float64
	err error
}

func (f *fakeProber) Duration(ctx context.Context, path string) (float64, error) {
	return f.dur, f.err
}

type fakeStore struct {
	stored     []string
	removed    []string
	failFolder string
	removeErr  error
}

func (f *fakeStore) Store(ctx context.Context, localPath, folder string) (string, string, error) {
	if folder == f.failFolder {
		return "", "", errors.New("upload refused")
	}
	key := folder + "/" + filepath.Base(localPath)
	f.stored = append(f.stored, key)
	return "https://cdn.test/" + key, key, nil
}

func (f *fakeStore) Remove(ctx context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, key)
	return nil
}

type fakeVideoCreator struct {
	created *models.Video
	err     error
}

func (f *fakeVideoCreator) Create(ctx context.Context, v *models.Video) error {
	if f.err != nil {
		return f.err
	}
	v.ID = uuid.New()
	f.created = v
	return nil
}

func tempUpload(t *testing.T) (videoPath, thumbPath string) {
	t.Helper()
	dir := t.TempDir()
	videoPath = filepath.Join(dir, "clip.mp4")
	thumbPath = filepath.Join(dir, "thumb.jpg")
	for _, p := range []string{videoPath, thumbPath} {
		if err := os.WriteFile(p, []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return videoPath, thumbPath
}

func testLimits() Limits {
	return Limits{FreeMaxSeconds: 90, PremiumMaxSeconds: 180}
}

func premiumUser(expiry time.Time) *models.User {
	return &models.User{ID: uuid.New(), IsPremium: true, PremiumExpiresAt: &expiry}
}

func TestPublishTierLimits(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(30 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name        string
		owner       *models.User
		duration    float64
		wantErr     bool
		wantPremium bool
	}{
		{name: "free within limit", owner: &models.User{ID: uuid.New()}, duration: 60},
		{name: "free at exact limit", owner: &models.User{ID: uuid.New()}, duration: 90},
		{name: "free over limit", owner: &models.User{ID: uuid.New()}, duration: 91, wantErr: true},
		{name: "premium long video", owner: premiumUser(future), duration: 120, wantPremium: true},
		{name: "premium at exact limit", owner: premiumUser(future), duration: 180, wantPremium: true},
		{name: "premium over limit", owner: premiumUser(future), duration: 181, wantErr: true},
		{name: "lapsed premium treated as free", owner: premiumUser(past), duration: 120, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			repo := &fakeVideoCreator{}
			p := NewPublisher(&fakeProber{dur: tt.duration}, store, repo, testLimits(), nil)
			p.now = func() time.Time { return now }

			videoPath, thumbPath := tempUpload(t)
			got, err := p.Publish(context.Background(), tt.owner, PublishInput{
				Title: "a clip", VideoPath: videoPath, ThumbnailPath: thumbPath,
			})
			if tt.wantErr {
				if err == nil {
					t.Fatal("Publish() = nil error, want rejection")
				}
				if kind := apperr.KindOf(err); kind != apperr.KindDurationExceeded {
					t.Fatalf("error kind = %s, want %s", kind, apperr.KindDurationExceeded)
				}
				// A rejected upload must leave zero stored assets behind.
				if len(store.stored) != 0 {
					t.Fatalf("stored %v, want none", store.stored)
				}
				return
			}
			if err != nil {
				t.Fatalf("Publish() error: %v", err)
			}
			if got.IsPremium != tt.wantPremium {
				t.Fatalf("IsPremium = %v, want %v", got.IsPremium, tt.wantPremium)
			}
			if repo.created == nil {
				t.Fatal("video not persisted")
			}
			if len(store.stored) != 2 {
				t.Fatalf("stored %v, want video and thumbnail", store.stored)
			}
		})
	}
}

func TestPublishValidation(t *testing.T) {
	videoPath, thumbPath := tempUpload(t)
	tests := []struct {
		name string
		in   PublishInput
	}{
		{name: "blank title", in: PublishInput{VideoPath: videoPath, ThumbnailPath: thumbPath}},
		{name: "missing video file", in: PublishInput{Title: "t", VideoPath: filepath.Join(t.TempDir(), "nope.mp4"), ThumbnailPath: thumbPath}},
		{name: "missing thumbnail", in: PublishInput{Title: "t", VideoPath: videoPath, ThumbnailPath: filepath.Join(t.TempDir(), "nope.jpg")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			p := NewPublisher(&fakeProber{dur: 30}, store, &fakeVideoCreator{}, testLimits(), nil)
			_, err := p.Publish(context.Background(), &models.User{ID: uuid.New()}, tt.in)
			if err == nil {
				t.Fatal("Publish() = nil error, want validation failure")
			}
			if kind := apperr.KindOf(err); kind != apperr.KindValidation {
				t.Fatalf("error kind = %s, want %s", kind, apperr.KindValidation)
			}
			if len(store.stored) != 0 {
				t.Fatalf("stored %v, want none", store.stored)
			}
		})
	}
}

func TestPublishProbeFailure(t *testing.T) {
	store := &fakeStore{}
	p := NewPublisher(&fakeProber{err: errors.New("corrupt container")}, store, &fakeVideoCreator{}, testLimits(), nil)
	videoPath, thumbPath := tempUpload(t)

	_, err := p.Publish(context.Background(), &models.User{ID: uuid.New()}, PublishInput{
		Title: "a clip", VideoPath: videoPath, ThumbnailPath: thumbPath,
	})
	if err == nil {
		t.Fatal("Publish() = nil error, want probe failure")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindMediaProbe {
		t.Fatalf("error kind = %s, want %s", kind, apperr.KindMediaProbe)
	}
	if len(store.stored) != 0 {
		t.Fatalf("stored %v, want none", store.stored)
	}
}

func TestPublishThumbnailFailureRollsBackVideo(t *testing.T) {
	store := &fakeStore{failFolder: storage.FolderThumbnails}
	repo := &fakeVideoCreator{}
	p := NewPublisher(&fakeProber{dur: 30}, store, repo, testLimits(), nil)
	videoPath, thumbPath := tempUpload(t)

	_, err := p.Publish(context.Background(), &models.User{ID: uuid.New()}, PublishInput{
		Title: "a clip", VideoPath: videoPath, ThumbnailPath: thumbPath,
	})
	if err == nil {
		t.Fatal("Publish() = nil error, want storage failure")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindStorage {
		t.Fatalf("error kind = %s, want %s", kind, apperr.KindStorage)
	}
	if len(store.removed) != 1 || store.removed[0] != store.stored[0] {
		t.Fatalf("removed = %v, want compensating delete of %v", store.removed, store.stored)
	}
	if repo.created != nil {
		t.Fatal("video persisted despite failed upload")
	}
}

func TestPublishPersistFailureRemovesBothAssets(t *testing.T) {
	store := &fakeStore{}
	repo := &fakeVideoCreator{err: errors.New("db down")}
	p := NewPublisher(&fakeProber{dur: 30}, store, repo, testLimits(), nil)
	videoPath, thumbPath := tempUpload(t)

	_, err := p.Publish(context.Background(), &models.User{ID: uuid.New()}, PublishInput{
		Title: "a clip", VideoPath: videoPath, ThumbnailPath: thumbPath,
	})
	if err == nil {
		t.Fatal("Publish() = nil error, want persist failure")
	}
	if len(store.removed) != 2 {
		t.Fatalf("removed = %v, want both assets", store.removed)
	}
}

func TestPublishCleansUpLocalFiles(t *testing.T) {
	store := &fakeStore{}
	p := NewPublisher(&fakeProber{dur: 30}, store, &fakeVideoCreator{}, testLimits(), nil)
	videoPath, thumbPath := tempUpload(t)

	if _, err := p.Publish(context.Background(), &models.User{ID: uuid.New()}, PublishInput{
		Title: "a clip", VideoPath: videoPath, ThumbnailPath: thumbPath,
	}); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	for _, path := range []string{videoPath, thumbPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("temp file %s still present", path)
		}
	}
}
