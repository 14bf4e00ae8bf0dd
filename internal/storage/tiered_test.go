package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type fakeStore struct {
	objects map[string][]byte
	ops     []string
	failOn  map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, failOn: map[string]error{}}
}

func (f *fakeStore) Put(_ context.Context, key, _ string, data []byte) error {
	if err := f.failOn["put:"+key]; err != nil {
		return err
	}
	f.ops = append(f.ops, "put "+key)
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStore) Copy(_ context.Context, srcKey, dstKey string) error {
	if err := f.failOn["copy:"+srcKey]; err != nil {
		return err
	}
	data, ok := f.objects[srcKey]
	if !ok {
		return fmt.Errorf("no such object: %s", srcKey)
	}
	f.ops = append(f.ops, "copy "+srcKey+" "+dstKey)
	f.objects[dstKey] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStore) Remove(_ context.Context, key string) error {
	if err := f.failOn["remove:"+key]; err != nil {
		return err
	}
	f.ops = append(f.ops, "remove "+key)
	delete(f.objects, key)
	return nil
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		active  bool
		deleted bool
		want    Tier
	}{
		{true, false, TierPublic},
		{false, false, TierPrivate},
		{true, true, TierDeleted},
		{false, true, TierDeleted},
	}
	for _, tt := range tests {
		if got := TierFor(tt.active, tt.deleted); got != tt.want {
			t.Errorf("TierFor(%v, %v) = %v, want %v", tt.active, tt.deleted, got, tt.want)
		}
	}
}

func TestObjectKeyLayout(t *testing.T) {
	productID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	imageID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	got := ObjectKey(TierPublic, productID, imageID, "png")
	want := "public/products/11111111-2222-3333-4444-555555555555/images/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee.png"
	if got != want {
		t.Errorf("ObjectKey = %q, want %q", got, want)
	}

	got = ThumbnailKey(TierDeleted, productID, imageID)
	want = "deleted/products/11111111-2222-3333-4444-555555555555/images/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee.thumbnail.jpg"
	if got != want {
		t.Errorf("ThumbnailKey = %q, want %q", got, want)
	}
}

func TestTieredStore_StoreWritesBothObjects(t *testing.T) {
	fake := newFakeStore()
	ts := NewTieredStore(fake, nil)
	productID, imageID := uuid.New(), uuid.New()

	imgKey, thumbKey, err := ts.Store(context.Background(), TierPrivate, productID, imageID, "jpg", "image/jpeg", []byte("original"), []byte("thumb"))
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if string(fake.objects[imgKey]) != "original" {
		t.Errorf("original not stored at %s", imgKey)
	}
	if string(fake.objects[thumbKey]) != "thumb" {
		t.Errorf("thumbnail not stored at %s", thumbKey)
	}
}

func TestTieredStore_RelocateCopiesBeforeRemoving(t *testing.T) {
	fake := newFakeStore()
	ts := NewTieredStore(fake, nil)
	productID, imageID := uuid.New(), uuid.New()

	oldImg := ObjectKey(TierPrivate, productID, imageID, "png")
	oldThumb := ThumbnailKey(TierPrivate, productID, imageID)
	fake.objects[oldImg] = []byte("original")
	fake.objects[oldThumb] = []byte("thumb")

	newImg, newThumb, err := ts.Relocate(context.Background(), TierPrivate, TierPublic, productID, imageID, "png")
	if err != nil {
		t.Fatalf("Relocate() error = %v", err)
	}

	wantOps := []string{
		"copy " + oldImg + " " + newImg,
		"copy " + oldThumb + " " + newThumb,
		"remove " + oldImg,
		"remove " + oldThumb,
	}
	if len(fake.ops) != len(wantOps) {
		t.Fatalf("ops = %v, want %v", fake.ops, wantOps)
	}
	for i := range wantOps {
		if fake.ops[i] != wantOps[i] {
			t.Errorf("op %d = %q, want %q", i, fake.ops[i], wantOps[i])
		}
	}
	if _, ok := fake.objects[oldImg]; ok {
		t.Errorf("old original still present after relocate")
	}
	if string(fake.objects[newImg]) != "original" {
		t.Errorf("original missing at new key")
	}
}

func TestTieredStore_RelocateCopyFailureLeavesSource(t *testing.T) {
	fake := newFakeStore()
	ts := NewTieredStore(fake, nil)
	productID, imageID := uuid.New(), uuid.New()

	oldImg := ObjectKey(TierPublic, productID, imageID, "png")
	oldThumb := ThumbnailKey(TierPublic, productID, imageID)
	fake.objects[oldImg] = []byte("original")
	fake.objects[oldThumb] = []byte("thumb")
	fake.failOn["copy:"+oldThumb] = fmt.Errorf("copy exploded")

	_, _, err := ts.Relocate(context.Background(), TierPublic, TierDeleted, productID, imageID, "png")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// Nothing was removed: both objects remain reachable at the old tier.
	if _, ok := fake.objects[oldImg]; !ok {
		t.Errorf("original vanished from source tier")
	}
	if _, ok := fake.objects[oldThumb]; !ok {
		t.Errorf("thumbnail vanished from source tier")
	}
	for _, op := range fake.ops {
		if op == "remove "+oldImg || op == "remove "+oldThumb {
			t.Errorf("remove ran despite failed copy: %v", fake.ops)
		}
	}
}

func TestTieredStore_RelocateSameTierIsNoOp(t *testing.T) {
	fake := newFakeStore()
	ts := NewTieredStore(fake, nil)
	productID, imageID := uuid.New(), uuid.New()

	imgKey, thumbKey, err := ts.Relocate(context.Background(), TierPrivate, TierPrivate, productID, imageID, "png")
	if err != nil {
		t.Fatalf("Relocate() error = %v", err)
	}
	if len(fake.ops) != 0 {
		t.Errorf("ops = %v, want none", fake.ops)
	}
	if imgKey != ObjectKey(TierPrivate, productID, imageID, "png") || thumbKey != ThumbnailKey(TierPrivate, productID, imageID) {
		t.Errorf("keys changed on same-tier relocate")
	}
}
