package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"catalog-service/internal/domain/catalog"
	"catalog-service/internal/domain/image"
	"catalog-service/internal/storage"
	catalog_errors "catalog-service/pkg/errors"
	"catalog-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- fakes ---

type fakeObjectStore struct {
	objects map[string][]byte
	ops     []string
	failOn  map[string]error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, failOn: map[string]error{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key, _ string, data []byte) error {
	if err := f.failOn["put:"+key]; err != nil {
		return err
	}
	f.ops = append(f.ops, "put "+key)
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeObjectStore) Copy(_ context.Context, srcKey, dstKey string) error {
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

func (f *fakeObjectStore) Remove(_ context.Context, key string) error {
	if err := f.failOn["remove:"+key]; err != nil {
		return err
	}
	f.ops = append(f.ops, "remove "+key)
	delete(f.objects, key)
	return nil
}

type fakeImageRepo struct {
	rows    map[uuid.UUID]*image.Image
	seq     int
	updates int
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{rows: map[uuid.UUID]*image.Image{}}
}

func (f *fakeImageRepo) tick() time.Time {
	f.seq++
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Second)
}

func (f *fakeImageRepo) Create(_ context.Context, img *image.Image) error {
	if _, ok := f.rows[img.ID]; ok {
		return catalog_errors.ErrAlreadyExists
	}
	now := f.tick()
	img.CreatedAt, img.UpdatedAt = now, now
	cp := *img
	f.rows[img.ID] = &cp
	return nil
}

func (f *fakeImageRepo) GetByID(_ context.Context, id uuid.UUID) (image.Image, error) {
	row, ok := f.rows[id]
	if !ok || row.DeletedAt != nil {
		return image.Image{}, catalog_errors.ErrNotFound
	}
	return *row, nil
}

func (f *fakeImageRepo) ListByProduct(_ context.Context, productID uuid.UUID, includeDeleted bool) ([]image.Image, error) {
	var out []image.Image
	for _, row := range f.rows {
		if row.ProductID != productID {
			continue
		}
		if row.DeletedAt != nil && !includeDeleted {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Name == nil && b.Name == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.Name == nil:
			return false
		case b.Name == nil:
			return true
		case *a.Name != *b.Name:
			return *a.Name < *b.Name
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
	return out, nil
}

func (f *fakeImageRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	row, ok := f.rows[id]
	if !ok || row.DeletedAt != nil {
		return catalog_errors.ErrNotFound
	}
	f.updates++
	for k, v := range fields {
		switch k {
		case "name":
			row.Name = toStringPtr(v)
		case "description":
			row.Description = toStringPtr(v)
		case "active":
			row.Active = v.(bool)
		case "main":
			row.Main = v.(bool)
		case "image_path":
			row.ImagePath = v.(string)
		case "thumbnail_path":
			row.ThumbnailPath = v.(string)
		}
	}
	row.UpdatedAt = f.tick()
	return nil
}

func (f *fakeImageRepo) SetMain(ctx context.Context, id uuid.UUID, main bool) error {
	return f.UpdateFields(ctx, id, map[string]interface{}{"main": main})
}

func (f *fakeImageRepo) SoftDelete(_ context.Context, id uuid.UUID, imagePath, thumbnailPath string) error {
	row, ok := f.rows[id]
	if !ok || row.DeletedAt != nil {
		return catalog_errors.ErrNotFound
	}
	now := f.tick()
	row.DeletedAt = &now
	row.ImagePath = imagePath
	row.ThumbnailPath = thumbnailPath
	row.UpdatedAt = now
	return nil
}

func toStringPtr(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

type fakeProductRepo struct {
	existing map[uuid.UUID]bool
}

func (f *fakeProductRepo) Create(context.Context, *catalog.Product) error { return nil }
func (f *fakeProductRepo) GetByID(context.Context, uuid.UUID) (catalog.Product, error) {
	return catalog.Product{}, catalog_errors.ErrNotFound
}
func (f *fakeProductRepo) List(context.Context, int, int, string) ([]catalog.Product, int64, error) {
	return nil, 0, nil
}
func (f *fakeProductRepo) UpdateFields(context.Context, uuid.UUID, map[string]interface{}) error {
	return nil
}
func (f *fakeProductRepo) SoftDelete(context.Context, uuid.UUID) error { return nil }
func (f *fakeProductRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.existing[id], nil
}

// --- helpers ---

type testEnv struct {
	service   *ImageService
	images    *fakeImageRepo
	store     *fakeObjectStore
	productID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	productID := uuid.New()
	images := newFakeImageRepo()
	store := newFakeObjectStore()
	l := &logger.Logger{Logger: zap.NewNop()}
	service := NewImageService(
		images,
		&fakeProductRepo{existing: map[uuid.UUID]bool{productID: true}},
		storage.NewTieredStore(store, l),
		NewThumbnailer(64, 80),
		NewMetadataValidator(255, 1024),
		nil,
		l,
	)
	return &testEnv{service: service, images: images, store: store, productID: productID}
}

// seedImage plants an existing row with its objects in the right tier.
func (e *testEnv) seedImage(t *testing.T, name string, active, main bool) *image.Image {
	t.Helper()
	id := uuid.New()
	tier := storage.TierFor(active, false)
	img := image.Image{
		ID:            id,
		ProductID:     e.productID,
		Name:          &name,
		ImagePath:     storage.ObjectKey(tier, e.productID, id, "png"),
		ThumbnailPath: storage.ThumbnailKey(tier, e.productID, id),
		Active:        active,
		Main:          main,
	}
	if err := e.images.Create(context.Background(), &img); err != nil {
		t.Fatalf("seed image: %v", err)
	}
	e.store.objects[img.ImagePath] = []byte("seed-original-" + name)
	e.store.objects[img.ThumbnailPath] = []byte("seed-thumb-" + name)
	return e.images.rows[id]
}

func metadataJSON(s string) json.RawMessage {
	return json.RawMessage(s)
}

// --- tests ---

func TestBulkSave_CreateDefaultsToPrivate(t *testing.T) {
	env := newTestEnv(t)
	file := UploadFile{Filename: "front.png", ContentType: "image/png", Data: pngBytes(t, 100, 80)}

	result, err := env.service.BulkSave(context.Background(), env.productID,
		[]UploadFile{file}, metadataJSON(`[{"fileIdx":0,"name":"Image 1","main":true}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("len(result) = %d, want 1", len(result))
	}
	img := result[0]
	if img.Active {
		t.Errorf("active = true, want default false")
	}
	if !img.Main {
		t.Errorf("main = false, want true")
	}
	if img.Name == nil || *img.Name != "Image 1" {
		t.Errorf("name = %v, want Image 1", img.Name)
	}
	wantPrefix := "private/products/" + env.productID.String() + "/images/"
	if !strings.HasPrefix(img.ImagePath, wantPrefix) {
		t.Errorf("imagePath = %q, want prefix %q", img.ImagePath, wantPrefix)
	}
	if !strings.HasPrefix(img.ThumbnailPath, wantPrefix) || !strings.HasSuffix(img.ThumbnailPath, ".thumbnail.jpg") {
		t.Errorf("thumbnailPath = %q", img.ThumbnailPath)
	}

	// Round trip: the original bytes live at the recorded key.
	stored, ok := env.store.objects[img.ImagePath]
	if !ok {
		t.Fatalf("no object at %s", img.ImagePath)
	}
	if len(stored) != len(file.Data) {
		t.Errorf("stored %d bytes, want %d", len(stored), len(file.Data))
	}
}

func TestBulkSave_CreateActiveGoesPublic(t *testing.T) {
	env := newTestEnv(t)
	file := UploadFile{Filename: "front.png", ContentType: "image/png", Data: pngBytes(t, 50, 50)}

	result, err := env.service.BulkSave(context.Background(), env.productID,
		[]UploadFile{file}, metadataJSON(`[{"fileIdx":0,"active":true}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}
	if !strings.HasPrefix(result[0].ImagePath, "public/") {
		t.Errorf("imagePath = %q, want public prefix", result[0].ImagePath)
	}
}

func TestBulkSave_MetadataAbsentDefaultsPerFile(t *testing.T) {
	env := newTestEnv(t)
	files := []UploadFile{
		{Filename: "a.png", ContentType: "image/png", Data: pngBytes(t, 20, 20)},
		{Filename: "b.png", ContentType: "image/png", Data: pngBytes(t, 30, 30)},
	}

	result, err := env.service.BulkSave(context.Background(), env.productID, files, nil)
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("len(result) = %d, want 2", len(result))
	}
	for _, img := range result {
		if img.Active || img.Main || img.Name != nil {
			t.Errorf("image %s should carry defaults, got %+v", img.ID, img)
		}
	}
}

func TestBulkSave_PromoteNewMainDemotesExisting(t *testing.T) {
	env := newTestEnv(t)
	x := env.seedImage(t, "existing", false, true)
	previousPath := x.ImagePath

	file := UploadFile{Filename: "new.png", ContentType: "image/png", Data: pngBytes(t, 40, 40)}
	result, err := env.service.BulkSave(context.Background(), env.productID,
		[]UploadFile{file}, metadataJSON(`[{"fileIdx":0,"main":true,"active":true}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}

	mains := 0
	for _, img := range result {
		if img.Main {
			mains++
			if img.ID == x.ID {
				t.Errorf("previous main was not demoted")
			}
		}
	}
	if mains != 1 {
		t.Errorf("main count = %d, want 1", mains)
	}
	// Demotion alone implies no tier change.
	if x.ImagePath != previousPath {
		t.Errorf("demoted image path changed: %q -> %q", previousPath, x.ImagePath)
	}
}

func TestBulkSave_DeleteRelocatesNotErases(t *testing.T) {
	env := newTestEnv(t)
	x := env.seedImage(t, "victim", true, false)
	originalBytes := append([]byte(nil), env.store.objects[x.ImagePath]...)

	result, err := env.service.BulkSave(context.Background(), env.productID, nil,
		metadataJSON(`[{"imageId":"`+x.ID.String()+`","delete":true}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}

	if x.DeletedAt == nil {
		t.Fatalf("deletedAt not set")
	}
	if !strings.HasPrefix(x.ImagePath, "deleted/") {
		t.Errorf("imagePath = %q, want deleted prefix", x.ImagePath)
	}
	got, ok := env.store.objects[x.ImagePath]
	if !ok {
		t.Fatalf("object gone after delete, want it at %s", x.ImagePath)
	}
	if string(got) != string(originalBytes) {
		t.Errorf("object bytes changed during relocation")
	}
	for _, img := range result {
		if img.ID == x.ID {
			t.Errorf("deleted image still in default read")
		}
	}

	all, err := env.service.ListImages(context.Background(), env.productID, true)
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}
	found := false
	for _, img := range all {
		if img.ID == x.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("deleted image missing from include-deleted read")
	}
}

func TestBulkSave_MalformedBatchWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	file := UploadFile{Filename: "a.png", ContentType: "image/png", Data: pngBytes(t, 20, 20)}

	_, err := env.service.BulkSave(context.Background(), env.productID,
		[]UploadFile{file}, metadataJSON(`[{"fileIdx":0,"active":1}]`))
	wantKey(t, err, catalog_errors.KeyActiveInvalidType)

	if len(env.images.rows) != 0 {
		t.Errorf("rows created despite validation failure")
	}
	if len(env.store.objects) != 0 {
		t.Errorf("objects stored despite validation failure")
	}
}

func TestBulkSave_EmptyBatchRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedImage(t, "pre-existing", false, false)

	_, err := env.service.BulkSave(context.Background(), env.productID, nil, metadataJSON(`[]`))
	wantKey(t, err, catalog_errors.KeyNothingToDo)

	_, err = env.service.BulkSave(context.Background(), env.productID, nil, nil)
	wantKey(t, err, catalog_errors.KeyNothingToDo)
}

func TestBulkSave_MultipleMainsRejectedWholesale(t *testing.T) {
	env := newTestEnv(t)
	files := []UploadFile{
		{Filename: "a.png", ContentType: "image/png", Data: pngBytes(t, 20, 20)},
		{Filename: "b.png", ContentType: "image/png", Data: pngBytes(t, 20, 20)},
	}

	_, err := env.service.BulkSave(context.Background(), env.productID, files,
		metadataJSON(`[{"fileIdx":0,"main":true},{"fileIdx":1,"main":true}]`))
	wantKey(t, err, catalog_errors.KeyMultipleMains)

	if len(env.images.rows) != 0 || len(env.store.objects) != 0 {
		t.Errorf("batch partially applied despite invariant failure")
	}
}

func TestBulkSave_UnknownProductRejected(t *testing.T) {
	env := newTestEnv(t)
	file := UploadFile{Filename: "a.png", ContentType: "image/png", Data: pngBytes(t, 20, 20)}

	_, err := env.service.BulkSave(context.Background(), uuid.New(), []UploadFile{file}, nil)
	if !errors.Is(err, catalog_errors.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBulkSave_NullClearsNameOmittedKeepsIt(t *testing.T) {
	env := newTestEnv(t)
	x := env.seedImage(t, "keep-me", false, false)
	y := env.seedImage(t, "clear-me", false, false)

	_, err := env.service.BulkSave(context.Background(), env.productID, nil,
		metadataJSON(`[{"imageId":"`+y.ID.String()+`","name":null},{"imageId":"`+x.ID.String()+`","description":"touched"}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}

	if y.Name != nil {
		t.Errorf("name = %v, want cleared", *y.Name)
	}
	if x.Name == nil || *x.Name != "keep-me" {
		t.Errorf("omitted name was altered: %v", x.Name)
	}
}

func TestBulkSave_BareTargetDescriptorIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	x := env.seedImage(t, "untouched", true, true)
	before := *x
	opsBefore := len(env.store.ops)
	updatesBefore := env.images.updates

	_, err := env.service.BulkSave(context.Background(), env.productID, nil,
		metadataJSON(`[{"imageId":"`+x.ID.String()+`"}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}

	if len(env.store.ops) != opsBefore {
		t.Errorf("blob operations ran: %v", env.store.ops[opsBefore:])
	}
	if env.images.updates != updatesBefore {
		t.Errorf("row was written")
	}
	if *x != before {
		t.Errorf("row changed: %+v -> %+v", before, *x)
	}
}

func TestBulkSave_ActiveFlipRelocatesAndSyncsPaths(t *testing.T) {
	env := newTestEnv(t)
	x := env.seedImage(t, "flip", false, false)

	_, err := env.service.BulkSave(context.Background(), env.productID, nil,
		metadataJSON(`[{"imageId":"`+x.ID.String()+`","active":true}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}

	if !x.Active {
		t.Fatalf("active not updated")
	}
	if !strings.HasPrefix(x.ImagePath, "public/") || !strings.HasPrefix(x.ThumbnailPath, "public/") {
		t.Errorf("paths not synced to public tier: %q %q", x.ImagePath, x.ThumbnailPath)
	}
	if _, ok := env.store.objects[x.ImagePath]; !ok {
		t.Errorf("object missing at new key %s", x.ImagePath)
	}
}

func TestBulkSave_CreateThenArchiveLandsDeleted(t *testing.T) {
	env := newTestEnv(t)
	file := UploadFile{Filename: "gone.png", ContentType: "image/png", Data: pngBytes(t, 20, 20)}

	result, err := env.service.BulkSave(context.Background(), env.productID,
		[]UploadFile{file}, metadataJSON(`[{"fileIdx":0,"delete":true}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}
	if len(result) != 0 {
		t.Errorf("archived create visible in default read")
	}

	if len(env.images.rows) != 1 {
		t.Fatalf("want one (soft-deleted) row, got %d", len(env.images.rows))
	}
	for _, row := range env.images.rows {
		if row.DeletedAt == nil {
			t.Errorf("row not soft-deleted")
		}
		if !strings.HasPrefix(row.ImagePath, "deleted/") {
			t.Errorf("imagePath = %q, want deleted prefix", row.ImagePath)
		}
		if _, ok := env.store.objects[row.ImagePath]; !ok {
			t.Errorf("archived object missing at %s", row.ImagePath)
		}
	}
}

func TestBulkSave_MidBatchFailureKeepsEarlierCommits(t *testing.T) {
	env := newTestEnv(t)
	x1 := env.seedImage(t, "a-first", false, false)
	x2 := env.seedImage(t, "b-second", false, false)
	x3 := env.seedImage(t, "c-third", false, false)

	env.store.failOn["copy:"+x2.ImagePath] = fmt.Errorf("copy exploded")

	_, err := env.service.BulkSave(context.Background(), env.productID, nil,
		metadataJSON(`[`+
			`{"imageId":"`+x1.ID.String()+`","delete":true},`+
			`{"imageId":"`+x2.ID.String()+`","delete":true},`+
			`{"imageId":"`+x3.ID.String()+`","delete":true}]`))
	if err == nil {
		t.Fatal("expected mid-batch error, got nil")
	}

	if x1.DeletedAt == nil {
		t.Errorf("item before the failure was rolled back")
	}
	if x2.DeletedAt != nil {
		t.Errorf("failing item was committed")
	}
	if x3.DeletedAt != nil {
		t.Errorf("item after the failure was attempted")
	}
}

func TestBulkSave_ResultOrderedByName(t *testing.T) {
	env := newTestEnv(t)
	env.seedImage(t, "zebra", false, false)
	env.seedImage(t, "alpha", false, false)

	file := UploadFile{Filename: "m.png", ContentType: "image/png", Data: pngBytes(t, 20, 20)}
	result, err := env.service.BulkSave(context.Background(), env.productID,
		[]UploadFile{file}, metadataJSON(`[{"fileIdx":0,"name":"middle"}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}

	var names []string
	for _, img := range result {
		names = append(names, *img.Name)
	}
	want := []string{"alpha", "middle", "zebra"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestBulkSave_MainInvariantHoldsAfterAnyAcceptedBatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedImage(t, "one", false, true)
	env.seedImage(t, "two", true, false)

	file := UploadFile{Filename: "n.png", ContentType: "image/png", Data: pngBytes(t, 20, 20)}
	result, err := env.service.BulkSave(context.Background(), env.productID,
		[]UploadFile{file}, metadataJSON(`[{"fileIdx":0,"main":true}]`))
	if err != nil {
		t.Fatalf("BulkSave() error = %v", err)
	}

	mains := 0
	for _, img := range result {
		if img.Main {
			mains++
		}
	}
	if mains != 1 {
		t.Errorf("main count = %d, want exactly 1", mains)
	}
}
