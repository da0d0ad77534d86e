package repositories

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/perchdisplay/perch/models"
	"github.com/perchdisplay/perch/screens"
	"github.com/perchdisplay/perch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Model{}, &models.Screen{}, &models.Device{}))

	return db
}

func testModel(t *testing.T, db *gorm.DB) *models.Model {
	t.Helper()

	profile := &models.Model{
		Name:     "og_png",
		Label:    "OG",
		Width:    800,
		Height:   480,
		BitDepth: 1,
		MimeType: "image/png",
	}
	require.NoError(t, db.Create(profile).Error)

	return profile
}

func pngFixture(t *testing.T, fill color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, fill)

	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, img))

	return buffer.Bytes()
}

func uploadedScreen(t *testing.T, store storage.Store, fill color.Color) *models.Screen {
	t.Helper()

	screen := &models.Screen{}
	require.NoError(t, screen.Upload(store, bytes.NewReader(pngFixture(t, fill)), "test.png"))

	return screen
}

type recordingNotifier struct {
	names []string
}

func (n *recordingNotifier) Publish(name string) {
	n.names = append(n.names, name)
}

func testMold(profile *models.Model, name string) *screens.Mold {
	return screens.NewMold(profile, name, "Test", "<p>test</p>")
}

func TestCreateWithImageCreatesRecord(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	notifier := &recordingNotifier{}
	repository := NewScreen(db, store, notifier)
	profile := testModel(t, db)

	screen, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)

	assert.Equal(t, profile.ID, screen.ModelID)
	assert.Equal(t, "test", screen.Name)
	assert.Equal(t, "Test", screen.Label)
	assert.Equal(t, 1, screen.ImageWidth())
	assert.Equal(t, 1, screen.ImageHeight())
	assert.Equal(t, "image/png", screen.ImageMimeType())
	assert.Equal(t, []string{"test"}, notifier.names)
}

func TestCreateWithImageReplacesExisting(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	repository := NewScreen(db, store, nil)
	profile := testModel(t, db)

	first, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)
	oldID := first.ImageID()

	second, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.Black))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "test", second.Name)
	assert.NotEqual(t, oldID, second.ImageID())
	assert.False(t, store.Exists(oldID))
	assert.Equal(t, 1, store.Len())

	records, err := repository.All()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCreateSurfacesUniquenessRace(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	repository := NewScreen(db, store, nil)
	profile := testModel(t, db)

	// Simulate a concurrent winner landing between lookup and insert.
	_, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)

	candidate := uploadedScreen(t, store, color.Black)
	_, err = repository.create(testMold(profile, "test"), candidate)

	var conflict *NameConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, `Screen exists with name: "test".`, err.Error())
	assert.Nil(t, candidate.Image())
	assert.Equal(t, 1, store.Len())
}

func TestCreateRaceLoserKeepsSharedBlob(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	repository := NewScreen(db, store, nil)
	profile := testModel(t, db)

	// Two racers ingesting identical bytes adopt the same content-derived
	// key; the loser's cleanup must not delete the winner's blob.
	winner, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)

	candidate := uploadedScreen(t, store, color.White)
	_, err = repository.create(testMold(profile, "test"), candidate)

	var conflict *NameConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Nil(t, candidate.Image())
	assert.True(t, store.Exists(winner.ImageID()))
}

func TestUpdateImageAnswersSuccessForExistingScreen(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	notifier := &recordingNotifier{}
	repository := NewScreen(db, store, notifier)
	profile := testModel(t, db)

	created, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)
	oldID := created.ImageID()

	updated, err := repository.UpdateImage("test", bytes.NewReader(pngFixture(t, color.Black)), "update.png")
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "update.png", updated.ImageName())
	assert.NotEqual(t, oldID, updated.ImageID())
	assert.False(t, store.Exists(oldID))
	assert.Equal(t, []string{"test", "test"}, notifier.names)
}

func TestUpdateImageRejectedStreamKeepsBlob(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	repository := NewScreen(db, store, nil)
	profile := testModel(t, db)

	created, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)
	oldID := created.ImageID()

	_, err = repository.UpdateImage("test", bytes.NewReader([]byte("not an image")), "update.png")

	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)

	reloaded, err := repository.FindByName("test")
	require.NoError(t, err)
	assert.Equal(t, oldID, reloaded.ImageID())
	assert.True(t, store.Exists(oldID))
}

func TestUpdateImageKeepsSharedBlobOnIdenticalContent(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	repository := NewScreen(db, store, nil)
	profile := testModel(t, db)

	created, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)
	oldID := created.ImageID()

	updated, err := repository.UpdateImage("test", bytes.NewReader(pngFixture(t, color.White)), "update.png")
	require.NoError(t, err)

	assert.Equal(t, oldID, updated.ImageID())
	assert.True(t, store.Exists(oldID))
}

func TestUpdateImageNeverCreates(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	repository := NewScreen(db, store, nil)

	_, err := repository.UpdateImage("bogus", bytes.NewReader(pngFixture(t, color.White)), "update.png")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, `Unabled to find screen: "bogus".`, err.Error())

	records, err := repository.All()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteCascadesToBlob(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	repository := NewScreen(db, store, nil)
	profile := testModel(t, db)

	screen, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)

	require.NoError(t, repository.Delete(screen.ID))

	assert.Equal(t, 0, store.Len())
	records, err := repository.All()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteIgnoresUnknownRecord(t *testing.T) {
	db := testDB(t)
	repository := NewScreen(db, storage.NewMemory(), nil)

	require.NoError(t, repository.Delete(13))
	require.NoError(t, repository.Delete(13))
}

func TestFindByName(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	repository := NewScreen(db, store, nil)
	profile := testModel(t, db)

	_, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)

	found, err := repository.FindByName("test")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "test", found.Name)

	missing, err := repository.FindByName("bogus")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemory()
	repository := NewScreen(db, store, nil)
	profile := testModel(t, db)

	_, err := repository.CreateWithImage(testMold(profile, "test"), uploadedScreen(t, store, color.White))
	require.NoError(t, err)

	records, err := repository.Search("te")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = repository.Search("bogus")
	require.NoError(t, err)
	assert.Empty(t, records)
}
