package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mediasort/internal/media"
	"mediasort/internal/metadata"
	"mediasort/internal/organizer"
	"mediasort/internal/services"
	"mediasort/internal/testsupport"
)

const (
	srcRoot  = "/backup"
	destRoot = "/library"
)

func newOrganizer(fs afero.Fs, opts ...organizer.Option) *organizer.Organizer {
	resolver := metadata.NewResolver(fs, metadata.WithLocation(time.UTC))
	opts = append([]organizer.Option{organizer.WithResolver(resolver)}, opts...)
	return organizer.New(fs, "family", opts...)
}

func TestOrganizePlacesByCategoryAndDate(t *testing.T) {
	fs := afero.NewMemMapFs()
	march := time.Date(2023, time.March, 14, 9, 0, 0, 0, time.UTC)
	testsupport.WriteFile(t, fs, srcRoot+"/DCIM/IMG_0001.JPG", testsupport.JPEGWithCaptureTime("2021:06:15 10:30:00"), march)
	testsupport.WriteFile(t, fs, srcRoot+"/DCIM/clip.MOV", []byte("moov"), time.Date(2022, time.January, 2, 12, 0, 0, 0, time.UTC))
	testsupport.WriteFile(t, fs, srcRoot+"/Voice/memo.wav", []byte("RIFF"), march)
	testsupport.WriteFile(t, fs, srcRoot+"/notes.txt", []byte("hello"), march)

	result, err := newOrganizer(fs).Organize(context.Background(), srcRoot, destRoot)
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}

	want := map[string]string{
		"DCIM/IMG_0001.JPG": "/library/family/2021/June/Pictures/IMG_0001.JPG",
		"DCIM/clip.MOV":     "/library/family/2022/January/Videos/clip.MOV",
		"Voice/memo.wav":    "/library/family/2023/March/Audio/memo.wav",
	}
	if len(result.Placed) != len(want) {
		t.Fatalf("expected %d placed, got %+v", len(want), result.Placed)
	}
	for _, p := range result.Placed {
		if want[p.Relative] != p.Destination {
			t.Errorf("%s placed at %s, want %s", p.Relative, p.Destination, want[p.Relative])
		}
		testsupport.AssertExists(t, fs, p.Destination)
	}
	if len(result.Unplaced) != 1 || result.Unplaced[0].Relative != "notes.txt" {
		t.Fatalf("expected notes.txt unplaced, got %+v", result.Unplaced)
	}
	if result.Unplaced[0].Reason != organizer.ReasonUnclassified {
		t.Fatalf("unexpected reason %q", result.Unplaced[0].Reason)
	}
	if result.Complete() {
		t.Fatal("result with unplaced files must not be complete")
	}
	if result.Placed[0].DateSource != metadata.SourceExif {
		t.Fatalf("expected exif date for the JPEG, got %s", result.Placed[0].DateSource)
	}
}

func TestOrganizeLeavesSourceUntouched(t *testing.T) {
	fs := afero.NewMemMapFs()
	mod := time.Date(2020, time.May, 5, 5, 5, 5, 0, time.UTC)
	data := []byte("original bytes")
	src := srcRoot + "/photo.png"
	testsupport.WriteFile(t, fs, src, data, mod)

	result, err := newOrganizer(fs).Organize(context.Background(), srcRoot, destRoot)
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}

	info, err := fs.Stat(src)
	if err != nil {
		t.Fatalf("source missing after organize: %v", err)
	}
	if !info.ModTime().Equal(mod) {
		t.Fatalf("source mtime changed: %v", info.ModTime())
	}
	if got := testsupport.ReadFile(t, fs, src); string(got) != string(data) {
		t.Fatalf("source content changed: %q", got)
	}
	copied := testsupport.ReadFile(t, fs, result.Placed[0].Destination)
	if string(copied) != string(data) {
		t.Fatalf("copy content mismatch: %q", copied)
	}
	dstInfo, err := fs.Stat(result.Placed[0].Destination)
	if err != nil {
		t.Fatal(err)
	}
	if !dstInfo.ModTime().Equal(mod) {
		t.Fatalf("copy mtime not preserved: %v", dstInfo.ModTime())
	}
}

func TestOrganizeSuffixesCollisionsInProcessingOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	mod := time.Date(2023, time.March, 3, 12, 0, 0, 0, time.UTC)
	testsupport.WriteFile(t, fs, srcRoot+"/a/photo.jpg", []byte("first"), mod)
	testsupport.WriteFile(t, fs, srcRoot+"/b/photo.jpg", []byte("second"), mod)

	result, err := newOrganizer(fs).Organize(context.Background(), srcRoot, destRoot)
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}

	dir := "/library/family/2023/March/Pictures"
	if len(result.Placed) != 2 {
		t.Fatalf("expected 2 placed, got %d", len(result.Placed))
	}
	if result.Placed[0].Destination != dir+"/photo.jpg" || result.Placed[1].Destination != dir+"/photo_1.jpg" {
		t.Fatalf("unexpected destinations: %s, %s", result.Placed[0].Destination, result.Placed[1].Destination)
	}
	if result.Placed[0].Renamed || !result.Placed[1].Renamed {
		t.Fatalf("unexpected renamed flags: %+v", result.Placed)
	}
	if got := testsupport.ReadFile(t, fs, dir+"/photo.jpg"); string(got) != "first" {
		t.Fatalf("photo.jpg holds %q", got)
	}
	if got := testsupport.ReadFile(t, fs, dir+"/photo_1.jpg"); string(got) != "second" {
		t.Fatalf("photo_1.jpg holds %q", got)
	}
}

func TestOrganizeTwiceOverExistingDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	mod := time.Date(2023, time.March, 3, 12, 0, 0, 0, time.UTC)
	testsupport.WriteFile(t, fs, srcRoot+"/photo.jpg", []byte("x"), mod)
	org := newOrganizer(fs)

	if _, err := org.Organize(context.Background(), srcRoot, destRoot); err != nil {
		t.Fatalf("first Organize: %v", err)
	}
	result, err := org.Organize(context.Background(), srcRoot, destRoot)
	if err != nil {
		t.Fatalf("second Organize: %v", err)
	}
	// Nothing is overwritten; the rerun lands beside the first copy.
	if got := result.Placed[0].Destination; got != "/library/family/2023/March/Pictures/photo_1.jpg" {
		t.Fatalf("unexpected destination on rerun: %s", got)
	}
}

func TestOrganizeCorruptExifFallsBackToModTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	mod := time.Date(2019, time.October, 12, 8, 0, 0, 0, time.UTC)
	testsupport.WriteFile(t, fs, srcRoot+"/broken.jpeg", testsupport.CorruptJPEG(), mod)

	result, err := newOrganizer(fs).Organize(context.Background(), srcRoot, destRoot)
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	p := result.Placed[0]
	if p.DateSource != metadata.SourceModTime {
		t.Fatalf("expected modtime source, got %s", p.DateSource)
	}
	if p.Destination != "/library/family/2019/October/Pictures/broken.jpeg" {
		t.Fatalf("unexpected destination %s", p.Destination)
	}
}

func TestOrganizeExtraVideoExtensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	mod := time.Date(2023, time.March, 3, 12, 0, 0, 0, time.UTC)
	testsupport.WriteFile(t, fs, srcRoot+"/clip.3GP", []byte("x"), mod)

	org := newOrganizer(fs, organizer.WithClassifier(media.NewClassifier([]string{".3gp"})))
	result, err := org.Organize(context.Background(), srcRoot, destRoot)
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if len(result.Placed) != 1 || result.Placed[0].Category != media.Videos {
		t.Fatalf("expected 3gp placed as video, got %+v", result)
	}
}

// failingFs refuses to create files whose name contains trigger.
type failingFs struct {
	afero.Fs
	trigger string
}

func (f failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 && strings.Contains(filepath.Base(name), f.trigger) {
		return nil, &os.PathError{Op: "open", Path: name, Err: errors.New("disk full")}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestOrganizeCopyFailureStopsRun(t *testing.T) {
	mem := afero.NewMemMapFs()
	mod := time.Date(2023, time.March, 3, 12, 0, 0, 0, time.UTC)
	testsupport.WriteFile(t, mem, srcRoot+"/a.jpg", []byte("a"), mod)
	testsupport.WriteFile(t, mem, srcRoot+"/b.jpg", []byte("b"), mod)
	testsupport.WriteFile(t, mem, srcRoot+"/c.jpg", []byte("c"), mod)
	fs := failingFs{Fs: mem, trigger: "b.jpg"}

	result, err := newOrganizer(fs).Organize(context.Background(), srcRoot, destRoot)
	if !errors.Is(err, services.ErrCopy) {
		t.Fatalf("expected ErrCopy, got %v", err)
	}
	if len(result.Placed) != 1 || result.Placed[0].Relative != "a.jpg" {
		t.Fatalf("expected partial result with a.jpg, got %+v", result.Placed)
	}
	dir := "/library/family/2023/March/Pictures"
	testsupport.AssertMissing(t, mem, dir+"/b.jpg")
	testsupport.AssertMissing(t, mem, dir+"/c.jpg")
	testsupport.AssertExists(t, mem, srcRoot+"/b.jpg")
}

func TestOrganizeMissingSource(t *testing.T) {
	_, err := newOrganizer(afero.NewMemMapFs()).Organize(context.Background(), "/nope", destRoot)
	if !errors.Is(err, services.ErrCopy) {
		t.Fatalf("expected ErrCopy, got %v", err)
	}
}

func TestOrganizeStopsWhenCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteFile(t, fs, srcRoot+"/a.jpg", []byte("a"), time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newOrganizer(fs).Organize(ctx, srcRoot, destRoot)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Total() != 0 {
		t.Fatalf("expected no files processed, got %d", result.Total())
	}
}

type recordingObserver struct {
	total    int
	placed   []string
	unplaced []string
}

func (r *recordingObserver) OnStart(total int)               { r.total = total }
func (r *recordingObserver) OnPlaced(p organizer.Placement)  { r.placed = append(r.placed, p.Relative) }
func (r *recordingObserver) OnUnplaced(u organizer.Unplaced) { r.unplaced = append(r.unplaced, u.Relative) }

func TestOrganizeNotifiesObserver(t *testing.T) {
	fs := afero.NewMemMapFs()
	mod := time.Date(2023, time.March, 3, 12, 0, 0, 0, time.UTC)
	testsupport.WriteFile(t, fs, srcRoot+"/a.jpg", []byte("a"), mod)
	testsupport.WriteFile(t, fs, srcRoot+"/b.doc", []byte("b"), mod)

	obs := &recordingObserver{}
	if _, err := newOrganizer(fs, organizer.WithObserver(obs)).Organize(context.Background(), srcRoot, destRoot); err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if obs.total != 2 {
		t.Fatalf("expected total 2, got %d", obs.total)
	}
	if len(obs.placed) != 1 || obs.placed[0] != "a.jpg" {
		t.Fatalf("unexpected placed events %v", obs.placed)
	}
	if len(obs.unplaced) != 1 || obs.unplaced[0] != "b.doc" {
		t.Fatalf("unexpected unplaced events %v", obs.unplaced)
	}
}

func TestDestinationDir(t *testing.T) {
	ts := metadata.Timestamp{Time: time.Date(2021, time.June, 15, 0, 0, 0, 0, time.UTC)}
	got := organizer.DestinationDir("/lib", "family", ts, media.Videos)
	if got != filepath.Join("/lib", "family", "2021", "June", "Videos") {
		t.Fatalf("unexpected dir %s", got)
	}
}
