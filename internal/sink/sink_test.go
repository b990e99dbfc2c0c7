package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/churchhelp/internal/config"
	"github.com/debemdeboas/churchhelp/internal/db"
	"github.com/debemdeboas/churchhelp/internal/sermon"
)

var fixedNow = time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)

func init() {
	SetLogger(zerolog.New(io.Discard))
	db.SetLogger(zerolog.New(io.Discard))
}

func freezeClock(t *testing.T) {
	t.Helper()
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = time.Now })
}

// pinIDs makes submission ids sub-1, sub-2, ... for the rest of the test.
func pinIDs(t *testing.T) {
	t.Helper()
	var mu sync.Mutex
	n := 0
	newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("sub-%d", n)
	}
	t.Cleanup(func() { newID = func() string { return uuid.New().String() } })
}

func faithOverFear() sermon.Draft {
	d := sermon.NewDraft(fixedNow)
	d = sermon.SetField(d, sermon.FieldTitle, "Faith Over Fear")
	d = sermon.SetField(d, sermon.FieldScripture, "Romans 8:28")

	var id sermon.BlockID
	d, id = sermon.AddBlock(d, sermon.KindNote)
	d = sermon.UpdateBlockContent(d, id, "Opening remarks")
	d, id = sermon.AddBlock(d, sermon.KindVerse)
	d = sermon.UpdateBlockContent(d, id, "And we know that all things work together for good")
	return d
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(zerolog.New(&buf))

	if err := s.Submit(context.Background(), faithOverFear()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q", buf.String())
	}
	if entry["message"] != "Sermon saved" {
		t.Errorf("Unexpected message %v", entry["message"])
	}
	if entry["title"] != "Faith Over Fear" || entry["scripture"] != "Romans 8:28" {
		t.Errorf("Missing draft fields in %v", entry)
	}
	if entry["export_name"] != "Faith_Over_Fear_sermon.txt" {
		t.Errorf("Unexpected export name %v", entry["export_name"])
	}
	blocks, ok := entry["blocks"].([]any)
	if !ok || len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %v", entry["blocks"])
	}
	if first := blocks[0].(map[string]any); first["kind"] != "note" || first["content"] != "Opening remarks" {
		t.Errorf("Unexpected first block %v", first)
	}
}

func TestFanout(t *testing.T) {
	errBroken := errors.New("broken")

	var mu sync.Mutex
	var calls []string
	record := func(name string, err error) Sink {
		return Func(func(_ context.Context, d sermon.Draft) error {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, name+":"+d.Title)
			return err
		})
	}

	t.Run("all succeed", func(t *testing.T) {
		calls = nil
		f := NewFanout(record("a", nil), record("b", nil))
		if err := f.Submit(context.Background(), faithOverFear()); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if len(calls) != 2 {
			t.Errorf("Expected 2 calls, got %v", calls)
		}
	})

	t.Run("failure does not stop later sinks", func(t *testing.T) {
		calls = nil
		f := NewFanout(record("a", errBroken), record("b", nil))
		err := f.Submit(context.Background(), faithOverFear())
		if !errors.Is(err, errBroken) {
			t.Errorf("Expected wrapped errBroken, got %v", err)
		}
		if !reflect.DeepEqual(calls, []string{"a:Faith Over Fear", "b:Faith Over Fear"}) {
			t.Errorf("Unexpected calls %v", calls)
		}
	})
}

func TestSQLiteSink(t *testing.T) {
	freezeClock(t)

	database := db.NewSQLite(":memory:")
	if err := database.InitDB(); err != nil {
		t.Fatalf(config.ErrInitializeDatabaseFmt, err)
	}
	defer database.Close()

	s := NewSQLiteSink(database)
	d := faithOverFear()
	ctx := context.Background()

	if err := s.Submit(ctx, d); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	subs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("Expected 1 submission, got %d", len(subs))
	}

	got := subs[0]
	if got.ExportName != "Faith_Over_Fear_sermon.txt" {
		t.Errorf("Unexpected export name %q", got.ExportName)
	}
	if got.Draft.Title != d.Title || got.Draft.Scripture != d.Scripture || got.Draft.Date != d.Date {
		t.Errorf("Snapshot header mismatch: %+v", got.Draft)
	}
	if !reflect.DeepEqual(got.Draft.Blocks, d.Blocks) {
		t.Errorf("Snapshot blocks mismatch:\ngot  %+v\nwant %+v", got.Draft.Blocks, d.Blocks)
	}
	if !got.SubmittedAt.Equal(fixedNow) {
		t.Errorf("Expected submitted_at %v, got %v", fixedNow, got.SubmittedAt)
	}

	body, err := s.ExportBody(ctx, got.ID)
	if err != nil {
		t.Fatalf("ExportBody: %v", err)
	}
	if body != sermon.Flatten(d) {
		t.Errorf("Stored export mismatch:\n%s", body)
	}

	if _, err := s.ExportBody(ctx, "missing"); err == nil {
		t.Error("Expected error for unknown submission")
	}
}

func TestSQLiteSinkUninitialized(t *testing.T) {
	s := NewSQLiteSink(db.NewSQLite(":memory:"))
	if err := s.Submit(context.Background(), faithOverFear()); !errors.Is(err, db.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestFSSink(t *testing.T) {
	freezeClock(t)
	pinIDs(t)

	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewFSSink(dir)
	if err != nil {
		t.Fatalf("NewFSSink: %v", err)
	}

	d := faithOverFear()
	if err := s.Submit(context.Background(), d); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	text, err := os.ReadFile(filepath.Join(dir, "20230501T090000Z-sub-1-Faith_Over_Fear_sermon.txt"))
	if err != nil {
		t.Fatalf("Expected export file: %v", err)
	}
	if string(text) != sermon.Flatten(d) {
		t.Errorf("Unexpected export body:\n%s", text)
	}

	sub, err := ReadRecord(filepath.Join(dir, "20230501T090000Z-sub-1-Faith_Over_Fear_sermon.toml"))
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if sub.ExportName != "Faith_Over_Fear_sermon.txt" || sub.Draft.Title != "Faith Over Fear" {
		t.Errorf("Unexpected record %+v", sub)
	}
	if !reflect.DeepEqual(sub.Draft.Blocks, d.Blocks) {
		t.Errorf("Record blocks mismatch: %+v", sub.Draft.Blocks)
	}

	t.Run("slashes in titles stay inside the directory", func(t *testing.T) {
		odd := sermon.SetField(d, sermon.FieldTitle, "a/../b")
		if err := s.Submit(context.Background(), odd); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "20230501T090000Z-sub-2-a-..-b_sermon.txt")); err != nil {
			t.Errorf("Expected sanitised file name: %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := s.Submit(ctx, d); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestFSSinkSameTitleSameSecond(t *testing.T) {
	freezeClock(t)

	dir := t.TempDir()
	s, err := NewFSSink(dir)
	if err != nil {
		t.Fatalf("NewFSSink: %v", err)
	}

	first := faithOverFear()
	second := sermon.SetField(first, sermon.FieldScripture, "Isaiah 41:10")
	for _, d := range []sermon.Draft{first, second} {
		if err := s.Submit(context.Background(), d); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("Expected 4 files after two submissions, got %d", len(entries))
	}

	var scriptures []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		sub, err := ReadRecord(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("ReadRecord: %v", err)
		}
		scriptures = append(scriptures, sub.Draft.Scripture)
	}
	if !slices.Contains(scriptures, "Romans 8:28") || !slices.Contains(scriptures, "Isaiah 41:10") {
		t.Errorf("Expected both records kept, got %v", scriptures)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Sink(t *testing.T) {
	freezeClock(t)
	pinIDs(t)

	t.Run("uploads the export", func(t *testing.T) {
		client := &fakeS3{}
		s := NewS3SinkWithClient(client, "church", "sermons/")
		d := faithOverFear()

		if err := s.Submit(context.Background(), d); err != nil {
			t.Fatalf("Submit: %v", err)
		}

		if *client.input.Bucket != "church" {
			t.Errorf("Unexpected bucket %q", *client.input.Bucket)
		}
		if *client.input.Key != "sermons/20230501T090000Z-sub-1-Faith_Over_Fear_sermon.txt" {
			t.Errorf("Unexpected key %q", *client.input.Key)
		}
		if *client.input.ContentType != sermon.ExportContentType {
			t.Errorf("Unexpected content type %q", *client.input.ContentType)
		}
		if client.body != sermon.Flatten(d) {
			t.Errorf("Unexpected body %q", client.body)
		}
		meta := client.input.Metadata
		if meta["title"] != "Faith Over Fear" || meta["scripture"] != "Romans 8:28" || meta["date"] != "2023-05-01" {
			t.Errorf("Unexpected metadata %v", meta)
		}
		if got := *client.input.ContentDisposition; got != "attachment; filename=Faith_Over_Fear_sermon.txt" {
			t.Errorf("Unexpected Content-Disposition %q", got)
		}
	})

	t.Run("same title in one second gets distinct keys", func(t *testing.T) {
		client := &fakeS3{}
		s := NewS3SinkWithClient(client, "church", "")
		s.Submit(context.Background(), faithOverFear())
		firstKey := *client.input.Key
		s.Submit(context.Background(), faithOverFear())
		if *client.input.Key == firstKey {
			t.Errorf("Second upload reused key %q", firstKey)
		}
	})

	t.Run("non-ascii titles are encoded", func(t *testing.T) {
		client := &fakeS3{}
		s := NewS3SinkWithClient(client, "church", "")
		d := sermon.SetField(faithOverFear(), sermon.FieldTitle, "Sermón de Fe")
		d = sermon.SetField(d, sermon.FieldScripture, "Éxodo 14:14")

		if err := s.Submit(context.Background(), d); err != nil {
			t.Fatalf("Submit: %v", err)
		}

		if got := *client.input.ContentDisposition; got != "attachment; filename*=utf-8''Serm%C3%B3n_de_Fe_sermon.txt" {
			t.Errorf("Unexpected Content-Disposition %q", got)
		}
		dec := new(mime.WordDecoder)
		for key, want := range map[string]string{"title": "Sermón de Fe", "scripture": "Éxodo 14:14"} {
			raw := client.input.Metadata[key]
			for _, r := range raw {
				if r > unicode.MaxASCII {
					t.Errorf("Metadata %s is not ASCII: %q", key, raw)
					break
				}
			}
			got, err := dec.DecodeHeader(raw)
			if err != nil || got != want {
				t.Errorf("Metadata %s decodes to %q, %v; want %q", key, got, err, want)
			}
		}
	})

	t.Run("wraps client errors", func(t *testing.T) {
		errDenied := errors.New("access denied")
		s := NewS3SinkWithClient(&fakeS3{err: errDenied}, "church", "")
		if err := s.Submit(context.Background(), faithOverFear()); !errors.Is(err, errDenied) {
			t.Errorf("Expected wrapped error, got %v", err)
		}
	})
}

func TestS3SinkAgainstEndpoint(t *testing.T) {
	freezeClock(t)
	pinIDs(t)
	home := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(home, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(home, "credentials"))

	var gotMethod, gotPath, gotTitle, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("X-Amz-Meta-Title")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.S3Config{Bucket: "church", Prefix: "sermons/", Endpoint: srv.URL, Region: "auto"}
	s, err := NewS3Sink(context.Background(), cfg, "key", "secret")
	if err != nil {
		t.Fatalf("NewS3Sink: %v", err)
	}

	if err := s.Submit(context.Background(), faithOverFear()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("Expected PUT, got %s", gotMethod)
	}
	if gotPath != "/church/sermons/20230501T090000Z-sub-1-Faith_Over_Fear_sermon.txt" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if gotTitle != "Faith Over Fear" {
		t.Errorf("Unexpected title metadata %q", gotTitle)
	}
	if !strings.Contains(gotBody, "Title: Faith Over Fear") {
		t.Errorf("Unexpected body %q", gotBody)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("single sink is returned directly", func(t *testing.T) {
		s, closer, err := New(ctx, config.SinkConfig{Types: []string{config.SinkLog}})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer closer()
		if _, ok := s.(*LogSink); !ok {
			t.Errorf("Expected *LogSink, got %T", s)
		}
	})

	t.Run("several sinks fan out", func(t *testing.T) {
		cfg := config.SinkConfig{
			Types:  []string{config.SinkLog, config.SinkSQLite, config.SinkFS},
			SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "sermons.db")},
			FS:     config.FSConfig{Dir: filepath.Join(dir, "out")},
		}
		s, closer, err := New(ctx, cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if _, ok := s.(*Fanout); !ok {
			t.Errorf("Expected *Fanout, got %T", s)
		}
		if err := s.Submit(ctx, faithOverFear()); err != nil {
			t.Errorf("Submit: %v", err)
		}
		if err := closer(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})

	t.Run("no sinks", func(t *testing.T) {
		if _, _, err := New(ctx, config.SinkConfig{}); !errors.Is(err, ErrNoSinks) {
			t.Errorf("Expected ErrNoSinks, got %v", err)
		}
	})

	t.Run("unknown sink", func(t *testing.T) {
		if _, _, err := New(ctx, config.SinkConfig{Types: []string{"carrier-pigeon"}}); err == nil {
			t.Error("Expected error for unknown sink")
		}
	})
}
